package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"khmerspeech/internal/model"
	"khmerspeech/internal/track"
	"khmerspeech/internal/transcribe"
	"khmerspeech/internal/utils"
)

// Handler exposes the submission intake and status endpoints. Submissions
// arrive already authenticated; the uid on the payload identifies the owner.
type Handler struct {
	orchestrator *transcribe.Orchestrator
	registry     *track.Registry
	baseCtx      context.Context
	logger       zerolog.Logger
}

// NewHandler wires the HTTP surface. baseCtx bounds background processing;
// it outlives individual requests and is cancelled on shutdown.
func NewHandler(baseCtx context.Context, orchestrator *transcribe.Orchestrator, registry *track.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		registry:     registry,
		baseCtx:      baseCtx,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes mounts the API on the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/transcriptions", h.createTranscription)
		v1.GET("/transcriptions/:id/status", h.getTranscriptionStatus)
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "khmerspeech-backend",
	})
}

// createTranscription handles POST /api/v1/transcriptions. The client calls
// it once its upload to the object store finished (or with a small inline
// payload); recognition continues in the background while the status
// endpoint reports progress.
func (h *Handler) createTranscription(c *gin.Context) {
	var sub model.SubmissionRequest
	if err := c.ShouldBindJSON(&sub); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid submission: "+err.Error())
		return
	}
	if err := sub.Validate(); err != nil {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	tracked := h.registry.Add(&sub)
	h.logger.Info().
		Str("submission", tracked.ID).
		Str("uid", sub.UID).
		Str("file", sub.FileName).
		Msg("submission accepted")

	// One logical task per submission; no ordering across submissions.
	go func(sub model.SubmissionRequest) {
		h.orchestrator.Process(h.baseCtx, tracked.ID, &sub)
	}(sub)

	utils.Accepted(c, gin.H{
		"submission_id": tracked.ID,
		"status":        tracked.Status,
	})
}

// getTranscriptionStatus handles GET /api/v1/transcriptions/:id/status.
func (h *Handler) getTranscriptionStatus(c *gin.Context) {
	id := c.Param("id")

	sub, ok := h.registry.Get(id)
	if !ok {
		utils.Error(c, http.StatusNotFound, "submission not found")
		return
	}

	data := gin.H{
		"submission_id": sub.ID,
		"file_name":     sub.FileName,
		"status":        sub.Status,
		"created_at":    sub.CreatedAt,
	}
	if sub.Error != "" {
		data["error"] = sub.Error
	}
	if sub.DocPath != "" {
		data["transcript_doc"] = sub.DocPath
	}
	utils.Success(c, data)
}
