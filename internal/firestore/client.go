package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"khmerspeech/internal/gcp"
)

const defaultBaseURL = "https://firestore.googleapis.com"

// ErrPermissionDenied is returned when the store rejects a write for missing
// permissions, usually a service-account key without the admin SDK role.
var ErrPermissionDenied = errors.New("document store permission denied")

// Client talks to the document store's REST API for one project's default
// database. Document paths are slash-separated collection/document pairs,
// e.g. "users/u1/transcripts/a.flac-at-20200419t010208".
type Client struct {
	gcp       *gcp.Client
	baseURL   string
	projectID string
	logger    zerolog.Logger
}

// NewClient creates a document store client for projectID.
func NewClient(gcpClient *gcp.Client, projectID string, logger zerolog.Logger) *Client {
	return &Client{
		gcp:       gcpClient,
		baseURL:   defaultBaseURL,
		projectID: projectID,
		logger:    logger.With().Str("component", "firestore").Logger(),
	}
}

func (c *Client) docURL(docPath string) string {
	return fmt.Sprintf("%s/v1/projects/%s/databases/(default)/documents/%s",
		c.baseURL, c.projectID, docPath)
}

// Set upserts the document at docPath with the given fields. Nil-valued
// fields are stripped before the write.
func (c *Client) Set(ctx context.Context, docPath string, fields map[string]any) error {
	encoded, err := encodeFields(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %q: %w", docPath, err)
	}

	body, err := json.Marshal(map[string]any{"fields": encoded})
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", docPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.gcp.WithKey(c.docURL(docPath)), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create set request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, docPath)
}

// Delete removes the document at docPath. Deleting an absent document
// succeeds, which keeps cleanup idempotent.
func (c *Client) Delete(ctx context.Context, docPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.gcp.WithKey(c.docURL(docPath)), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	return c.do(req, docPath)
}

func (c *Client) do(req *http.Request, docPath string) error {
	resp, err := c.gcp.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach document store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusForbidden {
		// Usually the key handed to the service lacks the admin SDK role.
		c.logger.Error().Str("doc", docPath).
			Msg("permission denied; check the service account has the admin SDK role")
		return fmt.Errorf("%w: %s", ErrPermissionDenied, data)
	}
	return fmt.Errorf("document store returned status %d for %q: %s", resp.StatusCode, docPath, data)
}
