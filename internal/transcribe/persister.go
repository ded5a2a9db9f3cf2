package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"khmerspeech/internal/model"
	"khmerspeech/internal/speech"
)

// Persister shapes recognition results into a transcript document, writes it
// to the document store, and cleans up the transient blobs afterwards.
type Persister struct {
	docs    DocumentStore
	blobs   BlobStore
	cleaner Cleaner
	now     func() time.Time
	logger  zerolog.Logger
}

// NewPersister wires a persister. cleaner may be nil.
func NewPersister(docs DocumentStore, blobs BlobStore, cleaner Cleaner, logger zerolog.Logger) *Persister {
	return &Persister{
		docs:    docs,
		blobs:   blobs,
		cleaner: cleaner,
		now:     time.Now,
		logger:  logger.With().Str("component", "persister").Logger(),
	}
}

// Persist writes the transcript document and runs the cleanup saga. The
// returned docPath identifies the stored document. An error means the write
// itself failed and nothing was cleaned up; cleanup failures after a
// successful write are logged and never returned, since the transcript is
// already durable.
func (p *Persister) Persist(ctx context.Context, sub *model.SubmissionRequest, resp *speech.LongRunningRecognizeResponse, transactionID string) (string, error) {
	doc := &model.TranscriptDocument{
		UID:              sub.UID,
		FileName:         sub.FileName,
		FileType:         sub.FileType,
		FileSize:         sub.FileSize,
		FileLastModified: sub.FileLastModified,
		Utterances:       toUtterances(resp),
		TransactionID:    transactionID,
	}
	doc.Stamp(p.now())

	if p.cleaner != nil {
		cleaned, err := p.cleaner.Clean(ctx, joinTranscript(doc.Utterances))
		if err != nil {
			p.logger.Warn().Err(err).Msg("transcript cleanup failed, storing raw transcript only")
		} else {
			doc.CleanedTranscript = cleaned
		}
	}

	docPath := fmt.Sprintf("users/%s/transcripts/%s", sub.UID, doc.DocKey())
	if err := p.docs.Set(ctx, docPath, doc.Fields()); err != nil {
		return "", fmt.Errorf("failed to store transcript document: %w", err)
	}
	p.logger.Info().Str("doc", docPath).Int("utterances", len(doc.Utterances)).Msg("transcript stored")

	p.cleanup(ctx, sub)
	return docPath, nil
}

// cleanup removes the transient blobs and the untranscribed-upload tracking
// record. Each step is independent and idempotent; one failed deletion never
// blocks the others and never rolls back the stored document. There is no
// completion checkpoint across steps: a crash here leaves orphaned blobs for
// a later sweep.
func (p *Persister) cleanup(ctx context.Context, sub *model.SubmissionRequest) {
	if sub.FilePath != "" {
		if err := p.blobs.Delete(ctx, sub.FilePath); err != nil {
			p.logger.Error().Err(err).Str("path", sub.FilePath).Msg("failed to delete audio blob")
		}
	}

	if sub.OriginalFilePath != "" {
		if err := p.blobs.Delete(ctx, sub.OriginalFilePath); err != nil {
			p.logger.Error().Err(err).Str("path", sub.OriginalFilePath).Msg("failed to delete original audio blob")
		}

		trackingPath := fmt.Sprintf("users/%s/untranscribedUploads/%s", sub.UID, sub.FileName)
		if err := p.docs.Delete(ctx, trackingPath); err != nil {
			p.logger.Error().Err(err).Str("doc", trackingPath).Msg("failed to delete untranscribed upload record")
		}
	}
}

// toUtterances converts the recognizer's wire results into the persisted
// shape, keeping the ranked alternatives in order.
func toUtterances(resp *speech.LongRunningRecognizeResponse) []model.Utterance {
	if resp == nil {
		return nil
	}
	utterances := make([]model.Utterance, 0, len(resp.Results))
	for _, result := range resp.Results {
		alts := make([]model.Alternative, 0, len(result.Alternatives))
		for _, a := range result.Alternatives {
			alts = append(alts, model.Alternative{Transcript: a.Transcript, Confidence: a.Confidence})
		}
		utterances = append(utterances, model.Utterance{Alternatives: alts, ChannelTag: result.ChannelTag})
	}
	return utterances
}

// joinTranscript concatenates the best alternative of every utterance.
func joinTranscript(utterances []model.Utterance) string {
	var b strings.Builder
	for _, u := range utterances {
		if len(u.Alternatives) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(u.Alternatives[0].Transcript)
	}
	return b.String()
}
