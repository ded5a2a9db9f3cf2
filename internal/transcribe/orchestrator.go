package transcribe

import (
	"context"

	"github.com/rs/zerolog"

	"khmerspeech/internal/model"
	"khmerspeech/internal/speech"
	"khmerspeech/internal/track"
)

// Orchestrator runs the transcription lifecycle state machine for one
// submission at a time. Submissions are independent; the orchestrator holds
// no per-submission state between calls.
type Orchestrator struct {
	recognizer  Recognizer
	persister   *Persister
	registry    *track.Registry
	bucket      string
	maxAttempts int
	logger      zerolog.Logger
}

// NewOrchestrator wires the orchestrator with its collaborators. maxAttempts
// values below one fall back to the default retry budget.
func NewOrchestrator(recognizer Recognizer, persister *Persister, registry *track.Registry, bucket string, maxAttempts int, logger zerolog.Logger) *Orchestrator {
	if maxAttempts < 1 {
		maxAttempts = model.DefaultMaxAttempts
	}
	return &Orchestrator{
		recognizer:  recognizer,
		persister:   persister,
		registry:    registry,
		bucket:      bucket,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Process drives the submission tracked under id to a terminal status and
// returns it. Transitions within one submission are strictly sequential.
func (o *Orchestrator) Process(ctx context.Context, id string, sub *model.SubmissionRequest) model.TranscriptionStatus {
	logger := o.logger.With().Str("submission", id).Str("file", sub.FileName).Logger()

	o.setStatus(id, model.StatusProcessingFile)

	// Validation and configuration failures abort with no side effects and
	// no retry.
	if err := sub.Validate(); err != nil {
		logger.Error().Err(err).Msg("submission rejected")
		return o.fail(id, model.StatusServerError, err)
	}

	opts := model.NewRequestOptions()
	opts.MaxAttempts = o.maxAttempts

	req, err := speech.BuildRequest(sub, opts, o.bucket)
	if err != nil {
		logger.Error().Err(err).Str("file_type", sub.FileType).Msg("configuration selection failed")
		return o.fail(id, model.StatusServerError, err)
	}

	o.setStatus(id, model.StatusTranscribing)

	for {
		resp, transactionID, err := o.dispatch(ctx, opts.API, req)
		if err == nil {
			o.setStatus(id, model.StatusProcessingTranscription)

			docPath, perr := o.persister.Persist(ctx, sub, resp, transactionID)
			if perr != nil {
				// Known gap: a failed write leaves the submission parked in
				// processing-transcription with no retry or compensation.
				logger.Error().Err(perr).Msg("failed to persist transcript")
				o.registry.SetError(id, perr.Error())
				return model.StatusProcessingTranscription
			}

			o.registry.SetDocPath(id, docPath)
			o.setStatus(id, model.StatusTranscriptionProcessed)
			logger.Info().Str("doc", docPath).Msg("transcription processed")
			return model.StatusTranscriptionProcessed
		}

		opts.FailedAttempts++
		if opts.Exhausted() {
			logger.Error().Err(err).Int("attempts", opts.FailedAttempts).Msg("retry budget exhausted")
			return o.fail(id, model.StatusTranscribingError, err)
		}

		switch speech.Classify(err) {
		case speech.RetryWithMultipleChannels:
			// The audio has more channels than the mono default; rebuild the
			// request with two-channel separate recognition.
			logger.Warn().Err(err).Int("attempt", opts.FailedAttempts+1).
				Msg("channel mismatch, retrying with multiple channel configuration")
			opts.MultipleChannels = true
			req, err = speech.BuildRequest(sub, opts, o.bucket)
			if err != nil {
				return o.fail(id, model.StatusTranscribingError, err)
			}
		case speech.RetrySameRequest:
			logger.Warn().Err(err).Int("attempt", opts.FailedAttempts+1).
				Msg("internal recognizer fault, retrying same request")
		default:
			logger.Error().Err(err).Msg("recognition failed")
			return o.fail(id, model.StatusTranscribingError, err)
		}

		// Retry sub-loop: transcribing -> transcribing.
		o.setStatus(id, model.StatusTranscribing)
	}
}

// dispatch sends one recognition attempt and waits for the long-running
// operation to finish.
func (o *Orchestrator) dispatch(ctx context.Context, api string, req *speech.RecognitionRequest) (*speech.LongRunningRecognizeResponse, string, error) {
	op, err := o.recognizer.LongRunningRecognize(ctx, api, req)
	if err != nil {
		return nil, "", err
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, op.Name(), err
	}
	return resp, op.Name(), nil
}

func (o *Orchestrator) fail(id string, status model.TranscriptionStatus, err error) model.TranscriptionStatus {
	o.registry.SetError(id, err.Error())
	o.setStatus(id, status)
	return status
}

func (o *Orchestrator) setStatus(id string, status model.TranscriptionStatus) {
	if err := o.registry.SetStatus(id, status); err != nil {
		o.logger.Warn().Err(err).Msg("status transition rejected")
	}
}
