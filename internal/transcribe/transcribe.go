// Package transcribe drives a submission from validated upload to either a
// persisted transcript or a recorded failure.
package transcribe

import (
	"context"

	"khmerspeech/internal/speech"
)

// Operation is a handle on a dispatched long-running recognition.
type Operation interface {
	Name() string
	Wait(ctx context.Context) (*speech.LongRunningRecognizeResponse, error)
}

// Recognizer dispatches recognition requests as long-running operations.
type Recognizer interface {
	LongRunningRecognize(ctx context.Context, api string, req *speech.RecognitionRequest) (Operation, error)
}

// BlobStore deletes transient audio blobs after a transcript is persisted.
type BlobStore interface {
	Delete(ctx context.Context, path string) error
}

// DocumentStore persists transcript documents and removes tracking records.
type DocumentStore interface {
	Set(ctx context.Context, docPath string, fields map[string]any) error
	Delete(ctx context.Context, docPath string) error
}

// Cleaner post-processes a raw transcript. Optional; failures never affect
// the submission outcome.
type Cleaner interface {
	Clean(ctx context.Context, transcript string) (string, error)
}

// speechRecognizer adapts the concrete speech client to the Recognizer
// interface so tests can substitute fakes.
type speechRecognizer struct {
	client *speech.Client
}

// NewSpeechRecognizer wraps a speech client as a Recognizer.
func NewSpeechRecognizer(client *speech.Client) Recognizer {
	return speechRecognizer{client: client}
}

func (r speechRecognizer) LongRunningRecognize(ctx context.Context, api string, req *speech.RecognitionRequest) (Operation, error) {
	op, err := r.client.LongRunningRecognize(ctx, api, req)
	if err != nil {
		return nil, err
	}
	return op, nil
}
