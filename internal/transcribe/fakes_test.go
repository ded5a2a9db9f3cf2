package transcribe

import (
	"context"
	"fmt"

	"khmerspeech/internal/speech"
)

// dispatchOutcome scripts the result of one recognition attempt.
type dispatchOutcome struct {
	resp *speech.LongRunningRecognizeResponse
	err  error
}

type fakeRecognizer struct {
	outcomes []dispatchOutcome
	requests []speech.RecognitionRequest
	apis     []string
}

func (f *fakeRecognizer) LongRunningRecognize(ctx context.Context, api string, req *speech.RecognitionRequest) (Operation, error) {
	f.requests = append(f.requests, *req)
	f.apis = append(f.apis, api)
	i := len(f.requests) - 1
	if i >= len(f.outcomes) {
		return nil, fmt.Errorf("unexpected dispatch #%d", i+1)
	}
	return &fakeOperation{name: fmt.Sprintf("op-%d", i+1), outcome: f.outcomes[i]}, nil
}

type fakeOperation struct {
	name    string
	outcome dispatchOutcome
}

func (f *fakeOperation) Name() string { return f.name }

func (f *fakeOperation) Wait(ctx context.Context) (*speech.LongRunningRecognizeResponse, error) {
	return f.outcome.resp, f.outcome.err
}

type fakeBlobStore struct {
	deleted   []string
	deleteErr error
}

func (f *fakeBlobStore) Delete(ctx context.Context, path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, path)
	return nil
}

type storedDoc struct {
	path   string
	fields map[string]any
}

type fakeDocStore struct {
	sets    []storedDoc
	deleted []string
	setErr  error
}

func (f *fakeDocStore) Set(ctx context.Context, docPath string, fields map[string]any) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, storedDoc{path: docPath, fields: fields})
	return nil
}

func (f *fakeDocStore) Delete(ctx context.Context, docPath string) error {
	f.deleted = append(f.deleted, docPath)
	return nil
}

type fakeCleaner struct {
	input   string
	cleaned string
	err     error
}

func (f *fakeCleaner) Clean(ctx context.Context, transcript string) (string, error) {
	f.input = transcript
	if f.err != nil {
		return "", f.err
	}
	return f.cleaned, nil
}

func singleUtterance(transcript string) *speech.LongRunningRecognizeResponse {
	return &speech.LongRunningRecognizeResponse{
		Results: []speech.SpeechRecognitionResult{
			{Alternatives: []speech.SpeechRecognitionAlternative{{Transcript: transcript, Confidence: 0.9}}},
		},
	}
}

func channelMismatchErr() error {
	return &speech.RecognitionError{
		Code:    speech.CodeInvalidArgument,
		Status:  "INVALID_ARGUMENT",
		Message: "Must use single channel (mono) audio, but WAV header indicates 2 channels.",
	}
}

var errSetFailed = fmt.Errorf("document store unavailable")

func channelMismatchErrWithCode(code int, status string) error {
	return &speech.RecognitionError{Code: code, Status: status, Message: "request rejected"}
}

func internalErr() error {
	return &speech.RecognitionError{
		Code:    speech.CodeInternal,
		Status:  "INTERNAL",
		Message: "Internal error encountered.",
	}
}
