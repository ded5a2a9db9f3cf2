package transcribe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"khmerspeech/internal/model"
	"khmerspeech/internal/track"
)

const testBucket = "khmer-speech-to-text.appspot.com"

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestOrchestrator(rec *fakeRecognizer, docs *fakeDocStore, blobs *fakeBlobStore) (*Orchestrator, *track.Registry) {
	registry := track.NewRegistry()
	persister := NewPersister(docs, blobs, nil, zerolog.Nop())
	persister.now = func() time.Time { return fixedNow }
	o := NewOrchestrator(rec, persister, registry, testBucket, model.DefaultMaxAttempts, zerolog.Nop())
	return o, registry
}

func flacSubmission() *model.SubmissionRequest {
	return &model.SubmissionRequest{
		UID:      "u1",
		FileName: "a.flac",
		FileType: "audio/flac",
		FilePath: "audio/u1/a.flac",
	}
}

func TestProcessSuccess(t *testing.T) {
	rec := &fakeRecognizer{outcomes: []dispatchOutcome{{resp: singleUtterance("សួស្តី")}}}
	docs := &fakeDocStore{}
	blobs := &fakeBlobStore{}
	o, registry := newTestOrchestrator(rec, docs, blobs)

	sub := flacSubmission()
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusTranscriptionProcessed {
		t.Fatalf("Process() = %s, want %s", status, model.StatusTranscriptionProcessed)
	}
	if len(rec.requests) != 1 {
		t.Fatalf("dispatches = %d, want 1", len(rec.requests))
	}
	if rec.apis[0] != model.APIV1P1Beta {
		t.Errorf("api = %q, want %q", rec.apis[0], model.APIV1P1Beta)
	}

	wantDoc := "users/u1/transcripts/a.flac-at-20240102t030405"
	if len(docs.sets) != 1 || docs.sets[0].path != wantDoc {
		t.Fatalf("stored docs = %+v, want one at %q", docs.sets, wantDoc)
	}
	if docs.sets[0].fields["transaction_id"] != "op-1" {
		t.Errorf("transaction_id = %v, want op-1", docs.sets[0].fields["transaction_id"])
	}

	if len(blobs.deleted) != 1 || blobs.deleted[0] != "audio/u1/a.flac" {
		t.Errorf("deleted blobs = %v, want the submission blob", blobs.deleted)
	}

	got, _ := registry.Get(tracked.ID)
	if got.Status != model.StatusTranscriptionProcessed {
		t.Errorf("tracked status = %s, want processed", got.Status)
	}
	if got.DocPath != wantDoc {
		t.Errorf("tracked doc path = %q, want %q", got.DocPath, wantDoc)
	}
}

func TestProcessUnsupportedFileType(t *testing.T) {
	rec := &fakeRecognizer{}
	docs := &fakeDocStore{}
	blobs := &fakeBlobStore{}
	o, registry := newTestOrchestrator(rec, docs, blobs)

	sub := &model.SubmissionRequest{
		UID:      "u1",
		FileName: "a.ogg",
		FileType: "audio/ogg",
		FilePath: "audio/u1/a.ogg",
	}
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusServerError {
		t.Fatalf("Process() = %s, want %s", status, model.StatusServerError)
	}
	if len(rec.requests) != 0 {
		t.Error("no recognition should be dispatched for an unsupported type")
	}
	if len(docs.sets) != 0 || len(blobs.deleted) != 0 {
		t.Error("no side effects expected on validation failure")
	}

	got, _ := registry.Get(tracked.ID)
	if got.Error == "" || !strings.Contains(got.Error, "not allowed") {
		t.Errorf("tracked error = %q, want unsupported file type message", got.Error)
	}
}

func TestProcessAmbiguousAudioSource(t *testing.T) {
	rec := &fakeRecognizer{}
	o, registry := newTestOrchestrator(rec, &fakeDocStore{}, &fakeBlobStore{})

	sub := flacSubmission()
	sub.Content = "Zmxh..."
	tracked := registry.Add(sub)

	if status := o.Process(context.Background(), tracked.ID, sub); status != model.StatusServerError {
		t.Fatalf("Process() = %s, want %s", status, model.StatusServerError)
	}
	if len(rec.requests) != 0 {
		t.Error("ambiguous submissions must abort before dispatch")
	}
}

func TestProcessChannelMismatchRetry(t *testing.T) {
	rec := &fakeRecognizer{outcomes: []dispatchOutcome{
		{err: channelMismatchErr()},
		{resp: singleUtterance("ជំរាបសួរ")},
	}}
	docs := &fakeDocStore{}
	o, registry := newTestOrchestrator(rec, docs, &fakeBlobStore{})

	sub := flacSubmission()
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusTranscriptionProcessed {
		t.Fatalf("Process() = %s, want success after channel retry", status)
	}
	if len(rec.requests) != 2 {
		t.Fatalf("dispatches = %d, want 2", len(rec.requests))
	}
	if rec.requests[0].Config.AudioChannelCount != 0 {
		t.Error("first attempt must request mono")
	}
	if rec.requests[1].Config.AudioChannelCount != 2 || !rec.requests[1].Config.EnableSeparateRecognitionPerChannel {
		t.Error("retry must request two-channel separate recognition")
	}
	// Transaction id comes from the successful attempt.
	if docs.sets[0].fields["transaction_id"] != "op-2" {
		t.Errorf("transaction_id = %v, want op-2", docs.sets[0].fields["transaction_id"])
	}
}

func TestProcessChannelMismatchSaturates(t *testing.T) {
	rec := &fakeRecognizer{outcomes: []dispatchOutcome{
		{err: channelMismatchErr()},
		{err: channelMismatchErr()},
	}}
	docs := &fakeDocStore{}
	o, registry := newTestOrchestrator(rec, docs, &fakeBlobStore{})

	sub := flacSubmission()
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusTranscribingError {
		t.Fatalf("Process() = %s, want %s", status, model.StatusTranscribingError)
	}
	if len(rec.requests) != 2 {
		t.Fatalf("dispatches = %d, want attempt counter saturated at 2", len(rec.requests))
	}
	if len(docs.sets) != 0 {
		t.Error("no document may be written on failure")
	}
}

func TestProcessInternalFaultRetriesUnchanged(t *testing.T) {
	rec := &fakeRecognizer{outcomes: []dispatchOutcome{
		{err: internalErr()},
		{err: internalErr()},
	}}
	docs := &fakeDocStore{}
	blobs := &fakeBlobStore{}
	o, registry := newTestOrchestrator(rec, docs, blobs)

	sub := flacSubmission()
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusTranscribingError {
		t.Fatalf("Process() = %s, want %s", status, model.StatusTranscribingError)
	}
	if len(rec.requests) != 2 {
		t.Fatalf("dispatches = %d, want 2", len(rec.requests))
	}
	if rec.requests[0] != rec.requests[1] {
		t.Error("internal-fault retry must redispatch the identical request")
	}
	if len(docs.sets) != 0 || len(blobs.deleted) != 0 {
		t.Error("no document or cleanup on terminal failure")
	}

	got, _ := registry.Get(tracked.ID)
	if got.Status != model.StatusTranscribingError {
		t.Errorf("tracked status = %s, want transcribing-error", got.Status)
	}
}

func TestProcessFatalRecognitionError(t *testing.T) {
	rec := &fakeRecognizer{outcomes: []dispatchOutcome{
		{err: channelMismatchErrWithCode(7, "PERMISSION_DENIED")},
	}}
	o, registry := newTestOrchestrator(rec, &fakeDocStore{}, &fakeBlobStore{})

	sub := flacSubmission()
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusTranscribingError {
		t.Fatalf("Process() = %s, want %s", status, model.StatusTranscribingError)
	}
	if len(rec.requests) != 1 {
		t.Errorf("dispatches = %d, non-retryable errors must not retry", len(rec.requests))
	}
}

func TestProcessPersistenceFailureLeavesProcessingTranscription(t *testing.T) {
	rec := &fakeRecognizer{outcomes: []dispatchOutcome{{resp: singleUtterance("text")}}}
	docs := &fakeDocStore{setErr: errSetFailed}
	blobs := &fakeBlobStore{}
	o, registry := newTestOrchestrator(rec, docs, blobs)

	sub := flacSubmission()
	tracked := registry.Add(sub)

	status := o.Process(context.Background(), tracked.ID, sub)

	if status != model.StatusProcessingTranscription {
		t.Fatalf("Process() = %s, want stuck in %s", status, model.StatusProcessingTranscription)
	}
	if len(rec.requests) != 1 {
		t.Error("persistence failure must not be retried")
	}
	if len(blobs.deleted) != 0 {
		t.Error("cleanup must not run when the document write failed")
	}

	got, _ := registry.Get(tracked.ID)
	if got.Status != model.StatusProcessingTranscription {
		t.Errorf("tracked status = %s, want processing-transcription", got.Status)
	}
	if got.Error == "" {
		t.Error("persistence failure should be recorded on the submission")
	}
}
