package model

import (
	"errors"
	"testing"
)

func TestSubmissionValidate(t *testing.T) {
	tests := []struct {
		name    string
		sub     SubmissionRequest
		wantErr error
	}{
		{
			name: "storage reference only",
			sub:  SubmissionRequest{FilePath: "audio/u1/a.flac"},
		},
		{
			name: "inline payload only",
			sub:  SubmissionRequest{Content: "Zmxac..."},
		},
		{
			name:    "both set",
			sub:     SubmissionRequest{FilePath: "audio/u1/a.flac", Content: "Zmxac..."},
			wantErr: ErrAmbiguousAudioSource,
		},
		{
			name:    "neither set",
			sub:     SubmissionRequest{},
			wantErr: ErrMissingAudioSource,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sub.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSubmissionExtension(t *testing.T) {
	tests := []struct {
		fileType string
		want     string
	}{
		{"audio/flac", "flac"},
		{"audio/mp3", "mp3"},
		{"audio/mpeg", "mpeg"},
		{"audio/WAV", "wav"},
		{"video/mp4", "mp4"},
		{"flac", "flac"},
	}

	for _, tc := range tests {
		t.Run(tc.fileType, func(t *testing.T) {
			sub := SubmissionRequest{FileType: tc.fileType}
			if got := sub.Extension(); got != tc.want {
				t.Errorf("Extension() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestOptionsExhausted(t *testing.T) {
	opts := NewRequestOptions()
	if opts.API != APIV1P1Beta {
		t.Errorf("default API = %q, want %q", opts.API, APIV1P1Beta)
	}
	if opts.Exhausted() {
		t.Fatal("fresh options should not be exhausted")
	}

	opts.FailedAttempts++
	if opts.Exhausted() {
		t.Fatal("one failure should leave one attempt in the budget")
	}

	opts.FailedAttempts++
	if !opts.Exhausted() {
		t.Fatal("two failures should exhaust the default budget")
	}
}
