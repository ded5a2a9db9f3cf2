package model

import (
	"errors"
	"strings"
)

// Recognition API versions. The beta surface is the one that carries the
// per-channel recognition options, so it is the default.
const (
	APIV1       = "v1"
	APIV1P1Beta = "v1p1beta1"
)

// DefaultMaxAttempts bounds the retry loop for one submission: one spare
// attempt for an internal error plus one for a channel reconfiguration.
const DefaultMaxAttempts = 2

var (
	// ErrAmbiguousAudioSource is returned when a submission carries both a
	// storage path and an inline payload.
	ErrAmbiguousAudioSource = errors.New("submission carries both file_path and inline content")

	// ErrMissingAudioSource is returned when a submission carries neither a
	// storage path nor an inline payload.
	ErrMissingAudioSource = errors.New("submission carries neither file_path nor inline content")
)

// SubmissionRequest describes one user's completed upload. The audio lives
// either in the object store (FilePath) or inline as base64 (Content), never
// both. OriginalFilePath is set when the upload was converted to another
// format before submission and the pre-conversion blob still needs cleanup.
type SubmissionRequest struct {
	UID              string `json:"uid" binding:"required"`
	FileName         string `json:"file_name" binding:"required"`
	FileType         string `json:"file_type" binding:"required"`
	FileSize         int64  `json:"file_size,omitempty"`
	FileLastModified string `json:"file_last_modified,omitempty"`
	FilePath         string `json:"file_path,omitempty"`
	OriginalFilePath string `json:"original_file_path,omitempty"`
	Content          string `json:"content,omitempty"`
}

// Validate enforces the audio-source invariant: exactly one of FilePath and
// Content must be present.
func (s *SubmissionRequest) Validate() error {
	if s.FilePath != "" && s.Content != "" {
		return ErrAmbiguousAudioSource
	}
	if s.FilePath == "" && s.Content == "" {
		return ErrMissingAudioSource
	}
	return nil
}

// Extension derives the bare file extension from the declared MIME type,
// e.g. "audio/flac" -> "flac". The declared type wins over the file name
// suffix because browsers report it from the actual upload.
func (s *SubmissionRequest) Extension() string {
	ext := s.FileType
	if i := strings.IndexByte(ext, '/'); i >= 0 {
		ext = ext[i+1:]
	}
	return strings.ToLower(ext)
}

// RequestOptions is the mutable per-attempt configuration carried through
// retries of a single submission. The orchestrator flips MultipleChannels
// after a channel-mismatch failure and bumps FailedAttempts on every failed
// dispatch.
type RequestOptions struct {
	MultipleChannels bool
	API              string
	FailedAttempts   int
	MaxAttempts      int
	FileExtension    string
}

// NewRequestOptions returns the options every submission starts from.
func NewRequestOptions() *RequestOptions {
	return &RequestOptions{
		API:         APIV1P1Beta,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Exhausted reports whether the retry budget is spent.
func (o *RequestOptions) Exhausted() bool {
	return o.FailedAttempts >= o.MaxAttempts
}
