package speech

import (
	"errors"
	"fmt"
	"strings"
)

// google.rpc canonical codes the retry policy cares about.
const (
	CodeInvalidArgument = 3
	CodeInternal        = 13
)

// UnsupportedFileTypeError is returned when a submission declares a file type
// outside the supported set. It is fatal: the orchestrator never retries it.
type UnsupportedFileTypeError struct {
	FileType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("file type %q is not allowed, only %s", e.FileType, supportedTypesSentence)
}

// RecognitionError is a failure reported by the recognizer, either as an
// HTTP error body or attached to a completed long-running operation.
type RecognitionError struct {
	Code    int
	Status  string
	Message string
}

func (e *RecognitionError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("recognition failed: %s (code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("recognition failed (code %d): %s", e.Code, e.Message)
}

// RetryClass tells the orchestrator how a recognition failure may be retried.
type RetryClass int

const (
	// RetryNone marks fatal failures; the submission moves to
	// transcribing-error.
	RetryNone RetryClass = iota

	// RetryWithMultipleChannels marks channel-count mismatches; the request
	// is rebuilt with two-channel separate recognition and redispatched.
	RetryWithMultipleChannels

	// RetrySameRequest marks transient internal faults; the identical
	// request is redispatched unchanged.
	RetrySameRequest
)

// Classify maps a recognition failure onto a retry class. Classification
// gates on the structured google.rpc code; the message check only splits the
// channel-mismatch case out of INVALID_ARGUMENT because the API exposes no
// finer-grained subcode for it.
func Classify(err error) RetryClass {
	var recErr *RecognitionError
	if !errors.As(err, &recErr) {
		return RetryNone
	}
	switch recErr.Code {
	case CodeInvalidArgument:
		if strings.Contains(strings.ToLower(recErr.Message), "channel") {
			return RetryWithMultipleChannels
		}
		return RetryNone
	case CodeInternal:
		return RetrySameRequest
	default:
		return RetryNone
	}
}
