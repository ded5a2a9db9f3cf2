package speech

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RetryClass
	}{
		{
			name: "wav header reports two channels",
			err: &RecognitionError{
				Code:    CodeInvalidArgument,
				Status:  "INVALID_ARGUMENT",
				Message: "Must use single channel (mono) audio, but WAV header indicates 2 channels.",
			},
			want: RetryWithMultipleChannels,
		},
		{
			name: "invalid audio channel count",
			err: &RecognitionError{
				Code:    CodeInvalidArgument,
				Message: "Invalid audio channel count",
			},
			want: RetryWithMultipleChannels,
		},
		{
			name: "other invalid argument is fatal",
			err: &RecognitionError{
				Code:    CodeInvalidArgument,
				Message: "sample_rate_hertz must match the header",
			},
			want: RetryNone,
		},
		{
			name: "internal fault retries unchanged",
			err:  &RecognitionError{Code: CodeInternal, Status: "INTERNAL", Message: "Internal error encountered."},
			want: RetrySameRequest,
		},
		{
			name: "permission denied is fatal",
			err:  &RecognitionError{Code: 7, Status: "PERMISSION_DENIED", Message: "caller lacks permission"},
			want: RetryNone,
		},
		{
			name: "wrapped recognition error still classifies",
			err:  fmt.Errorf("attempt failed: %w", &RecognitionError{Code: CodeInternal, Message: "internal"}),
			want: RetrySameRequest,
		},
		{
			name: "unrelated error is fatal",
			err:  errors.New("connection reset"),
			want: RetryNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}
