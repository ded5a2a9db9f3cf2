package model

// TranscriptionStatus is the lifecycle stage of a submission. The client sets
// the first two stages while uploading; the server owns the rest.
type TranscriptionStatus string

const (
	StatusUploading               TranscriptionStatus = "uploading"
	StatusUploaded                TranscriptionStatus = "uploaded"
	StatusProcessingFile          TranscriptionStatus = "processing-file"
	StatusTranscribing            TranscriptionStatus = "transcribing"
	StatusProcessingTranscription TranscriptionStatus = "processing-transcription"
	StatusTranscriptionProcessed  TranscriptionStatus = "transcription-processed"
	StatusServerError             TranscriptionStatus = "server-error"
	StatusTranscribingError       TranscriptionStatus = "transcribing-error"
)

// transitions holds the allowed forward edges. The only loop is
// transcribing -> transcribing, used by the retry sub-loop.
var transitions = map[TranscriptionStatus][]TranscriptionStatus{
	StatusUploading:               {StatusUploaded},
	StatusUploaded:                {StatusProcessingFile},
	StatusProcessingFile:          {StatusTranscribing, StatusServerError},
	StatusTranscribing:            {StatusTranscribing, StatusProcessingTranscription, StatusTranscribingError},
	StatusProcessingTranscription: {StatusTranscriptionProcessed},
}

// CanTransitionTo reports whether moving from s to next follows a defined
// edge of the state machine.
func (s TranscriptionStatus) CanTransitionTo(next TranscriptionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s TranscriptionStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Failed reports whether s is one of the two user-visible failure signals.
func (s TranscriptionStatus) Failed() bool {
	return s == StatusServerError || s == StatusTranscribingError
}
