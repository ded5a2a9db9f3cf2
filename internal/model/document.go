package model

import (
	"fmt"
	"time"
)

// CreatedAtLayout is the timestamp format embedded in document keys. Second
// resolution means two completed transcriptions of the same file within the
// same second share a key and the later write wins; accepted risk.
const CreatedAtLayout = "20060102t150405"

// Alternative is one ranked candidate transcription of an utterance.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Utterance is one recognized speech segment with its ranked alternatives,
// best first.
type Utterance struct {
	Alternatives []Alternative `json:"alternatives"`
	ChannelTag   int           `json:"channel_tag,omitempty"`
}

// TranscriptDocument is the persisted result of one successful recognition.
// Documents are written once and never mutated.
type TranscriptDocument struct {
	UID               string
	FileName          string
	FileType          string
	FileSize          int64
	FileLastModified  string
	CreatedAt         string
	Utterances        []Utterance
	TransactionID     string
	CleanedTranscript string
}

// DocKey builds the per-user unique document key, sorted by file name and
// then timestamp so uploads of the same file group together.
func (d *TranscriptDocument) DocKey() string {
	return fmt.Sprintf("%s-at-%s", d.FileName, d.CreatedAt)
}

// Stamp records the creation time used in the document key.
func (d *TranscriptDocument) Stamp(now time.Time) {
	d.CreatedAt = now.Format(CreatedAtLayout)
}

// Fields flattens the document into the map handed to the document store,
// omitting every absent value; the store rejects null-valued fields.
func (d *TranscriptDocument) Fields() map[string]any {
	fields := map[string]any{
		"uid":        d.UID,
		"file_name":  d.FileName,
		"created_at": d.CreatedAt,
	}
	if d.FileType != "" {
		fields["file_type"] = d.FileType
	}
	if d.FileSize > 0 {
		fields["file_size"] = d.FileSize
	}
	if d.FileLastModified != "" {
		fields["file_last_modified"] = d.FileLastModified
	}
	if d.TransactionID != "" {
		fields["transaction_id"] = d.TransactionID
	}
	if d.CleanedTranscript != "" {
		fields["cleaned_transcript"] = d.CleanedTranscript
	}
	if len(d.Utterances) > 0 {
		utterances := make([]any, 0, len(d.Utterances))
		for _, u := range d.Utterances {
			alts := make([]any, 0, len(u.Alternatives))
			for _, a := range u.Alternatives {
				alt := map[string]any{"transcript": a.Transcript}
				if a.Confidence > 0 {
					alt["confidence"] = a.Confidence
				}
				alts = append(alts, alt)
			}
			utterance := map[string]any{"alternatives": alts}
			if u.ChannelTag > 0 {
				utterance["channel_tag"] = u.ChannelTag
			}
			utterances = append(utterances, utterance)
		}
		fields["utterances"] = utterances
	}
	return fields
}
