package speech

import (
	"fmt"
	"strings"

	"khmerspeech/internal/model"
)

// baseVariant is the configuration shared by every supported format: Khmer,
// automatic punctuation, the general long-form model, and three ranked
// alternatives per utterance.
func baseVariant() RecognitionConfig {
	return RecognitionConfig{
		LanguageCode:               "km-KH",
		EnableAutomaticPunctuation: true,
		Model:                      "default",
		MaxAlternatives:            3,
	}
}

// configVariants holds the complete recognition configuration per supported
// file extension. Each variant is built whole rather than overlaid onto a
// shared mutable base so no field leaks between formats.
//
// flac and wav headers self-describe encoding and sample rate; leaving both
// unset avoids the recognizer rejecting the request on a header mismatch.
// mpeg uploads are mp3 streams in practice and share the mp3 variant.
var configVariants = map[string]func() RecognitionConfig{
	"flac": func() RecognitionConfig {
		c := baseVariant()
		c.Encoding = "FLAC"
		return c
	},
	"mp3": func() RecognitionConfig {
		c := baseVariant()
		c.Encoding = "MP3"
		c.SampleRateHertz = 16000
		return c
	},
	"mpeg": func() RecognitionConfig {
		c := baseVariant()
		c.Encoding = "MP3"
		c.SampleRateHertz = 16000
		return c
	},
	"wav": func() RecognitionConfig {
		return baseVariant()
	},
}

var supportedTypesSentence = func() string {
	types := []string{"flac", "mp3", "wav", "mpeg"}
	return strings.Join(types[:len(types)-1], ", ") + ", and " + types[len(types)-1]
}()

// BuildRequest derives the recognition invocation descriptor for one attempt.
// It mutates opts only by recording the derived file extension; the channel
// overlay is read from opts so a retry with MultipleChannels set rebuilds the
// same request with two-channel separate recognition. The transform performs
// no I/O.
func BuildRequest(sub *model.SubmissionRequest, opts *model.RequestOptions, bucket string) (*RecognitionRequest, error) {
	ext := sub.Extension()
	opts.FileExtension = ext

	variant, ok := configVariants[ext]
	if !ok {
		return nil, &UnsupportedFileTypeError{FileType: sub.FileType}
	}
	config := variant()

	var audio RecognitionAudio
	if sub.FilePath != "" {
		audio.URI = fmt.Sprintf("gs://%s/%s", bucket, sub.FilePath)
	} else {
		audio.Content = sub.Content
	}

	if opts.MultipleChannels {
		config.AudioChannelCount = 2
		config.EnableSeparateRecognitionPerChannel = true
	}

	return &RecognitionRequest{Config: config, Audio: audio}, nil
}
