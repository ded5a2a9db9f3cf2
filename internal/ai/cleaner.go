// Package ai post-processes raw recognizer transcripts with OpenAI. The
// cleanup is strictly best-effort; callers fall back to the raw transcript on
// any failure.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an assistant that cleans up Khmer speech-to-text output.
Fix obvious recognition mistakes, restore punctuation and sentence boundaries,
and keep loanwords and proper names as spoken. Do not summarize, translate, or
add content; preserve the speaker's wording and intent. Reply with the cleaned
transcript only.`

// Cleaner cleans transcripts through the OpenAI chat completion API.
type Cleaner struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewCleaner creates a transcript cleaner. The small 4o model is enough for
// punctuation and recognition-error repair.
func NewCleaner(apiKey string, logger zerolog.Logger) *Cleaner {
	return &Cleaner{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
		logger: logger.With().Str("component", "cleaner").Logger(),
	}
}

// Clean returns a cleaned version of transcript.
func (c *Cleaner) Clean(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("empty transcript")
	}

	c.logger.Debug().Int("length", len(transcript)).Msg("cleaning transcript")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	cleaned := strings.TrimSpace(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return "", fmt.Errorf("empty completion returned")
	}
	return cleaned, nil
}
