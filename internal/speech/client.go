package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"khmerspeech/internal/gcp"
)

const defaultBaseURL = "https://speech.googleapis.com"

// defaultPollInterval paces the operation status checks. Long-form audio
// takes minutes to transcribe, so polling faster buys nothing.
const defaultPollInterval = 10 * time.Second

// Client calls the Speech-to-Text REST API through an authorized HTTP client.
type Client struct {
	gcp          *gcp.Client
	baseURL      string
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewClient creates a Speech-to-Text client.
func NewClient(gcpClient *gcp.Client, logger zerolog.Logger) *Client {
	return &Client{
		gcp:          gcpClient,
		baseURL:      defaultBaseURL,
		pollInterval: defaultPollInterval,
		logger:       logger.With().Str("component", "speech").Logger(),
	}
}

// Operation is a handle on a dispatched long-running recognition.
type Operation struct {
	client *Client
	api    string
	name   string
}

// Name returns the operation identifier assigned by the recognizer. It
// doubles as the transaction id on the persisted transcript.
func (op *Operation) Name() string {
	return op.name
}

// LongRunningRecognize dispatches a recognition request on the given API
// version and returns a handle for awaiting the result.
func (c *Client) LongRunningRecognize(ctx context.Context, api string, req *RecognitionRequest) (*Operation, error) {
	url := c.gcp.WithKey(fmt.Sprintf("%s/%s/speech:longrunningrecognize", c.baseURL, api))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recognition request: %w", err)
	}

	c.logger.Info().
		Str("api", api).
		Str("encoding", req.Config.Encoding).
		Int("sample_rate", req.Config.SampleRateHertz).
		Bool("separate_channels", req.Config.EnableSeparateRecognitionPerChannel).
		Msg("dispatching long-running recognition")

	var status operationStatus
	if err := c.doJSON(ctx, http.MethodPost, url, bytes.NewReader(body), &status); err != nil {
		return nil, err
	}
	if status.Name == "" {
		return nil, fmt.Errorf("recognizer returned no operation name")
	}

	return &Operation{client: c, api: api, name: status.Name}, nil
}

// Wait polls the operation until it completes, then returns its results or
// the recognition error it failed with. The recognizer enforces its own
// operation lifecycle; no extra timeout is layered on top of ctx.
func (op *Operation) Wait(ctx context.Context) (*LongRunningRecognizeResponse, error) {
	c := op.client
	url := c.gcp.WithKey(fmt.Sprintf("%s/%s/operations/%s", c.baseURL, op.api, op.name))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			var status operationStatus
			if err := c.doJSON(ctx, http.MethodGet, url, nil, &status); err != nil {
				return nil, err
			}
			if !status.Done {
				c.logger.Debug().Str("operation", op.name).Msg("operation still running")
				continue
			}
			if status.Error != nil {
				return nil, &RecognitionError{
					Code:    status.Error.Code,
					Status:  status.Error.Status,
					Message: status.Error.Message,
				}
			}
			if status.Response == nil {
				return nil, fmt.Errorf("operation %s completed without a response", op.name)
			}
			return status.Response, nil
		}
	}
}

// doJSON performs one REST call and decodes the response, converting error
// bodies into RecognitionError values.
func (c *Client) doJSON(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.gcp.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call recognizer: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read recognizer response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var wrapper struct {
			Error *statusError `json:"error"`
		}
		if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Error != nil {
			return &RecognitionError{
				Code:    wrapper.Error.Code,
				Status:  wrapper.Error.Status,
				Message: wrapper.Error.Message,
			}
		}
		return fmt.Errorf("recognizer returned status %d: %s", resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse recognizer response: %w", err)
	}
	return nil
}
