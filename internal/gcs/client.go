package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"khmerspeech/internal/gcp"
)

const defaultBaseURL = "https://storage.googleapis.com"

// Client talks to the cloud object store's JSON API for one bucket.
type Client struct {
	gcp     *gcp.Client
	baseURL string
	bucket  string
	logger  zerolog.Logger
}

// NewClient creates an object store client bound to bucket.
func NewClient(gcpClient *gcp.Client, bucket string, logger zerolog.Logger) *Client {
	return &Client{
		gcp:     gcpClient,
		baseURL: defaultBaseURL,
		bucket:  bucket,
		logger:  logger.With().Str("component", "gcs").Logger(),
	}
}

// Bucket returns the bucket this client operates on.
func (c *Client) Bucket() string {
	return c.bucket
}

// URI returns the gs:// reference for an object path, the form the
// recognizer accepts as an audio source.
func (c *Client) URI(path string) string {
	return fmt.Sprintf("gs://%s/%s", c.bucket, path)
}

// Delete removes a blob. Deleting an object that is already gone is treated
// as success so cleanup stays idempotent across partial reruns.
func (c *Client) Delete(ctx context.Context, path string) error {
	endpoint := c.gcp.WithKey(fmt.Sprintf("%s/storage/v1/b/%s/o/%s",
		c.baseURL, c.bucket, url.PathEscape(path)))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.gcp.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		c.logger.Debug().Str("path", path).Msg("blob already deleted")
		return nil
	default:
		return fmt.Errorf("object store returned status %d deleting %q", resp.StatusCode, path)
	}
}

// Upload writes a blob at path. Used to stage inline submissions so retries
// can reference the same audio by URI.
func (c *Client) Upload(ctx context.Context, path, contentType string, body io.Reader) error {
	endpoint := c.gcp.WithKey(fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		c.baseURL, c.bucket, url.QueryEscape(path)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.gcp.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload blob %q: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("object store returned status %d uploading %q: %s", resp.StatusCode, path, data)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
