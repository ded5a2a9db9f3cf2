package gcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Client wraps an authorized http.Client for Google Cloud REST APIs together
// with the authentication mode it was built with. When APIKey is set the
// caller appends it as the key query parameter; otherwise the underlying
// client injects OAuth2 bearer tokens.
type Client struct {
	HTTP   *http.Client
	APIKey string
}

// NewClient builds an authorized client from keyData, which can be:
//   - an API key (39 characters, starts with "AIzaSy")
//   - a path to a service-account JSON key file
//   - the service-account JSON itself
//   - empty, falling back to application default credentials
func NewClient(ctx context.Context, keyData string) (*Client, error) {
	keyData = strings.TrimSpace(keyData)

	if len(keyData) == 39 && strings.HasPrefix(keyData, "AIzaSy") {
		return &Client{
			HTTP:   &http.Client{Timeout: 90 * time.Second},
			APIKey: keyData,
		}, nil
	}

	if keyData == "" {
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
		return &Client{HTTP: oauth2.NewClient(ctx, creds.TokenSource)}, nil
	}

	jsonData := []byte(keyData)
	if !strings.HasPrefix(keyData, "{") {
		var err error
		jsonData, err = os.ReadFile(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %q: %w", keyData, err)
		}
	}

	creds, err := google.CredentialsFromJSON(ctx, jsonData, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
	}
	return &Client{HTTP: oauth2.NewClient(ctx, creds.TokenSource)}, nil
}

// WithKey appends the API key query parameter when running in API-key mode.
func (c *Client) WithKey(url string) string {
	if c.APIKey == "" {
		return url
	}
	sep := "?"
	if strings.ContainsRune(url, '?') {
		sep = "&"
	}
	return url + sep + "key=" + c.APIKey
}
