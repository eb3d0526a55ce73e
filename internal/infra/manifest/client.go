package manifest

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// ErrUnexpectedStatus is returned for non-2xx manifest responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

const defaultTimeout = 10 * time.Second

// Client fetches a manifest over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

// Config represents manifest client configuration.
type Config struct {
	URL     string
	Timeout time.Duration
}

// NewClient creates a new manifest client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("manifest URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Fetch retrieves and parses the manifest.
func (c *Client) Fetch(ctx context.Context) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "GET %s: %d", c.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	m, err := Parse(body)
	if err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("manifest: fetched: url=%s songs=%d", c.url, len(m.Songs))
	return m, nil
}

// ReadFile reads and parses a manifest from disk.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	return Parse(data)
}
