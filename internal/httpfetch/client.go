// Package httpfetch downloads subscription feeds. webcal:// and
// webcals:// URLs, common in published calendar links, are fetched over
// plain HTTP(S).
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one feed download.
const DefaultTimeout = 30 * time.Second

// Client fetches feed documents.
type Client struct {
	httpClient *http.Client
}

// New creates a client. A zero timeout means DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// NormalizeURL maps the webcal scheme aliases onto their HTTP
// equivalents. Other URLs pass through untouched.
func NormalizeURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "webcals://"):
		return "https://" + strings.TrimPrefix(raw, "webcals://")
	case strings.HasPrefix(raw, "webcal://"):
		return "http://" + strings.TrimPrefix(raw, "webcal://")
	default:
		return raw
	}
}

// FetchText downloads the document at url and returns its body. Non-2xx
// responses are errors.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeURL(url), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
