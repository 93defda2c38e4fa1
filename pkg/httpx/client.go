package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a small JSON/form HTTP client shared by the outbound provider
// integrations (translation, LLM extraction).
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StatusError carries a non-2xx response status so callers can classify it.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// PostJSON sends body as JSON and decodes the 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, rawURL string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.post(ctx, rawURL, "application/json", headers, bytes.NewReader(payload), out)
}

// PostForm sends form-encoded values and decodes the 2xx JSON response into out.
func (c *Client) PostForm(ctx context.Context, rawURL string, headers map[string]string, form url.Values, out interface{}) error {
	return c.post(ctx, rawURL, "application/x-www-form-urlencoded", headers, strings.NewReader(form.Encode()), out)
}

func (c *Client) post(ctx context.Context, rawURL, contentType string, headers map[string]string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
