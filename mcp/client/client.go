package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mcp-http-test/mcp/types"
)

// Client posts requests to a running server.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New returns a client for the endpoint at url, e.g. http://127.0.0.1:8765/mcp.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call sends req and decodes the response. Protocol errors are carried in the
// returned Response; only transport and decoding failures return an error.
func (c *Client) Call(ctx context.Context, req types.Request) (types.Response, int, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return types.Response{}, 0, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return types.Response{}, 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return types.Response{}, 0, fmt.Errorf("post %s: %w", c.url, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return types.Response{}, httpResp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	var resp types.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.Response{}, httpResp.StatusCode, fmt.Errorf("decode response (status %d): %w", httpResp.StatusCode, err)
	}
	return resp, httpResp.StatusCode, nil
}
