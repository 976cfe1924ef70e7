// Package netx holds small HTTP client helpers.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBody caps how much of a response body is kept for error
// messages.
const maxResponseBody = 4 << 10

// Response is the outcome of a request that reached the server.
type Response struct {
	StatusCode int
	Body       []byte
}

// PostJSON encodes v as JSON and POSTs it to url. A non-2xx status is not an
// error here; callers map it.
func PostJSON(ctx context.Context, client *http.Client, url string, v any) (*Response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}
