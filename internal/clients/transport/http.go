package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const snippetLimit = 8 << 10

// StatusError is returned when the upstream answers outside the 2xx range.
// Body holds at most 8KiB of the upstream response.
type StatusError struct {
	Url        string
	Status     string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %s: %s: %s", e.Url, e.Status, strings.TrimSpace(string(e.Body)))
}

func Get[r any](h *http.Client, ctx context.Context, url string, headers map[string]string) (r, error) {

	var response r

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response, err
	}

	for key, val := range headers {
		req.Header.Add(key, val)
	}

	resp, err := h.Do(req)
	if err != nil {
		return response, err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, &StatusError{Url: url, Status: resp.Status, StatusCode: resp.StatusCode, Body: snippet(responseBytes)}
	}

	if err := json.Unmarshal(responseBytes, &response); err != nil {
		return response, fmt.Errorf("unmarshal %s: %w: %s", url, err, strings.TrimSpace(string(snippet(responseBytes))))
	}

	return response, nil
}

// Post sends body as JSON and hands back the live response on 2xx. The caller
// owns resp.Body.
func Post(h *http.Client, ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, val := range headers {
		req.Header.Set(key, val)
	}

	resp, err := h.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
		_ = resp.Body.Close()
		return nil, &StatusError{Url: url, Status: resp.Status, StatusCode: resp.StatusCode, Body: b}
	}

	return resp, nil
}

func snippet(b []byte) []byte {
	if len(b) > snippetLimit {
		return b[:snippetLimit]
	}
	return b
}
