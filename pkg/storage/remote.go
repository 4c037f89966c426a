package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// RemoteStore is a client for a hosted HTTP key-value service. Keys map to
// URL paths; values travel as JSON bodies.
//
// Depending on service version the response body arrives either as a tagged
// envelope {"ok":true,"value":<v>} or as the raw value itself. Both shapes are
// normalized to the plain value before returning, so callers never see the
// envelope.
type RemoteStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRemoteStore creates a remote store client for the given base URL.
// The token may be empty when the service embeds auth in the URL.
func NewRemoteStore(baseURL, token string) *RemoteStore {
	return &RemoteStore{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs a request against the remote service and returns the body
func (s *RemoteStore) do(ctx context.Context, method, key string, body io.Reader) ([]byte, int, error) {
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(key))

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return b, resp.StatusCode, nil
}

// Get retrieves the value stored under a key, or nil if the key is absent
func (s *RemoteStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	body, status, err := s.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, fmt.Errorf("remote get '%s' failed: %w", key, err)
	}

	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("remote get '%s' failed: status %d: %s", key, status, string(body))
	}

	return normalizeEnvelope(body), nil
}

// Set stores or replaces the value under a key
func (s *RemoteStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	body, status, err := s.do(ctx, http.MethodPost, key, bytes.NewReader(value))
	if err != nil {
		return fmt.Errorf("remote set '%s' failed: %w", key, err)
	}

	if status < 200 || status >= 300 {
		return fmt.Errorf("remote set '%s' failed: status %d: %s", key, status, string(body))
	}

	return nil
}

// Delete removes the record stored under a key
func (s *RemoteStore) Delete(ctx context.Context, key string) error {
	body, status, err := s.do(ctx, http.MethodDelete, key, nil)
	if err != nil {
		return fmt.Errorf("remote delete '%s' failed: %w", key, err)
	}

	if status == http.StatusNotFound {
		return nil
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("remote delete '%s' failed: status %d: %s", key, status, string(body))
	}

	return nil
}

// normalizeEnvelope unwraps a tagged {"ok":true,"value":<v>} success envelope
// into the plain value. Anything else passes through untouched.
func normalizeEnvelope(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return body
	}

	ok := parsed.Get("ok")
	value := parsed.Get("value")
	if ok.Exists() && ok.Bool() && value.Exists() {
		return json.RawMessage(value.Raw)
	}

	return body
}
