package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dgellow/nexusquery/internal/idp"
	"github.com/dgellow/nexusquery/internal/ioutil"
	"github.com/dgellow/nexusquery/internal/log"
	"github.com/dgellow/nexusquery/internal/urlutil"
)

// ErrNotInitialized is returned by every call made before bootstrap completes.
var ErrNotInitialized = errors.New("not initialized yet")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	// Detail is the backend's "detail" field, if it sent one.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Backend is the slice of application state a call needs.
type Backend interface {
	Backend() (apiURL string, current *idp.Session, ready bool)
}

// Client is the backend call gateway. Every call makes exactly one attempt.
type Client struct {
	state      Backend
	httpClient *http.Client
}

// New creates a gateway over state. A nil httpClient gets a client with the
// given timeout.
func New(state Backend, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{state: state, httpClient: httpClient}
}

// Call sends method to endpoint, relative to the backend URL. A non-nil body
// is sent as JSON; a 2xx JSON response is decoded into out when out is
// non-nil. The current session's ID token, if any, is attached as a bearer
// token.
func (c *Client) Call(ctx context.Context, endpoint, method string, body, out any) error {
	apiURL, current, ready := c.state.Backend()
	if !ready {
		return ErrNotInitialized
	}

	target, err := urlutil.Endpoint(apiURL, endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	if current != nil {
		token, err := current.IDToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogDebugWithFields("client", "Backend request failed", map[string]any{
			"method":    method,
			"endpoint":  endpoint,
			"requestId": requestID,
			"error":     err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadBody(resp.Body, ioutil.MaxResponseBody)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	log.LogDebugWithFields("client", "Backend request completed", map[string]any{
		"method":    method,
		"endpoint":  endpoint,
		"status":    resp.StatusCode,
		"requestId": requestID,
		"duration":  time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: detailOf(data)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var decoded any = &json.RawMessage{}
	if out != nil {
		decoded = out
	}
	if err := json.Unmarshal(data, decoded); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// detailOf extracts a string "detail" field from an error body.
func detailOf(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		// Validation errors carry structured detail; show it verbatim
		return string(body.Detail)
	}
	return detail
}
