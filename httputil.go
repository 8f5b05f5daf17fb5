package stockchat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contains http utils to deal with the backend

// RequestIDHeader carries a unique id per request, for correlation with the
// backend logs.
const RequestIDHeader = "X-Request-ID"

// maxBody bounds the size of a backend response.
const maxBody = 4 << 20

// loggingTransport tags and logs every round trip.
type loggingTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		// RoundTrip must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	var ev *zerolog.Event
	if err != nil {
		ev = t.log.Warn().Err(err)
	} else {
		ev = t.log.Debug().Int("status", resp.StatusCode)
	}
	ev.Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Dur("elapsed", time.Since(start)).
		Msg("backend round trip")
	return resp, err
}

// HTTPError is returned when the backend answers with a non 2xx status.
type HTTPError struct {
	Code    int
	Status  string
	Message string // backend provided message, if any
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %s", e.Status)
}

// jget performs an HTTP GET request and unmarshals the JSON response into the
// provided data structure.
func jget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return jdo(client, req, data)
}

// jpost marshals body as JSON, POSTs it, and unmarshals the JSON response into
// the provided data structure.
func jpost(ctx context.Context, client *http.Client, addr string, body, data any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return jdo(client, req, data)
}

func jdo(client *http.Client, req *http.Request, data any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach backend: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("cannot read backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &HTTPError{Code: resp.StatusCode, Status: resp.Status}
		var env statusResponse
		if json.Unmarshal(content, &env) == nil {
			herr.Message = env.Message
		}
		return herr
	}
	if err := json.Unmarshal(content, data); err != nil {
		return fmt.Errorf("cannot parse backend response from %v: %w", req.URL.Path, err)
	}
	return nil
}
