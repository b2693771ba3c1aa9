package clients

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

	"github.com/yashrajoria/storefront/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpstreamError is a non-2xx answer from the backend.
type UpstreamError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: status=%d body=%s", e.StatusCode, e.Body)
}

// Requester performs one call against the storefront backend and decodes the
// JSON answer into out (when out is non-nil).
type Requester interface {
	Request(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error
}

// APIClient talks to the storefront REST backend.
type APIClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Do sends the request. body is JSON encoded; a non-empty token is sent as a
// bearer credential.
func (a *APIClient) Do(ctx context.Context, method, path string, query url.Values, body any, token string) (*http.Response, error) {
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := a.client.Do(req)
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		a.logger.Warn("api_request_failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	a.logger.Debug("api_request", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}

func (a *APIClient) Request(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error {
	resp, err := a.Do(ctx, method, path, query, body, token)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, out)
}

// DecodeJSON closes resp and decodes it into out. Status >= 400 becomes an
// *UpstreamError; an empty body or nil out is not an error.
func DecodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    upstreamMessage(body),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	err := json.NewDecoder(resp.Body).Decode(out)
	if err == io.EOF {
		return nil
	}
	return err
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// PathEscape joins segments into a path, escaping each one.
func PathEscape(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
