package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/pkg/config"
	"github.com/noah-isme/coursemart-api/pkg/middleware/requestid"
)

const maxResponseBytes = 4 << 20

// CallObserver receives timing for every remote call.
type CallObserver interface {
	ObserveRemoteCall(endpoint, outcome string, duration time.Duration)
}

// APIError is returned when the commerce API answers with a failure payload or status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("commerce api %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("commerce api %s: %s", e.Endpoint, e.Message)
}

// IsAPIError reports whether err carries an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Status is the acknowledgement envelope shared by most endpoints. Some answer
// with {"status":"success"}, others with {"success":true}.
type Status struct {
	Status  string `json:"status"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the payload signals success.
func (s Status) OK() bool {
	if s.Success != nil {
		return *s.Success
	}
	return strings.EqualFold(s.Status, "success")
}

// Reported reports whether the payload carried any status signal at all.
func (s Status) Reported() bool {
	return s.Status != "" || s.Success != nil
}

// Reason returns the best failure description available.
func (s Status) Reason() string {
	if s.Message != "" {
		return s.Message
	}
	if s.Error != "" {
		return s.Error
	}
	if s.Status != "" {
		return s.Status
	}
	return "request failed"
}

// File is an upload part.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Client talks to the remote course/commerce API.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer CallObserver
}

// NewClient builds a commerce API client.
func NewClient(cfg config.CommerceConfig, logger *zap.Logger, observer CallObserver) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		observer: observer,
	}
}

// WithHTTPClient overrides the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// GetJSON issues a GET and decodes the JSON body into dest.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	return c.do(req, path, dest)
}

// PostJSON sends body as JSON and decodes the response into dest.
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, dest)
}

// PostForm sends a form-encoded body and decodes the response into dest.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, path, dest)
}

// PostMultipart uploads a file plus optional fields.
func (c *Client) PostMultipart(ctx context.Context, path string, file File, fields map[string]string, dest interface{}) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("write field %s: %w", key, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, path, dest)
}

func (c *Client) do(req *http.Request, endpoint string, dest interface{}) error {
	req.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(req.Context()); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, "transport_error", start)
		c.logger.Warn("commerce api call failed", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(endpoint, "read_error", start)
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.observe(endpoint, "http_error", start)
		var status Status
		_ = json.Unmarshal(body, &status)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: status.Message}
	}

	c.observe(endpoint, "ok", start)
	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) observe(endpoint, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRemoteCall(endpoint, outcome, time.Since(start))
}

// Check turns a decoded acknowledgement into an error when it signals failure.
func Check(endpoint string, status Status) error {
	if status.OK() {
		return nil
	}
	return &APIError{Endpoint: endpoint, StatusCode: http.StatusOK, Message: status.Reason()}
}
