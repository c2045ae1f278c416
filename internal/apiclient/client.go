package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/AditthyaSS/VulnExplain/internal/api"
	"github.com/AditthyaSS/VulnExplain/internal/models"
)

const (
	// DefaultTimeout bounds a single audit or report request.
	DefaultTimeout = 120 * time.Second

	// ReportFilename is the name the generated report is saved under.
	ReportFilename = "VulnExplain-Security-Report.pdf"

	maxReportBytes = 50 << 20 // 50 MiB
	maxErrorBytes  = 64 << 10
)

// ErrNotConfigured is returned by a nil client.
var ErrNotConfigured = errors.New("audit service URL is not configured")

// APIError is a non-2xx answer from the audit service.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
}

// Client talks to the audit service and report generator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	now        func() time.Time
}

// New creates an API client. Returns nil if baseURL is empty.
func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "audit-service",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			// Rejected input says nothing about the health of the service.
			IsSuccessful: func(err error) bool {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					return apiErr.StatusCode < 500
				}
				return err == nil
			},
		}),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// BaseURL returns the service root the client sends to.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// auditRequest is the body for POST /api/audit.
type auditRequest struct {
	CodeSnippet string `json:"code_snippet"`
	Language    string `json:"language"`
}

// AuditCode submits a code snippet for audit.
func (c *Client) AuditCode(ctx context.Context, code, language string) (*models.AuditResult, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if err := api.ValidateSnippet(code); err != nil {
		return nil, err
	}
	if language == "" {
		language = api.DefaultLanguage
	}

	body, err := json.Marshal(auditRequest{CodeSnippet: code, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshal audit request: %w", err)
	}

	return c.audit(ctx, "/api/audit", "application/json", body)
}

// AuditRepo submits a public GitHub repository for audit.
func (c *Client) AuditRepo(ctx context.Context, githubURL string) (*models.AuditResult, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if _, err := api.ParseGitHubURL(githubURL); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("github_url", strings.TrimSpace(githubURL)); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	return c.audit(ctx, "/api/audit-repo", w.FormDataContentType(), buf.Bytes())
}

// AuditFile uploads a single source file for audit.
func (c *Client) AuditFile(ctx context.Context, filename string, content []byte) (*models.AuditResult, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if err := api.ValidateUpload(filename, content); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	return c.audit(ctx, "/api/audit-repo", w.FormDataContentType(), buf.Bytes())
}

func (c *Client) audit(ctx context.Context, path, contentType string, body []byte) (*models.AuditResult, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.post(ctx, path, contentType, body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		var result models.AuditResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode audit result: %w", err)
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}

	result := out.(*models.AuditResult)
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = c.now()
	}
	return result, nil
}

// GenerateReport asks the report generator for a PDF of result.
func (c *Client) GenerateReport(ctx context.Context, result *models.AuditResult) ([]byte, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	if result == nil {
		return nil, errors.New("no audit result to report on")
	}

	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal audit result: %w", err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.post(ctx, "/api/generate-report", "application/json", body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		if len(data) > maxReportBytes {
			return nil, fmt.Errorf("report exceeds %d bytes", maxReportBytes)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return out.([]byte), nil
}

// Ping checks that the audit service answers on its root endpoint and
// returns the greeting it sends.
func (c *Client) Ping(ctx context.Context) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request /api/: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBytes)).Decode(&body)
	return body.Message, nil
}

// post sends a request and returns the response for 2xx status codes.
// Any other status is turned into an *APIError and the body is closed.
func (c *Client) post(ctx context.Context, path, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	return resp, nil
}

// readDetail extracts the "detail" field of an error body. Non-string
// details are returned as raw JSON.
func readDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBytes))

	var errResp map[string]json.RawMessage
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}
	raw, ok := errResp["detail"]
	if !ok {
		return ""
	}

	var detail string
	if err := json.Unmarshal(raw, &detail); err == nil {
		return detail
	}
	return string(raw)
}
