// Package upload implements the processing server HTTP client: TOB file
// upload, upload/processing status queries, health checks, and polling
// until a job finishes.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fielax/wizard/internal/logging"
)

// UserAgent identifies this client to the processing server.
const UserAgent = "WIZARD-2.1-Client/1.0"

// Server API endpoints.
const (
	endpointUpload           = "/api/tob/upload"
	endpointUploadStatus     = "/api/tob/status/"
	endpointProcessingStatus = "/api/tob/processing/"
	endpointHealth           = "/api/health"
)

// Timeouts and retry policy, matching the desktop client this replaces.
const (
	requestTimeout = 30 * time.Second
	uploadTimeout  = 300 * time.Second
	healthTimeout  = 5 * time.Second

	maxRetries   = 3
	retryWaitMin = 1 * time.Second
	retryWaitMax = 30 * time.Second
)

// UploadResult reports a successful TOB file upload.
type UploadResult struct {
	JobID   string
	Message string
}

// StatusResult reports the server-side state of an upload or processing
// job. Status is one of "pending", "processing", "completed", "failed";
// Progress, when present, runs from 0 to 100.
type StatusResult struct {
	Status       string
	Progress     *float64
	Message      string
	ResultURL    string
	ErrorMessage string
}

// Done reports whether the job reached a terminal state.
func (r *StatusResult) Done() bool {
	return r.Status == "completed" || r.Status == "failed"
}

// StatusError is a non-2xx server response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned HTTP %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Client talks to the processing server with bearer authentication and a
// retrying transport (3 attempts with backoff on 429 and 5xx responses).
type Client struct {
	baseURL string
	token   string
	rc      *retryablehttp.Client
	upload  *retryablehttp.Client
	log     logging.Logger
}

// Option adjusts a Client at construction.
type Option func(*Client)

// WithTimeouts overrides the request and upload timeouts. Useful in tests
// and for slow links.
func WithTimeouts(request, upload time.Duration) Option {
	return func(c *Client) {
		c.rc.HTTPClient.Timeout = request
		c.upload.HTTPClient.Timeout = upload
	}
}

// NewClient constructs a Client for the given server base URL and bearer
// token. A trailing slash on the base URL is ignored.
func NewClient(baseURL, bearerToken string, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   bearerToken,
		rc:      newRetryClient(requestTimeout),
		upload:  newRetryClient(uploadTimeout),
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func newRetryClient(timeout time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout
	return rc
}

// UploadTOBFile uploads the file at path as multipart form data. Each
// metadata entry becomes a form field named "metadata[<key>]". A missing
// file is reported before any network I/O.
func (c *Client) UploadTOBFile(ctx context.Context, path string, metadata map[string]string) (*UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read TOB file %s: %w", path, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := createFilePart(w, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(fmt.Sprintf("metadata[%s]", k), metadata[k]); err != nil {
			return nil, fmt.Errorf("build multipart body: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpointUpload, body.Bytes())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	c.log.Info(ctx, "uploading TOB file", "file", filepath.Base(path), "size", len(data))

	respBody, err := c.do(c.upload, req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		JobID   string `json:"job_id"`
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse upload response: %w", err)
	}

	jobID := parsed.JobID
	if jobID == "" {
		jobID = parsed.ID
	}
	message := parsed.Message
	if message == "" {
		message = "upload successful"
	}

	return &UploadResult{JobID: jobID, Message: message}, nil
}

// createFilePart adds the file part with the content type the server
// expects for raw TOB data.
func createFilePart(w *multipart.Writer, filename string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "application/octet-stream")
	return w.CreatePart(h)
}

// UploadStatus queries the status of an upload job.
func (c *Client) UploadStatus(ctx context.Context, jobID string) (*StatusResult, error) {
	return c.getStatus(ctx, endpointUploadStatus+jobID)
}

// ProcessingStatus queries the processing status of an uploaded TOB file.
func (c *Client) ProcessingStatus(ctx context.Context, jobID string) (*StatusResult, error) {
	return c.getStatus(ctx, endpointProcessingStatus+jobID)
}

func (c *Client) getStatus(ctx context.Context, endpoint string) (*StatusResult, error) {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(c.rc, req)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status       string   `json:"status"`
		Progress     *float64 `json:"progress"`
		Message      string   `json:"message"`
		ResultURL    string   `json:"result_url"`
		ErrorMessage string   `json:"error_message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse status response: %w", err)
	}
	if parsed.Status == "" {
		parsed.Status = "unknown"
	}

	return &StatusResult{
		Status:       parsed.Status,
		Progress:     parsed.Progress,
		Message:      parsed.Message,
		ResultURL:    parsed.ResultURL,
		ErrorMessage: parsed.ErrorMessage,
	}, nil
}

// HealthCheck reports whether the server answers its health endpoint with
// 200 within a short deadline.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, endpointHealth, nil)
	if err != nil {
		return false
	}

	_, err = c.do(c.rc, req)
	return err == nil
}

// WaitForProcessing polls the processing status every interval until the
// job completes or fails, the context is cancelled, or a query errors.
func (c *Client) WaitForProcessing(ctx context.Context, jobID string, interval time.Duration) (*StatusResult, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.ProcessingStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if status.Done() {
			return status, nil
		}

		c.log.Debug(ctx, "processing not finished", "job_id", jobID, "status", status.Status)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// newRequest builds an authenticated request for the given endpoint. Every
// request carries a fresh X-Request-Id for server-side correlation.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body []byte) (*retryablehttp.Request, error) {
	var rawBody any
	if body != nil {
		rawBody = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint, rawBody)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, endpoint, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	return req, nil
}

// do executes the request and returns the response body. Non-2xx responses
// become a *StatusError carrying the status code and body.
func (c *Client) do(rc *retryablehttp.Client, req *retryablehttp.Request) ([]byte, error) {
	resp, err := rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
