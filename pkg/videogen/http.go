package videogen

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
)

const (
	// DefaultHTTPBaseURL is the base of the direct video endpoint.
	DefaultHTTPBaseURL = "https://api.openai.com/v1"

	// DefaultHTTPRetries is the number of retries for transient failures.
	DefaultHTTPRetries = 2

	// DefaultRetryBackoff is the first retry delay; it doubles per attempt.
	DefaultRetryBackoff = time.Second

	// DefaultAPITimeout bounds a single API call. Downloads are not bound
	// by it.
	DefaultAPITimeout = 2 * time.Minute

	httpBackendName = "https"
	userAgent       = "vidgen-go/1.0"
)

// HTTPBackend talks to the video endpoint directly over HTTPS with bearer
// auth. It is the secondary interface behind the SDK.
type HTTPBackend struct {
	client     *http.Client
	download   *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	backoff    time.Duration
}

// HTTPOption configures an HTTPBackend.
type HTTPOption func(*HTTPBackend)

// WithHTTPBaseURL sets the API base, e.g. "https://api.openai.com/v1".
func WithHTTPBaseURL(u string) HTTPOption {
	return func(h *HTTPBackend) {
		h.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client. Its Timeout applies to API calls
// only; downloads share the transport and are bounded by their context.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPBackend) {
		h.client = c
	}
}

// WithRetry sets the maximum number of retries for network errors, 429
// and 5xx responses.
func WithRetry(n int) HTTPOption {
	return func(h *HTTPBackend) {
		h.maxRetries = n
	}
}

// WithRetryBackoff sets the delay before the first retry.
func WithRetryBackoff(d time.Duration) HTTPOption {
	return func(h *HTTPBackend) {
		h.backoff = d
	}
}

// NewHTTPBackend creates the direct HTTPS interface.
func NewHTTPBackend(apiKey string, opts ...HTTPOption) *HTTPBackend {
	h := &HTTPBackend{
		baseURL:    DefaultHTTPBaseURL,
		apiKey:     apiKey,
		maxRetries: DefaultHTTPRetries,
		backoff:    DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: DefaultAPITimeout}
	}
	dc := *h.client
	dc.Timeout = 0
	h.download = &dc
	return h
}

func (h *HTTPBackend) Name() string { return httpBackendName }

type httpCreateRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	Duration   int    `json:"duration"`
	Resolution string `json:"resolution"`
}

type httpCreateResponse struct {
	ID     string `json:"id"`
	JobID  string `json:"job_id"`
	TaskID string `json:"task_id"`
}

// Submit posts the request to {base}/videos.
func (h *HTTPBackend) Submit(ctx context.Context, p *Params) (*Job, error) {
	if p.Image != nil {
		return nil, &ValidationError{Field: "input_image", Message: "reference images need the SDK or Veo interface"}
	}
	body := httpCreateRequest{
		Model:      p.Model,
		Prompt:     p.Prompt,
		Duration:   p.DurationSeconds,
		Resolution: p.Resolution.String(),
	}
	var resp httpCreateResponse
	if err := h.request(ctx, http.MethodPost, "/videos", body, &resp); err != nil {
		return nil, err
	}
	id := firstNonEmpty(resp.ID, resp.JobID, resp.TaskID)
	if id == "" {
		return nil, h.protocolError("create response has no job id", nil)
	}
	return &Job{ID: id, Backend: httpBackendName}, nil
}

type httpStatusResponse struct {
	Status    string          `json:"status"`
	State     string          `json:"state"`
	Progress  *float64        `json:"progress"`
	ResultURL string          `json:"result_url"`
	VideoURL  string          `json:"video_url"`
	URL       string          `json:"url"`
	Error     json.RawMessage `json:"error"`
}

// Poll reads {base}/videos/{id}.
func (h *HTTPBackend) Poll(ctx context.Context, job *Job) (*JobState, error) {
	var resp httpStatusResponse
	if err := h.request(ctx, http.MethodGet, "/videos/"+url.PathEscape(job.ID), nil, &resp); err != nil {
		return nil, err
	}
	return h.state(job, &resp)
}

func (h *HTTPBackend) state(job *Job, resp *httpStatusResponse) (*JobState, error) {
	status, err := ParseJobStatus(firstNonEmpty(resp.Status, resp.State))
	if err != nil {
		return nil, h.protocolError(err.Error(), nil)
	}
	st := &JobState{Status: status, Progress: -1}
	if resp.Progress != nil {
		st.Progress = int(*resp.Progress)
	}
	switch status {
	case StatusSucceeded:
		st.Artifact = &Artifact{
			JobID: job.ID,
			URL:   firstNonEmpty(resp.ResultURL, resp.VideoURL, resp.URL),
		}
	case StatusFailed:
		st.Reason = errorText(resp.Error)
	}
	return st, nil
}

// Download fetches the artifact URL, or {base}/videos/{id}/content when
// the job reported none. Credentials are only sent to the API host.
func (h *HTTPBackend) Download(ctx context.Context, art *Artifact) (io.ReadCloser, error) {
	target := art.URL
	if target == "" {
		target = h.baseURL + "/videos/" + url.PathEscape(art.JobID) + "/content"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, h.protocolError("bad artifact url", err)
	}
	if h.sameHost(target) {
		h.setHeaders(req)
	} else {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := h.download.Do(req)
	if err != nil {
		return nil, &RemoteError{Backend: httpBackendName, Kind: RemoteNetwork, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, h.handleErrorResponse(resp)
	}
	return resp.Body, nil
}

// request makes a JSON request with retry on transient failures.
func (h *HTTPBackend) request(ctx context.Context, method, path string, body, result any) error {
	var bodyData []byte
	if body != nil {
		var err error
		bodyData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1x, 2x, 4x, ...
			backoff := h.backoff << uint(attempt-1)
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(backoff):
			}
		}

		err := h.doRequest(ctx, method, path, bodyData, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return err
		}
		if e, ok := AsRemoteError(err); !ok || !e.Retryable() {
			return err
		}
	}
	return lastErr
}

func (h *HTTPBackend) doRequest(ctx context.Context, method, path string, bodyData []byte, result any) error {
	var bodyReader io.Reader
	if bodyData != nil {
		bodyReader = bytes.NewReader(bodyData)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	h.setHeaders(req)
	if bodyData != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return &RemoteError{Backend: httpBackendName, Kind: RemoteNetwork, Err: err}
	}
	defer resp.Body.Close()
	return h.handleResponse(resp, result)
}

func (h *HTTPBackend) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("User-Agent", userAgent)
}

func (h *HTTPBackend) handleResponse(resp *http.Response, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Backend: httpBackendName, Kind: RemoteNetwork, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return h.parseError(body, resp.StatusCode)
	}
	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return h.protocolError("malformed response body", err)
		}
	}
	return nil
}

func (h *HTTPBackend) handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &RemoteError{Backend: httpBackendName, Kind: RemoteNetwork, StatusCode: resp.StatusCode, Err: err}
	}
	return h.parseError(body, resp.StatusCode)
}

// parseError reads {"error": {"message": ...}}, {"error": "..."} or
// {"message": ...}, falling back to the raw body.
func (h *HTTPBackend) parseError(body []byte, status int) error {
	var apiResp struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	msg := ""
	err := json.Unmarshal(body, &apiResp)
	if err == nil {
		msg = firstNonEmpty(errorText(apiResp.Error), apiResp.Message)
	} else {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 512 {
			msg = msg[:512]
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &RemoteError{
		Backend:    httpBackendName,
		Kind:       kindForStatus(status),
		StatusCode: status,
		Message:    msg,
	}
}

func (h *HTTPBackend) protocolError(msg string, err error) error {
	return &RemoteError{Backend: httpBackendName, Kind: RemoteProtocol, Message: msg, Err: err}
}

func (h *HTTPBackend) sameHost(target string) bool {
	base, err1 := url.Parse(h.baseURL)
	u, err2 := url.Parse(target)
	return err1 == nil && err2 == nil && base.Host == u.Host
}

// errorText extracts a message from an error field that is a string or an
// object with message and code.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return string(raw)
	}
	switch {
	case obj.Message != "" && obj.Code != nil:
		return fmt.Sprintf("%s (%v)", obj.Message, obj.Code)
	case obj.Message != "":
		return obj.Message
	case obj.Code != nil:
		return fmt.Sprint(obj.Code)
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ Backend = (*HTTPBackend)(nil)
