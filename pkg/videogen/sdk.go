package videogen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const sdkBackendName = "sdk"

// SDKBackend drives the video endpoint through the official OpenAI Go SDK.
// It is the primary interface. SDK releases without video support answer
// 404, which surfaces as RemoteUnsupported and triggers the fallback.
type SDKBackend struct {
	client *openai.Client
}

// SDKOption configures an SDKBackend.
type SDKOption func(*sdkConfig)

type sdkConfig struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// WithSDKBaseURL points the SDK at another OpenAI-compatible base URL.
func WithSDKBaseURL(u string) SDKOption {
	return func(c *sdkConfig) {
		c.baseURL = u
	}
}

// WithSDKHTTPClient sets the HTTP client used by the SDK.
func WithSDKHTTPClient(hc *http.Client) SDKOption {
	return func(c *sdkConfig) {
		c.httpClient = hc
	}
}

// WithSDKRetry sets the SDK's own retry count.
func WithSDKRetry(n int) SDKOption {
	return func(c *sdkConfig) {
		c.maxRetries = n
	}
}

// NewSDKBackend creates the SDK interface.
func NewSDKBackend(apiKey string, opts ...SDKOption) *SDKBackend {
	cfg := sdkConfig{
		httpClient: http.DefaultClient,
		maxRetries: DefaultHTTPRetries,
	}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)
	return &SDKBackend{client: &client}
}

func (s *SDKBackend) Name() string { return sdkBackendName }

type sdkVideo struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Progress *float64 `json:"progress"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Submit creates a video with the bucketed duration and mapped size. A
// reference image is sent as multipart input_reference.
func (s *SDKBackend) Submit(ctx context.Context, p *Params) (*Job, error) {
	body := map[string]string{
		"model":   p.Model,
		"prompt":  p.Prompt,
		"seconds": strconv.Itoa(p.Seconds),
		"size":    p.Size,
	}
	var (
		v   sdkVideo
		err error
	)
	if p.Image != nil {
		var form *bytes.Buffer
		var contentType string
		form, contentType, err = multipartBody(body, p.Image)
		if err != nil {
			return nil, &RemoteError{Backend: sdkBackendName, Kind: RemoteProtocol, Message: "encode multipart body", Err: err}
		}
		err = s.client.Post(ctx, "videos", nil, &v, option.WithRequestBody(contentType, form))
	} else {
		err = s.client.Post(ctx, "videos", body, &v)
	}
	if err != nil {
		return nil, sdkError(err)
	}
	if v.ID == "" {
		return nil, &RemoteError{Backend: sdkBackendName, Kind: RemoteProtocol, Message: "create response has no video id"}
	}
	return &Job{ID: v.ID, Backend: sdkBackendName}, nil
}

func multipartBody(fields map[string]string, img *Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, k := range []string{"model", "prompt", "seconds", "size"} {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="input_reference"; filename=%q`, img.Name))
	h.Set("Content-Type", img.MIMEType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// Poll retrieves the video object.
func (s *SDKBackend) Poll(ctx context.Context, job *Job) (*JobState, error) {
	var v sdkVideo
	if err := s.client.Get(ctx, "videos/"+url.PathEscape(job.ID), nil, &v); err != nil {
		return nil, sdkError(err)
	}
	status, err := ParseJobStatus(v.Status)
	if err != nil {
		return nil, &RemoteError{Backend: sdkBackendName, Kind: RemoteProtocol, Message: err.Error()}
	}
	st := &JobState{Status: status, Progress: -1}
	if v.Progress != nil {
		st.Progress = int(*v.Progress)
	}
	switch status {
	case StatusSucceeded:
		st.Artifact = &Artifact{JobID: job.ID, MIMEType: "video/mp4"}
	case StatusFailed:
		if v.Error != nil {
			st.Reason = firstNonEmpty(v.Error.Message, v.Error.Code)
		}
	}
	return st, nil
}

// Download streams videos/{id}/content.
func (s *SDKBackend) Download(ctx context.Context, art *Artifact) (io.ReadCloser, error) {
	var resp *http.Response
	err := s.client.Get(ctx, "videos/"+url.PathEscape(art.JobID)+"/content", nil, &resp,
		option.WithHeader("Accept", "application/binary"))
	if err != nil {
		return nil, sdkError(err)
	}
	return resp.Body, nil
}

// ListModels lists every model id visible to the key.
func (s *SDKBackend) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		ids = append(ids, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, sdkError(err)
	}
	return ids, nil
}

// sdkError maps SDK failures to RemoteError.
func sdkError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &RemoteError{
			Backend:    sdkBackendName,
			Kind:       kindForStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    msg,
			Err:        err,
		}
	}
	return &RemoteError{Backend: sdkBackendName, Kind: RemoteNetwork, Err: err}
}

var (
	_ Backend     = (*SDKBackend)(nil)
	_ ModelLister = (*SDKBackend)(nil)
)
