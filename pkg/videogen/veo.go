package videogen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultVeoModel is the default model for the Veo backend.
const DefaultVeoModel = "veo-3.0-generate-001"

const veoBackendName = "veo"

// veoSeconds are the clip lengths Veo accepts.
var veoSeconds = []int{4, 6, 8}

// VeoBackend generates videos with Google Veo through the Gemini API. It
// can stand in for the SDK interface as the primary.
type VeoBackend struct {
	client     *genai.Client
	apiKey     string
	httpClient *http.Client
}

// VeoOption configures a VeoBackend.
type VeoOption func(*veoConfig)

type veoConfig struct {
	baseURL    string
	httpClient *http.Client
}

// WithVeoBaseURL overrides the Gemini API endpoint.
func WithVeoBaseURL(u string) VeoOption {
	return func(c *veoConfig) {
		c.baseURL = u
	}
}

// WithVeoHTTPClient sets the HTTP client for API calls and downloads.
func WithVeoHTTPClient(hc *http.Client) VeoOption {
	return func(c *veoConfig) {
		c.httpClient = hc
	}
}

// NewVeoBackend creates a Veo backend for the Gemini API.
func NewVeoBackend(ctx context.Context, apiKey string, opts ...VeoOption) (*VeoBackend, error) {
	if err := RequireAPIKey(apiKey, "GOOGLE_API_KEY or GEMINI_API_KEY"); err != nil {
		return nil, err
	}
	cfg := veoConfig{httpClient: http.DefaultClient}
	for _, o := range opts {
		o(&cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient,
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("genai client: %v", err)}
	}
	return &VeoBackend{client: client, apiKey: apiKey, httpClient: cfg.httpClient}, nil
}

func (v *VeoBackend) Name() string { return veoBackendName }

// Submit starts a long-running GenerateVideos operation. A reference image
// becomes the first frame.
func (v *VeoBackend) Submit(ctx context.Context, p *Params) (*Job, error) {
	var img *genai.Image
	if p.Image != nil {
		img = &genai.Image{ImageBytes: p.Image.Data, MIMEType: p.Image.MIMEType}
	}
	op, err := v.client.Models.GenerateVideos(ctx, p.Model, p.Prompt, img, veoConfigFor(p))
	if err != nil {
		return nil, veoError(err)
	}
	if op == nil || op.Name == "" {
		return nil, &RemoteError{Backend: veoBackendName, Kind: RemoteProtocol, Message: "operation has no name"}
	}
	return &Job{ID: op.Name, Backend: veoBackendName}, nil
}

func veoConfigFor(p *Params) *genai.GenerateVideosConfig {
	aspect := "16:9"
	if p.Resolution.Portrait() {
		aspect = "9:16"
	}
	res := "720p"
	if min(p.Resolution.Width, p.Resolution.Height) >= 1080 {
		res = "1080p"
	}
	return &genai.GenerateVideosConfig{
		NumberOfVideos:  1,
		DurationSeconds: genai.Ptr(int32(closest(veoSeconds, p.DurationSeconds))),
		AspectRatio:     aspect,
		Resolution:      res,
	}
}

// Poll fetches the operation by name.
func (v *VeoBackend) Poll(ctx context.Context, job *Job) (*JobState, error) {
	op, err := v.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: job.ID}, nil)
	if err != nil {
		return nil, veoError(err)
	}
	return veoState(job, op), nil
}

// veoState maps an operation snapshot to a JobState.
func veoState(job *Job, op *genai.GenerateVideosOperation) *JobState {
	if len(op.Error) > 0 {
		reason := fmt.Sprint(op.Error["message"])
		if op.Error["message"] == nil {
			reason = fmt.Sprint(op.Error)
		}
		return &JobState{Status: StatusFailed, Progress: -1, Reason: reason}
	}
	if !op.Done {
		return &JobState{Status: StatusRunning, Progress: -1}
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		reason := "no video returned"
		if op.Response != nil && len(op.Response.RAIMediaFilteredReasons) > 0 {
			reason = "filtered: " + strings.Join(op.Response.RAIMediaFilteredReasons, "; ")
		}
		return &JobState{Status: StatusFailed, Progress: 100, Reason: reason}
	}
	video := op.Response.GeneratedVideos[0].Video
	return &JobState{
		Status:   StatusSucceeded,
		Progress: 100,
		Artifact: &Artifact{
			JobID:    job.ID,
			URL:      video.URI,
			Data:     video.VideoBytes,
			MIMEType: video.MIMEType,
		},
	}
}

// Download fetches the video URI with the API key.
func (v *VeoBackend) Download(ctx context.Context, art *Artifact) (io.ReadCloser, error) {
	if art.URL == "" {
		return nil, &RemoteError{Backend: veoBackendName, Kind: RemoteProtocol, Message: "video has neither bytes nor uri"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, art.URL, nil)
	if err != nil {
		return nil, &RemoteError{Backend: veoBackendName, Kind: RemoteProtocol, Message: "bad video uri", Err: err}
	}
	req.Header.Set("x-goog-api-key", v.apiKey)
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Backend: veoBackendName, Kind: RemoteNetwork, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &RemoteError{
			Backend:    veoBackendName,
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    "download video: " + resp.Status,
		}
	}
	return resp.Body, nil
}

// ListModels lists the Gemini API models, without the "models/" prefix.
func (v *VeoBackend) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	for m, err := range v.client.Models.All(ctx) {
		if err != nil {
			return nil, veoError(err)
		}
		ids = append(ids, strings.TrimPrefix(m.Name, "models/"))
	}
	return ids, nil
}

func veoError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteError{
			Backend:    veoBackendName,
			Kind:       kindForStatus(apiErr.Code),
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &RemoteError{Backend: veoBackendName, Kind: RemoteNetwork, Err: err}
}

// closest returns the element of allowed nearest to d, preferring the
// smaller on ties. Non-positive d maps to the smallest.
func closest(allowed []int, d int) int {
	if d <= 0 {
		return allowed[0]
	}
	best := allowed[0]
	for _, s := range allowed[1:] {
		if abs(s-d) < abs(best-d) {
			best = s
		}
	}
	return best
}

var (
	_ Backend     = (*VeoBackend)(nil)
	_ ModelLister = (*VeoBackend)(nil)
)
