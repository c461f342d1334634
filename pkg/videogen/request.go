package videogen

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultModel is used when a request names no model.
	DefaultModel = "sora-2"

	// DefaultDurationSeconds is the CLI default clip length.
	DefaultDurationSeconds = 8

	// DefaultResolution is the CLI default resolution.
	DefaultResolution = "1280x720"

	// MaxDurationSeconds is the longest clip a request may ask for.
	MaxDurationSeconds = 60
)

// Request describes one text-to-video generation.
type Request struct {
	// Prompt is the video description. Required.
	Prompt string `json:"prompt" yaml:"prompt"`

	// DurationSeconds is the requested clip length.
	DurationSeconds int `json:"duration" yaml:"duration"`

	// Resolution is "<width>x<height>", e.g. "1280x720".
	Resolution string `json:"resolution" yaml:"resolution"`

	// Model is the model id. Empty selects the generator default.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// OutputPath is where the video is written: a local path, or a key in
	// the generator's store.
	OutputPath string `json:"output" yaml:"output"`

	// InputImage is the path of an optional reference image.
	InputImage string `json:"input_image,omitempty" yaml:"input_image,omitempty"`

	// Image is a reference image already in memory. It takes precedence
	// over InputImage.
	Image *Image `json:"-" yaml:"-"`
}

// Resolution is a parsed frame size.
type Resolution struct {
	Width  int
	Height int
}

// ParseResolution parses "<width>x<height>" with positive integer
// components. The separator is case-insensitive.
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Resolution{}, fmt.Errorf("%q is not <width>x<height>", s)
	}
	width, err := parseDimension(w)
	if err != nil {
		return Resolution{}, fmt.Errorf("%q: width %w", s, err)
	}
	height, err := parseDimension(h)
	if err != nil {
		return Resolution{}, fmt.Errorf("%q: height %w", s, err)
	}
	return Resolution{Width: width, Height: height}, nil
}

func parseDimension(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("must be a positive integer")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Portrait reports whether the frame is taller than it is wide.
func (r Resolution) Portrait() bool {
	return r.Height > r.Width
}

// Params is a validated request, normalized for the provider. The same
// Params value is handed to every interface that is tried.
type Params struct {
	Model           string
	Prompt          string
	DurationSeconds int
	Resolution      Resolution

	// Seconds is DurationSeconds bucketed to a supported clip length.
	Seconds int

	// Size is Resolution mapped to a supported frame size.
	Size string

	// Image is the optional reference image.
	Image *Image `json:"-"`
}

// supportedSeconds are the clip lengths the video endpoint accepts.
var supportedSeconds = []int{4, 8, 12}

// BucketSeconds maps an arbitrary duration to the closest supported clip
// length. Ties go to the shorter clip; non-positive input maps to 4.
func BucketSeconds(d int) int {
	return closest(supportedSeconds, d)
}

// SizeFor maps a resolution to the 720p frame size with the same
// orientation. The larger 1792x1024 and 1024x1792 sizes are accepted only
// by some models, so they are never requested implicitly.
func SizeFor(r Resolution) string {
	if r.Portrait() {
		return "720x1280"
	}
	return "1280x720"
}

// Validate checks the request without touching the network. maxDuration
// bounds DurationSeconds; zero means MaxDurationSeconds.
func (r *Request) Validate(maxDuration int) error {
	if maxDuration <= 0 {
		maxDuration = MaxDurationSeconds
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{Field: "prompt", Message: "must not be empty"}
	}
	if r.DurationSeconds <= 0 || r.DurationSeconds > maxDuration {
		return &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("%d is outside 1..%d seconds", r.DurationSeconds, maxDuration),
		}
	}
	if _, err := ParseResolution(r.Resolution); err != nil {
		return &ValidationError{Field: "resolution", Message: err.Error()}
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		return &ValidationError{Field: "output_path", Message: "must not be empty"}
	}
	return nil
}

// NewParams validates req and normalizes it. defaultModel fills an empty
// Model.
func NewParams(req *Request, defaultModel string, maxDuration int) (*Params, error) {
	if req == nil {
		return nil, &ValidationError{Field: "request", Message: "must not be nil"}
	}
	if err := req.Validate(maxDuration); err != nil {
		return nil, err
	}
	res, _ := ParseResolution(req.Resolution)

	img := req.Image
	if img == nil && strings.TrimSpace(req.InputImage) != "" {
		var err error
		if img, err = LoadImage(req.InputImage); err != nil {
			return nil, err
		}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = defaultModel
	}
	if model == "" {
		model = DefaultModel
	}

	return &Params{
		Model:           model,
		Prompt:          strings.TrimSpace(req.Prompt),
		DurationSeconds: req.DurationSeconds,
		Resolution:      res,
		Seconds:         BucketSeconds(req.DurationSeconds),
		Size:            SizeFor(res),
		Image:           img,
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
