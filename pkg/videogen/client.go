package videogen

import (
	"log/slog"
	"strings"
	"time"

	"github.com/haivivi/vidgen/pkg/storage"
)

const (
	// DefaultPollInterval is the pause between job status checks.
	DefaultPollInterval = 5 * time.Second

	// DefaultTimeout bounds the wait for a job to finish.
	DefaultTimeout = 10 * time.Minute
)

// Generator runs text-to-video generations: it validates requests, submits
// them through a primary interface with an optional secondary fallback,
// polls the job and writes the video out.
//
// A Generator is read-only after NewGenerator and may serve concurrent
// Generate calls.
type Generator struct {
	primary   Backend
	secondary Backend

	store    storage.FileStore
	s3Client storage.S3Client

	pollInterval time.Duration
	timeout      time.Duration
	defaultModel string
	maxDuration  int

	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSecondary sets the interface tried when the primary reports the
// operation as unsupported.
func WithSecondary(b Backend) Option {
	return func(g *Generator) {
		g.secondary = b
	}
}

// WithStore writes artifacts into store, treating output paths as paths
// inside it. Without a store, output paths are local files or s3:// URIs.
func WithStore(store storage.FileStore) Option {
	return func(g *Generator) {
		g.store = store
	}
}

// WithS3Client enables s3://bucket/key output paths.
func WithS3Client(c storage.S3Client) Option {
	return func(g *Generator) {
		g.s3Client = c
	}
}

// WithPollInterval sets the pause between status checks.
func WithPollInterval(d time.Duration) Option {
	return func(g *Generator) {
		g.pollInterval = d
	}
}

// WithTimeout sets how long to wait for a submitted job.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) Option {
	return func(g *Generator) {
		g.defaultModel = model
	}
}

// WithMaxDuration sets the longest duration a request may ask for.
func WithMaxDuration(seconds int) Option {
	return func(g *Generator) {
		g.maxDuration = seconds
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator creates a Generator that submits through primary.
//
// Example:
//
//	sdk := videogen.NewSDKBackend(apiKey)
//	direct := videogen.NewHTTPBackend(apiKey)
//	g := videogen.NewGenerator(sdk, videogen.WithSecondary(direct))
//	res, err := g.Generate(ctx, &videogen.Request{
//	    Prompt:          "A paper boat drifting down a rainy street",
//	    DurationSeconds: 8,
//	    Resolution:      "1280x720",
//	    OutputPath:      "boat.mp4",
//	})
func NewGenerator(primary Backend, opts ...Option) *Generator {
	g := &Generator{
		primary:      primary,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		defaultModel: DefaultModel,
		maxDuration:  MaxDurationSeconds,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.pollInterval <= 0 {
		g.pollInterval = DefaultPollInterval
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	return g
}

// RequireAPIKey returns a ConfigError naming source when key is blank.
func RequireAPIKey(key, source string) error {
	if strings.TrimSpace(key) == "" {
		return &ConfigError{Message: "missing API key: set " + source}
	}
	return nil
}
