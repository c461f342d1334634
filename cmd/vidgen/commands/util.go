package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/haivivi/vidgen/pkg/cli"
	"github.com/haivivi/vidgen/pkg/library"
	"github.com/haivivi/vidgen/pkg/storage"
	"github.com/haivivi/vidgen/pkg/videogen"
)

// Environment variables holding credentials, per provider.
var apiKeyEnv = map[string][]string{
	cli.ProviderOpenAI: {"OPENAI_API_KEY"},
	cli.ProviderVeo:    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
}

// generatorFlags are the per-command overrides of the context settings.
type generatorFlags struct {
	provider string
	model    string
	timeout  time.Duration
	interval time.Duration
}

// apiKeyFor returns the context's key, or the first environment variable
// set for provider.
func apiKeyFor(provider string, cctx *cli.Context) (string, error) {
	if cctx != nil && cctx.APIKey != "" {
		return cctx.APIKey, nil
	}
	names := apiKeyEnv[provider]
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", videogen.RequireAPIKey("", strings.Join(names, " or ")+" or a context api_key")
}

// newGenerator builds the generator for the selected context. No network
// call is made; a missing credential is a ConfigError.
func newGenerator(ctx context.Context, f generatorFlags, opts ...videogen.Option) (*videogen.Generator, error) {
	cctx, err := getContext()
	if err != nil {
		return nil, &videogen.ConfigError{Message: err.Error()}
	}
	provider := f.provider
	if provider == "" {
		provider = cctx.ProviderName()
	}
	if _, ok := apiKeyEnv[provider]; !ok {
		return nil, &videogen.ConfigError{Message: fmt.Sprintf("unknown provider %q", provider)}
	}
	apiKey, err := apiKeyFor(provider, cctx)
	if err != nil {
		return nil, err
	}

	var baseURL string
	var retries int
	if cctx != nil {
		baseURL = cctx.BaseURL
		retries = cctx.MaxRetries
		printVerbose("Using context: %s", cctx.Name)
	}

	var primary videogen.Backend
	var gopts []videogen.Option
	defaultModel := cctx.GetExtra(cli.ExtraDefaultModel)

	switch provider {
	case cli.ProviderVeo:
		var vopts []videogen.VeoOption
		if baseURL != "" {
			vopts = append(vopts, videogen.WithVeoBaseURL(baseURL))
		}
		veo, err := videogen.NewVeoBackend(ctx, apiKey, vopts...)
		if err != nil {
			return nil, err
		}
		if defaultModel == "" {
			defaultModel = videogen.DefaultVeoModel
		}
		primary = veo
	default:
		var sopts []videogen.SDKOption
		var hopts []videogen.HTTPOption
		if baseURL != "" {
			sopts = append(sopts, videogen.WithSDKBaseURL(baseURL))
			hopts = append(hopts, videogen.WithHTTPBaseURL(baseURL))
		}
		if retries > 0 {
			sopts = append(sopts, videogen.WithSDKRetry(retries))
			hopts = append(hopts, videogen.WithRetry(retries))
		}
		primary = videogen.NewSDKBackend(apiKey, sopts...)
		gopts = append(gopts, videogen.WithSecondary(videogen.NewHTTPBackend(apiKey, hopts...)))
	}

	if f.model != "" {
		defaultModel = f.model
	}
	if defaultModel != "" {
		gopts = append(gopts, videogen.WithDefaultModel(defaultModel))
	}

	timeout := f.timeout
	if timeout == 0 {
		timeout = cctx.TimeoutDuration()
	}
	interval := f.interval
	if interval == 0 {
		if s := cctx.GetExtra(cli.ExtraPollInterval); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, &videogen.ConfigError{Message: fmt.Sprintf("invalid %s %q: %v", cli.ExtraPollInterval, s, err)}
			}
			interval = d
		}
	}
	gopts = append(gopts,
		videogen.WithTimeout(timeout),
		videogen.WithPollInterval(interval),
		videogen.WithLogger(slog.Default()),
	)
	return videogen.NewGenerator(primary, append(gopts, opts...)...), nil
}

// s3Option returns WithS3Client when path is an s3:// location.
func s3Option(path string) ([]videogen.Option, error) {
	if !strings.HasPrefix(path, "s3://") {
		return nil, nil
	}
	client, err := storage.NewS3ClientFromEnv()
	if err != nil {
		return nil, &videogen.ConfigError{Message: err.Error()}
	}
	return []videogen.Option{videogen.WithS3Client(client)}, nil
}

// openLibrary opens the on-disk video library under ~/.vidgen.
func openLibrary() (*library.Library, error) {
	paths, err := cli.NewPaths()
	if err != nil {
		return nil, &videogen.ConfigError{Message: err.Error()}
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, &videogen.IOError{Op: "create", Path: paths.BaseDir(), Err: err}
	}
	files, err := storage.NewLocal(paths.VideosDir())
	if err != nil {
		return nil, &videogen.IOError{Op: "open", Path: paths.VideosDir(), Err: err}
	}
	records, err := library.OpenBadger(library.BadgerOptions{
		Dir:    paths.DataDir(),
		Logger: slog.Default(),
	})
	if err != nil {
		return nil, &videogen.IOError{Op: "open", Path: paths.DataDir(), Err: err}
	}
	return library.New(records, files), nil
}

// defaultOutput is video_<unix>.mp4 in the working directory.
func defaultOutput() string {
	name, _ := library.NormalizeName("", time.Now())
	return name
}
