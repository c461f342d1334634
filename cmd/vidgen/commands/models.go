package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/vidgen/pkg/cli"
	"github.com/haivivi/vidgen/pkg/videogen"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List video-capable models",
	Long: `List the models available to the current credentials.

Only ids that look video-capable (containing "video", "sora" or "veo") are
shown unless --all is given.

Examples:
  vidgen models
  vidgen models --provider veo --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		all, _ := cmd.Flags().GetBool("all")

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		lister, err := newModelLister(ctx, provider)
		if err != nil {
			return err
		}
		var ids []string
		if all {
			ids, err = lister.ListModels(ctx)
		} else {
			ids, err = videogen.ListVideoModels(ctx, lister)
		}
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			cli.PrintWarning("No video models found")
		}
		if ids == nil {
			ids = []string{}
		}
		return outputResult(ids, outputFile)
	},
}

func init() {
	modelsCmd.Flags().String("provider", "", "provider: openai or veo (default from context)")
	modelsCmd.Flags().Bool("all", false, "list every model, not only video models")
}

// newModelLister returns the provider's primary interface, which is the
// one that can enumerate models.
func newModelLister(ctx context.Context, provider string) (videogen.ModelLister, error) {
	cctx, err := getContext()
	if err != nil {
		return nil, &videogen.ConfigError{Message: err.Error()}
	}
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
	if cctx != nil {
		baseURL = cctx.BaseURL
	}

	if provider == cli.ProviderVeo {
		var opts []videogen.VeoOption
		if baseURL != "" {
			opts = append(opts, videogen.WithVeoBaseURL(baseURL))
		}
		veo, err := videogen.NewVeoBackend(ctx, apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return veo, nil
	}
	var opts []videogen.SDKOption
	if baseURL != "" {
		opts = append(opts, videogen.WithSDKBaseURL(baseURL))
	}
	return videogen.NewSDKBackend(apiKey, opts...), nil
}
