package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/vidgen/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts hold a provider, its API key and defaults, similar to kubectl's
context management.

Configuration is stored in ~/.vidgen/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  vidgen config add-context work --api-key sk-...
  vidgen config add-context google --provider veo --api-key AIza...
  vidgen config add-context proxy --api-key KEY --base-url https://proxy.example/v1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		apiKey, _ := cmd.Flags().GetString("api-key")
		provider, _ := cmd.Flags().GetString("provider")
		baseURL, _ := cmd.Flags().GetString("base-url")
		timeout, _ := cmd.Flags().GetInt("timeout")
		maxRetries, _ := cmd.Flags().GetInt("max-retries")
		defaultModel, _ := cmd.Flags().GetString("default-model")
		pollInterval, _ := cmd.Flags().GetString("poll-interval")

		ctx := &cli.Context{
			Provider:   provider,
			APIKey:     apiKey,
			BaseURL:    baseURL,
			Timeout:    timeout,
			MaxRetries: maxRetries,
		}
		if defaultModel != "" {
			ctx.SetExtra(cli.ExtraDefaultModel, defaultModel)
		}
		if pollInterval != "" {
			ctx.SetExtra(cli.ExtraPollInterval, pollInterval)
		}

		if err := getConfig().AddContext(name, ctx); err != nil {
			return err
		}
		if apiKey == "" {
			cli.PrintWarning("Context %q has no API key; the environment will be used", name)
		}
		cli.PrintSuccess("Context %q added", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.CurrentContext == "" {
			cli.PrintInfo("No current context set")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if len(cfg.Contexts) == 0 {
			cli.PrintInfo("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tPROVIDER\tBASE_URL\tDEFAULT_MODEL")
		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			baseURL := ctx.BaseURL
			if baseURL == "" {
				baseURL = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name, ctx.ProviderName(), baseURL, ctx.GetExtra(cli.ExtraDefaultModel))
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		type contextView struct {
			Provider     string `json:"provider"`
			APIKey       string `json:"api_key,omitempty"`
			BaseURL      string `json:"base_url,omitempty"`
			Timeout      int    `json:"timeout,omitempty"`
			MaxRetries   int    `json:"max_retries,omitempty"`
			DefaultModel string `json:"default_model,omitempty"`
			PollInterval string `json:"poll_interval,omitempty"`
		}
		contexts := make(map[string]contextView, len(cfg.Contexts))
		for name, ctx := range cfg.Contexts {
			contexts[name] = contextView{
				Provider:     ctx.ProviderName(),
				APIKey:       cli.MaskAPIKey(ctx.APIKey),
				BaseURL:      ctx.BaseURL,
				Timeout:      ctx.Timeout,
				MaxRetries:   ctx.MaxRetries,
				DefaultModel: ctx.GetExtra(cli.ExtraDefaultModel),
				PollInterval: ctx.GetExtra(cli.ExtraPollInterval),
			}
		}
		return outputResult(map[string]any{
			"config_file":     cfg.Path(),
			"current_context": cfg.CurrentContext,
			"contexts":        contexts,
		}, outputFile)
	},
}

func init() {
	configAddContextCmd.Flags().String("api-key", "", "API key (falls back to the environment)")
	configAddContextCmd.Flags().String("provider", cli.ProviderOpenAI, "provider: openai or veo")
	configAddContextCmd.Flags().String("base-url", "", "API base URL (optional)")
	configAddContextCmd.Flags().Int("timeout", 0, "generation timeout in seconds (optional)")
	configAddContextCmd.Flags().Int("max-retries", 0, "max transport retries (optional)")
	configAddContextCmd.Flags().String("default-model", "", "default model (optional)")
	configAddContextCmd.Flags().String("poll-interval", "", "poll interval, e.g. 5s (optional)")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
