// Package cli provides the building blocks of the vidgen command line:
//
//   - configuration contexts (API key, base URL, provider) similar to kubectl,
//     stored in ~/.vidgen/config.yaml
//   - output formatting as YAML or JSON, optionally filtered by a jq query
//   - request file loading (YAML/JSON)
//   - styled status lines for the terminal
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("")
//	ctx, err := cfg.ResolveContext("")
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Query:  ".output",
//	})
package cli
