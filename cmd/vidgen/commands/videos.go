package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/vidgen/pkg/cli"
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Manage the local video library",
	Long: `Manage videos generated with 'vidgen generate --library'.

Videos live in ~/.vidgen/videos; their metadata is indexed in
~/.vidgen/data.`,
}

var videosListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List videos, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		recs, err := lib.List(context.Background())
		if err != nil {
			return err
		}
		if outputJSON || query != "" || outputFile != "" {
			return outputResult(recs, outputFile)
		}
		if len(recs) == 0 {
			cli.PrintInfo("No videos yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tDURATION\tRESOLUTION\tCREATED\tPROMPT")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%ds\t%s\t%s\t%s\n",
				r.Name, cli.FormatBytes(r.Size), r.DurationSeconds, r.Resolution,
				r.Created.Local().Format("2006-01-02 15:04"), truncate(r.Prompt, 48))
		}
		return w.Flush()
	},
}

var videosShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a video's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		rec, err := lib.Get(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("video %q: %w", args[0], err)
		}
		return outputResult(rec, outputFile)
	},
}

var videosDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a video and its metadata",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.Delete(context.Background(), args[0]); err != nil {
			return fmt.Errorf("video %q: %w", args[0], err)
		}
		cli.PrintSuccess("Video %q deleted", args[0])
		return nil
	},
}

func init() {
	videosCmd.AddCommand(videosListCmd)
	videosCmd.AddCommand(videosShowCmd)
	videosCmd.AddCommand(videosDeleteCmd)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
