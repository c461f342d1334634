package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/haivivi/vidgen/pkg/cli"
	"github.com/haivivi/vidgen/pkg/videogen"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Check a generation job once",
	Long: `Query the status of a video job.

--backend names the interface that created the job, as printed by
'vidgen generate --no-wait' (sdk, https or veo).

Example:
  vidgen status video_68d7 --backend sdk`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		job, gen, err := jobAndGenerator(ctx, cmd, args[0])
		if err != nil {
			return err
		}
		state, err := gen.Status(ctx, job)
		if err != nil {
			return err
		}
		result := map[string]any{
			"job_id":  job.ID,
			"backend": job.Backend,
			"status":  string(state.Status),
		}
		if state.Progress >= 0 {
			result["progress"] = state.Progress
		}
		if state.Reason != "" {
			result["reason"] = state.Reason
		}
		if state.Artifact != nil && state.Artifact.URL != "" {
			result["url"] = state.Artifact.URL
		}
		return outputResult(result, "")
	},
}

var waitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Wait for a job and download the video",
	Long: `Poll a video job until it finishes, then write the video to -o.

Example:
  vidgen wait video_68d7 --backend sdk -o boat.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		path := outputFile
		if path == "" {
			path = defaultOutput()
		}
		opts, err := s3Option(path)
		if err != nil {
			return err
		}
		job, gen, err := jobAndGenerator(ctx, cmd, args[0], opts...)
		if err != nil {
			return err
		}

		cli.PrintInfo("Waiting for job %s...", job.ID)
		art, err := gen.Wait(ctx, job)
		if err != nil {
			return err
		}
		n, err := gen.Save(ctx, job, art, path)
		if err != nil {
			return err
		}
		cli.PrintSuccess("Video saved to %s (%s)", path, cli.FormatBytes(n))
		return outputResult(map[string]any{
			"job_id":  job.ID,
			"backend": job.Backend,
			"output":  path,
			"bytes":   n,
		}, "")
	},
}

func init() {
	for _, cmd := range []*cobra.Command{statusCmd, waitCmd} {
		cmd.Flags().String("backend", "", "interface that created the job: sdk, https or veo (default from provider)")
		cmd.Flags().String("provider", "", "provider: openai or veo (default from context)")
		cmd.Flags().Duration("timeout", 0, "give up waiting after this long (default 10m)")
		cmd.Flags().Duration("interval", 0, "poll interval (default 5s)")
	}
}

func jobAndGenerator(ctx context.Context, cmd *cobra.Command, id string, opts ...videogen.Option) (*videogen.Job, *videogen.Generator, error) {
	f := generatorFlagsFrom(cmd)
	gen, err := newGenerator(ctx, f, opts...)
	if err != nil {
		return nil, nil, err
	}
	backend, _ := cmd.Flags().GetString("backend")
	if backend == "" {
		backend = "sdk"
		if f.provider == cli.ProviderVeo {
			backend = "veo"
		} else if f.provider == "" {
			if cctx, _ := getContext(); cctx.ProviderName() == cli.ProviderVeo {
				backend = "veo"
			}
		}
	}
	return &videogen.Job{ID: id, Backend: backend}, gen, nil
}
