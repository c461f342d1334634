package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/haivivi/vidgen/pkg/cli"
	"github.com/haivivi/vidgen/pkg/videogen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a video from a text prompt",
	Long: `Generate a video clip and write it to the output path.

The request can come from flags or from a request file (-f); flags set on
the command line override the file.

Example request file (request.yaml):
  prompt: A paper boat drifting down a rainy street
  duration: 8
  resolution: 1280x720
  model: sora-2
  input_image: first-frame.png

A reference image is only sent through the SDK (or Veo); it is never
retried over plain HTTPS.

The output path may be a local file or s3://bucket/key. S3 credentials are
read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_REGION.

Examples:
  vidgen generate --prompt "A paper boat on a rainy street" -o boat.mp4
  vidgen generate -f request.yaml -o s3://clips/boat.mp4
  vidgen generate --prompt "..." --library
  vidgen generate --prompt "..." --no-wait --json`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("prompt", "", "video description")
	generateCmd.Flags().Int("duration", videogen.DefaultDurationSeconds, "clip length in seconds")
	generateCmd.Flags().String("resolution", videogen.DefaultResolution, "resolution as <width>x<height>")
	generateCmd.Flags().String("model", "", "model id (default from context)")
	generateCmd.Flags().String("provider", "", "provider: openai or veo (default from context)")
	generateCmd.Flags().Duration("timeout", 0, "give up waiting after this long (default 10m)")
	generateCmd.Flags().Duration("interval", 0, "poll interval (default 5s)")
	generateCmd.Flags().Bool("no-wait", false, "submit the job and print its id")
	generateCmd.Flags().Bool("library", false, "save into the local video library (~/.vidgen/videos)")
	generateCmd.Flags().String("image", "", "reference image (jpeg, png or webp) the video starts from")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}
	f := generatorFlagsFrom(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if noWait, _ := cmd.Flags().GetBool("no-wait"); noWait {
		return submitOnly(ctx, f, req)
	}

	useLibrary, _ := cmd.Flags().GetBool("library")
	if useLibrary {
		return generateIntoLibrary(ctx, f, req)
	}

	if req.OutputPath == "" {
		req.OutputPath = defaultOutput()
	}
	opts, err := s3Option(req.OutputPath)
	if err != nil {
		return err
	}
	gen, err := newGenerator(ctx, f, opts...)
	if err != nil {
		return err
	}

	printVerbose("Prompt: %s", req.Prompt)
	cli.PrintInfo("Generating video, this may take a few minutes...")
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	cli.PrintSuccess("Video saved to %s (%s, %s)", res.OutputPath, cli.FormatBytes(res.Bytes), cli.FormatDuration(res.Duration))
	return outputResult(resultView(res), "")
}

func submitOnly(ctx context.Context, f generatorFlags, req *videogen.Request) error {
	// Nothing is saved, but the request still needs a valid output path.
	if req.OutputPath == "" {
		req.OutputPath = defaultOutput()
	}
	gen, err := newGenerator(ctx, f)
	if err != nil {
		return err
	}
	params, err := gen.Params(req)
	if err != nil {
		return err
	}
	job, err := gen.Submit(ctx, params)
	if err != nil {
		return err
	}
	cli.PrintSuccess("Video job created: %s", job.ID)
	return outputResult(map[string]any{
		"job_id":  job.ID,
		"backend": job.Backend,
		"model":   params.Model,
		"seconds": params.Seconds,
		"size":    params.Size,
		"status":  string(videogen.StatusQueued),
	}, "")
}

func generateIntoLibrary(ctx context.Context, f generatorFlags, req *videogen.Request) error {
	lib, err := openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	name, err := lib.Name(req.OutputPath)
	if err != nil {
		return err
	}
	req.OutputPath = name

	gen, err := newGenerator(ctx, f, videogen.WithStore(lib.Files()))
	if err != nil {
		return err
	}
	cli.PrintInfo("Generating video, this may take a few minutes...")
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	rec, err := lib.Record(ctx, name, req, res)
	if err != nil {
		return err
	}
	cli.PrintSuccess("Video %s added to the library (%s)", rec.Name, cli.FormatBytes(rec.Size))
	return outputResult(rec, "")
}

// buildRequest merges the request file with the flags set explicitly.
func buildRequest(cmd *cobra.Command) (*videogen.Request, error) {
	req := &videogen.Request{
		DurationSeconds: videogen.DefaultDurationSeconds,
		Resolution:      videogen.DefaultResolution,
	}
	if inputFile != "" {
		if err := cli.LoadRequest(inputFile, os.Stdin, req); err != nil {
			return nil, &videogen.ValidationError{Field: "file", Message: err.Error()}
		}
	}

	flags := cmd.Flags()
	if flags.Changed("prompt") || req.Prompt == "" {
		req.Prompt, _ = flags.GetString("prompt")
	}
	if flags.Changed("duration") {
		req.DurationSeconds, _ = flags.GetInt("duration")
	}
	if flags.Changed("resolution") {
		req.Resolution, _ = flags.GetString("resolution")
	}
	if flags.Changed("model") {
		req.Model, _ = flags.GetString("model")
	}
	if flags.Changed("image") {
		req.InputImage, _ = flags.GetString("image")
	}
	if outputFile != "" {
		req.OutputPath = outputFile
	}
	return req, nil
}

func generatorFlagsFrom(cmd *cobra.Command) generatorFlags {
	var f generatorFlags
	f.provider, _ = cmd.Flags().GetString("provider")
	f.model, _ = cmd.Flags().GetString("model")
	f.timeout, _ = cmd.Flags().GetDuration("timeout")
	f.interval, _ = cmd.Flags().GetDuration("interval")
	return f
}

func resultView(res *videogen.Result) map[string]any {
	return map[string]any{
		"request_id": res.RequestID,
		"job_id":     res.Job.ID,
		"backend":    res.Backend,
		"model":      res.Params.Model,
		"seconds":    res.Params.Seconds,
		"size":       res.Params.Size,
		"output":     res.OutputPath,
		"bytes":      res.Bytes,
		"polls":      res.Polls,
		"elapsed":    cli.FormatDuration(res.Duration),
	}
}
