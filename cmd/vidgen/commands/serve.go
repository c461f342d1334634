package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/vidgen/pkg/cli"
	"github.com/haivivi/vidgen/pkg/server"
	"github.com/haivivi/vidgen/pkg/videogen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the video library over HTTP",
	Long: `Start an HTTP server for generating and browsing videos.

Routes:
  GET    /api/videos          list videos, newest first
  POST   /api/generate        {"prompt", "name", "duration", "resolution", "model"}
  GET    /api/videos/{name}   download a video
  DELETE /api/videos/{name}   delete a video
  GET    /healthz             liveness
  GET    /metrics             Prometheus metrics

Example:
  vidgen serve --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		gen, err := newGenerator(ctx, generatorFlagsFrom(cmd), videogen.WithStore(lib.Files()))
		if err != nil {
			return err
		}

		logger := slog.Default()
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.New(gen, lib, server.WithLogger(logger)).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			errc <- srv.ListenAndServe()
		}()
		cli.PrintSuccess("Listening on %s", addr)

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		cli.PrintInfo("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("provider", "", "provider: openai or veo (default from context)")
	serveCmd.Flags().String("model", "", "default model")
	serveCmd.Flags().Duration("timeout", 0, "per-generation timeout (default 10m)")
	serveCmd.Flags().Duration("interval", 0, "poll interval (default 5s)")
}
