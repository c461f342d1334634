package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/haivivi/vidgen/pkg/videogen"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"validation", &videogen.ValidationError{Field: "prompt", Message: "required"}, ExitValidation},
		{"config", &videogen.ConfigError{Message: "missing API key"}, ExitConfig},
		{"auth", &videogen.RemoteError{Kind: videogen.RemoteAuth, StatusCode: 401}, ExitAuth},
		{"network", &videogen.RemoteError{Kind: videogen.RemoteNetwork}, ExitNetwork},
		{"rejected", &videogen.RemoteError{Kind: videogen.RemoteRejected, StatusCode: 400}, ExitRemote},
		{"failed", &videogen.GenerationFailedError{JobID: "j", Reason: "moderation"}, ExitFailed},
		{"timeout", &videogen.TimeoutError{JobID: "j", Err: context.DeadlineExceeded}, ExitTimeout},
		{"io", &videogen.IOError{Op: "write", Path: "out.mp4", Err: errors.New("disk full")}, ExitIO},
		{"wrapped", fmt.Errorf("generate: %w", &videogen.ConfigError{Message: "x"}), ExitConfig},
		{"other", errors.New("boom"), ExitOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
