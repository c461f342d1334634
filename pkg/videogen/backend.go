package videogen

import (
	"context"
	"io"
	"slices"
	"strings"
)

// Backend is one interface to a remote video generation service.
type Backend interface {
	// Name identifies the backend in jobs, logs and errors.
	Name() string

	// Submit starts a job. Errors are *RemoteError; a RemoteUnsupported
	// kind means the operation is not offered by this interface.
	Submit(ctx context.Context, p *Params) (*Job, error)

	// Poll returns the current state of a job created by this backend.
	Poll(ctx context.Context, job *Job) (*JobState, error)

	// Download opens the video of a succeeded job. The caller closes it.
	Download(ctx context.Context, art *Artifact) (io.ReadCloser, error)
}

// ModelLister lists the model ids available to the credential.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// videoModelHints are substrings of model ids that generate video.
var videoModelHints = []string{"video", "sora", "veo"}

// FilterVideoModels keeps the ids that look video-capable, sorted and
// de-duplicated.
func FilterVideoModels(ids []string) []string {
	var out []string
	for _, id := range ids {
		lower := strings.ToLower(id)
		for _, hint := range videoModelHints {
			if strings.Contains(lower, hint) {
				out = append(out, id)
				break
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ListVideoModels lists the video-capable models visible through l.
func ListVideoModels(ctx context.Context, l ModelLister) ([]string, error) {
	ids, err := l.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return FilterVideoModels(ids), nil
}
