package videogen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/haivivi/vidgen/pkg/storage"
)

// Result describes a finished generation.
type Result struct {
	// RequestID identifies this Generate call in logs.
	RequestID string `json:"request_id"`

	Job    *Job    `json:"job"`
	Params *Params `json:"params"`

	// Backend is the name of the interface that ran the job.
	Backend string `json:"backend"`

	// OutputPath is where the video was written.
	OutputPath string `json:"output"`

	// Bytes is the size of the written video.
	Bytes int64 `json:"bytes"`

	// Polls is the number of status checks made.
	Polls int `json:"polls"`

	Duration time.Duration `json:"duration"`
}

// Params validates and normalizes req with the generator's defaults. It
// makes no network call.
func (g *Generator) Params(req *Request) (*Params, error) {
	return NewParams(req, g.defaultModel, g.maxDuration)
}

// Generate runs one generation end to end: validate, submit, poll until a
// terminal state, then write the video to req.OutputPath.
//
// Errors are *ValidationError, *ConfigError, *RemoteError,
// *GenerationFailedError, *TimeoutError or *IOError.
func (g *Generator) Generate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	params, err := g.Params(req)
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	log := g.logger.With("request_id", reqID)

	job, err := g.Submit(ctx, params)
	if err != nil {
		log.Error("video submit failed", "category", Category(err), "error", err)
		return nil, err
	}
	log.Info("video job submitted",
		"job", job.ID, "backend", job.Backend,
		"model", params.Model, "seconds", params.Seconds, "size", params.Size)

	art, polls, err := g.wait(ctx, job)
	if err != nil {
		log.Error("video job did not succeed", "job", job.ID, "polls", polls, "category", Category(err), "error", err)
		return nil, err
	}

	n, err := g.Save(ctx, job, art, req.OutputPath)
	if err != nil {
		log.Error("video save failed", "job", job.ID, "output", req.OutputPath, "error", err)
		return nil, err
	}
	log.Info("video saved", "job", job.ID, "output", req.OutputPath, "bytes", n, "polls", polls)

	return &Result{
		RequestID:  reqID,
		Job:        job,
		Params:     params,
		Backend:    job.Backend,
		OutputPath: req.OutputPath,
		Bytes:      n,
		Polls:      polls,
		Duration:   time.Since(start),
	}, nil
}

// Submit starts a job through the primary interface. Only when the primary
// reports the operation as unsupported is the secondary tried, once, with
// the same params. Any other primary failure is returned unchanged, as is
// an unsupported failure for params with a reference image.
func (g *Generator) Submit(ctx context.Context, p *Params) (*Job, error) {
	if g.primary == nil {
		return nil, &ConfigError{Message: "no generation backend configured"}
	}
	job, err := g.primary.Submit(ctx, p)
	if err == nil {
		return job, nil
	}
	if !IsUnsupported(err) || g.secondary == nil {
		return nil, err
	}
	if p.Image != nil {
		g.logger.Warn("primary interface does not support video generation and the secondary cannot carry a reference image",
			"primary", g.primary.Name(), "error", err)
		return nil, err
	}
	g.logger.Warn("primary interface does not support video generation, trying secondary",
		"primary", g.primary.Name(), "secondary", g.secondary.Name(), "error", err)
	return g.secondary.Submit(ctx, p)
}

// Status checks a job once.
func (g *Generator) Status(ctx context.Context, job *Job) (*JobState, error) {
	b, err := g.backendFor(job)
	if err != nil {
		return nil, err
	}
	return b.Poll(ctx, job)
}

// Wait polls job until it succeeds, fails or the timeout passes.
func (g *Generator) Wait(ctx context.Context, job *Job) (*Artifact, error) {
	art, _, err := g.wait(ctx, job)
	return art, err
}

// wait polls immediately, then once per interval. No poll is issued after
// the deadline.
func (g *Generator) wait(ctx context.Context, job *Job) (*Artifact, int, error) {
	b, err := g.backendFor(job)
	if err != nil {
		return nil, 0, err
	}

	pollCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	var (
		last  JobStatus
		polls int
	)
	for {
		if err := pollCtx.Err(); err != nil {
			return nil, polls, g.timeoutError(job, last, err)
		}

		state, err := b.Poll(pollCtx, job)
		polls++
		if err != nil {
			if ctxErr := pollCtx.Err(); ctxErr != nil {
				return nil, polls, g.timeoutError(job, last, ctxErr)
			}
			return nil, polls, err
		}

		if !last.CanTransition(state.Status) {
			g.logger.Warn("unexpected job status transition",
				"job", job.ID, "from", last, "to", state.Status)
		}
		if state.Status != last {
			g.logger.Debug("video job status", "job", job.ID, "status", state.Status, "progress", state.Progress)
		}
		last = state.Status

		switch state.Status {
		case StatusSucceeded:
			art := state.Artifact
			if art == nil {
				art = &Artifact{}
			}
			if art.JobID == "" {
				art.JobID = job.ID
			}
			return art, polls, nil
		case StatusFailed:
			return nil, polls, &GenerationFailedError{JobID: job.ID, Reason: state.Reason}
		}

		select {
		case <-pollCtx.Done():
			return nil, polls, g.timeoutError(job, last, pollCtx.Err())
		case <-ticker.C:
		}
	}
}

func (g *Generator) timeoutError(job *Job, last JobStatus, err error) error {
	return &TimeoutError{JobID: job.ID, Timeout: g.timeout, LastStatus: last, Err: err}
}

// Save streams the artifact of a succeeded job to outputPath and returns
// the number of bytes written. On failure nothing is left at outputPath.
func (g *Generator) Save(ctx context.Context, job *Job, art *Artifact, outputPath string) (n int64, err error) {
	store, path := g.store, outputPath
	if store == nil {
		store, path, err = storage.Resolve(outputPath, g.s3Client)
		if err != nil {
			return 0, &IOError{Op: "open", Path: outputPath, Err: err}
		}
	}

	var src io.ReadCloser
	if len(art.Data) > 0 {
		src = io.NopCloser(bytes.NewReader(art.Data))
	} else {
		b, err := g.backendFor(job)
		if err != nil {
			return 0, err
		}
		src, err = b.Download(ctx, art)
		if err != nil {
			return 0, err
		}
	}
	defer src.Close()

	w, err := store.Write(ctx, path)
	if err != nil {
		return 0, &IOError{Op: "create", Path: outputPath, Err: err}
	}
	defer func() {
		if err != nil {
			if delErr := store.Delete(context.WithoutCancel(ctx), path); delErr != nil {
				g.logger.Warn("remove partial video", "output", outputPath, "error", delErr)
			}
		}
	}()

	r := &downloadReader{r: src}
	n, err = io.Copy(w, r)
	closeErr := w.Close()
	switch {
	case r.err != nil:
		if _, ok := AsRemoteError(r.err); ok {
			return n, r.err
		}
		return n, &RemoteError{Backend: job.Backend, Kind: RemoteNetwork, Message: "download interrupted", Err: r.err}
	case err != nil:
		return n, &IOError{Op: "write", Path: outputPath, Err: err}
	case closeErr != nil:
		return n, &IOError{Op: "close", Path: outputPath, Err: closeErr}
	}
	return n, nil
}

// downloadReader remembers read failures so they can be told apart from
// write failures after io.Copy.
type downloadReader struct {
	r   io.Reader
	err error
}

func (d *downloadReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		d.err = err
	}
	return n, err
}

func (g *Generator) backendFor(job *Job) (Backend, error) {
	if job == nil || job.ID == "" {
		return nil, &ValidationError{Field: "job", Message: "missing job id"}
	}
	for _, b := range []Backend{g.primary, g.secondary} {
		if b == nil {
			continue
		}
		if job.Backend == "" || job.Backend == b.Name() {
			return b, nil
		}
	}
	return nil, &ConfigError{Message: fmt.Sprintf("no backend named %q for job %s", job.Backend, job.ID)}
}
