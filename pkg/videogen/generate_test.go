package videogen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a scripted Backend that counts its calls.
type fakeBackend struct {
	name string

	mu         sync.Mutex
	submitErr  error
	pollErr    error
	states     []*JobState // returned in order, the last one repeats
	content    io.Reader
	submits    int
	polls      int
	downloads  int
	lastParams *Params
}

func newFake(name string, states ...*JobState) *fakeBackend {
	return &fakeBackend{name: name, states: states, content: strings.NewReader("video-bytes")}
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Submit(_ context.Context, p *Params) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	f.lastParams = p
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &Job{ID: f.name + "-job", Backend: f.name}, nil
}

func (f *fakeBackend) Poll(_ context.Context, _ *Job) (*JobState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	i := min(f.polls-1, len(f.states)-1)
	return f.states[i], nil
}

func (f *fakeBackend) Download(_ context.Context, _ *Artifact) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	return io.NopCloser(f.content), nil
}

func (f *fakeBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

var (
	queued    = &JobState{Status: StatusQueued, Progress: 0}
	running   = &JobState{Status: StatusRunning, Progress: 50}
	succeeded = &JobState{Status: StatusSucceeded, Progress: 100}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(primary Backend, opts ...Option) *Generator {
	base := []Option{
		WithPollInterval(time.Millisecond),
		WithTimeout(5 * time.Second),
		WithLogger(quietLogger()),
	}
	return NewGenerator(primary, append(base, opts...)...)
}

func validRequest(t *testing.T) *Request {
	t.Helper()
	return &Request{
		Prompt:          "A lighthouse in a storm",
		DurationSeconds: 8,
		Resolution:      "1280x720",
		OutputPath:      filepath.Join(t.TempDir(), "out.mp4"),
	}
}

func TestGenerateEmptyPromptMakesNoCalls(t *testing.T) {
	primary := newFake("sdk", succeeded)
	secondary := newFake("https", succeeded)
	g := newTestGenerator(primary, WithSecondary(secondary))

	req := validRequest(t)
	req.Prompt = "   "
	_, err := g.Generate(context.Background(), req)

	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Field != "prompt" {
		t.Fatalf("err = %v, want prompt ValidationError", err)
	}
	if primary.submits+secondary.submits+primary.polls+secondary.polls != 0 {
		t.Fatalf("backends were called: primary=%d secondary=%d", primary.submits, secondary.submits)
	}
}

func TestGenerateInvalidResolutionMakesNoCalls(t *testing.T) {
	for _, res := range []string{"", "1280", "axb", "0x720", "1280x0", "-1x720", "1280x", "12.5x720", "1280*720"} {
		t.Run(res, func(t *testing.T) {
			primary := newFake("sdk", succeeded)
			g := newTestGenerator(primary)

			req := validRequest(t)
			req.Resolution = res
			_, err := g.Generate(context.Background(), req)

			var valErr *ValidationError
			if !errors.As(err, &valErr) || valErr.Field != "resolution" {
				t.Fatalf("err = %v, want resolution ValidationError", err)
			}
			if primary.submits != 0 {
				t.Fatal("primary was called")
			}
		})
	}
}

func TestGenerateDurationBounds(t *testing.T) {
	for _, d := range []int{0, -3, MaxDurationSeconds + 1} {
		g := newTestGenerator(newFake("sdk", succeeded))
		req := validRequest(t)
		req.DurationSeconds = d
		_, err := g.Generate(context.Background(), req)
		if Category(err) != CategoryValidation {
			t.Errorf("duration %d: err = %v, want validation", d, err)
		}
	}
}

func TestGenerateFallsBackOnUnsupported(t *testing.T) {
	primary := newFake("sdk")
	primary.submitErr = &RemoteError{Backend: "sdk", Kind: RemoteUnsupported, StatusCode: 404, Message: "Invalid URL (POST /v1/videos)"}
	secondary := newFake("https", queued, running, succeeded)
	g := newTestGenerator(primary, WithSecondary(secondary))

	req := validRequest(t)
	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if primary.submits != 1 || secondary.submits != 1 {
		t.Fatalf("submits: primary=%d secondary=%d, want 1 and 1", primary.submits, secondary.submits)
	}
	if secondary.lastParams != primary.lastParams {
		t.Error("secondary did not receive the same params")
	}
	if res.Backend != "https" || res.Job.Backend != "https" {
		t.Errorf("backend = %q, want https", res.Backend)
	}
	if primary.polls != 0 {
		t.Errorf("primary polled %d times for a secondary job", primary.polls)
	}

	got, err := os.ReadFile(req.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "video-bytes" {
		t.Errorf("output = %q", got)
	}
}

func TestGenerateNoFallbackOnOtherErrors(t *testing.T) {
	kinds := []RemoteKind{RemoteAuth, RemoteNetwork, RemoteRejected, RemoteRateLimited, RemoteServer, RemoteProtocol}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			primary := newFake("sdk")
			primary.submitErr = &RemoteError{Backend: "sdk", Kind: kind}
			secondary := newFake("https", succeeded)
			g := newTestGenerator(primary, WithSecondary(secondary))

			_, err := g.Generate(context.Background(), validRequest(t))
			e, ok := AsRemoteError(err)
			if !ok || e.Kind != kind {
				t.Fatalf("err = %v, want %s RemoteError", err, kind)
			}
			if secondary.submits != 0 {
				t.Fatal("secondary was called")
			}
		})
	}
}

func TestGenerateWithImageDoesNotFallBack(t *testing.T) {
	primary := newFake("sdk")
	primary.submitErr = &RemoteError{Backend: "sdk", Kind: RemoteUnsupported, StatusCode: 404}
	secondary := newFake("https", succeeded)
	g := newTestGenerator(primary, WithSecondary(secondary))

	req := validRequest(t)
	req.Image = &Image{Name: "a.png", MIMEType: "image/png", Data: testPNG}
	_, err := g.Generate(context.Background(), req)
	if !IsUnsupported(err) {
		t.Fatalf("err = %v, want unsupported", err)
	}
	if secondary.submits != 0 {
		t.Errorf("secondary submits = %d, want 0", secondary.submits)
	}
	if primary.lastParams == nil || primary.lastParams.Image != req.Image {
		t.Error("primary did not receive the image")
	}
}

func TestGenerateUnsupportedWithoutSecondary(t *testing.T) {
	primary := newFake("sdk")
	primary.submitErr = &RemoteError{Backend: "sdk", Kind: RemoteUnsupported, StatusCode: 501}
	g := newTestGenerator(primary)

	_, err := g.Generate(context.Background(), validRequest(t))
	if !IsUnsupported(err) {
		t.Fatalf("err = %v, want unsupported", err)
	}
}

func TestGeneratePollsUntilSucceeded(t *testing.T) {
	primary := newFake("sdk", queued, running, succeeded)
	g := newTestGenerator(primary)

	req := validRequest(t)
	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if primary.polls != 3 || res.Polls != 3 {
		t.Errorf("polls = %d (result %d), want 3", primary.polls, res.Polls)
	}
	if res.Bytes != int64(len("video-bytes")) {
		t.Errorf("bytes = %d", res.Bytes)
	}
	if res.Params.Seconds != 8 || res.Params.Size != "1280x720" || res.Params.Model != DefaultModel {
		t.Errorf("params = %+v", res.Params)
	}
	if res.RequestID == "" {
		t.Error("missing request id")
	}
}

func TestGenerateFailedCarriesReason(t *testing.T) {
	primary := newFake("sdk", running, &JobState{Status: StatusFailed, Reason: "moderation_blocked"})
	g := newTestGenerator(primary)

	req := validRequest(t)
	_, err := g.Generate(context.Background(), req)

	var failErr *GenerationFailedError
	if !errors.As(err, &failErr) {
		t.Fatalf("err = %v, want GenerationFailedError", err)
	}
	if failErr.Reason != "moderation_blocked" || failErr.JobID != "sdk-job" {
		t.Errorf("got %+v", failErr)
	}
	if _, err := os.Stat(req.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written for a failed job")
	}
}

func TestGenerateTimeoutStopsPolling(t *testing.T) {
	primary := newFake("sdk", running)
	g := newTestGenerator(primary,
		WithPollInterval(10*time.Millisecond),
		WithTimeout(55*time.Millisecond),
	)

	_, err := g.Generate(context.Background(), validRequest(t))
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if timeoutErr.LastStatus != StatusRunning || timeoutErr.JobID != "sdk-job" {
		t.Errorf("got %+v", timeoutErr)
	}

	n := primary.pollCount()
	if n < 2 || n > 7 {
		t.Errorf("polls = %d, want about timeout/interval", n)
	}
	time.Sleep(50 * time.Millisecond)
	if after := primary.pollCount(); after != n {
		t.Errorf("polled %d more times after the deadline", after-n)
	}
}

func TestGenerateCancelReportsTimeout(t *testing.T) {
	primary := newFake("sdk", running)
	g := newTestGenerator(primary, WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := g.Generate(ctx, validRequest(t))
	if Category(err) != CategoryTimeout || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want TimeoutError wrapping context.Canceled", err)
	}
}

func TestGeneratePollErrorIsReturned(t *testing.T) {
	primary := newFake("sdk", running)
	primary.pollErr = &RemoteError{Backend: "sdk", Kind: RemoteServer, StatusCode: 502}
	g := newTestGenerator(primary)

	_, err := g.Generate(context.Background(), validRequest(t))
	if e, ok := AsRemoteError(err); !ok || e.StatusCode != 502 {
		t.Fatalf("err = %v, want 502 RemoteError", err)
	}
	if primary.polls != 1 {
		t.Errorf("polls = %d, want 1", primary.polls)
	}
}

func TestGenerateInlineArtifactSkipsDownload(t *testing.T) {
	done := &JobState{Status: StatusSucceeded, Artifact: &Artifact{Data: []byte("inline")}}
	primary := newFake("veo", done)
	g := newTestGenerator(primary)

	req := validRequest(t)
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if primary.downloads != 0 {
		t.Error("download called for inline artifact")
	}
	got, _ := os.ReadFile(req.OutputPath)
	if string(got) != "inline" {
		t.Errorf("output = %q", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSaveInterruptedDownloadRemovesFile(t *testing.T) {
	primary := newFake("sdk", succeeded)
	primary.content = io.MultiReader(strings.NewReader("partial"), failingReader{})
	g := newTestGenerator(primary)

	req := validRequest(t)
	_, err := g.Generate(context.Background(), req)
	if Category(err) != CategoryNetwork {
		t.Fatalf("err = %v, want network", err)
	}
	if _, err := os.Stat(req.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial file left behind")
	}
}

func TestSaveUnwritableOutputIsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := newTestGenerator(newFake("sdk", succeeded))

	req := validRequest(t)
	req.OutputPath = filepath.Join(blocker, "out.mp4")
	_, err := g.Generate(context.Background(), req)

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("err = %v, want IOError", err)
	}
}

func TestStatusUnknownBackend(t *testing.T) {
	g := newTestGenerator(newFake("sdk", running))
	_, err := g.Status(context.Background(), &Job{ID: "x", Backend: "nope"})
	if Category(err) != CategoryConfig {
		t.Fatalf("err = %v, want config", err)
	}

	st, err := g.Status(context.Background(), &Job{ID: "x", Backend: "sdk"})
	if err != nil || st.Status != StatusRunning {
		t.Fatalf("Status = %v, %v", st, err)
	}
}

func TestGenerateWithoutPrimaryIsConfigError(t *testing.T) {
	g := newTestGenerator(nil)
	_, err := g.Generate(context.Background(), validRequest(t))
	if Category(err) != CategoryConfig {
		t.Fatalf("err = %v, want config", err)
	}
}
