package videogen

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ValidationError{Field: "prompt"}, CategoryValidation},
		{&ConfigError{Message: "no key"}, CategoryConfig},
		{&RemoteError{Kind: RemoteAuth}, CategoryAuth},
		{&RemoteError{Kind: RemoteNetwork}, CategoryNetwork},
		{&RemoteError{Kind: RemoteServer}, CategoryRemote},
		{&RemoteError{Kind: RemoteUnsupported}, CategoryRemote},
		{&GenerationFailedError{JobID: "j"}, CategoryFailed},
		{&TimeoutError{JobID: "j", Err: context.DeadlineExceeded}, CategoryTimeout},
		{&IOError{Op: "write", Err: errors.New("disk full")}, CategoryIO},
		{fmt.Errorf("wrapped: %w", &RemoteError{Kind: RemoteAuth}), CategoryAuth},
		{errors.New("boom"), CategoryUnknown},
	}
	for _, tt := range tests {
		if got := Category(tt.err); got != tt.want {
			t.Errorf("Category(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestKindForStatus(t *testing.T) {
	tests := map[int]RemoteKind{
		400: RemoteRejected,
		401: RemoteAuth,
		403: RemoteAuth,
		404: RemoteUnsupported,
		422: RemoteRejected,
		429: RemoteRateLimited,
		500: RemoteServer,
		501: RemoteUnsupported,
		503: RemoteServer,
		302: RemoteProtocol,
	}
	for status, want := range tests {
		if got := kindForStatus(status); got != want {
			t.Errorf("kindForStatus(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestRemoteErrorRetryable(t *testing.T) {
	for kind, want := range map[RemoteKind]bool{
		RemoteNetwork:     true,
		RemoteRateLimited: true,
		RemoteServer:      true,
		RemoteAuth:        false,
		RemoteUnsupported: false,
		RemoteRejected:    false,
	} {
		if got := (&RemoteError{Kind: kind}).Retryable(); got != want {
			t.Errorf("%s retryable = %v, want %v", kind, got, want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	e := &RemoteError{Backend: "https", Kind: RemoteAuth, StatusCode: 401, Message: "bad key"}
	if got := e.Error(); got != "videogen: https auth error (status=401): bad key" {
		t.Errorf("got %q", got)
	}
	te := &TimeoutError{JobID: "j1", Timeout: 0}
	if got := te.Error(); got != "videogen: job j1 not finished after 0s (last status unknown)" {
		t.Errorf("got %q", got)
	}
}
