package videogen

import "testing"

func TestParseJobStatus(t *testing.T) {
	tests := map[string]JobStatus{
		"queued":      StatusQueued,
		"pending":     StatusQueued,
		"in_progress": StatusRunning,
		"Processing":  StatusRunning,
		"completed":   StatusSucceeded,
		"succeeded":   StatusSucceeded,
		"done":        StatusSucceeded,
		"failed":      StatusFailed,
		"error":       StatusFailed,
		"cancelled":   StatusFailed,
	}
	for in, want := range tests {
		got, err := ParseJobStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseJobStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "paused", "42"} {
		if _, err := ParseJobStatus(bad); err == nil {
			t.Errorf("ParseJobStatus(%q) succeeded", bad)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{"", StatusSucceeded, true},
		{StatusQueued, StatusQueued, true},
		{StatusQueued, StatusRunning, true},
		{StatusQueued, StatusFailed, true},
		{StatusRunning, StatusRunning, true},
		{StatusRunning, StatusSucceeded, true},
		{StatusRunning, StatusQueued, false},
		{StatusSucceeded, StatusRunning, false},
		{StatusFailed, StatusFailed, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%q -> %q = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestFilterVideoModels(t *testing.T) {
	in := []string{"gpt-4o", "sora-2", "sora-2-pro", "Veo-3.0-generate-001", "whisper-1", "video-gen-x", "sora-2"}
	got := FilterVideoModels(in)
	want := []string{"Veo-3.0-generate-001", "sora-2", "sora-2-pro", "video-gen-x"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
