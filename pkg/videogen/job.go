package videogen

import (
	"fmt"
	"strings"
)

// JobStatus is the state of a remote generation job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// ParseJobStatus maps a provider status string to a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "queued", "pending", "queueing", "preparing":
		return StatusQueued, nil
	case "in_progress", "running", "processing":
		return StatusRunning, nil
	case "completed", "succeeded", "success", "done":
		return StatusSucceeded, nil
	case "failed", "error", "cancelled", "canceled":
		return StatusFailed, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// CanTransition reports whether moving from s to next is allowed.
// The empty status stands for "not observed yet" and may move anywhere.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case "":
		return true
	case StatusQueued:
		return true
	case StatusRunning:
		return next != StatusQueued
	}
	return false
}

// Job is the handle of an in-flight generation. It is only meaningful to
// the backend that created it.
type Job struct {
	// ID is the provider's job identifier.
	ID string `json:"id"`

	// Backend is the name of the interface that created the job.
	Backend string `json:"backend"`
}

// Artifact references the generated video.
type Artifact struct {
	// JobID is the job that produced the video.
	JobID string

	// URL is a download location, if the provider returned one.
	URL string

	// Data holds the video when the provider returned it inline.
	Data []byte

	// MIMEType is the content type, if known.
	MIMEType string
}

// JobState is one observation of a job.
type JobState struct {
	Status JobStatus

	// Progress is a percentage in 0..100, or -1 when unknown.
	Progress int

	// Reason is the provider's failure reason when Status is StatusFailed.
	Reason string

	// Artifact is set when Status is StatusSucceeded. It may be nil, in
	// which case the backend derives the download from the job id.
	Artifact *Artifact
}
