package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Terminal reports whether no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCanceled:
		return true
	}
	return false
}

// CanTransition reports whether the state machine permits moving to next.
// queued -> running|canceled, running -> succeeded|failed|canceled.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusQueued:
		return next == JobStatusRunning || next == JobStatusCanceled
	case JobStatusRunning:
		return next.Terminal()
	}
	return false
}

// ZipInfo is the cached archive metadata recorded once a bundle is built.
type ZipInfo struct {
	Path      string
	SizeBytes int64
	SHA256    string
	BuiltAt   time.Time
}

// Job is one execution of a PromptSet against the generation API.
// TotalPrompts is copied from the PromptSet at creation and never changes;
// ImageCount only grows and never exceeds it.
type Job struct {
	ID           string
	PromptSetID  string
	Status       JobStatus
	TotalPrompts int
	ImageCount   int
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
	Zip          *ZipInfo
}

// ZipReady reports whether a built archive is recorded for the job.
func (j *Job) ZipReady() bool {
	return j.Zip != nil && j.Zip.Path != ""
}

// PromptFailure is one itemized per-prompt failure within a job.
type PromptFailure struct {
	ID         string
	JobID      string
	Seq        int
	PromptText string
	Reason     string
	CreatedAt  time.Time
}
