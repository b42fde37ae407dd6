package domain

import "time"

// PromptSetStatus enumerates the queue lifecycle of an uploaded prompt list.
type PromptSetStatus string

const (
	PromptSetPending  PromptSetStatus = "pending"
	PromptSetInUse    PromptSetStatus = "in_use"
	PromptSetConsumed PromptSetStatus = "consumed"
)

// PromptSetSource records how a prompt list entered the system.
type PromptSetSource string

const (
	PromptSetUploaded      PromptSetSource = "uploaded"
	PromptSetGenerated     PromptSetSource = "generated"
	PromptSetDeconstructed PromptSetSource = "deconstructed"
)

// PromptSet is an ordered collection of text prompts submitted together.
// The raw lines live as a text blob on disk; the row keeps the blob's
// location, digest, and line count. Rows are immutable once a job
// references them except for the status column, which only the job queue
// advances.
type PromptSet struct {
	ID         string
	Filename   string
	SHA256     string
	Path       string
	Source     PromptSetSource
	LineCount  int
	Status     PromptSetStatus
	UserInput  string
	UploadedAt time.Time
}
