package domain

import (
	"context"
	"time"
)

// PromptSetRepository defines persistence for prompt lists.
type PromptSetRepository interface {
	Create(ctx context.Context, ps *PromptSet) error
	GetByID(ctx context.Context, id string) (*PromptSet, error)
	List(ctx context.Context) ([]PromptSet, error)
	UpdateStatus(ctx context.Context, id string, status PromptSetStatus) error
	// Delete removes a set the queue has not picked up yet. Sets in any
	// other state return ErrPromptSetBusy.
	Delete(ctx context.Context, id string) error
	// NextPending returns the oldest pending prompt set, or ErrNotFound.
	NextPending(ctx context.Context) (*PromptSet, error)
}

// JobRepository defines persistence for job entities and their itemized
// per-prompt failures.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	List(ctx context.Context, limit int) ([]Job, error)
	// ClaimNextQueued atomically selects the oldest queued job and marks it
	// running. Returns ErrNotFound when the queue is empty.
	ClaimNextQueued(ctx context.Context) (*Job, error)
	UpdateStatus(ctx context.Context, id string, status JobStatus, errMsg string, finishedAt *time.Time) error
	HasActiveForPromptSet(ctx context.Context, promptSetID string) (bool, error)
	LatestSucceeded(ctx context.Context) (*Job, error)
	SetZip(ctx context.Context, id string, zip ZipInfo) error
	ClearZips(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, f *PromptFailure) error
	ListFailures(ctx context.Context, jobID string) ([]PromptFailure, error)
}

// ImageRepository handles persistence for generated images.
type ImageRepository interface {
	// Insert appends an image row and bumps the owning job's image_count in
	// the same statement, returning the new count.
	Insert(ctx context.Context, img *Image) (int, error)
	GetByID(ctx context.Context, id string) (*Image, error)
	ListByJob(ctx context.Context, jobID string) ([]Image, error)
	ListAll(ctx context.Context) ([]Image, error)
	ListPage(ctx context.Context, jobID string, offset, limit int) ([]Image, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByJob(ctx context.Context, jobID string) error
}

// SettingsRepository reads and writes the app_config key/value singleton.
type SettingsRepository interface {
	Load(ctx context.Context) (*Settings, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Unset(ctx context.Context, keys ...string) error
}
