package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stickerprint/internal/domain"
	"stickerprint/internal/infra"
	"stickerprint/internal/sqlinline"
)

type JobRepo struct {
	db infra.SQLExecutor
}

func NewJobRepo(db infra.SQLExecutor) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertJob, job.ID, job.PromptSetID, job.TotalPrompts)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return scanJob(r.db.QueryRow(ctx, sqlinline.QSelectJobByID, id))
}

func (r *JobRepo) List(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, sqlinline.QSelectJobs, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *JobRepo) ClaimNextQueued(ctx context.Context) (*domain.Job, error) {
	return scanJob(r.db.QueryRow(ctx, sqlinline.QClaimNextQueuedJob))
}

// UpdateStatus is a no-op on terminal jobs: the statement's status guard
// skips them and the zero-row result maps to ErrJobFinished.
func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string, finishedAt *time.Time) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdateJobStatus, id, status, errMsg, finishedAt)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobFinished
	}
	return nil
}

func (r *JobRepo) HasActiveForPromptSet(ctx context.Context, promptSetID string) (bool, error) {
	var active bool
	if err := r.db.QueryRow(ctx, sqlinline.QJobHasActiveForPromptSet, promptSetID).Scan(&active); err != nil {
		return false, fmt.Errorf("check active job: %w", err)
	}
	return active, nil
}

func (r *JobRepo) LatestSucceeded(ctx context.Context) (*domain.Job, error) {
	return scanJob(r.db.QueryRow(ctx, sqlinline.QLatestSucceededJob))
}

func (r *JobRepo) SetZip(ctx context.Context, id string, zip domain.ZipInfo) error {
	tag, err := r.db.Exec(ctx, sqlinline.QSetJobZip, id, zip.Path, zip.SizeBytes, zip.SHA256, zip.BuiltAt)
	if err != nil {
		return fmt.Errorf("set job zip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepo) ClearZips(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, sqlinline.QClearJobZips); err != nil {
		return fmt.Errorf("clear job zips: %w", err)
	}
	return nil
}

func (r *JobRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteJob, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepo) RecordFailure(ctx context.Context, f *domain.PromptFailure) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertJobFailure, f.ID, f.JobID, f.Seq, f.PromptText, f.Reason)
	if err != nil {
		return fmt.Errorf("insert job failure: %w", err)
	}
	return nil
}

func (r *JobRepo) ListFailures(ctx context.Context, jobID string) ([]domain.PromptFailure, error) {
	rows, err := r.db.Query(ctx, sqlinline.QSelectJobFailures, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job failures: %w", err)
	}
	defer rows.Close()

	failures := []domain.PromptFailure{}
	for rows.Next() {
		var f domain.PromptFailure
		if err := rows.Scan(&f.ID, &f.JobID, &f.Seq, &f.PromptText, &f.Reason, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job      domain.Job
		zipPath  *string
		zipSize  *int64
		zipSHA   *string
		zipBuilt *time.Time
	)
	err := row.Scan(&job.ID, &job.PromptSetID, &job.Status, &job.TotalPrompts, &job.ImageCount,
		&job.ErrorMessage, &job.CreatedAt, &job.StartedAt, &job.FinishedAt,
		&zipPath, &zipSize, &zipSHA, &zipBuilt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	if zipPath != nil && *zipPath != "" {
		job.Zip = &domain.ZipInfo{Path: *zipPath}
		if zipSize != nil {
			job.Zip.SizeBytes = *zipSize
		}
		if zipSHA != nil {
			job.Zip.SHA256 = *zipSHA
		}
		if zipBuilt != nil {
			job.Zip.BuiltAt = *zipBuilt
		}
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepo)(nil)
