// Package repo implements the domain repositories over Postgres through
// the marker-checked SQL runner.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stickerprint/internal/domain"
	"stickerprint/internal/infra"
	"stickerprint/internal/sqlinline"
)

type PromptSetRepo struct {
	db infra.SQLExecutor
}

func NewPromptSetRepo(db infra.SQLExecutor) *PromptSetRepo {
	return &PromptSetRepo{db: db}
}

func (r *PromptSetRepo) Create(ctx context.Context, ps *domain.PromptSet) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertPromptSet,
		ps.ID, ps.Filename, ps.SHA256, ps.Path, ps.Source, ps.LineCount, ps.Status, ps.UserInput, ps.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert prompt set: %w", err)
	}
	return nil
}

func (r *PromptSetRepo) GetByID(ctx context.Context, id string) (*domain.PromptSet, error) {
	return scanPromptSet(r.db.QueryRow(ctx, sqlinline.QSelectPromptSetByID, id))
}

func (r *PromptSetRepo) List(ctx context.Context) ([]domain.PromptSet, error) {
	rows, err := r.db.Query(ctx, sqlinline.QSelectPromptSets)
	if err != nil {
		return nil, fmt.Errorf("list prompt sets: %w", err)
	}
	defer rows.Close()

	sets := []domain.PromptSet{}
	for rows.Next() {
		ps, err := scanPromptSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *ps)
	}
	return sets, rows.Err()
}

func (r *PromptSetRepo) UpdateStatus(ctx context.Context, id string, status domain.PromptSetStatus) error {
	tag, err := r.db.Exec(ctx, sqlinline.QUpdatePromptSetStatus, id, status)
	if err != nil {
		return fmt.Errorf("update prompt set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PromptSetRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeletePromptSet, id)
	if err != nil {
		return fmt.Errorf("delete prompt set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPromptSetBusy
	}
	return nil
}

func (r *PromptSetRepo) NextPending(ctx context.Context) (*domain.PromptSet, error) {
	return scanPromptSet(r.db.QueryRow(ctx, sqlinline.QSelectNextPendingPromptSet))
}

func scanPromptSet(row pgx.Row) (*domain.PromptSet, error) {
	var ps domain.PromptSet
	err := row.Scan(&ps.ID, &ps.Filename, &ps.SHA256, &ps.Path, &ps.Source,
		&ps.LineCount, &ps.Status, &ps.UserInput, &ps.UploadedAt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan prompt set: %w", err)
	}
	return &ps, nil
}

var _ domain.PromptSetRepository = (*PromptSetRepo)(nil)
