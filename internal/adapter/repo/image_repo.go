package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stickerprint/internal/domain"
	"stickerprint/internal/infra"
	"stickerprint/internal/sqlinline"
)

type ImageRepo struct {
	db infra.SQLExecutor
}

func NewImageRepo(db infra.SQLExecutor) *ImageRepo {
	return &ImageRepo{db: db}
}

// Insert writes the row and bumps the owning job's counter in one
// statement, returning the job's new image count.
func (r *ImageRepo) Insert(ctx context.Context, img *domain.Image) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, sqlinline.QInsertImage,
		img.ID, img.JobID, img.Seq, img.PromptText, img.Path, img.Width, img.Height).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}
	return count, nil
}

func (r *ImageRepo) GetByID(ctx context.Context, id string) (*domain.Image, error) {
	return scanImage(r.db.QueryRow(ctx, sqlinline.QSelectImageByID, id))
}

func (r *ImageRepo) ListByJob(ctx context.Context, jobID string) ([]domain.Image, error) {
	return r.collect(r.db.Query(ctx, sqlinline.QSelectImagesByJob, jobID))
}

func (r *ImageRepo) ListAll(ctx context.Context) ([]domain.Image, error) {
	return r.collect(r.db.Query(ctx, sqlinline.QSelectAllImages))
}

func (r *ImageRepo) ListPage(ctx context.Context, jobID string, offset, limit int) ([]domain.Image, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.collect(r.db.Query(ctx, sqlinline.QSelectImagesPage, jobID, offset, limit))
}

func (r *ImageRepo) DeleteAll(ctx context.Context) (int64, error) {
	var before int64
	if err := r.db.QueryRow(ctx, sqlinline.QCountAllImages).Scan(&before); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	if _, err := r.db.Exec(ctx, sqlinline.QDeleteAllImages); err != nil {
		return 0, fmt.Errorf("delete images: %w", err)
	}
	return before, nil
}

func (r *ImageRepo) DeleteByJob(ctx context.Context, jobID string) error {
	if _, err := r.db.Exec(ctx, sqlinline.QDeleteImagesByJob, jobID); err != nil {
		return fmt.Errorf("delete job images: %w", err)
	}
	return nil
}

func (r *ImageRepo) collect(rows pgx.Rows, err error) ([]domain.Image, error) {
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []domain.Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func scanImage(row pgx.Row) (*domain.Image, error) {
	var img domain.Image
	err := row.Scan(&img.ID, &img.JobID, &img.Seq, &img.PromptText, &img.Path,
		&img.Width, &img.Height, &img.CreatedAt)
	if infra.IsNoRows(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan image: %w", err)
	}
	return &img, nil
}

var _ domain.ImageRepository = (*ImageRepo)(nil)
