// Package archive bundles a job's generated images (or every job's) into
// zip files, lazily and idempotently: an archive is built once, its path,
// size, and digest are cached, and the cache is invalidated whenever the
// underlying image set changes.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/storage"
	"stickerprint/pkg/zip"
)

// AllJobs is the sentinel scope for the combined archive.
const AllJobs = "all"

const allJobsKey = "zips/all_jobs.zip"

// Builder produces zip bundles. Concurrent requests for the same scope
// collapse into one build via singleflight.
type Builder struct {
	jobs     domain.JobRepository
	images   domain.ImageRepository
	settings domain.SettingsRepository
	store    *storage.FileStore
	hub      *events.Hub
	logger   zerolog.Logger
	group    singleflight.Group
}

func NewBuilder(
	jobs domain.JobRepository,
	images domain.ImageRepository,
	settings domain.SettingsRepository,
	store *storage.FileStore,
	hub *events.Hub,
	logger zerolog.Logger,
) *Builder {
	return &Builder{
		jobs:     jobs,
		images:   images,
		settings: settings,
		store:    store,
		hub:      hub,
		logger:   logger,
	}
}

// BuildJob returns the archive for one terminal job, building it if the
// cached artifact is missing.
func (b *Builder) BuildJob(ctx context.Context, jobID string) (*domain.ZipInfo, error) {
	job, err := b.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.Terminal() {
		return nil, fmt.Errorf("job %s is not finished", jobID)
	}
	if job.ZipReady() && b.store.Exists(job.Zip.Path) {
		return job.Zip, nil
	}

	v, err, _ := b.group.Do("job:"+jobID, func() (any, error) {
		return b.buildJobArchive(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ZipInfo), nil
}

func (b *Builder) buildJobArchive(ctx context.Context, job *domain.Job) (*domain.ZipInfo, error) {
	imgs, err := b.images.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, domain.ErrNoImages
	}

	key := fmt.Sprintf("zips/%s.zip", job.ID)
	info, err := b.writeArchive(ctx, key, imgs, func(img domain.Image) string {
		return EntryName(img.Seq, img.PromptText)
	})
	if err != nil {
		return nil, err
	}
	if err := b.jobs.SetZip(ctx, job.ID, *info); err != nil {
		return nil, fmt.Errorf("record archive: %w", err)
	}

	// A new per-job bundle makes the combined archive stale.
	if err := b.InvalidateAll(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("archive: invalidate combined cache failed")
	}

	b.hub.Publish(events.ZipReady, map[string]any{
		"job_id":     job.ID,
		"size_bytes": info.SizeBytes,
		"sha256":     info.SHA256,
	})
	b.logger.Info().Str("job_id", job.ID).Int64("bytes", info.SizeBytes).Msg("archive: job bundle built")
	return info, nil
}

// BuildAll returns the combined archive across every job, rebuilding only
// when the cached artifact is gone or was invalidated.
func (b *Builder) BuildAll(ctx context.Context) (*domain.ZipInfo, error) {
	if cached, ok := b.cachedAll(ctx); ok {
		return cached, nil
	}

	v, err, _ := b.group.Do(AllJobs, func() (any, error) {
		return b.buildAllArchive(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ZipInfo), nil
}

func (b *Builder) cachedAll(ctx context.Context) (*domain.ZipInfo, bool) {
	path, err := b.settings.Get(ctx, domain.ConfigAllZipPath)
	if err != nil || path == "" || !b.store.Exists(path) {
		return nil, false
	}
	sha, _ := b.settings.Get(ctx, domain.ConfigAllZipSHA256)
	abs, err := b.store.AbsPath(path)
	if err != nil {
		return nil, false
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return nil, false
	}
	return &domain.ZipInfo{Path: path, SizeBytes: stat.Size(), SHA256: sha, BuiltAt: stat.ModTime()}, true
}

func (b *Builder) buildAllArchive(ctx context.Context) (*domain.ZipInfo, error) {
	imgs, err := b.images.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, domain.ErrNoImages
	}

	info, err := b.writeArchive(ctx, allJobsKey, imgs, func(img domain.Image) string {
		return fmt.Sprintf("job_%s/%s", img.JobID, EntryName(img.Seq, img.PromptText))
	})
	if err != nil {
		return nil, err
	}

	if err := b.settings.Set(ctx, domain.ConfigAllZipPath, info.Path); err != nil {
		return nil, err
	}
	if err := b.settings.Set(ctx, domain.ConfigAllZipSHA256, info.SHA256); err != nil {
		return nil, err
	}
	if err := b.settings.Set(ctx, domain.ConfigAllZipBuiltAt, info.BuiltAt.UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}

	b.hub.Publish(events.ZipReady, map[string]any{
		"job_id":     AllJobs,
		"size_bytes": info.SizeBytes,
		"sha256":     info.SHA256,
	})
	return info, nil
}

// writeArchive streams every image into a fresh zip at key and returns the
// recorded metadata. The file is written to a temp name first so a failed
// build never leaves a half-written archive behind.
func (b *Builder) writeArchive(ctx context.Context, key string, imgs []domain.Image, entryName func(domain.Image) string) (*domain.ZipInfo, error) {
	abs, err := b.store.AbsPath(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("archive: ensure directory: %w", err)
	}

	tmp := abs + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("archive: create file: %w", err)
	}
	zw := zip.NewWriter(f)
	for _, img := range imgs {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(tmp)
			return nil, err
		}
		data, err := b.store.Read(ctx, img.Path)
		if err != nil {
			// Skip rows whose file disappeared; the bundle should still
			// contain everything that exists.
			b.logger.Warn().Err(err).Str("image_id", img.ID).Msg("archive: missing image file")
			continue
		}
		if err := zw.Add(entryName(img), data); err != nil {
			f.Close()
			os.Remove(tmp)
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("archive: finalize zip: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("archive: close file: %w", err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("archive: publish file: %w", err)
	}

	sha, size, err := fileDigest(abs)
	if err != nil {
		return nil, err
	}
	return &domain.ZipInfo{Path: key, SizeBytes: size, SHA256: sha, BuiltAt: time.Now().UTC()}, nil
}

// InvalidateAll removes the combined archive and its cached metadata.
func (b *Builder) InvalidateAll(ctx context.Context) error {
	if err := b.store.Remove(allJobsKey); err != nil {
		return err
	}
	return b.settings.Unset(ctx, domain.ConfigAllZipPath, domain.ConfigAllZipSHA256, domain.ConfigAllZipBuiltAt)
}

// InvalidateJob removes one job's archive file. The caller clears the row
// metadata (or deletes the job outright).
func (b *Builder) InvalidateJob(jobID string) error {
	return b.store.Remove(fmt.Sprintf("zips/%s.zip", jobID))
}

func fileDigest(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("archive: open for digest: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("archive: digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
