package archive

import (
	stdzip "archive/zip"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/storage"
)

// Test doubles embed the interface so only the methods the builder touches
// need real bodies.

type stubJobs struct {
	domain.JobRepository
	jobs map[string]*domain.Job
	zips map[string]domain.ZipInfo
}

func (s *stubJobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *stubJobs) SetZip(_ context.Context, id string, zip domain.ZipInfo) error {
	if s.zips == nil {
		s.zips = map[string]domain.ZipInfo{}
	}
	s.zips[id] = zip
	cp := zip
	s.jobs[id].Zip = &cp
	return nil
}

type stubImages struct {
	domain.ImageRepository
	byJob map[string][]domain.Image
}

func (s *stubImages) ListByJob(_ context.Context, jobID string) ([]domain.Image, error) {
	return s.byJob[jobID], nil
}

func (s *stubImages) ListAll(context.Context) ([]domain.Image, error) {
	var all []domain.Image
	for _, imgs := range s.byJob {
		all = append(all, imgs...)
	}
	return all, nil
}

type stubSettings struct {
	domain.SettingsRepository
	values map[string]string
}

func (s *stubSettings) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubSettings) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *stubSettings) Unset(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type builderHarness struct {
	builder *Builder
	jobs    *stubJobs
	images  *stubImages
	cfg     *stubSettings
	store   *storage.FileStore
}

func newBuilderHarness(t *testing.T) *builderHarness {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	logger := zerolog.New(io.Discard)

	jobs := &stubJobs{jobs: map[string]*domain.Job{}}
	images := &stubImages{byJob: map[string][]domain.Image{}}
	cfg := &stubSettings{values: map[string]string{}}
	hub := events.NewHub(logger)
	t.Cleanup(hub.Close)

	return &builderHarness{
		builder: NewBuilder(jobs, images, cfg, store, hub, logger),
		jobs:    jobs,
		images:  images,
		cfg:     cfg,
		store:   store,
	}
}

func (h *builderHarness) seedJob(t *testing.T, id string, status domain.JobStatus, prompts ...string) {
	t.Helper()
	now := time.Now().UTC()
	job := &domain.Job{ID: id, Status: status, TotalPrompts: len(prompts), ImageCount: len(prompts), CreatedAt: now}
	if status.Terminal() {
		job.FinishedAt = &now
	}
	h.jobs.jobs[id] = job

	for i, prompt := range prompts {
		key, err := h.store.Write(context.Background(),
			fmt.Sprintf("images/%s/%s", id, EntryName(i+1, prompt)),
			[]byte("png:"+prompt))
		require.NoError(t, err)
		h.images.byJob[id] = append(h.images.byJob[id], domain.Image{
			ID: fmt.Sprintf("%s-%d", id, i+1), JobID: id, Seq: i + 1, PromptText: prompt, Path: key,
		})
	}
}

func readEntryNames(t *testing.T, h *builderHarness, key string) []string {
	t.Helper()
	abs, err := h.store.AbsPath(key)
	require.NoError(t, err)
	reader, err := stdzip.OpenReader(abs)
	require.NoError(t, err)
	defer reader.Close()
	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	return names
}

func TestBuildJobCreatesAndRecordsArchive(t *testing.T) {
	h := newBuilderHarness(t)
	h.seedJob(t, "job1", domain.JobStatusSucceeded, "a red fox", "a blue whale")

	info, err := h.builder.BuildJob(context.Background(), "job1")
	require.NoError(t, err)
	require.Equal(t, "zips/job1.zip", info.Path)
	require.NotEmpty(t, info.SHA256)
	require.Positive(t, info.SizeBytes)
	require.True(t, h.store.Exists(info.Path))

	names := readEntryNames(t, h, info.Path)
	require.Equal(t, []string{"001-a-red-fox.png", "002-a-blue-whale.png"}, names)

	recorded, ok := h.jobs.zips["job1"]
	require.True(t, ok, "zip metadata must be persisted on the job")
	require.Equal(t, info.SHA256, recorded.SHA256)
}

func TestBuildJobReturnsCachedArchive(t *testing.T) {
	h := newBuilderHarness(t)
	h.seedJob(t, "job1", domain.JobStatusSucceeded, "fox")

	first, err := h.builder.BuildJob(context.Background(), "job1")
	require.NoError(t, err)
	second, err := h.builder.BuildJob(context.Background(), "job1")
	require.NoError(t, err)
	require.Equal(t, first.BuiltAt, second.BuiltAt, "second call must reuse the cached build")
}

func TestBuildJobRejectsActiveJob(t *testing.T) {
	h := newBuilderHarness(t)
	h.seedJob(t, "job1", domain.JobStatusRunning, "fox")

	_, err := h.builder.BuildJob(context.Background(), "job1")
	require.Error(t, err)
}

func TestBuildJobWithoutImages(t *testing.T) {
	h := newBuilderHarness(t)
	h.seedJob(t, "job1", domain.JobStatusFailed)

	_, err := h.builder.BuildJob(context.Background(), "job1")
	require.ErrorIs(t, err, domain.ErrNoImages)
}

func TestBuildAllGroupsByJob(t *testing.T) {
	h := newBuilderHarness(t)
	h.seedJob(t, "jobA", domain.JobStatusSucceeded, "fox")
	h.seedJob(t, "jobB", domain.JobStatusSucceeded, "owl")

	info, err := h.builder.BuildAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, "zips/all_jobs.zip", info.Path)

	names := readEntryNames(t, h, info.Path)
	require.ElementsMatch(t, []string{"jobA/001-fox.png", "jobB/001-owl.png"},
		trimJobPrefix(names))
	require.Equal(t, info.Path, h.cfg.values[domain.ConfigAllZipPath])
	require.Equal(t, info.SHA256, h.cfg.values[domain.ConfigAllZipSHA256])
}

// trimJobPrefix rewrites "job_<id>/..." to "<id>/..." so assertions stay
// readable.
func trimJobPrefix(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name
		if len(name) > 4 && name[:4] == "job_" {
			out[i] = name[4:]
		}
	}
	return out
}

func TestInvalidateAllClearsCache(t *testing.T) {
	h := newBuilderHarness(t)
	h.seedJob(t, "jobA", domain.JobStatusSucceeded, "fox")

	info, err := h.builder.BuildAll(context.Background())
	require.NoError(t, err)
	require.True(t, h.store.Exists(info.Path))

	require.NoError(t, h.builder.InvalidateAll(context.Background()))
	require.False(t, h.store.Exists(info.Path))
	require.Empty(t, h.cfg.values[domain.ConfigAllZipPath])
}
