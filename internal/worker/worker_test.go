package worker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"stickerprint/internal/archive"
	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/generation"
	"stickerprint/internal/storage"
)

type memPromptSets struct {
	mu   sync.Mutex
	sets map[string]*domain.PromptSet
}

func newMemPromptSets() *memPromptSets {
	return &memPromptSets{sets: map[string]*domain.PromptSet{}}
}

func (m *memPromptSets) Create(_ context.Context, ps *domain.PromptSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ps
	m.sets[ps.ID] = &cp
	return nil
}

func (m *memPromptSets) GetByID(_ context.Context, id string) (*domain.PromptSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.sets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ps
	return &cp, nil
}

func (m *memPromptSets) List(context.Context) ([]domain.PromptSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.PromptSet{}
	for _, ps := range m.sets {
		out = append(out, *ps)
	}
	return out, nil
}

func (m *memPromptSets) UpdateStatus(_ context.Context, id string, status domain.PromptSetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.sets[id]
	if !ok {
		return domain.ErrNotFound
	}
	ps.Status = status
	return nil
}

func (m *memPromptSets) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.sets[id]
	if !ok {
		return domain.ErrNotFound
	}
	if ps.Status != domain.PromptSetPending {
		return domain.ErrPromptSetBusy
	}
	delete(m.sets, id)
	return nil
}

func (m *memPromptSets) NextPending(context.Context) (*domain.PromptSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *domain.PromptSet
	for _, ps := range m.sets {
		if ps.Status != domain.PromptSetPending {
			continue
		}
		if oldest == nil || ps.UploadedAt.Before(oldest.UploadedAt) {
			oldest = ps
		}
	}
	if oldest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *oldest
	return &cp, nil
}

type memJobs struct {
	mu       sync.Mutex
	jobs     map[string]*domain.Job
	failures []domain.PromptFailure
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*domain.Job{}}
}

func (m *memJobs) Create(_ context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobs) List(context.Context, int) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Job{}
	for _, job := range m.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memJobs) ClaimNextQueued(context.Context) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.Status == domain.JobStatusRunning {
			return nil, domain.ErrNotFound
		}
	}
	var oldest *domain.Job
	for _, job := range m.jobs {
		if job.Status != domain.JobStatusQueued {
			continue
		}
		if oldest == nil || job.CreatedAt.Before(oldest.CreatedAt) {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, domain.ErrNotFound
	}
	oldest.Status = domain.JobStatusRunning
	now := time.Now().UTC()
	oldest.StartedAt = &now
	cp := *oldest
	return &cp, nil
}

func (m *memJobs) UpdateStatus(_ context.Context, id string, status domain.JobStatus, errMsg string, finishedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if job.Status.Terminal() {
		return domain.ErrJobFinished
	}
	job.Status = status
	if errMsg != "" {
		job.ErrorMessage = errMsg
	}
	if finishedAt != nil {
		job.FinishedAt = finishedAt
	}
	return nil
}

func (m *memJobs) HasActiveForPromptSet(_ context.Context, promptSetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.PromptSetID == promptSetID && !job.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memJobs) LatestSucceeded(context.Context) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.Job
	for _, job := range m.jobs {
		if job.Status != domain.JobStatusSucceeded {
			continue
		}
		if latest == nil || (job.FinishedAt != nil && latest.FinishedAt != nil && job.FinishedAt.After(*latest.FinishedAt)) {
			latest = job
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memJobs) SetZip(_ context.Context, id string, zip domain.ZipInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	cp := zip
	job.Zip = &cp
	return nil
}

func (m *memJobs) ClearZips(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		job.Zip = nil
	}
	return nil
}

func (m *memJobs) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memJobs) RecordFailure(_ context.Context, f *domain.PromptFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, *f)
	return nil
}

func (m *memJobs) ListFailures(_ context.Context, jobID string) ([]domain.PromptFailure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.PromptFailure{}
	for _, f := range m.failures {
		if f.JobID == jobID {
			out = append(out, f)
		}
	}
	return out, nil
}

type memImages struct {
	mu     sync.Mutex
	images []domain.Image
	jobs   *memJobs
}

func (m *memImages) Insert(_ context.Context, img *domain.Image) (int, error) {
	m.mu.Lock()
	m.images = append(m.images, *img)
	m.mu.Unlock()

	m.jobs.mu.Lock()
	defer m.jobs.mu.Unlock()
	job, ok := m.jobs.jobs[img.JobID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	job.ImageCount++
	return job.ImageCount, nil
}

func (m *memImages) GetByID(_ context.Context, id string) (*domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range m.images {
		if img.ID == id {
			cp := img
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memImages) ListByJob(_ context.Context, jobID string) ([]domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Image{}
	for _, img := range m.images {
		if img.JobID == jobID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *memImages) ListAll(context.Context) ([]domain.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Image{}, m.images...), nil
}

func (m *memImages) ListPage(_ context.Context, jobID string, offset, limit int) ([]domain.Image, error) {
	all, _ := m.ListAll(context.Background())
	out := []domain.Image{}
	for _, img := range all {
		if jobID == "" || img.JobID == jobID {
			out = append(out, img)
		}
	}
	if offset >= len(out) {
		return []domain.Image{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memImages) DeleteAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.images))
	m.images = nil
	return n, nil
}

func (m *memImages) DeleteByJob(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.images[:0]
	for _, img := range m.images {
		if img.JobID != jobID {
			kept = append(kept, img)
		}
	}
	m.images = kept
	return nil
}

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettings(values map[string]string) *memSettings {
	if values == nil {
		values = map[string]string{}
	}
	return &memSettings{values: values}
}

func (m *memSettings) Load(context.Context) (*domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.Settings{
		BasePrompt:       m.values[domain.ConfigBasePrompt],
		APIKey:           m.values[domain.ConfigAPIKey],
		Model:            m.values[domain.ConfigModel],
		Provider:         m.values[domain.ConfigProvider],
		DesignerTemplate: m.values[domain.ConfigDesignerTemplate],
	}, nil
}

func (m *memSettings) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memSettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memSettings) Unset(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls []generation.ImageRequest
	fn    func(seq int, req generation.ImageRequest) (*generation.ImageResult, error)
}

func (g *fakeGenerator) Generate(_ context.Context, req generation.ImageRequest) (*generation.ImageResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	seq := len(g.calls)
	g.mu.Unlock()
	if g.fn != nil {
		return g.fn(seq, req)
	}
	return &generation.ImageResult{Data: []byte("png-bytes"), Width: 1024, Height: 1024, MIME: "image/png"}, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type harness struct {
	worker     *Worker
	promptSets *memPromptSets
	jobs       *memJobs
	images     *memImages
	settings   *memSettings
	generator  *fakeGenerator
	store      *storage.FileStore
	hub        *events.Hub
}

func newHarness(t *testing.T, settings map[string]string) *harness {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	promptSets := newMemPromptSets()
	jobs := newMemJobs()
	images := &memImages{jobs: jobs}
	cfg := newMemSettings(settings)
	gen := &fakeGenerator{}
	hub := events.NewHub(logger)
	archives := archive.NewBuilder(jobs, images, cfg, store, hub, logger)

	w := New(Options{
		PromptSets:        promptSets,
		Jobs:              jobs,
		Images:            images,
		Settings:          cfg,
		Store:             store,
		Generator:         gen,
		Archives:          archives,
		Hub:               hub,
		Logger:            logger,
		PollInterval:      time.Millisecond,
		GenerationTimeout: time.Second,
		RequestInterval:   time.Microsecond,
	})
	return &harness{
		worker:     w,
		promptSets: promptSets,
		jobs:       jobs,
		images:     images,
		settings:   cfg,
		generator:  gen,
		store:      store,
		hub:        hub,
	}
}

func (h *harness) seedPromptSet(t *testing.T, prompts ...string) *domain.PromptSet {
	t.Helper()
	blob := ""
	for _, p := range prompts {
		blob += p + "\n"
	}
	key, err := h.store.Write(context.Background(), "prompts/test.txt", []byte(blob))
	require.NoError(t, err)

	ps := &domain.PromptSet{
		ID:         uuid.NewString(),
		Filename:   "test.txt",
		Path:       key,
		Source:     domain.PromptSetUploaded,
		LineCount:  len(prompts),
		Status:     domain.PromptSetPending,
		UploadedAt: time.Now().UTC(),
	}
	require.NoError(t, h.promptSets.Create(context.Background(), ps))
	return ps
}

func (h *harness) seedRunningJob(t *testing.T, prompts ...string) *domain.Job {
	t.Helper()
	ps := h.seedPromptSet(t, prompts...)
	job := &domain.Job{
		ID:           uuid.NewString(),
		PromptSetID:  ps.ID,
		Status:       domain.JobStatusRunning,
		TotalPrompts: len(prompts),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, h.jobs.Create(context.Background(), job))
	require.NoError(t, h.promptSets.UpdateStatus(context.Background(), ps.ID, domain.PromptSetInUse))
	return job
}

func defaultSettings() map[string]string {
	return map[string]string{
		domain.ConfigAPIKey:     "sk-test-1234567890",
		domain.ConfigModel:      "gpt-image-1",
		domain.ConfigBasePrompt: "sticker style",
	}
}

func TestProcessJobSuccess(t *testing.T) {
	h := newHarness(t, defaultSettings())
	job := h.seedRunningJob(t, "a red fox", "a blue whale", "a green frog")

	h.worker.processJob(context.Background(), job)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusSucceeded, got.Status)
	require.Equal(t, 3, got.ImageCount)
	require.NotNil(t, got.FinishedAt)
	require.True(t, got.ZipReady(), "archive should be built on success")

	images, err := h.images.ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, images, 3)
	require.Equal(t, 1, images[0].Seq)
	require.Equal(t, fmt.Sprintf("images/%s/001-a-red-fox.png", job.ID), images[0].Path)
	require.True(t, h.store.Exists(images[0].Path))

	ps, err := h.promptSets.GetByID(context.Background(), job.PromptSetID)
	require.NoError(t, err)
	require.Equal(t, domain.PromptSetConsumed, ps.Status)
}

func TestProcessJobAppendsBasePrompt(t *testing.T) {
	h := newHarness(t, defaultSettings())
	job := h.seedRunningJob(t, "a red fox")

	h.worker.processJob(context.Background(), job)

	require.Equal(t, 1, h.generator.callCount())
	require.Equal(t, "a red fox — sticker style", h.generator.calls[0].Prompt)
}

func TestProcessJobMissingAPIKeyFailsFast(t *testing.T) {
	h := newHarness(t, map[string]string{domain.ConfigModel: "gpt-image-1"})
	job := h.seedRunningJob(t, "a red fox", "a blue whale")

	h.worker.processJob(context.Background(), job)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, got.Status)
	require.Contains(t, got.ErrorMessage, "api key")
	require.Zero(t, h.generator.callCount(), "no API call should happen without a key")
}

func TestProcessJobAuthErrorAbortsJob(t *testing.T) {
	h := newHarness(t, defaultSettings())
	h.generator.fn = func(seq int, _ generation.ImageRequest) (*generation.ImageResult, error) {
		if seq == 2 {
			return nil, &generation.Error{Kind: generation.KindAuth, Status: 401, Message: "bad key"}
		}
		return &generation.ImageResult{Data: []byte("x")}, nil
	}
	job := h.seedRunningJob(t, "one", "two", "three")

	h.worker.processJob(context.Background(), job)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, got.Status)
	require.Equal(t, 1, got.ImageCount, "images before the auth error are kept")
	require.Equal(t, 2, h.generator.callCount(), "the loop stops at the auth error")
}

func TestProcessJobToleratesIsolatedFailures(t *testing.T) {
	h := newHarness(t, defaultSettings())
	h.generator.fn = func(seq int, _ generation.ImageRequest) (*generation.ImageResult, error) {
		if seq == 2 {
			return nil, &generation.Error{Kind: generation.KindContentPolicy, Message: "rejected"}
		}
		return &generation.ImageResult{Data: []byte("x")}, nil
	}
	job := h.seedRunningJob(t, "one", "two", "three")

	h.worker.processJob(context.Background(), job)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusSucceeded, got.Status)
	require.Equal(t, 2, got.ImageCount)

	failures, err := h.jobs.ListFailures(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, 2, failures[0].Seq)
	require.Contains(t, failures[0].Reason, "CONTENT_POLICY")
}

func TestProcessJobFailureStreakAborts(t *testing.T) {
	h := newHarness(t, defaultSettings())
	h.generator.fn = func(int, generation.ImageRequest) (*generation.ImageResult, error) {
		return nil, &generation.Error{Kind: generation.KindTransient, Message: "boom"}
	}
	prompts := make([]string, 10)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("prompt %d", i+1)
	}
	job := h.seedRunningJob(t, prompts...)

	h.worker.processJob(context.Background(), job)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusFailed, got.Status)
	require.Contains(t, got.ErrorMessage, "consecutive")
	require.Equal(t, maxConsecutiveFailures, h.generator.callCount())
}

func TestProcessJobSettingsReadFreshEachPrompt(t *testing.T) {
	h := newHarness(t, defaultSettings())
	h.generator.fn = func(seq int, _ generation.ImageRequest) (*generation.ImageResult, error) {
		if seq == 1 {
			require.NoError(t, h.settings.Set(context.Background(), domain.ConfigBasePrompt, "new style"))
		}
		return &generation.ImageResult{Data: []byte("x")}, nil
	}
	job := h.seedRunningJob(t, "one", "two")

	h.worker.processJob(context.Background(), job)

	require.Equal(t, "one — sticker style", h.generator.calls[0].Prompt)
	require.Equal(t, "two — new style", h.generator.calls[1].Prompt)
}

func TestCancelRunningJobStopsAtBoundary(t *testing.T) {
	h := newHarness(t, defaultSettings())
	job := h.seedRunningJob(t, "one", "two", "three")

	_, err := h.worker.Cancel(context.Background(), job.ID)
	require.NoError(t, err)

	h.worker.processJob(context.Background(), job)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCanceled, got.Status)
	require.Zero(t, h.generator.callCount())
	require.False(t, h.worker.isCanceled(job.ID), "cancel flag is cleared once honored")
}

func TestCancelQueuedJobIsImmediate(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ps := h.seedPromptSet(t, "one")
	job := &domain.Job{
		ID:          uuid.NewString(),
		PromptSetID: ps.ID,
		Status:      domain.JobStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, h.jobs.Create(context.Background(), job))

	canceled, err := h.worker.Cancel(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCanceled, canceled.Status)

	got, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatusCanceled, got.Status)
}

// staleReadJobs reports a running status on the first read only, mimicking
// a job that finishes right after Cancel fetched it.
type staleReadJobs struct {
	*memJobs
	mu    sync.Mutex
	reads int
}

func (s *staleReadJobs) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	job, err := s.memJobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.reads++
	if s.reads == 1 {
		job.Status = domain.JobStatusRunning
		job.FinishedAt = nil
	}
	s.mu.Unlock()
	return job, nil
}

func TestCancelRacingCompletionLeavesNoFlag(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ps := h.seedPromptSet(t, "one")
	now := time.Now().UTC()
	job := &domain.Job{
		ID:          uuid.NewString(),
		PromptSetID: ps.ID,
		Status:      domain.JobStatusSucceeded,
		CreatedAt:   now,
		FinishedAt:  &now,
	}
	require.NoError(t, h.jobs.Create(context.Background(), job))

	w := New(Options{
		PromptSets: h.promptSets,
		Jobs:       &staleReadJobs{memJobs: h.jobs},
		Images:     h.images,
		Settings:   h.settings,
		Store:      h.store,
		Generator:  h.generator,
		Hub:        h.hub,
		Logger:     zerolog.New(io.Discard),
	})

	_, err := w.Cancel(context.Background(), job.ID)
	require.ErrorIs(t, err, domain.ErrJobFinished)
	require.False(t, w.isCanceled(job.ID), "no cancel flag may outlive a finished job")
}

func TestCancelTerminalJobRejected(t *testing.T) {
	h := newHarness(t, defaultSettings())
	ps := h.seedPromptSet(t, "one")
	now := time.Now().UTC()
	job := &domain.Job{
		ID:          uuid.NewString(),
		PromptSetID: ps.ID,
		Status:      domain.JobStatusSucceeded,
		CreatedAt:   now,
		FinishedAt:  &now,
	}
	require.NoError(t, h.jobs.Create(context.Background(), job))

	_, err := h.worker.Cancel(context.Background(), job.ID)
	require.ErrorIs(t, err, domain.ErrJobFinished)
}

func TestFeedQueuePromotesOldestPending(t *testing.T) {
	h := newHarness(t, defaultSettings())
	old := h.seedPromptSet(t, "one", "two")
	old.UploadedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, h.promptSets.Create(context.Background(), old))
	h.seedPromptSet(t, "later")

	require.NoError(t, h.worker.feedQueue(context.Background()))

	jobs, err := h.jobs.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, old.ID, jobs[0].PromptSetID)
	require.Equal(t, domain.JobStatusQueued, jobs[0].Status)
	require.Equal(t, 2, jobs[0].TotalPrompts)

	ps, err := h.promptSets.GetByID(context.Background(), old.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PromptSetInUse, ps.Status)
}

func TestSplitPrompts(t *testing.T) {
	prompts := SplitPrompts("one\r\n\n  two  \n\t\nthree\n")
	require.Equal(t, []string{"one", "two", "three"}, prompts)
}

func TestEffectivePrompt(t *testing.T) {
	require.Equal(t, "fox", EffectivePrompt("fox", "  "))
	require.Equal(t, "fox — sticker", EffectivePrompt("fox", "sticker"))
}
