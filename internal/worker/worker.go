// Package worker runs the background batch loop: it promotes pending
// prompt sets into queued jobs, claims at most one job at a time, and walks
// the job's prompts against the generation API one by one.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"stickerprint/internal/archive"
	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/generation"
	"stickerprint/internal/storage"
)

// maxConsecutiveFailures is the point at which isolated per-prompt errors
// stop looking isolated and the whole job is failed.
const maxConsecutiveFailures = 5

// Options wires the worker's collaborators.
type Options struct {
	PromptSets domain.PromptSetRepository
	Jobs       domain.JobRepository
	Images     domain.ImageRepository
	Settings   domain.SettingsRepository
	Store      *storage.FileStore
	Generator  generation.ImageGenerator
	Archives   *archive.Builder
	Hub        *events.Hub
	Logger     zerolog.Logger

	// PollInterval is how often the idle loop checks for work.
	PollInterval time.Duration
	// GenerationTimeout bounds one image call.
	GenerationTimeout time.Duration
	// RequestInterval is the minimum spacing between API calls.
	RequestInterval time.Duration
}

// Worker is the single background consumer. Run one per process: the
// database claim is atomic, so extra replicas would idle rather than
// double-process, but in-memory cancel flags only reach the local loop.
type Worker struct {
	promptSets domain.PromptSetRepository
	jobs       domain.JobRepository
	images     domain.ImageRepository
	settings   domain.SettingsRepository
	store      *storage.FileStore
	generator  generation.ImageGenerator
	archives   *archive.Builder
	hub        *events.Hub
	logger     zerolog.Logger

	poll       time.Duration
	genTimeout time.Duration
	limiter    *rate.Limiter

	mu       sync.Mutex
	canceled map[string]struct{}
}

func New(opts Options) *Worker {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	genTimeout := opts.GenerationTimeout
	if genTimeout <= 0 {
		genTimeout = 120 * time.Second
	}
	interval := opts.RequestInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Worker{
		promptSets: opts.PromptSets,
		jobs:       opts.Jobs,
		images:     opts.Images,
		settings:   opts.Settings,
		store:      opts.Store,
		generator:  opts.Generator,
		archives:   opts.Archives,
		hub:        opts.Hub,
		logger:     opts.Logger,
		poll:       poll,
		genTimeout: genTimeout,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		canceled:   make(map[string]struct{}),
	}
}

// Run blocks until ctx is canceled, alternating between feeding the queue
// and processing one claimed job at a time.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Dur("poll", w.poll).Msg("worker: started")
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		w.tick(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker: stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if err := w.feedQueue(ctx); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Error().Err(err).Msg("worker: feed queue failed")
	}

	job, err := w.jobs.ClaimNextQueued(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("worker: claim failed")
		}
		return
	}
	w.processJob(ctx, job)
}

// feedQueue turns the oldest pending prompt set into a queued job. One set,
// one job: the set flips to in_use so it is never enqueued twice.
func (w *Worker) feedQueue(ctx context.Context) error {
	ps, err := w.promptSets.NextPending(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	job := &domain.Job{
		ID:           uuid.NewString(),
		PromptSetID:  ps.ID,
		Status:       domain.JobStatusQueued,
		TotalPrompts: ps.LineCount,
		CreatedAt:    time.Now().UTC(),
	}
	if err := w.jobs.Create(ctx, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if err := w.promptSets.UpdateStatus(ctx, ps.ID, domain.PromptSetInUse); err != nil {
		return fmt.Errorf("mark prompt set in use: %w", err)
	}

	w.hub.Publish(events.JobUpdated, jobPayload(job))
	w.hub.Publish(events.PromptQueueUpdated, map[string]any{"prompt_set_id": ps.ID, "status": domain.PromptSetInUse})
	w.logger.Info().Str("job_id", job.ID).Str("prompt_set_id", ps.ID).Int("prompts", ps.LineCount).Msg("worker: job queued")
	return nil
}

func (w *Worker) processJob(ctx context.Context, job *domain.Job) {
	log := w.logger.With().Str("job_id", job.ID).Logger()
	log.Info().Int("total", job.TotalPrompts).Msg("worker: job started")
	w.hub.Publish(events.JobUpdated, map[string]any{"id": job.ID, "status": domain.JobStatusRunning, "image_count": job.ImageCount, "total_prompts": job.TotalPrompts})

	prompts, err := w.loadPrompts(ctx, job.PromptSetID)
	if err != nil {
		w.finishJob(ctx, job, domain.JobStatusFailed, fmt.Sprintf("load prompts: %v", err))
		return
	}

	consecutive := 0
	for i, prompt := range prompts {
		seq := i + 1

		if ctx.Err() != nil || w.isCanceled(job.ID) {
			w.finishJob(ctx, job, domain.JobStatusCanceled, "")
			return
		}

		// Settings are re-read on every iteration so key, model, and base
		// prompt edits apply to the job already in flight.
		cfg, err := w.settings.Load(ctx)
		if err != nil {
			w.finishJob(ctx, job, domain.JobStatusFailed, fmt.Sprintf("load settings: %v", err))
			return
		}
		if strings.TrimSpace(cfg.APIKey) == "" {
			w.finishJob(ctx, job, domain.JobStatusFailed, domain.ErrMissingAPIKey.Error())
			return
		}

		if err := w.limiter.Wait(ctx); err != nil {
			w.finishJob(ctx, job, domain.JobStatusCanceled, "")
			return
		}

		result, err := w.generate(ctx, prompt, cfg)
		if err != nil {
			kind := generation.KindOf(err)
			if kind == generation.KindAuth {
				log.Error().Err(err).Msg("worker: auth failure, aborting job")
				w.finishJob(ctx, job, domain.JobStatusFailed, err.Error())
				return
			}
			consecutive++
			if consecutive >= maxConsecutiveFailures {
				log.Error().Err(err).Int("consecutive", consecutive).Msg("worker: failure streak, aborting job")
				w.finishJob(ctx, job, domain.JobStatusFailed,
					fmt.Sprintf("%d consecutive prompt failures, last: %v", consecutive, err))
				return
			}
			w.recordFailure(ctx, job.ID, seq, prompt, kind, err)
			continue
		}
		consecutive = 0

		if err := w.storeImage(ctx, job, seq, prompt, result); err != nil {
			log.Error().Err(err).Int("seq", seq).Msg("worker: persist image failed")
			w.recordFailure(ctx, job.ID, seq, prompt, generation.KindUnknown, err)
			continue
		}
	}

	w.finishJob(ctx, job, domain.JobStatusSucceeded, "")
}

func (w *Worker) loadPrompts(ctx context.Context, promptSetID string) ([]string, error) {
	ps, err := w.promptSets.GetByID(ctx, promptSetID)
	if err != nil {
		return nil, err
	}
	raw, err := w.store.Read(ctx, ps.Path)
	if err != nil {
		return nil, err
	}
	prompts := SplitPrompts(string(raw))
	if len(prompts) == 0 {
		return nil, domain.ErrEmptyPromptSet
	}
	return prompts, nil
}

// SplitPrompts turns a raw prompt blob into its non-empty trimmed lines.
func SplitPrompts(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	prompts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			prompts = append(prompts, trimmed)
		}
	}
	return prompts
}

// EffectivePrompt appends the shared base prompt to one line's text.
func EffectivePrompt(prompt, basePrompt string) string {
	basePrompt = strings.TrimSpace(basePrompt)
	if basePrompt == "" {
		return prompt
	}
	return prompt + " — " + basePrompt
}

func (w *Worker) generate(ctx context.Context, prompt string, cfg *domain.Settings) (*generation.ImageResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.genTimeout)
	defer cancel()
	return w.generator.Generate(callCtx, generation.ImageRequest{
		Prompt: EffectivePrompt(prompt, cfg.BasePrompt),
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	})
}

func (w *Worker) storeImage(ctx context.Context, job *domain.Job, seq int, prompt string, result *generation.ImageResult) error {
	key := fmt.Sprintf("images/%s/%s", job.ID, archive.EntryName(seq, prompt))
	storedKey, err := w.store.Write(ctx, key, result.Data)
	if err != nil {
		return err
	}

	img := &domain.Image{
		ID:         uuid.NewString(),
		JobID:      job.ID,
		Seq:        seq,
		PromptText: prompt,
		Path:       storedKey,
		Width:      result.Width,
		Height:     result.Height,
		CreatedAt:  time.Now().UTC(),
	}
	count, err := w.images.Insert(ctx, img)
	if err != nil {
		return err
	}

	w.hub.Publish(events.ImageCreated, map[string]any{
		"job_id":        job.ID,
		"image_id":      img.ID,
		"seq":           seq,
		"prompt":        prompt,
		"image_count":   count,
		"total_prompts": job.TotalPrompts,
		"progress":      fmt.Sprintf("%d/%d", count, job.TotalPrompts),
	})
	return nil
}

func (w *Worker) recordFailure(ctx context.Context, jobID string, seq int, prompt string, kind generation.Kind, cause error) {
	failure := &domain.PromptFailure{
		ID:         uuid.NewString(),
		JobID:      jobID,
		Seq:        seq,
		PromptText: prompt,
		Reason:     fmt.Sprintf("%s: %v", kind, cause),
		CreatedAt:  time.Now().UTC(),
	}
	if err := w.jobs.RecordFailure(ctx, failure); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Int("seq", seq).Msg("worker: record failure failed")
	}
	w.hub.Publish(events.ImageFailed, map[string]any{
		"job_id": jobID,
		"seq":    seq,
		"prompt": prompt,
		"kind":   kind,
	})
	w.logger.Warn().Str("job_id", jobID).Int("seq", seq).Str("kind", string(kind)).Err(cause).Msg("worker: prompt failed")
}

// finishJob drives the job to a terminal state, releases its prompt set,
// and builds the archive for successful runs. Persistence uses a detached
// context so shutdown does not strand a job mid-transition.
func (w *Worker) finishJob(ctx context.Context, job *domain.Job, status domain.JobStatus, errMsg string) {
	w.clearCancel(job.ID)

	persistCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	now := time.Now().UTC()
	if err := w.jobs.UpdateStatus(persistCtx, job.ID, status, errMsg, &now); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Str("status", string(status)).Msg("worker: finalize job failed")
		return
	}
	if err := w.promptSets.UpdateStatus(persistCtx, job.PromptSetID, domain.PromptSetConsumed); err != nil {
		w.logger.Error().Err(err).Str("prompt_set_id", job.PromptSetID).Msg("worker: release prompt set failed")
	}

	updated, err := w.jobs.GetByID(persistCtx, job.ID)
	if err != nil {
		updated = job
		updated.Status = status
		updated.ErrorMessage = errMsg
		updated.FinishedAt = &now
	}
	w.hub.Publish(events.JobUpdated, jobPayload(updated))
	w.logger.Info().
		Str("job_id", job.ID).
		Str("status", string(status)).
		Int("images", updated.ImageCount).
		Int("total", updated.TotalPrompts).
		Msg("worker: job finished")

	if status == domain.JobStatusSucceeded {
		if _, err := w.archives.BuildJob(persistCtx, job.ID); err != nil && !errors.Is(err, domain.ErrNoImages) {
			w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: archive build failed")
		}
	}
}

// Cancel requests termination of a job. Queued jobs flip to canceled
// immediately; running jobs get a flag the loop honors at the next prompt
// boundary. Terminal jobs return ErrJobFinished.
func (w *Worker) Cancel(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := w.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case domain.JobStatusQueued:
		now := time.Now().UTC()
		if err := w.jobs.UpdateStatus(ctx, jobID, domain.JobStatusCanceled, "", &now); err != nil {
			return nil, err
		}
		if err := w.promptSets.UpdateStatus(ctx, job.PromptSetID, domain.PromptSetConsumed); err != nil {
			w.logger.Error().Err(err).Str("prompt_set_id", job.PromptSetID).Msg("worker: release prompt set failed")
		}
		job.Status = domain.JobStatusCanceled
		job.FinishedAt = &now
		w.hub.Publish(events.JobUpdated, jobPayload(job))
		return job, nil
	case domain.JobStatusRunning:
		w.mu.Lock()
		w.canceled[jobID] = struct{}{}
		w.mu.Unlock()
		// The job may have reached a terminal state between the read above
		// and the flag write, after the loop already cleared its flag.
		// Re-read so the flag never outlives the job.
		latest, err := w.jobs.GetByID(ctx, jobID)
		if err == nil && latest.Status.Terminal() {
			w.clearCancel(jobID)
			return nil, domain.ErrJobFinished
		}
		if err == nil {
			job = latest
		}
		w.logger.Info().Str("job_id", jobID).Msg("worker: cancel requested")
		return job, nil
	default:
		return nil, domain.ErrJobFinished
	}
}

func (w *Worker) isCanceled(jobID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.canceled[jobID]
	return ok
}

func (w *Worker) clearCancel(jobID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.canceled, jobID)
}

func jobPayload(job *domain.Job) map[string]any {
	payload := map[string]any{
		"id":            job.ID,
		"prompt_set_id": job.PromptSetID,
		"status":        job.Status,
		"image_count":   job.ImageCount,
		"total_prompts": job.TotalPrompts,
	}
	if job.ErrorMessage != "" {
		payload["error"] = job.ErrorMessage
	}
	return payload
}
