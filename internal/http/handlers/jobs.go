package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stickerprint/internal/events"
)

// ListJobs returns recent jobs, newest first.
func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := a.Jobs.List(r.Context(), limit)
	if err != nil {
		a.fail(w, err)
		return
	}
	items := make([]jobDTO, 0, len(jobs))
	for i := range jobs {
		items = append(items, toJobDTO(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, toJobDTO(job))
}

// CancelJob stops a queued job immediately or flags a running one to stop
// at the next prompt boundary.
func (a *App) CancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.Worker.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusAccepted, toJobDTO(job))
}

// DeleteJob removes a terminal job along with its images, files, and
// archive. Running and queued jobs must be canceled first.
func (a *App) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	if !job.Status.Terminal() {
		a.error(w, http.StatusConflict, "job_active", "cancel the job before deleting it")
		return
	}

	if err := a.Store.RemoveDir(fmt.Sprintf("images/%s", id)); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", id).Msg("delete job image files failed")
	}
	if err := a.Archives.InvalidateJob(id); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", id).Msg("delete job archive failed")
	}
	if err := a.Archives.InvalidateAll(r.Context()); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", id).Msg("invalidate combined archive failed")
	}
	// Image and failure rows go with the job via the cascading FK.
	if err := a.Jobs.Delete(r.Context(), id); err != nil {
		a.fail(w, err)
		return
	}

	a.Hub.Publish(events.JobUpdated, map[string]any{"id": id, "deleted": true, "at": time.Now().UTC()})
	a.json(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

// ListJobFailures returns the itemized per-prompt failures of one job.
func (a *App) ListJobFailures(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := a.Jobs.GetByID(r.Context(), id); err != nil {
		a.fail(w, err)
		return
	}
	failures, err := a.Jobs.ListFailures(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	items := make([]map[string]any, 0, len(failures))
	for _, f := range failures {
		items = append(items, map[string]any{
			"seq":        f.Seq,
			"prompt":     f.PromptText,
			"reason":     f.Reason,
			"created_at": f.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"job_id": id, "items": items})
}
