// Package handlers implements the JSON API surface.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stickerprint/internal/archive"
	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/promptgen"
	"stickerprint/internal/storage"
	"stickerprint/internal/worker"
)

// App carries the handler dependencies. One instance serves all routes.
type App struct {
	Logger     zerolog.Logger
	PromptSets domain.PromptSetRepository
	Jobs       domain.JobRepository
	Images     domain.ImageRepository
	Settings   domain.SettingsRepository
	Store      *storage.FileStore
	Hub        *events.Hub
	Archives   *archive.Builder
	Worker     *worker.Worker
	PromptGen  *promptgen.Service
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{"error": slug, "message": message})
}

// fail translates well-known domain errors into status codes; anything
// unrecognized becomes a 500 with the detail kept server-side.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrJobFinished):
		a.error(w, http.StatusConflict, "job_finished", "job already reached a terminal state")
	case errors.Is(err, domain.ErrMissingAPIKey):
		a.error(w, http.StatusPreconditionFailed, "missing_api_key", "configure an API key first")
	case errors.Is(err, domain.ErrPromptSetBusy):
		a.error(w, http.StatusConflict, "prompt_set_busy", "prompt set already entered the queue")
	case errors.Is(err, domain.ErrEmptyPromptSet):
		a.error(w, http.StatusBadRequest, "empty_prompt_set", "no usable prompt lines")
	case errors.Is(err, domain.ErrLowPromptYield):
		a.error(w, http.StatusBadGateway, "low_prompt_yield", err.Error())
	case errors.Is(err, domain.ErrNoImages):
		a.error(w, http.StatusNotFound, "no_images", "no images to archive")
	default:
		a.Logger.Error().Err(err).Msg("handler: internal error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

type promptSetDTO struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	SHA256    string `json:"sha256"`
	Source    string `json:"source"`
	LineCount int    `json:"line_count"`
	Status    string `json:"status"`
	UserInput string `json:"user_input,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toPromptSetDTO(ps *domain.PromptSet) promptSetDTO {
	return promptSetDTO{
		ID:        ps.ID,
		Filename:  ps.Filename,
		SHA256:    ps.SHA256,
		Source:    string(ps.Source),
		LineCount: ps.LineCount,
		Status:    string(ps.Status),
		UserInput: ps.UserInput,
		CreatedAt: ps.UploadedAt.UTC().Format(time.RFC3339),
	}
}

type zipDTO struct {
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	BuiltAt   string `json:"built_at"`
}

type jobDTO struct {
	ID           string  `json:"id"`
	PromptSetID  string  `json:"prompt_set_id"`
	Status       string  `json:"status"`
	TotalPrompts int     `json:"total_prompts"`
	ImageCount   int     `json:"image_count"`
	Error        string  `json:"error,omitempty"`
	CreatedAt    string  `json:"created_at"`
	StartedAt    *string `json:"started_at,omitempty"`
	FinishedAt   *string `json:"finished_at,omitempty"`
	Zip          *zipDTO `json:"zip,omitempty"`
}

func toJobDTO(job *domain.Job) jobDTO {
	dto := jobDTO{
		ID:           job.ID,
		PromptSetID:  job.PromptSetID,
		Status:       string(job.Status),
		TotalPrompts: job.TotalPrompts,
		ImageCount:   job.ImageCount,
		Error:        job.ErrorMessage,
		CreatedAt:    job.CreatedAt.UTC().Format(time.RFC3339),
	}
	dto.StartedAt = rfc3339OrNil(job.StartedAt)
	dto.FinishedAt = rfc3339OrNil(job.FinishedAt)
	if job.ZipReady() {
		dto.Zip = &zipDTO{
			SizeBytes: job.Zip.SizeBytes,
			SHA256:    job.Zip.SHA256,
			BuiltAt:   job.Zip.BuiltAt.UTC().Format(time.RFC3339),
		}
	}
	return dto
}

type imageDTO struct {
	ID         string `json:"id"`
	JobID      string `json:"job_id"`
	Seq        int    `json:"seq"`
	PromptText string `json:"prompt_text"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	URL        string `json:"url"`
	CreatedAt  string `json:"created_at"`
}

func toImageDTO(img *domain.Image) imageDTO {
	return imageDTO{
		ID:         img.ID,
		JobID:      img.JobID,
		Seq:        img.Seq,
		PromptText: img.PromptText,
		Width:      img.Width,
		Height:     img.Height,
		URL:        "/api/files/images/" + img.ID,
		CreatedAt:  img.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func rfc3339OrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
