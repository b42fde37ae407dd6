package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stickerprint/internal/domain"
	"stickerprint/internal/events"
	"stickerprint/internal/worker"
)

// maxPromptFileSize caps an uploaded prompt list at 1 MiB, which is orders
// of magnitude above any plausible list.
const maxPromptFileSize = 1 << 20

// UploadPrompts accepts a multipart text file of prompts, one per line,
// and queues it for processing.
func (a *App) UploadPrompts(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPromptFileSize); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".txt") {
		a.error(w, http.StatusBadRequest, "bad_request", "only .txt files are accepted")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxPromptFileSize+1))
	if err != nil {
		a.fail(w, err)
		return
	}
	if len(raw) > maxPromptFileSize {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "prompt file exceeds 1MB")
		return
	}
	if !utf8.Valid(raw) {
		a.error(w, http.StatusBadRequest, "bad_request", "file must be UTF-8 encoded text")
		return
	}

	prompts := worker.SplitPrompts(string(raw))
	if len(prompts) == 0 {
		a.fail(w, domain.ErrEmptyPromptSet)
		return
	}

	filename := sanitizeUploadName(header.Filename)
	blob := []byte(strings.Join(prompts, "\n") + "\n")
	key, err := a.Store.Write(r.Context(), fmt.Sprintf("prompts/%s_%s", time.Now().UTC().Format("20060102-150405"), filename), blob)
	if err != nil {
		a.fail(w, err)
		return
	}
	sum := sha256.Sum256(blob)

	ps := &domain.PromptSet{
		ID:         uuid.NewString(),
		Filename:   filename,
		SHA256:     hex.EncodeToString(sum[:]),
		Path:       key,
		Source:     domain.PromptSetUploaded,
		LineCount:  len(prompts),
		Status:     domain.PromptSetPending,
		UploadedAt: time.Now().UTC(),
	}
	if err := a.PromptSets.Create(r.Context(), ps); err != nil {
		a.fail(w, err)
		return
	}

	a.Hub.Publish(events.PromptsFileAdded, map[string]any{
		"prompt_set_id": ps.ID,
		"filename":      ps.Filename,
		"source":        ps.Source,
		"line_count":    ps.LineCount,
	})
	a.Hub.Publish(events.PromptQueueUpdated, map[string]any{"prompt_set_id": ps.ID, "status": ps.Status})
	a.Logger.Info().Str("prompt_set_id", ps.ID).Int("prompts", ps.LineCount).Msg("prompts uploaded")
	a.json(w, http.StatusCreated, toPromptSetDTO(ps))
}

// ListPromptSets returns the upload history, newest first.
func (a *App) ListPromptSets(w http.ResponseWriter, r *http.Request) {
	sets, err := a.PromptSets.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	items := make([]promptSetDTO, 0, len(sets))
	for i := range sets {
		items = append(items, toPromptSetDTO(&sets[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// DownloadPromptSet returns the stored prompt file verbatim.
func (a *App) DownloadPromptSet(w http.ResponseWriter, r *http.Request) {
	ps, err := a.PromptSets.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	path, err := a.Store.AbsPath(ps.Path)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ps.Filename))
	http.ServeFile(w, r, path)
}

// DeletePromptSet removes a prompt set that is still waiting in the queue.
// Sets already picked up (or consumed) belong to a job's history and stay.
func (a *App) DeletePromptSet(w http.ResponseWriter, r *http.Request) {
	ps, err := a.PromptSets.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	if ps.Status != domain.PromptSetPending {
		a.fail(w, domain.ErrPromptSetBusy)
		return
	}
	if err := a.PromptSets.Delete(r.Context(), ps.ID); err != nil {
		a.fail(w, err)
		return
	}
	if err := a.Store.Remove(ps.Path); err != nil {
		a.Logger.Warn().Err(err).Str("path", ps.Path).Msg("prompt file removal failed")
	}

	a.Hub.Publish(events.PromptQueueUpdated, map[string]any{"prompt_set_id": ps.ID, "status": "deleted"})
	a.Logger.Info().Str("prompt_set_id", ps.ID).Msg("prompt set deleted")
	w.WriteHeader(http.StatusNoContent)
}

// sanitizeUploadName keeps just the base name and forces a .txt suffix so
// client paths never reach the store.
func sanitizeUploadName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" {
		base = "prompts.txt"
	}
	if !strings.HasSuffix(strings.ToLower(base), ".txt") {
		base += ".txt"
	}
	return base
}
