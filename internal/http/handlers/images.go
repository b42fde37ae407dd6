package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stickerprint/internal/events"
)

const defaultPageSize = 50

// ListImages serves the gallery: newest first, optionally filtered to one
// job, paginated with page/page_size (page starts at 1).
func (a *App) ListImages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	images, err := a.Images.ListPage(r.Context(), q.Get("job_id"), (page-1)*pageSize, pageSize)
	if err != nil {
		a.fail(w, err)
		return
	}
	items := make([]imageDTO, 0, len(images))
	for i := range images {
		items = append(items, toImageDTO(&images[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "page": page, "page_size": pageSize})
}

// GetImage returns one image's metadata.
func (a *App) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := a.Images.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, toImageDTO(img))
}

// GetImageFile streams one image's bytes.
func (a *App) GetImageFile(w http.ResponseWriter, r *http.Request) {
	img, err := a.Images.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	path, err := a.Store.AbsPath(img.Path)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}

// ClearGallery deletes every image row, file, and archive. The X-Confirm
// header must spell out the intent; a bare DELETE is rejected.
func (a *App) ClearGallery(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Confirm") != "delete-all" {
		a.error(w, http.StatusPreconditionRequired, "confirm_required", "set X-Confirm: delete-all to clear the gallery")
		return
	}

	deleted, err := a.Images.DeleteAll(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	if err := a.Jobs.ClearZips(r.Context()); err != nil {
		a.fail(w, err)
		return
	}
	if err := a.Store.RemoveDir("images"); err != nil {
		a.Logger.Warn().Err(err).Msg("clear gallery files failed")
	}
	if err := a.Store.RemoveDir("zips"); err != nil {
		a.Logger.Warn().Err(err).Msg("clear gallery archives failed")
	}
	if err := a.Archives.InvalidateAll(r.Context()); err != nil {
		a.Logger.Warn().Err(err).Msg("invalidate combined archive failed")
	}

	a.Hub.Publish(events.GalleryCleared, map[string]any{"deleted": deleted})
	a.Logger.Info().Int64("deleted", deleted).Msg("gallery cleared")
	a.json(w, http.StatusOK, map[string]any{"deleted": deleted})
}
