package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stickerprint/internal/domain"
)

// JobZip builds (if needed) and streams one job's archive.
func (a *App) JobZip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, err := a.Archives.BuildJob(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.serveZip(w, r, info, fmt.Sprintf("job_%s.zip", id))
}

// LatestZip streams the archive of the most recently succeeded job.
func (a *App) LatestZip(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.LatestSucceeded(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	info, err := a.Archives.BuildJob(r.Context(), job.ID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.serveZip(w, r, info, fmt.Sprintf("job_%s.zip", job.ID))
}

// AllZip streams the combined archive with one folder per job.
func (a *App) AllZip(w http.ResponseWriter, r *http.Request) {
	info, err := a.Archives.BuildAll(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.serveZip(w, r, info, "all_jobs.zip")
}

func (a *App) serveZip(w http.ResponseWriter, r *http.Request, info *domain.ZipInfo, downloadName string) {
	path, err := a.Store.AbsPath(info.Path)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	if info.SHA256 != "" {
		w.Header().Set("ETag", fmt.Sprintf("%q", info.SHA256))
	}
	http.ServeFile(w, r, path)
}
