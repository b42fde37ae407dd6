// Package httpapi assembles the chi router.
package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"stickerprint/internal/http/handlers"
	"stickerprint/internal/middleware"
)

// NewRouter wires every API route onto the handler set. The /api/runs
// subtree mirrors /api/jobs for clients written against the old naming.
func NewRouter(app *handlers.App, corsOrigins []string) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(corsOrigins),
		middleware.Logger(app.Logger),
	)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", app.ListPromptSets)
			r.Post("/upload", app.UploadPrompts)
			r.Get("/{id}/download", app.DownloadPromptSet)
			r.Delete("/{id}", app.DeletePromptSet)
		})

		jobRoutes := func(r chi.Router) {
			r.Get("/", app.ListJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.GetJob)
				r.Delete("/", app.DeleteJob)
				r.Post("/cancel", app.CancelJob)
				r.Get("/failures", app.ListJobFailures)
				r.Get("/zip", app.JobZip)
				r.Head("/zip", app.JobZip)
			})
		}
		r.Route("/jobs", jobRoutes)
		r.Route("/runs", jobRoutes)

		r.Route("/images", func(r chi.Router) {
			r.Get("/", app.ListImages)
			r.Delete("/", app.ClearGallery)
			r.Get("/{id}", app.GetImage)
		})
		r.Get("/files/images/{id}", app.GetImageFile)

		r.Route("/zips", func(r chi.Router) {
			r.Get("/latest", app.LatestZip)
			r.Get("/all", app.AllZip)
			r.Head("/all", app.AllZip)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/", app.GetConfig)
			r.Put("/", app.UpdateConfig)
			r.Patch("/", app.UpdateConfig)
		})

		r.Get("/events", app.Events)

		r.Post("/prompt-generator/generate", app.GeneratePrompts)
		r.Post("/deconstruct/analyze", app.DeconstructImages)
	})

	return r
}
