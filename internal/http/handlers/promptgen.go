package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"stickerprint/internal/promptgen"
)

type generatePromptsRequest struct {
	UserInput string `json:"user_input"`
}

// GeneratePrompts expands a theme into a full prompt set via the text
// model and queues it like an upload.
func (a *App) GeneratePrompts(w http.ResponseWriter, r *http.Request) {
	var req generatePromptsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_input is required")
		return
	}

	ps, err := a.PromptGen.GenerateFromText(r.Context(), req.UserInput)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, toPromptSetDTO(ps))
}

// maxDeconstructUpload caps the whole multipart body at 25 MiB.
const maxDeconstructUpload = 25 << 20

// DeconstructImages describes each uploaded reference image back into a
// prompt and combines the results into one pending prompt set.
func (a *App) DeconstructImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDeconstructUpload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "expected multipart form with files")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "files field is required")
		return
	}

	var uploads []promptgen.UploadedImage
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			a.fail(w, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			a.fail(w, err)
			return
		}
		uploads = append(uploads, promptgen.UploadedImage{
			Filename: header.Filename,
			MIME:     header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	ps, failures, err := a.PromptGen.AnalyzeImages(r.Context(), uploads)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"prompt_set": toPromptSetDTO(ps),
		"failures":   failures,
	})
}
