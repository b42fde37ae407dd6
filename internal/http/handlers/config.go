package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"stickerprint/internal/domain"
	"stickerprint/internal/events"
)

type configResponse struct {
	BasePrompt       string `json:"base_prompt"`
	APIKeyMasked     string `json:"api_key_masked"`
	APIKeySet        bool   `json:"api_key_set"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
	DesignerTemplate string `json:"prompt_designer_template"`
}

// GetConfig returns the mutable generation settings. The API key is never
// echoed back in full.
func (a *App) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.Settings.Load(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, configView(cfg))
}

type configUpdateRequest struct {
	BasePrompt       *string `json:"base_prompt"`
	APIKey           *string `json:"api_key"`
	Model            *string `json:"model"`
	Provider         *string `json:"provider"`
	DesignerTemplate *string `json:"prompt_designer_template"`
}

// UpdateConfig applies a partial update: only the fields present in the
// body change. The worker reads settings fresh every prompt, so edits here
// reach a job already in flight.
func (a *App) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req configUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	updates := map[string]*string{
		domain.ConfigBasePrompt:       req.BasePrompt,
		domain.ConfigAPIKey:           req.APIKey,
		domain.ConfigModel:            req.Model,
		domain.ConfigProvider:         req.Provider,
		domain.ConfigDesignerTemplate: req.DesignerTemplate,
	}
	changed := 0
	for key, value := range updates {
		if value == nil {
			continue
		}
		if err := a.Settings.Set(r.Context(), key, strings.TrimSpace(*value)); err != nil {
			a.fail(w, err)
			return
		}
		changed++
	}
	if changed == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no config fields in payload")
		return
	}

	cfg, err := a.Settings.Load(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	view := configView(cfg)
	a.Hub.Publish(events.ConfigUpdated, view)
	a.Logger.Info().Int("fields", changed).Msg("config updated")
	a.json(w, http.StatusOK, view)
}

func configView(cfg *domain.Settings) configResponse {
	view := configResponse{
		BasePrompt:       cfg.BasePrompt,
		Model:            cfg.Model,
		Provider:         cfg.Provider,
		DesignerTemplate: cfg.DesignerTemplate,
	}
	if strings.TrimSpace(cfg.APIKey) != "" {
		view.APIKeySet = true
		view.APIKeyMasked = domain.MaskAPIKey(cfg.APIKey)
	}
	return view
}
