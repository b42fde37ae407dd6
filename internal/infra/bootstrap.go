package infra

import (
	"context"
	"fmt"

	"stickerprint/internal/domain"
	"stickerprint/internal/sqlinline"
)

// The sticker house style appended to every user prompt until an operator
// replaces it via the config API.
const defaultBasePrompt = "flat vector or doodle style with clean lines no shading or photorealism, " +
	"transparent background PNG-ready for cutting, " +
	"isolated composition not touching edges centered within canvas, " +
	"bold outlines for clear cut lines, " +
	"high contrast color palette 2-4 tones, " +
	"cute expressive or aesthetic shape that looks great as a sticker, " +
	"no drop shadows no textures outside the design"

// EnsureSchema creates tables and indexes, then seeds the config defaults
// that the rest of the service assumes exist.
func EnsureSchema(ctx context.Context, runner *SQLRunner) error {
	for _, stmt := range sqlinline.Schema {
		if _, err := runner.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	defaults := map[string]string{
		domain.ConfigBasePrompt:       defaultBasePrompt,
		domain.ConfigAPIKey:           "",
		domain.ConfigModel:            "gpt-image-1",
		domain.ConfigProvider:         "openai",
		domain.ConfigDesignerTemplate: "",
	}
	for key, value := range defaults {
		if _, err := runner.Exec(ctx, sqlinline.QSeedConfigDefault, key, value); err != nil {
			return fmt.Errorf("seed config %s: %w", key, err)
		}
	}
	return nil
}
