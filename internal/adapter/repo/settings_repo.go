package repo

import (
	"context"
	"fmt"

	"stickerprint/internal/domain"
	"stickerprint/internal/infra"
	"stickerprint/internal/sqlinline"
)

type SettingsRepo struct {
	db infra.SQLExecutor
}

func NewSettingsRepo(db infra.SQLExecutor) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Load reads every config row into the Settings snapshot. Unknown keys are
// ignored so the archive cache metadata can share the table.
func (r *SettingsRepo) Load(ctx context.Context) (*domain.Settings, error) {
	rows, err := r.db.Query(ctx, sqlinline.QSelectAllConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	defer rows.Close()

	var s domain.Settings
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		switch key {
		case domain.ConfigBasePrompt:
			s.BasePrompt = value
		case domain.ConfigAPIKey:
			s.APIKey = value
		case domain.ConfigModel:
			s.Model = value
		case domain.ConfigProvider:
			s.Provider = value
		case domain.ConfigDesignerTemplate:
			s.DesignerTemplate = value
		}
	}
	return &s, rows.Err()
}

// Get returns one value, or "" when the key is absent.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, sqlinline.QSelectConfigValue, key).Scan(&value)
	if infra.IsNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get config %q: %w", key, err)
	}
	return value, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.Exec(ctx, sqlinline.QUpsertConfig, key, value); err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func (r *SettingsRepo) Unset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, sqlinline.QDeleteConfigKeys, keys); err != nil {
		return fmt.Errorf("unset config keys: %w", err)
	}
	return nil
}

var _ domain.SettingsRepository = (*SettingsRepo)(nil)
