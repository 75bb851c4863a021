package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
)

// adminConfigID единственная строка конфигурации.
const adminConfigID = 1

// ConfigRepository отвечает за таблицу admin_config.
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository создаёт экземпляр репозитория.
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get возвращает текущую конфигурацию модерации.
func (r *ConfigRepository) Get(ctx context.Context) (*models.ModerationConfig, error) {
	var payload json.RawMessage
	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM admin_config WHERE id = $1`, adminConfigID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("config repository: get %w", err)
	}

	var cfg models.ModerationConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("config repository: unmarshal payload %w", err)
	}

	return &cfg, nil
}

// Update сохраняет конфигурацию модерации.
func (r *ConfigRepository) Update(ctx context.Context, cfg *models.ModerationConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config repository: marshal payload %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admin_config (id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, adminConfigID, payload)
	if err != nil {
		return fmt.Errorf("config repository: update %w", err)
	}

	return nil
}
