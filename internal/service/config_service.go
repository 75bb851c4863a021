package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// Значения по умолчанию, если админ ещё не настроил движок.
const (
	DefaultAutoHideThreshold = 5
	DefaultRequiredVotes     = 5

	configCacheTTL = time.Minute
)

// ConfigStore хранилище настроек модерации.
type ConfigStore interface {
	Get(ctx context.Context) (*models.ModerationConfig, error)
	Update(ctx context.Context, cfg *models.ModerationConfig) error
}

// ConfigService отдаёт настройки модерации с коротким кэшем,
// чтобы не ходить в базу на каждую жалобу.
type ConfigService struct {
	store ConfigStore

	mu       sync.Mutex
	cached   models.ModerationConfig
	cachedAt time.Time
}

// NewConfigService создаёт сервис настроек.
func NewConfigService(store ConfigStore) *ConfigService {
	return &ConfigService{store: store}
}

// Current возвращает актуальные настройки. При недоступности базы
// отдаёт значения по умолчанию, модерация не должна останавливаться.
func (s *ConfigService) Current(ctx context.Context) models.ModerationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cachedAt.IsZero() && time.Since(s.cachedAt) < configCacheTTL {
		return s.cached
	}

	cfg, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrConfigNotFound) && logger.Log != nil {
			logger.Log.Warnf("Не удалось загрузить настройки модерации: %v", err)
		}
		if !s.cachedAt.IsZero() {
			return s.cached
		}
		return models.ModerationConfig{
			AutoHideThreshold: DefaultAutoHideThreshold,
			RequiredVotes:     DefaultRequiredVotes,
		}
	}

	if cfg.AutoHideThreshold <= 0 {
		cfg.AutoHideThreshold = DefaultAutoHideThreshold
	}
	if cfg.RequiredVotes <= 0 {
		cfg.RequiredVotes = DefaultRequiredVotes
	}

	s.cached = *cfg
	s.cachedAt = time.Now()

	return s.cached
}

// Update сохраняет новые настройки и сбрасывает кэш.
// Уже созданные апелляции сохраняют зафиксированный required_votes.
func (s *ConfigService) Update(ctx context.Context, cfg models.ModerationConfig) (*models.ModerationConfig, error) {
	if cfg.AutoHideThreshold <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "порог автоскрытия должен быть положительным")
	}
	if cfg.RequiredVotes <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "кворум голосов должен быть положительным")
	}

	if err := s.store.Update(ctx, &cfg); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить настройки модерации")
	}

	s.mu.Lock()
	s.cached = cfg
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return &cfg, nil
}
