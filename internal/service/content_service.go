package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

// maxContentBodyLength предельная длина тела контента.
const maxContentBodyLength = 10000

// ContentStore хранилище контента.
type ContentStore interface {
	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
}

// ContentDecisionStore читает журнал решений по контенту.
type ContentDecisionStore interface {
	ListByContent(ctx context.Context, contentID uuid.UUID, limit, offset int) ([]models.ModerationDecision, error)
}

// ContentService регистрирует контент под модерацией.
type ContentService struct {
	contents  ContentStore
	decisions ContentDecisionStore
}

// NewContentService создаёт сервис контента.
func NewContentService(contents ContentStore, decisions ContentDecisionStore) *ContentService {
	return &ContentService{contents: contents, decisions: decisions}
}

// CreateContentInput входные данные контента.
type CreateContentInput struct {
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// Create регистрирует новую единицу контента.
func (s *ContentService) Create(ctx context.Context, ownerID uuid.UUID, input CreateContentInput) (*models.Content, error) {
	if _, ok := models.ValidContentTypes[input.ContentType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип контента")
	}

	body := strings.TrimSpace(input.Body)
	if err := validation.ValidateNonEmpty("тело контента", body); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("тело контента", body, 0, maxContentBodyLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	content := &models.Content{
		OwnerID:     ownerID,
		ContentType: input.ContentType,
		Body:        body,
		Status:      models.ContentStatusVisible,
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить контент")
	}

	return content, nil
}

// Get возвращает контент по идентификатору.
func (s *ContentService) Get(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	content, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, apperror.ErrContentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить контент")
	}
	return content, nil
}

// ListDecisions возвращает историю решений модерации по контенту.
func (s *ContentService) ListDecisions(ctx context.Context, contentID uuid.UUID, limit, offset int) ([]models.ModerationDecision, error) {
	decisions, err := s.decisions.ListByContent(ctx, contentID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить историю решений")
	}
	return decisions, nil
}
