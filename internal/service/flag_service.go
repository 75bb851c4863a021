package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/goroutine"
	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

// Базовые приоритеты причин жалоб.
var flagBasePriorities = map[string]float64{
	models.FlagReasonViolence:       10,
	models.FlagReasonHateSpeech:     9,
	models.FlagReasonHarassment:     8,
	models.FlagReasonAdultContent:   7,
	models.FlagReasonMisinformation: 6,
	models.FlagReasonSpam:           5,
	models.FlagReasonPrivacy:        4,
	models.FlagReasonCopyright:      3,
	models.FlagReasonOther:          2,
}

// Множители срочности.
var flagUrgencyMultipliers = map[string]float64{
	models.FlagUrgencyHigh:   2,
	models.FlagUrgencyMedium: 1.5,
	models.FlagUrgencyLow:    1,
}

// FlagStore хранилище жалоб.
type FlagStore interface {
	Create(ctx context.Context, flag *models.Flag) error
	GetActiveByReporter(ctx context.Context, contentID, reporterID uuid.UUID) (*models.Flag, error)
	ListByContent(ctx context.Context, contentID uuid.UUID, limit, offset int) ([]models.Flag, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Flag, error)
	AttachAIScores(ctx context.Context, id uuid.UUID, scores json.RawMessage) error
}

// FlagContentStore операции над контентом, нужные конвейеру жалоб.
type FlagContentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
	IncrementFlagCount(ctx context.Context, id uuid.UUID) (int, error)
	AutoHide(ctx context.Context, id uuid.UUID, threshold int) (bool, error)
}

// ModerationConfigProvider отдаёт актуальные настройки движка.
type ModerationConfigProvider interface {
	Current(ctx context.Context) models.ModerationConfig
}

// TextClassifier оценивает текст контента по категориям нарушений.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (json.RawMessage, error)
}

// Notifier доставляет уведомления пользователям.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}, dedupeKey string) error
}

// FlagService принимает жалобы, считает приоритет и автоскрывает контент.
type FlagService struct {
	flags      FlagStore
	contents   FlagContentStore
	config     ModerationConfigProvider
	classifier TextClassifier
	notifier   Notifier
}

// NewFlagService создаёт сервис жалоб. classifier и notifier могут быть nil.
func NewFlagService(
	flags FlagStore,
	contents FlagContentStore,
	config ModerationConfigProvider,
	classifier TextClassifier,
	notifier Notifier,
) *FlagService {
	return &FlagService{
		flags:      flags,
		contents:   contents,
		config:     config,
		classifier: classifier,
		notifier:   notifier,
	}
}

// SubmitFlagInput входные данные жалобы.
type SubmitFlagInput struct {
	ContentID uuid.UUID `json:"content_id"`
	Reason    string    `json:"reason"`
	Urgency   string    `json:"urgency"`
	Details   *string   `json:"details,omitempty"`
}

// SubmitFlagResult итог приёма жалобы.
type SubmitFlagResult struct {
	Flag          *models.Flag `json:"flag"`
	FlagCount     int          `json:"flag_count"`
	ContentHidden bool         `json:"content_hidden"`
}

// PriorityScore считает приоритет жалобы по причине и срочности.
func PriorityScore(reason, urgency string) float64 {
	base, ok := flagBasePriorities[reason]
	if !ok {
		base = flagBasePriorities[models.FlagReasonOther]
	}

	multiplier, ok := flagUrgencyMultipliers[urgency]
	if !ok {
		multiplier = 1
	}

	return base * multiplier
}

// SubmitFlag принимает жалобу на контент. Счётчик жалоб растёт атомарно,
// автоскрытие срабатывает не больше одного раза даже при параллельных жалобах.
func (s *FlagService) SubmitFlag(ctx context.Context, reporterID uuid.UUID, input SubmitFlagInput) (*SubmitFlagResult, error) {
	if _, ok := models.ValidFlagReasons[input.Reason]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректная причина жалобы")
	}
	if input.Urgency == "" {
		input.Urgency = models.FlagUrgencyMedium
	}
	if _, ok := models.ValidFlagUrgencies[input.Urgency]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный уровень срочности")
	}
	if err := validation.ValidateFlagDetails(input.Details); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	content, err := s.contents.GetByID(ctx, input.ContentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, apperror.ErrContentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить контент")
	}

	if content.Status == models.ContentStatusRemoved {
		return nil, apperror.New(apperror.ErrCodeValidation, "контент уже удалён")
	}

	flag := &models.Flag{
		ContentID:     input.ContentID,
		ReporterID:    reporterID,
		Reason:        input.Reason,
		Urgency:       input.Urgency,
		Details:       input.Details,
		PriorityScore: PriorityScore(input.Reason, input.Urgency),
	}

	if err := s.flags.Create(ctx, flag); err != nil {
		if errors.Is(err, repository.ErrDuplicateFlag) {
			existing, getErr := s.flags.GetActiveByReporter(ctx, input.ContentID, reporterID)
			if getErr != nil {
				return nil, apperror.New(apperror.ErrCodeDuplicate, "вы уже пожаловались на этот контент")
			}
			return nil, apperror.WithState(apperror.ErrCodeDuplicate, "вы уже пожаловались на этот контент", existing)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить жалобу")
	}

	flagCount, err := s.contents.IncrementFlagCount(ctx, input.ContentID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось обновить счётчик жалоб")
	}

	result := &SubmitFlagResult{Flag: flag, FlagCount: flagCount}

	threshold := s.config.Current(ctx).AutoHideThreshold
	if flagCount >= threshold {
		hidden, err := s.contents.AutoHide(ctx, input.ContentID, threshold)
		if err != nil {
			logger.Log.Errorf("Ошибка автоскрытия контента %s: %v", input.ContentID, err)
		}
		if hidden {
			result.ContentHidden = true
			logger.Log.Infof("Контент %s скрыт автоматически, жалоб: %d", input.ContentID, flagCount)
			s.notifyContentHidden(content, flagCount)
		}
	}

	s.classifyInBackground(flag, content.Body)

	return result, nil
}

// notifyContentHidden сообщает владельцу о скрытии контента.
func (s *FlagService) notifyContentHidden(content *models.Content, flagCount int) {
	if s.notifier == nil {
		return
	}

	goroutine.SafeGo(func() {
		err := s.notifier.Notify(context.Background(), content.OwnerID, "content_hidden", map[string]interface{}{
			"content_id": content.ID,
			"flag_count": flagCount,
		}, fmt.Sprintf("content_hidden:%s", content.ID))
		if err != nil {
			logger.Log.Errorf("Ошибка уведомления о скрытии контента %s: %v", content.ID, err)
		}
	})
}

// classifyInBackground запрашивает AI оценку текста и прикрепляет её к жалобе.
// Ошибки классификатора не влияют на приём жалобы.
func (s *FlagService) classifyInBackground(flag *models.Flag, body string) {
	if s.classifier == nil || body == "" {
		return
	}

	flagID := flag.ID
	goroutine.SafeGo(func() {
		ctx := context.Background()

		scores, err := s.classifier.ClassifyText(ctx, body)
		if err != nil {
			logger.Log.Warnf("Классификатор недоступен для жалобы %s: %v", flagID, err)
			return
		}

		if err := s.flags.AttachAIScores(ctx, flagID, scores); err != nil {
			logger.Log.Errorf("Ошибка сохранения AI оценок жалобы %s: %v", flagID, err)
		}
	})
}

// ListContentFlags возвращает жалобы по контенту для модераторов.
func (s *FlagService) ListContentFlags(ctx context.Context, contentID uuid.UUID, limit, offset int) ([]models.Flag, error) {
	flags, err := s.flags.ListByContent(ctx, contentID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить жалобы")
	}
	return flags, nil
}

// ListMyFlags возвращает жалобы, поданные пользователем.
func (s *FlagService) ListMyFlags(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Flag, error) {
	flags, err := s.flags.ListByReporter(ctx, reporterID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить жалобы")
	}
	return flags, nil
}
