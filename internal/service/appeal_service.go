package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

// appealVotingWindow длительность окна голосования по апелляции.
const appealVotingWindow = 7 * 24 * time.Hour

// maxUrgencyScore потолок срочности апелляции.
const maxUrgencyScore = 10

// Базовые срочности типов апелляций.
var appealBaseUrgencies = map[string]int{
	models.AppealTypeFalsePositive:      8,
	models.AppealTypeTechnicalError:     7,
	models.AppealTypeContextMissing:     6,
	models.AppealTypePolicyDisagreement: 4,
	models.AppealTypeOther:              3,
}

// AppealStore хранилище апелляций.
type AppealStore interface {
	Create(ctx context.Context, appeal *models.Appeal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error)
	GetPendingByContent(ctx context.Context, contentID uuid.UUID) (*models.Appeal, error)
	ListQueue(ctx context.Context, limit, offset int) ([]models.Appeal, error)
	ListByAppellant(ctx context.Context, appellantID uuid.UUID, limit, offset int) ([]models.Appeal, error)
}

// AppealContentStore операции над контентом для апелляций.
type AppealContentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
}

// AppealVoteStore читает голоса по апелляции.
type AppealVoteStore interface {
	ListByAppeal(ctx context.Context, appealID uuid.UUID) ([]models.Vote, error)
}

// AppealService принимает апелляции и строит очередь для голосования.
type AppealService struct {
	appeals  AppealStore
	contents AppealContentStore
	votes    AppealVoteStore
	config   ModerationConfigProvider
}

// NewAppealService создаёт сервис апелляций.
func NewAppealService(
	appeals AppealStore,
	contents AppealContentStore,
	votes AppealVoteStore,
	config ModerationConfigProvider,
) *AppealService {
	return &AppealService{
		appeals:  appeals,
		contents: contents,
		votes:    votes,
		config:   config,
	}
}

// SubmitAppealInput входные данные апелляции.
type SubmitAppealInput struct {
	ContentID         uuid.UUID `json:"content_id"`
	AppealType        string    `json:"appeal_type"`
	AppealReason      string    `json:"appeal_reason"`
	UserStatement     string    `json:"user_statement"`
	AdditionalDetails *string   `json:"additional_details,omitempty"`
	EvidenceURLs      []string  `json:"evidence_urls,omitempty"`
}

// AppealDetails апелляция вместе с поданными голосами.
type AppealDetails struct {
	Appeal *models.Appeal `json:"appeal"`
	Votes  []models.Vote  `json:"votes"`
}

// UrgencyScore считает срочность апелляции по типу и числу жалоб на контент.
func UrgencyScore(appealType string, flagCount int) int {
	base, ok := appealBaseUrgencies[appealType]
	if !ok {
		base = appealBaseUrgencies[models.AppealTypeOther]
	}

	score := base + flagCount/2
	if score > maxUrgencyScore {
		score = maxUrgencyScore
	}

	return score
}

// SubmitAppeal создаёт апелляцию на скрытый контент. Кворум фиксируется
// из текущих настроек и дальше не меняется, окно голосования 7 дней.
func (s *AppealService) SubmitAppeal(ctx context.Context, appellantID uuid.UUID, input SubmitAppealInput) (*models.Appeal, error) {
	if _, ok := models.ValidAppealTypes[input.AppealType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип апелляции")
	}
	if err := validation.ValidateAppealReason(input.AppealReason); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateUserStatement(input.UserStatement); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAdditionalDetails(input.AdditionalDetails); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEvidenceURLs(input.EvidenceURLs); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	content, err := s.contents.GetByID(ctx, input.ContentID)
	if err != nil {
		if errors.Is(err, repository.ErrContentNotFound) {
			return nil, apperror.ErrContentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить контент")
	}

	if content.OwnerID != appellantID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "апелляцию может подать только владелец контента")
	}

	if content.Status == models.ContentStatusVisible {
		return nil, apperror.New(apperror.ErrCodeValidation, "контент не находится на модерации, обжаловать нечего")
	}

	appeal := &models.Appeal{
		ContentID:         input.ContentID,
		AppellantID:       appellantID,
		AppealType:        input.AppealType,
		AppealReason:      input.AppealReason,
		UserStatement:     input.UserStatement,
		AdditionalDetails: input.AdditionalDetails,
		EvidenceURLs:      input.EvidenceURLs,
		UrgencyScore:      UrgencyScore(input.AppealType, content.FlagCount),
		RequiredVotes:     s.config.Current(ctx).RequiredVotes,
		ExpiresAt:         time.Now().Add(appealVotingWindow),
	}

	if err := s.appeals.Create(ctx, appeal); err != nil {
		if errors.Is(err, repository.ErrDuplicateAppeal) {
			existing, getErr := s.appeals.GetPendingByContent(ctx, input.ContentID)
			if getErr != nil {
				return nil, apperror.New(apperror.ErrCodeDuplicate, "по этому контенту уже открыта апелляция")
			}
			return nil, apperror.WithState(apperror.ErrCodeDuplicate, "по этому контенту уже открыта апелляция", existing)
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать апелляцию")
	}

	return appeal, nil
}

// GetAppeal возвращает апелляцию с голосами. Доступна автору,
// модераторам и администраторам.
func (s *AppealService) GetAppeal(ctx context.Context, requesterID uuid.UUID, requesterRole string, appealID uuid.UUID) (*AppealDetails, error) {
	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		if errors.Is(err, repository.ErrAppealNotFound) {
			return nil, apperror.ErrAppealNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить апелляцию")
	}

	if appeal.AppellantID != requesterID && requesterRole != models.RoleModerator && requesterRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	votes, err := s.votes.ListByAppeal(ctx, appealID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить голоса")
	}

	return &AppealDetails{Appeal: appeal, Votes: votes}, nil
}

// ListQueue возвращает очередь открытых апелляций, самые срочные первыми.
func (s *AppealService) ListQueue(ctx context.Context, limit, offset int) ([]models.Appeal, error) {
	appeals, err := s.appeals.ListQueue(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить очередь апелляций")
	}
	return appeals, nil
}

// ListMy возвращает апелляции пользователя.
func (s *AppealService) ListMy(ctx context.Context, appellantID uuid.UUID, limit, offset int) ([]models.Appeal, error) {
	appeals, err := s.appeals.ListByAppellant(ctx, appellantID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить апелляции")
	}
	return appeals, nil
}
