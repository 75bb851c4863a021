package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
	"github.com/ignatzorin/moderation-backend/internal/validation"
)

// VoteAppealStore операции над апелляциями для голосования.
type VoteAppealStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error)
}

// VoteStore хранилище голосов.
type VoteStore interface {
	Cast(ctx context.Context, vote *models.Vote) (*models.AppealTally, error)
	GetByVoter(ctx context.Context, appealID, voterID uuid.UUID) (*models.Vote, error)
	ListByAppeal(ctx context.Context, appealID uuid.UUID) ([]models.Vote, error)
}

// VoterStore читает пользователей для определения веса голоса.
type VoterStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AppealResolver финализирует апелляцию.
type AppealResolver interface {
	ResolveIfPending(ctx context.Context, appealID uuid.UUID, trigger string) (*models.Appeal, bool, error)
}

// VoteService принимает взвешенные голоса и запускает финализацию при кворуме.
type VoteService struct {
	appeals  VoteAppealStore
	votes    VoteStore
	users    VoterStore
	resolver AppealResolver
}

// NewVoteService создаёт сервис голосования.
func NewVoteService(appeals VoteAppealStore, votes VoteStore, users VoterStore, resolver AppealResolver) *VoteService {
	return &VoteService{
		appeals:  appeals,
		votes:    votes,
		users:    users,
		resolver: resolver,
	}
}

// CastVoteInput входные данные голоса.
type CastVoteInput struct {
	Decision   string `json:"decision"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// CastVoteResult итог подачи голоса.
type CastVoteResult struct {
	Vote        *models.Vote        `json:"vote"`
	Tally       *models.AppealTally `json:"tally"`
	Appeal      *models.Appeal      `json:"appeal,omitempty"`
	ResolvedNow bool                `json:"resolved_now"`
}

// CastVote принимает голос по апелляции. Вес берётся из роли голосующего.
// Голос и обновление счётчиков выполняются в одной транзакции, поэтому
// ни двойной голос, ни голос по решённой апелляции невозможны.
func (s *VoteService) CastVote(ctx context.Context, voterID, appealID uuid.UUID, input CastVoteInput) (*CastVoteResult, error) {
	if _, ok := models.ValidVoteDecisions[input.Decision]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректное решение голоса")
	}
	if err := validation.ValidateConfidence(input.Confidence); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateVoteReasoning(input.Reasoning); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	appeal, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		if errors.Is(err, repository.ErrAppealNotFound) {
			return nil, apperror.ErrAppealNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить апелляцию")
	}

	if appeal.Status != models.AppealStatusPending {
		return nil, apperror.WithState(apperror.ErrCodeAlreadyDecided, "решение по апелляции уже принято", appeal)
	}

	// Ленивая финализация: первая попытка голоса после дедлайна закрывает
	// апелляцию. Проверяется раньше остальных ограничений, даже голос
	// самого апеллянта запускает закрытие.
	if appeal.IsExpired(time.Now()) {
		return nil, s.expireAppeal(ctx, appeal)
	}

	if appeal.AppellantID == voterID {
		return nil, apperror.ErrSelfVote
	}

	voter, err := s.users.GetByID(ctx, voterID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить пользователя")
	}

	vote := &models.Vote{
		AppealID:    appealID,
		VoterID:     voterID,
		Decision:    input.Decision,
		Weight:      models.VoteWeightForRole(voter.Role),
		IsModerator: voter.Role == models.RoleModerator || voter.Role == models.RoleAdmin,
		Confidence:  input.Confidence,
		Reasoning:   input.Reasoning,
	}

	tally, err := s.votes.Cast(ctx, vote)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateVote):
			existing, getErr := s.votes.GetByVoter(ctx, appealID, voterID)
			if getErr != nil {
				return nil, apperror.New(apperror.ErrCodeAlreadyVoted, "вы уже проголосовали по этой апелляции")
			}
			return nil, apperror.WithState(apperror.ErrCodeAlreadyVoted, "вы уже проголосовали по этой апелляции", existing)
		case errors.Is(err, repository.ErrAppealNotPending):
			current, getErr := s.appeals.GetByID(ctx, appealID)
			if getErr != nil {
				return nil, apperror.New(apperror.ErrCodeAlreadyDecided, "решение по апелляции уже принято")
			}
			return nil, apperror.WithState(apperror.ErrCodeAlreadyDecided, "решение по апелляции уже принято", current)
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить голос")
		}
	}

	result := &CastVoteResult{Vote: vote, Tally: tally}

	if tally.HasReachedQuorum {
		resolved, resolvedNow, err := s.resolver.ResolveIfPending(ctx, appealID, models.ResolvedByCommunityVote)
		if err != nil {
			logger.Log.Errorf("Ошибка финализации апелляции %s после кворума: %v", appealID, err)
			return result, nil
		}
		result.Appeal = resolved
		result.ResolvedNow = resolvedNow
	}

	return result, nil
}

// expireAppeal закрывает просроченную апелляцию по текущему подсчёту
// и возвращает конфликт с её финальным состоянием.
func (s *VoteService) expireAppeal(ctx context.Context, appeal *models.Appeal) error {
	resolved, _, err := s.resolver.ResolveIfPending(ctx, appeal.ID, models.ResolvedByExpiry)
	if err != nil {
		logger.Log.Errorf("Ошибка финализации просроченной апелляции %s: %v", appeal.ID, err)
		return apperror.WithState(apperror.ErrCodeExpired, "окно голосования по апелляции истекло", appeal)
	}

	return apperror.WithState(apperror.ErrCodeExpired, "окно голосования по апелляции истекло", resolved)
}

// ListVotes возвращает голоса по апелляции.
func (s *VoteService) ListVotes(ctx context.Context, appealID uuid.UUID) ([]models.Vote, error) {
	votes, err := s.votes.ListByAppeal(ctx, appealID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить голоса")
	}
	return votes, nil
}
