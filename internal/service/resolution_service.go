package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// ResolutionAppealStore операции над апелляциями для финализации.
type ResolutionAppealStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error)
	Resolve(ctx context.Context, id uuid.UUID, resolvedBy string) (*models.Appeal, error)
}

// ResolutionContentStore операции над контентом для финализации.
type ResolutionContentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
}

// ResolutionFlagStore операции над жалобами для финализации.
type ResolutionFlagStore interface {
	ResolveActiveByContent(ctx context.Context, contentID uuid.UUID) error
	DominantReason(ctx context.Context, contentID uuid.UUID) (string, error)
}

// DecisionStore журнал финальных решений.
type DecisionStore interface {
	Create(ctx context.Context, decision *models.ModerationDecision) error
}

// PenaltyApplier применяет штраф репутации владельцу контента.
type PenaltyApplier interface {
	ApplyPenalty(ctx context.Context, ownerID, appealID uuid.UUID, reason string) error
}

// ResolutionService единственная точка перевода апелляции из pending
// в финальный статус. Compare-and-set в базе гарантирует, что побочные
// эффекты выполняет ровно один вызов, кто бы ни успел первым.
type ResolutionService struct {
	appeals    ResolutionAppealStore
	contents   ResolutionContentStore
	flags      ResolutionFlagStore
	decisions  DecisionStore
	reputation PenaltyApplier
	notifier   Notifier
}

// NewResolutionService создаёт сервис финализации апелляций.
func NewResolutionService(
	appeals ResolutionAppealStore,
	contents ResolutionContentStore,
	flags ResolutionFlagStore,
	decisions DecisionStore,
	reputation PenaltyApplier,
	notifier Notifier,
) *ResolutionService {
	return &ResolutionService{
		appeals:    appeals,
		contents:   contents,
		flags:      flags,
		decisions:  decisions,
		reputation: reputation,
		notifier:   notifier,
	}
}

// ResolveIfPending финализирует апелляцию, если она ещё открыта.
// Возвращает актуальную апелляцию и признак, что решение принято этим вызовом.
// Если решение уже принято другим путём, возвращается текущее состояние
// без повторного выполнения побочных эффектов.
func (s *ResolutionService) ResolveIfPending(ctx context.Context, appealID uuid.UUID, trigger string) (*models.Appeal, bool, error) {
	appeal, err := s.appeals.Resolve(ctx, appealID, trigger)
	if err != nil {
		if errors.Is(err, repository.ErrAppealNotPending) {
			current, getErr := s.appeals.GetByID(ctx, appealID)
			if getErr != nil {
				if errors.Is(getErr, repository.ErrAppealNotFound) {
					return nil, false, apperror.ErrAppealNotFound
				}
				return nil, false, apperror.Wrap(getErr, apperror.ErrCodeInternal, "не удалось получить апелляцию")
			}
			return current, false, nil
		}
		return nil, false, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось финализировать апелляцию")
	}

	logger.Log.Infof("Апелляция %s решена: %s (%s), голоса %d/%d из %d",
		appeal.ID, appeal.Status, trigger, appeal.VotesFor, appeal.VotesAgainst, appeal.TotalVotes)

	s.applySideEffects(ctx, appeal)

	return appeal, true, nil
}

// applySideEffects выполняет последствия решения. Каждый шаг изолирован,
// сбой одного шага логируется и не откатывает само решение.
func (s *ResolutionService) applySideEffects(ctx context.Context, appeal *models.Appeal) {
	approved := appeal.Status == models.AppealStatusApproved

	if approved {
		s.restoreContent(ctx, appeal)
	} else {
		if _, err := s.contents.TransitionStatus(ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusRemoved); err != nil {
			logger.Log.Errorf("Ошибка смены статуса контента %s после апелляции %s: %v", appeal.ContentID, appeal.ID, err)
		}
	}

	if err := s.flags.ResolveActiveByContent(ctx, appeal.ContentID); err != nil {
		logger.Log.Errorf("Ошибка закрытия жалоб по контенту %s: %v", appeal.ContentID, err)
	}

	if !approved {
		s.applyReputationPenalty(ctx, appeal)
	}

	s.recordDecision(ctx, appeal)
	s.notifyAppellant(ctx, appeal)
}

// restoreContent возвращает контент в visible после одобренной апелляции.
// Контент мог быть и скрыт, и уже удалён, пробуем оба перехода.
func (s *ResolutionService) restoreContent(ctx context.Context, appeal *models.Appeal) {
	restored, err := s.contents.TransitionStatus(ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusVisible)
	if err != nil {
		logger.Log.Errorf("Ошибка восстановления контента %s после апелляции %s: %v", appeal.ContentID, appeal.ID, err)
		return
	}
	if restored {
		return
	}

	if _, err := s.contents.TransitionStatus(ctx, appeal.ContentID, models.ContentStatusRemoved, models.ContentStatusVisible); err != nil {
		logger.Log.Errorf("Ошибка восстановления контента %s после апелляции %s: %v", appeal.ContentID, appeal.ID, err)
	}
}

// applyReputationPenalty штрафует владельца контента после отклонённой апелляции.
// Штрафуются только посты и комментарии.
func (s *ResolutionService) applyReputationPenalty(ctx context.Context, appeal *models.Appeal) {
	content, err := s.contents.GetByID(ctx, appeal.ContentID)
	if err != nil {
		logger.Log.Errorf("Ошибка получения контента %s для штрафа: %v", appeal.ContentID, err)
		return
	}

	if content.ContentType != models.ContentTypePost && content.ContentType != models.ContentTypeComment {
		return
	}

	reason, err := s.flags.DominantReason(ctx, appeal.ContentID)
	if err != nil {
		if !errors.Is(err, repository.ErrFlagNotFound) {
			logger.Log.Errorf("Ошибка определения причины жалоб по контенту %s: %v", appeal.ContentID, err)
		}
		reason = models.FlagReasonOther
	}

	if err := s.reputation.ApplyPenalty(ctx, content.OwnerID, appeal.ID, reason); err != nil {
		logger.Log.Errorf("Ошибка применения штрафа по апелляции %s: %v", appeal.ID, err)
	}
}

// recordDecision пишет запись решения в журнал модерации.
func (s *ResolutionService) recordDecision(ctx context.Context, appeal *models.Appeal) {
	resolvedBy := models.ResolvedByCommunityVote
	if appeal.ResolvedBy != nil {
		resolvedBy = *appeal.ResolvedBy
	}

	decision := &models.ModerationDecision{
		AppealID:      appeal.ID,
		ContentID:     appeal.ContentID,
		DecisionType:  appeal.Status,
		ResolvedBy:    resolvedBy,
		VotesFor:      appeal.VotesFor,
		VotesAgainst:  appeal.VotesAgainst,
		TotalVotes:    appeal.TotalVotes,
		RequiredVotes: appeal.RequiredVotes,
	}

	if err := s.decisions.Create(ctx, decision); err != nil {
		logger.Log.Errorf("Ошибка записи решения по апелляции %s: %v", appeal.ID, err)
	}
}

// notifyAppellant сообщает автору апелляции о финальном решении.
func (s *ResolutionService) notifyAppellant(ctx context.Context, appeal *models.Appeal) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.Notify(ctx, appeal.AppellantID, "appeal_resolved", map[string]interface{}{
		"appeal_id":  appeal.ID,
		"content_id": appeal.ContentID,
		"decision":   appeal.Status,
		"tally":      appeal.Tally(),
	}, AppealDedupeKey(appeal.ID, appeal.Status))
	if err != nil {
		logger.Log.Errorf("Ошибка уведомления о решении апелляции %s: %v", appeal.ID, err)
	}
}
