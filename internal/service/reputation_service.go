package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// Штрафы репутации по доминирующей причине жалоб.
var reputationPenalties = map[string]int{
	models.FlagReasonSpam:       -5,
	models.FlagReasonHarassment: -10,
	models.FlagReasonHateSpeech: -15,
	models.FlagReasonViolence:   -20,
	models.FlagReasonOther:      -3,
}

const defaultReputationPenalty = -5

// ReputationStore изменяет репутацию пользователей.
type ReputationStore interface {
	AdjustReputation(ctx context.Context, userID uuid.UUID, delta int, reason, idempotencyKey string) error
}

// ReputationService применяет штрафы репутации по итогам модерации.
type ReputationService struct {
	store ReputationStore
}

// NewReputationService создаёт сервис репутации.
func NewReputationService(store ReputationStore) *ReputationService {
	return &ReputationService{store: store}
}

// PenaltyForReason возвращает размер штрафа по причине жалобы.
func PenaltyForReason(reason string) int {
	if delta, ok := reputationPenalties[reason]; ok {
		return delta
	}
	return defaultReputationPenalty
}

// ApplyPenalty снимает репутацию владельца контента после отклонённой апелляции.
// Ключ идемпотентности привязан к апелляции, повторное применение не удваивает штраф.
func (s *ReputationService) ApplyPenalty(ctx context.Context, ownerID, appealID uuid.UUID, reason string) error {
	delta := PenaltyForReason(reason)
	key := fmt.Sprintf("appeal:%s", appealID)

	if err := s.store.AdjustReputation(ctx, ownerID, delta, reason, key); err != nil {
		if errors.Is(err, repository.ErrDuplicateReputation) {
			return nil
		}
		return fmt.Errorf("apply penalty: %w", err)
	}

	return nil
}
