package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

type mockReputationStore struct {
	mock.Mock
}

func (m *mockReputationStore) AdjustReputation(ctx context.Context, userID uuid.UUID, delta int, reason, idempotencyKey string) error {
	args := m.Called(ctx, userID, delta, reason, idempotencyKey)
	return args.Error(0)
}

func TestPenaltyForReason(t *testing.T) {
	assert.Equal(t, -5, PenaltyForReason(models.FlagReasonSpam))
	assert.Equal(t, -10, PenaltyForReason(models.FlagReasonHarassment))
	assert.Equal(t, -15, PenaltyForReason(models.FlagReasonHateSpeech))
	assert.Equal(t, -20, PenaltyForReason(models.FlagReasonViolence))
	assert.Equal(t, -3, PenaltyForReason(models.FlagReasonOther))
	assert.Equal(t, -5, PenaltyForReason(models.FlagReasonMisinformation))
}

func TestReputationService_ApplyPenalty(t *testing.T) {
	store := new(mockReputationStore)
	svc := NewReputationService(store)
	ctx := context.Background()

	ownerID := uuid.New()
	appealID := uuid.New()

	store.On("AdjustReputation", ctx, ownerID, -20, models.FlagReasonViolence,
		fmt.Sprintf("appeal:%s", appealID)).Return(nil)

	err := svc.ApplyPenalty(ctx, ownerID, appealID, models.FlagReasonViolence)

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestReputationService_ApplyPenalty_Idempotent(t *testing.T) {
	store := new(mockReputationStore)
	svc := NewReputationService(store)
	ctx := context.Background()

	store.On("AdjustReputation", ctx, mock.Anything, -5, models.FlagReasonSpam, mock.Anything).
		Return(repository.ErrDuplicateReputation)

	err := svc.ApplyPenalty(ctx, uuid.New(), uuid.New(), models.FlagReasonSpam)

	assert.NoError(t, err)
}
