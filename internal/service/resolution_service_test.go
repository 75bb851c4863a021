package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

type mockResolutionAppealStore struct {
	mock.Mock
}

func (m *mockResolutionAppealStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appeal), args.Error(1)
}

func (m *mockResolutionAppealStore) Resolve(ctx context.Context, id uuid.UUID, resolvedBy string) (*models.Appeal, error) {
	args := m.Called(ctx, id, resolvedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appeal), args.Error(1)
}

type mockResolutionContentStore struct {
	mock.Mock
}

func (m *mockResolutionContentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Content), args.Error(1)
}

func (m *mockResolutionContentStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

type mockResolutionFlagStore struct {
	mock.Mock
}

func (m *mockResolutionFlagStore) ResolveActiveByContent(ctx context.Context, contentID uuid.UUID) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

func (m *mockResolutionFlagStore) DominantReason(ctx context.Context, contentID uuid.UUID) (string, error) {
	args := m.Called(ctx, contentID)
	return args.String(0), args.Error(1)
}

type mockDecisionStore struct {
	mock.Mock
}

func (m *mockDecisionStore) Create(ctx context.Context, decision *models.ModerationDecision) error {
	args := m.Called(ctx, decision)
	return args.Error(0)
}

type mockPenaltyApplier struct {
	mock.Mock
}

func (m *mockPenaltyApplier) ApplyPenalty(ctx context.Context, ownerID, appealID uuid.UUID, reason string) error {
	args := m.Called(ctx, ownerID, appealID, reason)
	return args.Error(0)
}

type mockResolutionNotifier struct {
	mock.Mock
}

func (m *mockResolutionNotifier) Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}, dedupeKey string) error {
	args := m.Called(ctx, userID, event, data, dedupeKey)
	return args.Error(0)
}

func resolvedAppeal(status string) *models.Appeal {
	resolvedBy := models.ResolvedByCommunityVote
	return &models.Appeal{
		ID:            uuid.New(),
		ContentID:     uuid.New(),
		AppellantID:   uuid.New(),
		Status:        status,
		VotingStatus:  models.VotingStatusCompleted,
		VotesFor:      6,
		VotesAgainst:  3,
		TotalVotes:    9,
		RequiredVotes: 5,
		ResolvedBy:    &resolvedBy,
	}
}

func TestResolutionService_ResolveIfPending_Approved(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	contents := new(mockResolutionContentStore)
	flags := new(mockResolutionFlagStore)
	decisions := new(mockDecisionStore)
	penalties := new(mockPenaltyApplier)
	notifier := new(mockResolutionNotifier)
	svc := NewResolutionService(appeals, contents, flags, decisions, penalties, notifier)
	ctx := context.Background()

	appeal := resolvedAppeal(models.AppealStatusApproved)

	appeals.On("Resolve", ctx, appeal.ID, models.ResolvedByCommunityVote).Return(appeal, nil)
	contents.On("TransitionStatus", ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusVisible).Return(true, nil)
	flags.On("ResolveActiveByContent", ctx, appeal.ContentID).Return(nil)
	// Журнал решений получает полный снимок подсчёта вместе с порогом кворума.
	decisions.On("Create", ctx, mock.MatchedBy(func(d *models.ModerationDecision) bool {
		return d.VotesFor == 6 && d.VotesAgainst == 3 && d.TotalVotes == 9 && d.RequiredVotes == 5
	})).Return(nil)
	notifier.On("Notify", ctx, appeal.AppellantID, "appeal_resolved", mock.Anything,
		AppealDedupeKey(appeal.ID, models.AppealStatusApproved)).Return(nil)

	result, resolvedNow, err := svc.ResolveIfPending(ctx, appeal.ID, models.ResolvedByCommunityVote)

	assert.NoError(t, err)
	assert.True(t, resolvedNow)
	assert.Equal(t, appeal, result)
	penalties.AssertNotCalled(t, "ApplyPenalty", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	contents.AssertExpectations(t)
	decisions.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestResolutionService_ResolveIfPending_RestoresRemovedContent(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	contents := new(mockResolutionContentStore)
	flags := new(mockResolutionFlagStore)
	decisions := new(mockDecisionStore)
	svc := NewResolutionService(appeals, contents, flags, decisions, new(mockPenaltyApplier), nil)
	ctx := context.Background()

	appeal := resolvedAppeal(models.AppealStatusApproved)

	appeals.On("Resolve", ctx, appeal.ID, models.ResolvedByCommunityVote).Return(appeal, nil)
	// Контент уже удалён, переход из hidden_pending_review не находит строку
	contents.On("TransitionStatus", ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusVisible).Return(false, nil)
	contents.On("TransitionStatus", ctx, appeal.ContentID, models.ContentStatusRemoved, models.ContentStatusVisible).Return(true, nil)
	flags.On("ResolveActiveByContent", ctx, appeal.ContentID).Return(nil)
	decisions.On("Create", ctx, mock.AnythingOfType("*models.ModerationDecision")).Return(nil)

	_, resolvedNow, err := svc.ResolveIfPending(ctx, appeal.ID, models.ResolvedByCommunityVote)

	assert.NoError(t, err)
	assert.True(t, resolvedNow)
	contents.AssertExpectations(t)
}

func TestResolutionService_ResolveIfPending_RejectedWithPenalty(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	contents := new(mockResolutionContentStore)
	flags := new(mockResolutionFlagStore)
	decisions := new(mockDecisionStore)
	penalties := new(mockPenaltyApplier)
	notifier := new(mockResolutionNotifier)
	svc := NewResolutionService(appeals, contents, flags, decisions, penalties, notifier)
	ctx := context.Background()

	appeal := resolvedAppeal(models.AppealStatusRejected)
	ownerID := uuid.New()

	appeals.On("Resolve", ctx, appeal.ID, models.ResolvedByExpiry).Return(appeal, nil)
	contents.On("TransitionStatus", ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusRemoved).Return(true, nil)
	flags.On("ResolveActiveByContent", ctx, appeal.ContentID).Return(nil)
	contents.On("GetByID", ctx, appeal.ContentID).Return(&models.Content{
		ID:          appeal.ContentID,
		OwnerID:     ownerID,
		ContentType: models.ContentTypePost,
	}, nil)
	flags.On("DominantReason", ctx, appeal.ContentID).Return(models.FlagReasonHateSpeech, nil)
	penalties.On("ApplyPenalty", ctx, ownerID, appeal.ID, models.FlagReasonHateSpeech).Return(nil)
	decisions.On("Create", ctx, mock.AnythingOfType("*models.ModerationDecision")).Return(nil)
	notifier.On("Notify", ctx, appeal.AppellantID, "appeal_resolved", mock.Anything,
		AppealDedupeKey(appeal.ID, models.AppealStatusRejected)).Return(nil)

	_, resolvedNow, err := svc.ResolveIfPending(ctx, appeal.ID, models.ResolvedByExpiry)

	assert.NoError(t, err)
	assert.True(t, resolvedNow)
	penalties.AssertExpectations(t)
}

func TestResolutionService_ResolveIfPending_NoPenaltyForUserContent(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	contents := new(mockResolutionContentStore)
	flags := new(mockResolutionFlagStore)
	decisions := new(mockDecisionStore)
	penalties := new(mockPenaltyApplier)
	svc := NewResolutionService(appeals, contents, flags, decisions, penalties, nil)
	ctx := context.Background()

	appeal := resolvedAppeal(models.AppealStatusRejected)

	appeals.On("Resolve", ctx, appeal.ID, models.ResolvedByExpiry).Return(appeal, nil)
	contents.On("TransitionStatus", ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusRemoved).Return(true, nil)
	flags.On("ResolveActiveByContent", ctx, appeal.ContentID).Return(nil)
	contents.On("GetByID", ctx, appeal.ContentID).Return(&models.Content{
		ID:          appeal.ContentID,
		OwnerID:     uuid.New(),
		ContentType: models.ContentTypeUser,
	}, nil)
	decisions.On("Create", ctx, mock.AnythingOfType("*models.ModerationDecision")).Return(nil)

	_, _, err := svc.ResolveIfPending(ctx, appeal.ID, models.ResolvedByExpiry)

	assert.NoError(t, err)
	penalties.AssertNotCalled(t, "ApplyPenalty", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	flags.AssertNotCalled(t, "DominantReason", mock.Anything, mock.Anything)
}

func TestResolutionService_ResolveIfPending_AlreadyResolved(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	contents := new(mockResolutionContentStore)
	flags := new(mockResolutionFlagStore)
	decisions := new(mockDecisionStore)
	svc := NewResolutionService(appeals, contents, flags, decisions, new(mockPenaltyApplier), nil)
	ctx := context.Background()

	appealID := uuid.New()
	current := &models.Appeal{ID: appealID, Status: models.AppealStatusApproved}

	appeals.On("Resolve", ctx, appealID, models.ResolvedByExpiry).Return(nil, repository.ErrAppealNotPending)
	appeals.On("GetByID", ctx, appealID).Return(current, nil)

	result, resolvedNow, err := svc.ResolveIfPending(ctx, appealID, models.ResolvedByExpiry)

	assert.NoError(t, err)
	assert.False(t, resolvedNow)
	assert.Equal(t, current, result)
	contents.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	decisions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResolutionService_ResolveIfPending_NotFound(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	svc := NewResolutionService(appeals, new(mockResolutionContentStore), new(mockResolutionFlagStore), new(mockDecisionStore), new(mockPenaltyApplier), nil)
	ctx := context.Background()

	appealID := uuid.New()
	appeals.On("Resolve", ctx, appealID, models.ResolvedByExpiry).Return(nil, repository.ErrAppealNotPending)
	appeals.On("GetByID", ctx, appealID).Return(nil, repository.ErrAppealNotFound)

	_, _, err := svc.ResolveIfPending(ctx, appealID, models.ResolvedByExpiry)

	assert.ErrorIs(t, err, apperror.ErrAppealNotFound)
}

func TestResolutionService_ResolveIfPending_SideEffectFailureDoesNotFail(t *testing.T) {
	appeals := new(mockResolutionAppealStore)
	contents := new(mockResolutionContentStore)
	flags := new(mockResolutionFlagStore)
	decisions := new(mockDecisionStore)
	svc := NewResolutionService(appeals, contents, flags, decisions, new(mockPenaltyApplier), nil)
	ctx := context.Background()

	appeal := resolvedAppeal(models.AppealStatusApproved)

	appeals.On("Resolve", ctx, appeal.ID, models.ResolvedByCommunityVote).Return(appeal, nil)
	contents.On("TransitionStatus", ctx, appeal.ContentID, models.ContentStatusHiddenPending, models.ContentStatusVisible).Return(false, assert.AnError)
	flags.On("ResolveActiveByContent", ctx, appeal.ContentID).Return(assert.AnError)
	decisions.On("Create", ctx, mock.AnythingOfType("*models.ModerationDecision")).Return(assert.AnError)

	result, resolvedNow, err := svc.ResolveIfPending(ctx, appeal.ID, models.ResolvedByCommunityVote)

	assert.NoError(t, err)
	assert.True(t, resolvedNow)
	assert.Equal(t, appeal, result)
}
