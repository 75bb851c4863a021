package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

type mockVoteAppealStore struct {
	mock.Mock
}

func (m *mockVoteAppealStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appeal), args.Error(1)
}

type mockVoteStore struct {
	mock.Mock
}

func (m *mockVoteStore) Cast(ctx context.Context, vote *models.Vote) (*models.AppealTally, error) {
	args := m.Called(ctx, vote)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppealTally), args.Error(1)
}

func (m *mockVoteStore) GetByVoter(ctx context.Context, appealID, voterID uuid.UUID) (*models.Vote, error) {
	args := m.Called(ctx, appealID, voterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vote), args.Error(1)
}

func (m *mockVoteStore) ListByAppeal(ctx context.Context, appealID uuid.UUID) ([]models.Vote, error) {
	args := m.Called(ctx, appealID)
	return args.Get(0).([]models.Vote), args.Error(1)
}

type mockVoterStore struct {
	mock.Mock
}

func (m *mockVoterStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockAppealResolver struct {
	mock.Mock
}

func (m *mockAppealResolver) ResolveIfPending(ctx context.Context, appealID uuid.UUID, trigger string) (*models.Appeal, bool, error) {
	args := m.Called(ctx, appealID, trigger)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Appeal), args.Bool(1), args.Error(2)
}

func pendingAppeal(appellantID uuid.UUID) *models.Appeal {
	return &models.Appeal{
		ID:            uuid.New(),
		ContentID:     uuid.New(),
		AppellantID:   appellantID,
		Status:        models.AppealStatusPending,
		VotingStatus:  models.VotingStatusNotStarted,
		RequiredVotes: 5,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}
}

const voteReasoning = "контент не нарушает правила сообщества"

func TestVoteService_CastVote_ModeratorWeight(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	users := new(mockVoterStore)
	resolver := new(mockAppealResolver)
	svc := NewVoteService(appeals, votes, users, resolver)
	ctx := context.Background()

	voterID := uuid.New()
	appeal := pendingAppeal(uuid.New())

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)
	users.On("GetByID", ctx, voterID).Return(&models.User{ID: voterID, Role: models.RoleModerator}, nil)
	// Счётчики двигаются на вес голоса: первый голос модератора даёт 2/0/2.
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(&models.AppealTally{
		VotesFor:      2,
		TotalVotes:    2,
		RequiredVotes: 5,
	}, nil)

	result, err := svc.CastVote(ctx, voterID, appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 8,
		Reasoning:  voteReasoning,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Vote.Weight)
	assert.True(t, result.Vote.IsModerator)
	assert.Equal(t, 2, result.Tally.TotalVotes)
	assert.False(t, result.ResolvedNow)
	resolver.AssertNotCalled(t, "ResolveIfPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestVoteService_CastVote_SelfVote(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	svc := NewVoteService(appeals, votes, new(mockVoterStore), new(mockAppealResolver))
	ctx := context.Background()

	voterID := uuid.New()
	appeal := pendingAppeal(voterID)
	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)

	_, err := svc.CastVote(ctx, voterID, appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 5,
		Reasoning:  voteReasoning,
	})

	assert.ErrorIs(t, err, apperror.ErrSelfVote)
	votes.AssertNotCalled(t, "Cast", mock.Anything, mock.Anything)
}

func TestVoteService_CastVote_InvalidConfidence(t *testing.T) {
	svc := NewVoteService(new(mockVoteAppealStore), new(mockVoteStore), new(mockVoterStore), new(mockAppealResolver))

	_, err := svc.CastVote(context.Background(), uuid.New(), uuid.New(), CastVoteInput{
		Decision:   models.VoteDecisionReject,
		Confidence: 11,
		Reasoning:  voteReasoning,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestVoteService_CastVote_ReasoningTooShort(t *testing.T) {
	svc := NewVoteService(new(mockVoteAppealStore), new(mockVoteStore), new(mockVoterStore), new(mockAppealResolver))

	_, err := svc.CastVote(context.Background(), uuid.New(), uuid.New(), CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 5,
		Reasoning:  "коротко",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "обоснование голоса")
}

func TestVoteService_CastVote_AlreadyDecided(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	svc := NewVoteService(appeals, new(mockVoteStore), new(mockVoterStore), new(mockAppealResolver))
	ctx := context.Background()

	appeal := pendingAppeal(uuid.New())
	appeal.Status = models.AppealStatusApproved
	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)

	_, err := svc.CastVote(ctx, uuid.New(), appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 5,
		Reasoning:  voteReasoning,
	})

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeAlreadyDecided, appErr.Code)
	assert.Equal(t, appeal, appErr.State)
}

func TestVoteService_CastVote_DuplicateVote(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	users := new(mockVoterStore)
	svc := NewVoteService(appeals, votes, users, new(mockAppealResolver))
	ctx := context.Background()

	voterID := uuid.New()
	appeal := pendingAppeal(uuid.New())
	existing := &models.Vote{ID: uuid.New(), AppealID: appeal.ID, VoterID: voterID}

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)
	users.On("GetByID", ctx, voterID).Return(&models.User{ID: voterID, Role: models.RoleUser}, nil)
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(nil, repository.ErrDuplicateVote)
	votes.On("GetByVoter", ctx, appeal.ID, voterID).Return(existing, nil)

	_, err := svc.CastVote(ctx, voterID, appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionReject,
		Confidence: 6,
		Reasoning:  voteReasoning,
	})

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeAlreadyVoted, appErr.Code)
	assert.Equal(t, existing, appErr.State)
}

func TestVoteService_CastVote_RaceWithResolution(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	users := new(mockVoterStore)
	svc := NewVoteService(appeals, votes, users, new(mockAppealResolver))
	ctx := context.Background()

	voterID := uuid.New()
	appeal := pendingAppeal(uuid.New())
	decided := &models.Appeal{ID: appeal.ID, Status: models.AppealStatusRejected}

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil).Once()
	users.On("GetByID", ctx, voterID).Return(&models.User{ID: voterID, Role: models.RoleUser}, nil)
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(nil, repository.ErrAppealNotPending)
	appeals.On("GetByID", ctx, appeal.ID).Return(decided, nil).Once()

	_, err := svc.CastVote(ctx, voterID, appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 5,
		Reasoning:  voteReasoning,
	})

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeAlreadyDecided, appErr.Code)
	assert.Equal(t, decided, appErr.State)
}

func TestVoteService_CastVote_ExpiredWindow(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	resolver := new(mockAppealResolver)
	svc := NewVoteService(appeals, votes, new(mockVoterStore), resolver)
	ctx := context.Background()

	appeal := pendingAppeal(uuid.New())
	appeal.ExpiresAt = time.Now().Add(-time.Hour)
	// Истечение окна закрывает апелляцию по текущему подсчёту:
	// 1-0 при пяти требуемых голосах одобряется и без кворума.
	resolved := &models.Appeal{
		ID:               appeal.ID,
		Status:           models.AppealStatusApproved,
		VotingStatus:     models.VotingStatusCompleted,
		VotesFor:         1,
		TotalVotes:       1,
		RequiredVotes:    5,
		HasReachedQuorum: false,
	}

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)
	resolver.On("ResolveIfPending", ctx, appeal.ID, models.ResolvedByExpiry).Return(resolved, true, nil)

	_, err := svc.CastVote(ctx, uuid.New(), appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 5,
		Reasoning:  voteReasoning,
	})

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeExpired, appErr.Code)
	assert.Equal(t, resolved, appErr.State)
	state := appErr.State.(*models.Appeal)
	assert.Equal(t, models.AppealStatusApproved, state.Status)
	assert.False(t, state.HasReachedQuorum)
	votes.AssertNotCalled(t, "Cast", mock.Anything, mock.Anything)
	resolver.AssertExpectations(t)
}

func TestVoteService_CastVote_ExpiryBeforeSelfVoteCheck(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	resolver := new(mockAppealResolver)
	svc := NewVoteService(appeals, votes, new(mockVoterStore), resolver)
	ctx := context.Background()

	voterID := uuid.New()
	appeal := pendingAppeal(voterID)
	appeal.ExpiresAt = time.Now().Add(-time.Minute)
	resolved := &models.Appeal{ID: appeal.ID, Status: models.AppealStatusRejected}

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)
	resolver.On("ResolveIfPending", ctx, appeal.ID, models.ResolvedByExpiry).Return(resolved, true, nil)

	// Попытка апеллянта голосовать после дедлайна всё равно закрывает
	// апелляцию: истечение проверяется раньше запрета на свой голос.
	_, err := svc.CastVote(ctx, voterID, appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 5,
		Reasoning:  voteReasoning,
	})

	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.ErrCodeExpired, appErr.Code)
	resolver.AssertExpectations(t)
}

func TestVoteService_CastVote_QuorumTriggersResolution(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	users := new(mockVoterStore)
	resolver := new(mockAppealResolver)
	svc := NewVoteService(appeals, votes, users, resolver)
	ctx := context.Background()

	voterID := uuid.New()
	appeal := pendingAppeal(uuid.New())
	resolved := &models.Appeal{ID: appeal.ID, Status: models.AppealStatusApproved}

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)
	users.On("GetByID", ctx, voterID).Return(&models.User{ID: voterID, Role: models.RoleAdmin}, nil)
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(&models.AppealTally{
		VotesFor:         4,
		VotesAgainst:     2,
		TotalVotes:       6,
		RequiredVotes:    5,
		HasReachedQuorum: true,
	}, nil)
	resolver.On("ResolveIfPending", ctx, appeal.ID, models.ResolvedByCommunityVote).Return(resolved, true, nil)

	result, err := svc.CastVote(ctx, voterID, appeal.ID, CastVoteInput{
		Decision:   models.VoteDecisionApprove,
		Confidence: 9,
		Reasoning:  voteReasoning,
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.Vote.Weight)
	assert.True(t, result.ResolvedNow)
	assert.Equal(t, resolved, result.Appeal)
	resolver.AssertExpectations(t)
}

func TestVoteService_CastVote_WeightedTallySequence(t *testing.T) {
	appeals := new(mockVoteAppealStore)
	votes := new(mockVoteStore)
	users := new(mockVoterStore)
	resolver := new(mockAppealResolver)
	svc := NewVoteService(appeals, votes, users, resolver)
	ctx := context.Background()

	appeal := pendingAppeal(uuid.New())
	appeal.RequiredVotes = 3
	resolved := &models.Appeal{
		ID:           appeal.ID,
		Status:       models.AppealStatusApproved,
		VotingStatus: models.VotingStatusCompleted,
	}

	userA := uuid.New()
	moderator := uuid.New()
	userB := uuid.New()

	appeals.On("GetByID", ctx, appeal.ID).Return(appeal, nil)
	users.On("GetByID", ctx, userA).Return(&models.User{ID: userA, Role: models.RoleUser}, nil)
	users.On("GetByID", ctx, moderator).Return(&models.User{ID: moderator, Role: models.RoleModerator}, nil)
	users.On("GetByID", ctx, userB).Return(&models.User{ID: userB, Role: models.RoleUser}, nil)

	// Последовательность голосов "за"(1), "за"(2), "против"(1): каждый
	// двигает счётчики на свой вес, кворум достигается на взвешенной
	// сумме 3, итог 3-1 при четырёх взвешенных голосах.
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(&models.AppealTally{
		VotesFor: 1, VotesAgainst: 0, TotalVotes: 1, RequiredVotes: 3,
	}, nil).Once()
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(&models.AppealTally{
		VotesFor: 3, VotesAgainst: 0, TotalVotes: 3, RequiredVotes: 3, HasReachedQuorum: true,
	}, nil).Once()
	votes.On("Cast", ctx, mock.AnythingOfType("*models.Vote")).Return(&models.AppealTally{
		VotesFor: 3, VotesAgainst: 1, TotalVotes: 4, RequiredVotes: 3, HasReachedQuorum: true,
	}, nil).Once()

	resolver.On("ResolveIfPending", ctx, appeal.ID, models.ResolvedByCommunityVote).Return(resolved, true, nil).Once()
	resolver.On("ResolveIfPending", ctx, appeal.ID, models.ResolvedByCommunityVote).Return(resolved, false, nil).Once()

	first, err := svc.CastVote(ctx, userA, appeal.ID, CastVoteInput{
		Decision: models.VoteDecisionApprove, Confidence: 6, Reasoning: voteReasoning,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Vote.Weight)
	assert.False(t, first.Tally.HasReachedQuorum)
	assert.False(t, first.ResolvedNow)

	second, err := svc.CastVote(ctx, moderator, appeal.ID, CastVoteInput{
		Decision: models.VoteDecisionApprove, Confidence: 8, Reasoning: voteReasoning,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, second.Vote.Weight)
	assert.Equal(t, 3, second.Tally.TotalVotes)
	assert.True(t, second.ResolvedNow)

	// Третий голос успел до фиксации решения: счётчики двигаются дальше,
	// повторная финализация идемпотентна.
	third, err := svc.CastVote(ctx, userB, appeal.ID, CastVoteInput{
		Decision: models.VoteDecisionReject, Confidence: 4, Reasoning: voteReasoning,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, third.Tally.VotesFor)
	assert.Equal(t, 1, third.Tally.VotesAgainst)
	assert.Equal(t, 4, third.Tally.TotalVotes)
	assert.False(t, third.ResolvedNow)

	votes.AssertExpectations(t)
	resolver.AssertExpectations(t)
}
