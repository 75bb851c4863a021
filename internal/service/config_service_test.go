package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

type mockConfigStore struct {
	mock.Mock
}

func (m *mockConfigStore) Get(ctx context.Context) (*models.ModerationConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModerationConfig), args.Error(1)
}

func (m *mockConfigStore) Update(ctx context.Context, cfg *models.ModerationConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func TestConfigService_Current_CachesResult(t *testing.T) {
	store := new(mockConfigStore)
	svc := NewConfigService(store)
	ctx := context.Background()

	store.On("Get", ctx).Return(&models.ModerationConfig{
		AutoHideThreshold: 3,
		RequiredVotes:     7,
	}, nil).Once()

	first := svc.Current(ctx)
	second := svc.Current(ctx)

	assert.Equal(t, 3, first.AutoHideThreshold)
	assert.Equal(t, 7, first.RequiredVotes)
	assert.Equal(t, first, second)
	store.AssertNumberOfCalls(t, "Get", 1)
}

func TestConfigService_Current_DefaultsWhenMissing(t *testing.T) {
	store := new(mockConfigStore)
	svc := NewConfigService(store)
	ctx := context.Background()

	store.On("Get", ctx).Return(nil, repository.ErrConfigNotFound)

	cfg := svc.Current(ctx)

	assert.Equal(t, DefaultAutoHideThreshold, cfg.AutoHideThreshold)
	assert.Equal(t, DefaultRequiredVotes, cfg.RequiredVotes)
}

func TestConfigService_Current_NormalizesInvalidValues(t *testing.T) {
	store := new(mockConfigStore)
	svc := NewConfigService(store)
	ctx := context.Background()

	store.On("Get", ctx).Return(&models.ModerationConfig{
		AutoHideThreshold: 0,
		RequiredVotes:     -3,
	}, nil)

	cfg := svc.Current(ctx)

	assert.Equal(t, DefaultAutoHideThreshold, cfg.AutoHideThreshold)
	assert.Equal(t, DefaultRequiredVotes, cfg.RequiredVotes)
}

func TestConfigService_Update_StoreError(t *testing.T) {
	store := new(mockConfigStore)
	svc := NewConfigService(store)
	ctx := context.Background()

	store.On("Update", ctx, mock.AnythingOfType("*models.ModerationConfig")).Return(assert.AnError)

	_, err := svc.Update(ctx, models.ModerationConfig{AutoHideThreshold: 4, RequiredVotes: 6})

	assert.Error(t, err)
}

func TestConfigService_Update_Validation(t *testing.T) {
	svc := NewConfigService(new(mockConfigStore))
	ctx := context.Background()

	_, err := svc.Update(ctx, models.ModerationConfig{AutoHideThreshold: 0, RequiredVotes: 5})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Update(ctx, models.ModerationConfig{AutoHideThreshold: 5, RequiredVotes: -1})
	assert.True(t, apperror.IsValidation(err))
}

func TestConfigService_Update_RefreshesCache(t *testing.T) {
	store := new(mockConfigStore)
	svc := NewConfigService(store)
	ctx := context.Background()

	store.On("Update", ctx, mock.AnythingOfType("*models.ModerationConfig")).Return(nil)

	updated, err := svc.Update(ctx, models.ModerationConfig{AutoHideThreshold: 10, RequiredVotes: 9})

	assert.NoError(t, err)
	assert.Equal(t, 10, updated.AutoHideThreshold)

	cfg := svc.Current(ctx)
	assert.Equal(t, 10, cfg.AutoHideThreshold)
	assert.Equal(t, 9, cfg.RequiredVotes)
	store.AssertNotCalled(t, "Get", mock.Anything)
}
