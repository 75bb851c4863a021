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

type mockNotificationStore struct {
	mock.Mock
}

func (m *mockNotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil {
		notification.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationStore) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationStore) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func TestNotificationService_Notify_SetsDedupeKey(t *testing.T) {
	store := new(mockNotificationStore)
	svc := NewNotificationService(store)
	ctx := context.Background()

	userID := uuid.New()
	store.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && n.DedupeKey != nil && *n.DedupeKey == "key-1"
	})).Return(nil)

	err := svc.Notify(ctx, userID, "appeal_resolved", map[string]interface{}{"x": 1}, "key-1")

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestNotificationService_Notify_DuplicateSilentlyDropped(t *testing.T) {
	store := new(mockNotificationStore)
	svc := NewNotificationService(store)
	ctx := context.Background()

	store.On("Create", ctx, mock.AnythingOfType("*models.Notification")).
		Return(repository.ErrDuplicateNotification)

	err := svc.Notify(ctx, uuid.New(), "appeal_resolved", nil, "key-1")

	assert.NoError(t, err)
}

func TestNotificationService_MarkAsRead_Forbidden(t *testing.T) {
	store := new(mockNotificationStore)
	svc := NewNotificationService(store)
	ctx := context.Background()

	notificationID := uuid.New()
	store.On("GetByID", ctx, notificationID).Return(&models.Notification{
		ID:     notificationID,
		UserID: uuid.New(),
	}, nil)

	err := svc.MarkAsRead(ctx, uuid.New(), notificationID)

	assert.True(t, apperror.IsForbidden(err))
	store.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkAsRead_NotFound(t *testing.T) {
	store := new(mockNotificationStore)
	svc := NewNotificationService(store)
	ctx := context.Background()

	notificationID := uuid.New()
	store.On("GetByID", ctx, notificationID).Return(nil, repository.ErrNotificationNotFound)

	err := svc.MarkAsRead(ctx, uuid.New(), notificationID)

	assert.True(t, apperror.IsNotFound(err))
}

func TestAppealDedupeKey(t *testing.T) {
	appealID := uuid.New()
	key := AppealDedupeKey(appealID, models.AppealStatusApproved)
	assert.Equal(t, appealID.String()+":approved", key)
}
