package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/moderation-backend/internal/goroutine"
	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// NotificationStore хранилище уведомлений.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Broadcaster доставляет уведомление в открытые websocket сессии пользователя.
type Broadcaster interface {
	SendToUser(userID uuid.UUID, message []byte)
}

// NotificationService сохраняет уведомления и рассылает их по websocket.
type NotificationService struct {
	store       NotificationStore
	broadcaster Broadcaster
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// SetBroadcaster подключает websocket hub. Вызывается один раз при старте.
func (s *NotificationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// notificationPayload формат полезной нагрузки уведомления.
type notificationPayload struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notify создаёт уведомление и отправляет его в реальном времени.
// Повторная доставка с тем же dedupeKey молча гасится, доставка
// по websocket выполняется в фоне и не блокирует вызывающего.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}, dedupeKey string) error {
	payload, err := json.Marshal(notificationPayload{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сформировать уведомление")
	}

	notification := &models.Notification{
		UserID:  userID,
		Payload: payload,
	}
	if dedupeKey != "" {
		notification.DedupeKey = &dedupeKey
	}

	if err := s.store.Create(ctx, notification); err != nil {
		if errors.Is(err, repository.ErrDuplicateNotification) {
			return nil
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить уведомление")
	}

	if s.broadcaster != nil {
		message, err := json.Marshal(notification)
		if err != nil {
			logger.Log.Errorf("Ошибка сериализации уведомления %s: %v", notification.ID, err)
			return nil
		}
		goroutine.SafeGo(func() {
			s.broadcaster.SendToUser(userID, message)
		})
	}

	return nil
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.store.List(ctx, userID, limit, offset, unreadOnly)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить уведомления")
	}
	return notifications, nil
}

// MarkAsRead отмечает уведомление прочитанным, проверяя владельца.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	notification, err := s.store.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
		}
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить уведомление")
	}

	if notification.UserID != userID {
		return apperror.ErrForbidden
	}

	if err := s.store.MarkAsRead(ctx, notificationID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отметить уведомление прочитанным")
	}

	return nil
}

// MarkAllAsRead отмечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.MarkAllAsRead(ctx, userID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отметить уведомления прочитанными")
	}
	return nil
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось посчитать уведомления")
	}
	return count, nil
}

// AppealDedupeKey ключ дедупликации уведомления о финальном решении.
func AppealDedupeKey(appealID uuid.UUID, decision string) string {
	return fmt.Sprintf("%s:%s", appealID, decision)
}
