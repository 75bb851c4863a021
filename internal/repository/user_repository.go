package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/moderation-backend/internal/models"
	"github.com/ignatzorin/moderation-backend/internal/repository/common"
)

// UserRepository отвечает за работу с таблицами users, user_sessions и reputation_events.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, reputation, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.Reputation, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "email", email, ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// CreateSession сохраняет refresh сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.RefreshToken, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// AdjustReputation атомарно изменяет репутацию пользователя.
// Запись в reputation_events с уникальным idempotency_key гарантирует,
// что повторное применение того же события не изменит репутацию дважды.
func (r *UserRepository) AdjustReputation(ctx context.Context, userID uuid.UUID, delta int, reason, idempotencyKey string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reputation_events (user_id, delta, reason, idempotency_key)
			VALUES ($1, $2, $3, $4)
		`, userID, delta, reason, idempotencyKey)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReputation
			}
			return fmt.Errorf("user repository: insert reputation event %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE users SET reputation = reputation + $1, updated_at = NOW() WHERE id = $2
		`, delta, userID)
		if err != nil {
			return fmt.Errorf("user repository: adjust reputation %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("user repository: adjust reputation rows affected %w", err)
		}
		if affected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}
