package repository

import (
	"context"
	"time"

	"authcore/internal/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SessionFilter struct {
	UserID   *uuid.UUID
	IsActive *bool
}

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindActiveBySessionID(ctx context.Context, sessionID string, userID *uuid.UUID) (*entity.Session, error)
	FindActiveByTokenHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error)
	ListActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error)
	ListAll(ctx context.Context, filter SessionFilter, limit, offset int) ([]entity.Session, int64, error)
	MarkLoggedOut(ctx context.Context, session *entity.Session, now time.Time) (*entity.Session, error)
	MarkExpired(ctx context.Context, session *entity.Session, now time.Time) error
	TouchActivity(ctx context.Context, tokenHash string, userID uuid.UUID, now time.Time) error
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return translateUnique(r.db.WithContext(ctx).Create(s).Error, "create session")
}

// FindActiveBySessionID scopes the lookup to userID when it is set.
func (r *sessionRepository) FindActiveBySessionID(ctx context.Context, sessionID string, userID *uuid.UUID) (*entity.Session, error) {
	query := r.db.WithContext(ctx).Where("session_id = ? AND is_active = ?", sessionID, true)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	return firstSession(query)
}

func (r *sessionRepository) FindActiveByTokenHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error) {
	query := r.db.WithContext(ctx).
		Where("token_hash = ? AND user_id = ? AND is_active = ?", tokenHash, userID, true)
	return firstSession(query)
}

func firstSession(query *gorm.DB) (*entity.Session, error) {
	var session entity.Session
	err := query.First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find session")
	}
	return &session, nil
}

func (r *sessionRepository) ListActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND is_expired = ? AND expires_at > ?", userID, true, false, now).
		Order("login_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, errors.Wrap(err, "list active sessions")
	}
	return sessions, nil
}

func (r *sessionRepository) ListAll(ctx context.Context, filter SessionFilter, limit, offset int) ([]entity.Session, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Session{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count sessions")
	}

	page := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "first_name", "last_name", "user_name", "email")
		}).
		Order("login_time DESC")
	if limit > 0 {
		page = page.Limit(limit)
	}
	if offset > 0 {
		page = page.Offset(offset)
	}

	var sessions []entity.Session
	err := page.Find(&sessions).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list sessions")
	}
	return sessions, total, nil
}

// MarkLoggedOut only touches rows that are still active, so repeating it is a no-op.
func (r *sessionRepository) MarkLoggedOut(ctx context.Context, session *entity.Session, now time.Time) (*entity.Session, error) {
	if !session.IsActive {
		return session, nil
	}
	logoutTime := now
	updated := *session
	updated.IsActive = false
	updated.LogoutTime = &logoutTime
	updated.SessionDuration = updated.DurationMinutes(now)

	result := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("session_id = ? AND is_active = ?", session.SessionID, true).
		Updates(map[string]any{
			"is_active":        false,
			"logout_time":      logoutTime,
			"session_duration": updated.SessionDuration,
		})
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "logout session")
	}
	return &updated, nil
}

func (r *sessionRepository) MarkExpired(ctx context.Context, session *entity.Session, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("session_id = ? AND is_active = ?", session.SessionID, true).
		Updates(map[string]any{
			"is_active":   false,
			"is_expired":  true,
			"logout_time": now,
		}).Error
	return errors.Wrap(err, "expire session")
}

func (r *sessionRepository) TouchActivity(ctx context.Context, tokenHash string, userID uuid.UUID, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("token_hash = ? AND user_id = ? AND is_active = ?", tokenHash, userID, true).
		Update("last_activity", now).Error
	return errors.Wrap(err, "touch session")
}

func (r *sessionRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("expires_at < ? AND is_active = ?", now, true).
		Updates(map[string]any{
			"is_active":   false,
			"is_expired":  true,
			"logout_time": now,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "sweep sessions")
	}
	return result.RowsAffected, nil
}
