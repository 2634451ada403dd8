package service

import (
	"context"
	"strings"
	"time"

	"authcore/internal/entity"
	"authcore/internal/metrics"
	"authcore/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultSessionPageSize = 10
	maxSessionPageSize     = 100
)

type SessionService struct {
	sessions     repository.SessionRepository
	securityLogs repository.SecurityLogRepository
	clock        Clock
	logger       logrus.FieldLogger
}

func NewSessionService(
	sessions repository.SessionRepository,
	securityLogs repository.SecurityLogRepository,
	clock Clock,
	logger logrus.FieldLogger,
) *SessionService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionService{
		sessions:     sessions,
		securityLogs: securityLogs,
		clock:        clock,
		logger:       logger,
	}
}

// ListActive returns the caller's live sessions, newest login first.
func (s *SessionService) ListActive(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	return s.sessions.ListActiveForUser(ctx, userID, s.now())
}

func (s *SessionService) ListAll(ctx context.Context, filter repository.SessionFilter, page, limit int) (*SessionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultSessionPageSize
	}
	if limit > maxSessionPageSize {
		limit = maxSessionPageSize
	}
	sessions, total, err := s.sessions.ListAll(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &SessionPage{Sessions: sessions, Total: total, Page: page, Limit: limit}, nil
}

// LogoutBySessionID ends one of the caller's own sessions.
func (s *SessionService) LogoutBySessionID(ctx context.Context, sessionID string, userID uuid.UUID) error {
	session, err := s.findLive(ctx, sessionID, &userID)
	if err != nil {
		return err
	}
	if _, err := s.sessions.MarkLoggedOut(ctx, session, s.now()); err != nil {
		return err
	}
	metrics.SessionsLoggedOut.WithLabelValues(metrics.ReasonLogout).Inc()
	recordSecurityEvent(ctx, s.securityLogs, s.logger, &userID, "", entity.Logout, map[string]any{"session_id": sessionID})
	return nil
}

// LogoutAll closes the user's active sessions one at a time. On failure the
// returned count is what was closed before the error; calling again finishes the rest.
func (s *SessionService) LogoutAll(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.logoutAll(ctx, userID, metrics.ReasonLogoutAll)
	recordSecurityEvent(ctx, s.securityLogs, s.logger, &userID, "", entity.SessionRevoked, map[string]any{"scope": "all", "count": count})
	return count, err
}

func (s *SessionService) logoutAll(ctx context.Context, userID uuid.UUID, reason string) (int, error) {
	filter := repository.SessionFilter{UserID: &userID, IsActive: boolPtr(true)}
	sessions, _, err := s.sessions.ListAll(ctx, filter, 0, 0)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range sessions {
		now := s.now()
		if !sessions[i].ExpiresAt.After(now) {
			// Past due and not swept yet.
			if err := s.sessions.MarkExpired(ctx, &sessions[i], now); err != nil {
				return count, err
			}
			metrics.SessionsExpired.Inc()
			continue
		}
		if _, err := s.sessions.MarkLoggedOut(ctx, &sessions[i], now); err != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id":    userID,
				"session_id": sessions[i].SessionID,
				"completed":  count,
			}).WithError(err).Error("logout all stopped early")
			return count, err
		}
		count++
		metrics.SessionsLoggedOut.WithLabelValues(reason).Inc()
	}
	return count, nil
}

// Terminate is the admin path: any user's session, no ownership check.
func (s *SessionService) Terminate(ctx context.Context, sessionID string) error {
	session, err := s.findLive(ctx, sessionID, nil)
	if err != nil {
		return err
	}
	if _, err := s.sessions.MarkLoggedOut(ctx, session, s.now()); err != nil {
		return err
	}
	metrics.SessionsLoggedOut.WithLabelValues(metrics.ReasonTerminate).Inc()
	s.logger.WithFields(logrus.Fields{"session_id": sessionID, "user_id": session.UserID}).Info("session terminated")
	recordSecurityEvent(ctx, s.securityLogs, s.logger, &session.UserID, "", entity.SessionTerminated, map[string]any{"session_id": sessionID})
	return nil
}

func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.sessions.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.SessionsExpired.Add(float64(count))
		s.logger.WithField("count", count).Info("expired sessions swept")
		recordSecurityEvent(ctx, s.securityLogs, s.logger, nil, "", entity.SessionsSwept, map[string]any{"count": count})
	}
	return count, nil
}

// findLive loads an active session and expires it on the spot if its window has passed.
func (s *SessionService) findLive(ctx context.Context, sessionID string, userID *uuid.UUID) (*entity.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessions.FindActiveBySessionID(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if !session.ExpiresAt.After(now) {
		if err := s.sessions.MarkExpired(ctx, session, now); err != nil {
			return nil, err
		}
		metrics.SessionsExpired.Inc()
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func boolPtr(value bool) *bool {
	return &value
}
