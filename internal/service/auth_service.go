package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"authcore/internal/entity"
	"authcore/internal/metrics"
	"authcore/internal/repository"
	"authcore/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	defaultSessionTTL     = 7 * 24 * time.Hour
	sessionIDAttempts     = 3
	dummyPasswordMaterial = "authcore-dummy-password"
	// bcrypt only looks at the first 72 bytes and refuses anything longer.
	maxPasswordBytes = 72
)

type AuthService struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	securityLogs repository.SecurityLogRepository

	passwordHash PasswordHasher
	accessTokens AccessTokenIssuer
	clock        Clock
	config       AuthConfig
	logger       logrus.FieldLogger

	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	securityLogs repository.SecurityLogRepository,
	passwordHash PasswordHasher,
	accessTokens AccessTokenIssuer,
	clock Clock,
	config AuthConfig,
	logger logrus.FieldLogger,
) (*AuthService, error) {
	// Compared against when the email is unknown so that path costs one bcrypt round too.
	dummyHash, err := passwordHash.Hash(dummyPasswordMaterial)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		users:        users,
		sessions:     sessions,
		securityLogs: securityLogs,
		passwordHash: passwordHash,
		accessTokens: accessTokens,
		clock:        clock,
		config:       config,
		logger:       logger,
		dummyHash:    dummyHash,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput, meta RequestMeta) (*RegisterResult, error) {
	input.Email = utils.NormalizeEmail(input.Email)
	input.UserName = strings.TrimSpace(input.UserName)
	if input.Email == "" || input.UserName == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}
	existing, err = s.users.FindByUserName(ctx, input.UserName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = entity.UserRoleUser
	}
	user := &entity.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		UserName:     input.UserName,
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapDuplicate(err)
	}
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "user_name": user.UserName}).Info("user registered")

	result := &RegisterResult{User: user}
	if !s.config.RegisterIssuesToken {
		return result, nil
	}
	login, err := s.startSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	result.Token = &login.Token
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string, meta RequestMeta) (*LoginResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.passwordHash.Verify(s.dummyHash, password)
		s.loginFailed(ctx, nil, email, meta, "user_not_found")
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.loginFailed(ctx, &user.ID, email, meta, "account_deactivated")
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeDeactivated).Inc()
		return nil, ErrAccountDeactivated
	}
	if !s.passwordHash.Verify(user.PasswordHash, password) {
		s.loginFailed(ctx, &user.ID, email, meta, "invalid_password")
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidCredentials
	}

	result, err := s.startSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logSecurity(ctx, &user.ID, meta.IPAddress, entity.LoginSuccess, map[string]any{"session_id": result.SessionID})
	return result, nil
}

// LogoutCurrent closes the session bound to token. A missing session is not an error.
func (s *AuthService) LogoutCurrent(ctx context.Context, token string, userID uuid.UUID) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	session, err := s.sessions.FindActiveByTokenHash(ctx, utils.HashToken(token), userID)
	if err != nil {
		return err
	}
	if session == nil {
		s.logger.WithField("user_id", userID).Debug("logout without active session")
		return nil
	}
	if _, err := s.sessions.MarkLoggedOut(ctx, session, s.now()); err != nil {
		return err
	}
	metrics.SessionsLoggedOut.WithLabelValues(metrics.ReasonLogout).Inc()
	s.logSecurity(ctx, &userID, session.IPAddress, entity.Logout, map[string]any{"session_id": session.SessionID})
	return nil
}

// Authenticate resolves a bearer token to its user. Unknown and deactivated
// users are reported exactly like a bad token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	userID, err := s.accessTokens.ValidateAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// startSession issues the bearer token and records the session. Failing to
// record the session is logged and does not fail the login.
func (s *AuthService) startSession(ctx context.Context, user *entity.User, meta RequestMeta) (*LoginResult, error) {
	token, expiresIn, err := s.accessTokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	result := &LoginResult{User: user, Token: token, ExpiresIn: expiresIn}

	session, err := s.createSession(ctx, user, token, meta)
	entry := s.logger.WithFields(logrus.Fields{"user_id": user.ID, "ip": meta.IPAddress})
	if err != nil {
		metrics.SessionAuditFailures.Inc()
		entry.WithError(err).Error("session creation failed, continuing login")
		return result, nil
	}
	metrics.SessionsCreated.Inc()
	result.SessionID = session.SessionID
	entry.WithFields(logrus.Fields{
		"session_id":  session.SessionID,
		"device_type": session.Device.Type,
		"browser":     session.Device.Browser,
		"os":          session.Device.OS,
	}).Info("session created")
	return result, nil
}

func (s *AuthService) createSession(ctx context.Context, user *entity.User, token string, meta RequestMeta) (*entity.Session, error) {
	now := s.now()
	ipAddress := fallbackUnknown(meta.IPAddress)
	userAgent := fallbackUnknown(meta.UserAgent)
	method := meta.LoginMethod
	if method == "" {
		method = entity.LoginMethodEmail
	}

	var lastErr error
	for attempt := 0; attempt < sessionIDAttempts; attempt++ {
		sessionID, err := utils.GenerateSessionID()
		if err != nil {
			return nil, err
		}
		session := &entity.Session{
			SessionID:    sessionID,
			UserID:       user.ID,
			TokenHash:    utils.HashToken(token),
			LoginTime:    now,
			IsActive:     true,
			IPAddress:    ipAddress,
			UserAgent:    userAgent,
			Device:       utils.ParseUserAgent(userAgent),
			Location:     entity.UnknownLocation(),
			LoginMethod:  method,
			LoginStatus:  entity.LoginStatusSuccess,
			LastActivity: now,
			ExpiresAt:    now.Add(s.sessionTTL()),
		}
		err = s.sessions.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, repository.ErrDuplicateSessionID) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *AuthService) loginFailed(ctx context.Context, userID *uuid.UUID, email string, meta RequestMeta, reason string) {
	s.logger.WithFields(logrus.Fields{
		"email":      email,
		"ip":         meta.IPAddress,
		"user_agent": meta.UserAgent,
		"reason":     reason,
	}).Warn("failed login attempt")
	s.logSecurity(ctx, userID, meta.IPAddress, entity.LoginFailed, map[string]any{"email": email, "reason": reason})
}

func (s *AuthService) logSecurity(ctx context.Context, userID *uuid.UUID, ipAddress string, action entity.SecurityAction, metadata map[string]any) {
	recordSecurityEvent(ctx, s.securityLogs, s.logger, userID, ipAddress, action, metadata)
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.config.SessionTTL > 0 {
		return s.config.SessionTTL
	}
	return defaultSessionTTL
}

// recordSecurityEvent is best-effort: a failed write is logged and never
// fails the operation that produced it.
func recordSecurityEvent(
	ctx context.Context,
	logs repository.SecurityLogRepository,
	logger logrus.FieldLogger,
	userID *uuid.UUID,
	ipAddress string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if logs == nil {
		return
	}
	if err := writeSecurityLog(ctx, logs, userID, ipAddress, action, metadata); err != nil {
		logger.WithError(err).WithField("action", action).Warn("security log write failed")
	}
}

func writeSecurityLog(
	ctx context.Context,
	logs repository.SecurityLogRepository,
	userID *uuid.UUID,
	ipAddress string,
	action entity.SecurityAction,
	metadata map[string]any,
) error {
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}
	var ip *string
	if ipAddress != "" {
		ip = &ipAddress
	}
	return logs.Log(ctx, &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ip,
		Action:    action,
		Metadata:  payload,
	})
}

func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	}
	return err
}

func fallbackUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return entity.UnknownValue
	}
	return value
}
