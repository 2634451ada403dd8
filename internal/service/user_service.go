package service

import (
	"context"
	"strings"

	"authcore/internal/entity"
	"authcore/internal/metrics"
	"authcore/internal/repository"
	"authcore/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserService struct {
	users        repository.UserRepository
	sessions     *SessionService
	securityLogs repository.SecurityLogRepository
	logger       logrus.FieldLogger
}

func NewUserService(
	users repository.UserRepository,
	sessions *SessionService,
	securityLogs repository.SecurityLogRepository,
	logger logrus.FieldLogger,
) *UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserService{
		users:        users,
		sessions:     sessions,
		securityLogs: securityLogs,
		logger:       logger,
	}
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Update applies an admin edit; role and active flag may change here.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*entity.User, error) {
	return s.apply(ctx, id, input)
}

// UpdateProfile is the self-service edit. Role and active flag are ignored.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*entity.User, error) {
	input.Role = nil
	input.IsActive = nil
	return s.apply(ctx, id, input)
}

func (s *UserService) apply(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*entity.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if value, ok := nonEmpty(input.FirstName); ok {
		user.FirstName = value
	}
	if value, ok := nonEmpty(input.LastName); ok {
		user.LastName = value
	}
	if value, ok := nonEmpty(input.UserName); ok && value != user.UserName {
		other, err := s.users.FindByUserName(ctx, value)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrDuplicateUsername
		}
		user.UserName = value
	}
	if value, ok := nonEmpty(input.Email); ok {
		email := utils.NormalizeEmail(value)
		if email != user.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, ErrDuplicateEmail
			}
			user.Email = email
		}
	}
	if value, ok := nonEmpty(input.Phone); ok {
		user.Phone = value
	}
	if input.Gender != nil && *input.Gender != "" {
		user.Gender = *input.Gender
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapDuplicate(err)
	}
	return user, nil
}

// Delete logs out every active session of the user, then removes the user.
// The session rows go with it through the foreign key cascade.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.sessions.logoutAll(ctx, id, metrics.ReasonUserGone)
	if err != nil {
		return err
	}
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	s.logger.WithFields(logrus.Fields{"user_id": id, "sessions_closed": count}).Info("user deleted")
	recordSecurityEvent(ctx, s.securityLogs, s.logger, nil, "", entity.UserDeleted, map[string]any{"user_id": id.String(), "sessions_closed": count})
	return nil
}

func nonEmpty(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed, trimmed != ""
}
