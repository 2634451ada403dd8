package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authcore/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig is built once at startup and never mutated.
type AuthConfig struct {
	SessionTTL          time.Duration
	RegisterIssuesToken bool
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type AccessTokenIssuer interface {
	IssueAccessToken(userID uuid.UUID) (string, time.Duration, error)
	ValidateAccessToken(token string) (uuid.UUID, error)
}

type ActivityTracker interface {
	Touch(ctx context.Context, token string, userID uuid.UUID) error
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// RequestMeta is what the transport knows about the caller of a login.
type RequestMeta struct {
	IPAddress   string
	UserAgent   string
	LoginMethod entity.LoginMethod
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify never errors; a malformed hash simply does not match.
func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
