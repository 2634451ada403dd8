package service

import (
	"time"

	"authcore/internal/entity"
)

type RegisterInput struct {
	FirstName   string
	LastName    string
	UserName    string
	Email       string
	Phone       string
	Password    string
	Gender      entity.Gender
	DateOfBirth *time.Time
	// Role is only set by operator tooling; the HTTP surface always registers plain users.
	Role entity.UserRole
}

type RegisterResult struct {
	User  *entity.User
	Token *string
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresIn time.Duration
	SessionID string
}

// UpdateUserInput carries only the fields the caller supplied.
type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	UserName    *string
	Email       *string
	Phone       *string
	Gender      *entity.Gender
	DateOfBirth *time.Time
	Role        *entity.UserRole
	IsActive    *bool
}

type SessionPage struct {
	Sessions []entity.Session
	Total    int64
	Page     int
	Limit    int
}

func (p SessionPage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}
