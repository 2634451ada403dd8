package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// ParseUserRole accepts only the two known roles.
func ParseUserRole(value string) (UserRole, bool) {
	switch UserRole(value) {
	case UserRoleUser:
		return UserRoleUser, true
	case UserRoleAdmin:
		return UserRoleAdmin, true
	}
	return "", false
}

// Allows reports whether a holder of r may use an endpoint that requires role.
// Matching is exact; admin does not inherit user-only access.
func (r UserRole) Allows(required UserRole) bool {
	return r != "" && r == required
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string    `gorm:"type:varchar(100);not null"`
	LastName     string    `gorm:"type:varchar(100);not null"`
	UserName     string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone        string    `gorm:"type:varchar(32)"`
	PasswordHash string    `gorm:"type:text;not null"`
	Gender       Gender    `gorm:"type:varchar(16)"`
	DateOfBirth  *time.Time
	Role         UserRole `gorm:"type:user_role;default:'user';not null"`
	IsActive     bool     `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []Session
}
