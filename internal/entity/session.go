package entity

import (
	"time"

	"github.com/google/uuid"
)

type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

type LoginMethod string

const (
	LoginMethodEmail    LoginMethod = "email"
	LoginMethodUsername LoginMethod = "username"
	LoginMethodSocial   LoginMethod = "social"
)

type LoginStatus string

const (
	LoginStatusSuccess LoginStatus = "success"
	LoginStatusFailed  LoginStatus = "failed"
	LoginStatusBlocked LoginStatus = "blocked"
)

const UnknownValue = "unknown"

type DeviceInfo struct {
	Type    DeviceType `gorm:"type:varchar(16);default:'unknown'"`
	Browser string     `gorm:"type:varchar(64);default:'unknown'"`
	OS      string     `gorm:"type:varchar(64);default:'unknown'"`
}

// Location is passthrough metadata; nothing in this service resolves it.
type Location struct {
	Country string `gorm:"type:varchar(100);default:'unknown'"`
	City    string `gorm:"type:varchar(100);default:'unknown'"`
	Region  string `gorm:"type:varchar(100);default:'unknown'"`
}

func UnknownLocation() Location {
	return Location{Country: UnknownValue, City: UnknownValue, Region: UnknownValue}
}

// Session is one login. Once IsActive goes false it never comes back.
type Session struct {
	SessionID string    `gorm:"column:session_id;type:varchar(64);primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_sessions_user_active,priority:1"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`

	TokenHash string `gorm:"type:text;not null;index"`

	LoginTime  time.Time `gorm:"not null;index:idx_sessions_login_time,sort:desc"`
	LogoutTime *time.Time
	IsActive   bool `gorm:"not null;index:idx_sessions_user_active,priority:2"`

	IPAddress string     `gorm:"type:varchar(45);not null"`
	UserAgent string     `gorm:"type:text;not null"`
	Device    DeviceInfo `gorm:"embedded;embeddedPrefix:device_"`
	Location  Location   `gorm:"embedded;embeddedPrefix:location_"`

	LoginMethod   LoginMethod `gorm:"type:varchar(16);not null"`
	LoginStatus   LoginStatus `gorm:"type:varchar(16);not null"`
	FailureReason *string     `gorm:"type:text"`

	SessionDuration int `gorm:"not null"`
	LastActivity    time.Time
	IsExpired       bool      `gorm:"not null"`
	ExpiresAt       time.Time `gorm:"not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DurationMinutes rounds the span between login and logout (or now) to whole minutes.
func (s *Session) DurationMinutes(now time.Time) int {
	end := now
	if s.LogoutTime != nil {
		end = *s.LogoutTime
	}
	return int(end.Sub(s.LoginTime).Round(time.Minute) / time.Minute)
}

// LiveAt reports whether the session still grants anything at the given instant.
func (s *Session) LiveAt(now time.Time) bool {
	return s.IsActive && !s.IsExpired && s.ExpiresAt.After(now)
}
