package dto

import (
	"time"

	"authcore/internal/entity"
)

type LogoutSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type SessionQuery struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	UserID   string `query:"userId" validate:"omitempty,uuid"`
	IsActive string `query:"isActive" validate:"omitempty,oneof=true false"`
}

type DeviceInfoResponse struct {
	Type    string `json:"type"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
}

type LocationResponse struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

type SessionUserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
}

type SessionResponse struct {
	SessionID       string               `json:"sessionId"`
	UserID          string               `json:"userId"`
	User            *SessionUserResponse `json:"user,omitempty"`
	LoginTime       time.Time            `json:"loginTime"`
	LogoutTime      *time.Time           `json:"logoutTime"`
	IsActive        bool                 `json:"isActive"`
	IPAddress       string               `json:"ipAddress"`
	UserAgent       string               `json:"userAgent"`
	DeviceInfo      DeviceInfoResponse   `json:"deviceInfo"`
	Location        LocationResponse     `json:"location"`
	LoginMethod     string               `json:"loginMethod"`
	LoginStatus     string               `json:"loginStatus"`
	FailureReason   *string              `json:"failureReason"`
	SessionDuration int                  `json:"sessionDuration"`
	LastActivity    time.Time            `json:"lastActivity"`
	IsExpired       bool                 `json:"isExpired"`
	ExpiresAt       time.Time            `json:"expiresAt"`
}

// SessionResponseFromEntity omits the token hash.
func SessionResponseFromEntity(session *entity.Session) SessionResponse {
	response := SessionResponse{
		SessionID:  session.SessionID,
		UserID:     session.UserID.String(),
		LoginTime:  session.LoginTime,
		LogoutTime: session.LogoutTime,
		IsActive:   session.IsActive,
		IPAddress:  session.IPAddress,
		UserAgent:  session.UserAgent,
		DeviceInfo: DeviceInfoResponse{
			Type:    string(session.Device.Type),
			Browser: session.Device.Browser,
			OS:      session.Device.OS,
		},
		Location: LocationResponse{
			Country: session.Location.Country,
			City:    session.Location.City,
			Region:  session.Location.Region,
		},
		LoginMethod:     string(session.LoginMethod),
		LoginStatus:     string(session.LoginStatus),
		FailureReason:   session.FailureReason,
		SessionDuration: session.SessionDuration,
		LastActivity:    session.LastActivity,
		IsExpired:       session.IsExpired,
		ExpiresAt:       session.ExpiresAt,
	}
	if session.User != nil {
		response.User = &SessionUserResponse{
			ID:        session.User.ID.String(),
			FirstName: session.User.FirstName,
			LastName:  session.User.LastName,
			UserName:  session.User.UserName,
			Email:     session.User.Email,
		}
	}
	return response
}

func SessionResponsesFromEntities(sessions []entity.Session) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, SessionResponseFromEntity(&sessions[i]))
	}
	return responses
}
