package service

import (
	"time"

	"authcore/internal/utils"

	"github.com/google/uuid"
)

type JWTAccessIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTAccessIssuer) IssueAccessToken(userID uuid.UUID) (string, time.Duration, error) {
	if j.Manager == nil {
		return "", 0, ErrInvalidToken
	}
	return j.Manager.IssueAccessToken(userID.String())
}

func (j JWTAccessIssuer) ValidateAccessToken(token string) (uuid.UUID, error) {
	if j.Manager == nil {
		return uuid.Nil, ErrInvalidToken
	}
	claims, err := j.Manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
