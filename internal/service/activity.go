package service

import (
	"context"
	"time"

	"authcore/internal/repository"
	"authcore/internal/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const activityKeyPrefix = "authcore:session-activity:"

// SessionActivity refreshes lastActivity on the session bound to a bearer token.
// With a Redis client it writes at most once per Throttle window per token.
type SessionActivity struct {
	Sessions repository.SessionRepository
	Redis    *redis.Client
	Throttle time.Duration
	Clock    Clock
}

func (a SessionActivity) Touch(ctx context.Context, token string, userID uuid.UUID) error {
	tokenHash := utils.HashToken(token)
	if a.Redis != nil && a.Throttle > 0 {
		first, err := a.Redis.SetNX(ctx, activityKeyPrefix+tokenHash, userID.String(), a.Throttle).Result()
		if err != nil {
			return errors.Wrap(err, "activity throttle")
		}
		if !first {
			return nil
		}
	}
	now := time.Now()
	if a.Clock != nil {
		now = a.Clock.Now()
	}
	return a.Sessions.TouchActivity(ctx, tokenHash, userID, now)
}
