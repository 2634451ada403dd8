package middleware

import (
	"context"
	"net/http"
	"strings"

	"authcore/internal/entity"
	"authcore/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

type AuthMiddleware struct {
	Auth     Authenticator
	Activity service.ActivityTracker
	Logger   logrus.FieldLogger
}

func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractBearerToken(c.Request())
		if token == "" {
			return service.ErrMissingToken
		}
		if m.Auth == nil {
			return service.ErrInvalidToken
		}
		user, err := m.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}
		SetIdentity(c, Identity{UserID: user.ID, Role: user.Role, Token: token})

		if m.Activity != nil {
			if err := m.Activity.Touch(c.Request().Context(), token, user.ID); err != nil && m.Logger != nil {
				m.Logger.WithError(err).WithField("user_id", user.ID).Debug("activity ping failed")
			}
		}
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
