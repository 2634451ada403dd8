package middleware

import (
	"authcore/internal/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextIdentityKey = "auth_identity"

// Identity is what the auth gate learned about the caller.
type Identity struct {
	UserID uuid.UUID
	Role   entity.UserRole
	Token  string
}

func SetIdentity(c echo.Context, identity Identity) {
	c.Set(contextIdentityKey, identity)
}

func IdentityFromContext(c echo.Context) (Identity, bool) {
	identity, ok := c.Get(contextIdentityKey).(Identity)
	return identity, ok
}

func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	identity, ok := IdentityFromContext(c)
	return identity.UserID, ok
}

func RoleFromContext(c echo.Context) (entity.UserRole, bool) {
	identity, ok := IdentityFromContext(c)
	return identity.Role, ok
}
