package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// OptionalUserID returns the authenticated user id or nil for anonymous callers.
func OptionalUserID(c echo.Context) *uuid.UUID {
	id, ok := UserIDFromContext(c)
	if !ok {
		return nil
	}
	return &id
}
