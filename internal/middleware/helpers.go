// internal/middleware/helpers.go
package middleware

import (
	"referee-dashboard/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

// GetSession returns the session loaded by AuthMiddleware.Session.
func GetSession(c *gin.Context) (*auth.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*auth.Session)
	return sess, ok && sess != nil
}

// MustGetSession gets the session from context or panics
func MustGetSession(c *gin.Context) *auth.Session {
	sess, ok := GetSession(c)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// GetRequestID returns the id assigned by RequestIDMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
