// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	LoginPath   = "/login"
	HomePath    = "/"
	authAPIPath = "/api/auth/"
	apiPathRoot = "/api/"
	callbackArg = "callbackUrl"
	sessionKey  = "session"
)

// publicPaths never require a session.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// SessionReader decodes a session token.
type SessionReader interface {
	ValidateSession(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddleware struct {
	sessions   SessionReader
	cookieName string
	logger     *zap.Logger
}

func NewAuthMiddleware(sessions SessionReader, cookieName string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Session loads the session cookie into the context. An absent or invalid
// cookie leaves the request anonymous.
func (m *AuthMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := m.sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			m.logger.Debug("ignoring session cookie",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// Guard applies the route policy. It must run after Session.
//   - the login page sends signed-in users home
//   - /api/auth/* and public paths are always allowed
//   - anything else needs a session: 401 for the API, a redirect to the login page otherwise
func (m *AuthMiddleware) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		_, signedIn := GetSession(c)

		switch {
		case path == LoginPath:
			if signedIn {
				c.Redirect(http.StatusSeeOther, HomePath)
				c.Abort()
				return
			}
		case strings.HasPrefix(path, authAPIPath), publicPaths[path]:
		case !signedIn:
			if strings.HasPrefix(path, apiPathRoot) {
				response.Unauthorized(c)
				return
			}
			c.Redirect(http.StatusSeeOther, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		c.Next()
	}
}

// LoginRedirect is the login page URL that returns to target after sign in.
func LoginRedirect(target string) string {
	if target == "" || target == HomePath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{callbackArg: {target}}.Encode()
}
