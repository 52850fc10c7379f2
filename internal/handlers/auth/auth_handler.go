// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"referee-dashboard/internal/domain/auth"
	"referee-dashboard/internal/middleware"
	xerrors "referee-dashboard/internal/pkg/errors"
	"referee-dashboard/internal/pkg/response"
	authUsecase "referee-dashboard/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Login page error codes.
const (
	ErrorCredentialsSignin = "CredentialsSignin"
	ErrorTooManyAttempts   = "TooManyAttempts"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService *authUsecase.AuthService
	cookie      CookieConfig
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// ========== Sign in ==========

// CredentialsCallback signs the user in from the login form or a JSON body.
// Browsers are redirected; JSON callers get a status code and a body.
func (h *AuthHandler) CredentialsCallback(c *gin.Context) {
	jsonCaller := wantsJSON(c)

	var req auth.Credentials
	if err := c.ShouldBind(&req); err != nil {
		h.signInFailed(c, jsonCaller, ErrorCredentialsSignin)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.IPAddress = c.ClientIP()

	token, sess, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrRateLimited) {
			h.signInFailed(c, jsonCaller, ErrorTooManyAttempts)
			return
		}
		h.logger.Info("sign in rejected",
			zap.String("username", req.Username),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		h.signInFailed(c, jsonCaller, ErrorCredentialsSignin)
		return
	}

	h.setCookie(c, token, int(time.Until(sess.ExpiresAt).Seconds()))

	target := safeCallbackURL(req.CallbackURL, c.Request.Host)
	if jsonCaller {
		response.JSON(c, http.StatusOK, gin.H{"ok": true, "url": target})
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (h *AuthHandler) signInFailed(c *gin.Context, jsonCaller bool, code string) {
	if jsonCaller {
		if code == ErrorTooManyAttempts {
			response.Error(c, http.StatusTooManyRequests, response.MsgTooManyAttempts)
			return
		}
		response.Error(c, http.StatusUnauthorized, response.MsgInvalidCredentials)
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath+"?"+url.Values{"error": {code}}.Encode())
}

// ========== Sign out ==========

// SignOut revokes the current session, if any, and clears the cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if sess, ok := middleware.GetSession(c); ok {
		if err := h.authService.SignOut(c.Request.Context(), sess); err != nil {
			// the cookie is still cleared below
			h.logger.Error("sign out failed",
				zap.String("user_id", sess.ID),
				zap.Error(err),
			)
		}
	}

	h.setCookie(c, "", -1)

	if wantsJSON(c) {
		response.JSON(c, http.StatusOK, gin.H{"ok": true, "url": middleware.LoginPath})
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// ========== Session ==========

// Session returns the current session, or {} when signed out.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		response.JSON(c, http.StatusOK, gin.H{})
		return
	}

	response.JSON(c, http.StatusOK, auth.SessionResponse{
		User: auth.SessionUser{
			ID:    sess.ID,
			Email: sess.Email,
			Name:  sess.Name,
		},
		Expires:        sess.ExpiresAt.UTC().Format(time.RFC3339),
		HasAccessToken: sess.HasAccessToken(),
		Profile:        sess.Profile,
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

// wantsJSON reports whether the caller sent or asked for JSON.
func wantsJSON(c *gin.Context) bool {
	if c.ContentType() == gin.MIMEJSON {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, gin.MIMEJSON) && !strings.Contains(accept, gin.MIMEHTML)
}

// safeCallbackURL keeps same-origin targets only; anything else goes home.
func safeCallbackURL(raw, host string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return middleware.HomePath
	}
	u, err := url.Parse(raw)
	if err != nil {
		return middleware.HomePath
	}
	if u.IsAbs() || u.Host != "" {
		if u.Host != host || (u.Scheme != "http" && u.Scheme != "https") {
			return middleware.HomePath
		}
		u.Scheme, u.Host, u.User = "", "", nil
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, `\`) {
		return middleware.HomePath
	}
	if u.Path == middleware.LoginPath {
		return middleware.HomePath
	}
	return u.RequestURI()
}
