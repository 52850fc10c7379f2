// internal/domain/auth/dto.go
package auth

// Credentials submitted to the credentials callback, as a form or JSON.
type Credentials struct {
	Username    string `json:"username" form:"username" binding:"required"`
	Password    string `json:"password" form:"password" binding:"required"`
	Type        string `json:"type" form:"type"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
	IPAddress   string `json:"-" form:"-"`
}

// SessionUser is the public part of the session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionResponse is returned by GET /api/auth/session.
type SessionResponse struct {
	User           SessionUser            `json:"user"`
	Expires        string                 `json:"expires"`
	HasAccessToken bool                   `json:"hasAccessToken"`
	Profile        map[string]interface{} `json:"profile,omitempty"`
}
