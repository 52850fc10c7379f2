// internal/domain/auth/entity.go
package auth

import "time"

// OperatorID is the fixed id assigned to the static operator account.
const OperatorID = "1"

// ExternalFallbackID is used when the remote login succeeds but the
// personal-data lookup does not.
const ExternalFallbackID = "external"

// Identity is the result of a successful credential resolution.
type Identity struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	Name        string                 `json:"name"`
	AccessToken string                 `json:"-"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
}

// HasAccessToken reports whether the identity carries a federation bearer token.
func (i *Identity) HasAccessToken() bool {
	return i != nil && i.AccessToken != ""
}

// Session is an Identity decoded from a verified session token.
type Session struct {
	Identity
	TokenID   string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires"`
}
