// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the session token. Subject carries the identity id.
type Claims struct {
	Email       string                 `json:"email"`
	Name        string                 `json:"name,omitempty"`
	AccessToken string                 `json:"accessToken,omitempty"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
	jwt.RegisteredClaims
}
