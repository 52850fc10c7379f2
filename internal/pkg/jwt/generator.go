// internal/pkg/jwt/generator.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Subject is what gets embedded in a session token.
type Subject struct {
	ID          string
	Email       string
	Name        string
	AccessToken string
	Profile     map[string]interface{}
}

type Generator struct {
	method   jwt.SigningMethod
	key      interface{}
	issuer   string
	audience string
	kid      string // key id for rotation
	Ttl      time.Duration
	now      func() time.Time
}

func NewGenerator(method jwt.SigningMethod, key interface{}, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		method:   method,
		key:      key,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		Ttl:      ttl,
		now:      time.Now,
	}
}

// Generate signs a session token for s with an absolute expiry of Ttl.
// It returns the token, its id and its expiry.
func (g *Generator) Generate(s Subject) (string, string, time.Time, error) {
	if g.key == nil {
		return "", "", time.Time{}, fmt.Errorf("jwt generator has nil signing key")
	}

	now := g.now()
	jti := ulid.Make().String()
	expiresAt := now.Add(g.Ttl)

	claims := &Claims{
		Email:       s.Email,
		Name:        s.Name,
		AccessToken: s.AccessToken,
		Profile:     s.Profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   s.ID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(g.method, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.key)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, jti, expiresAt, nil
}
