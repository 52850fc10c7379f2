// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"

	"referee-dashboard/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

type Manager struct {
	Generator *Generator
	Verifier  *Verifier
}

// LoadAndBuild picks RS256 when key files are configured and HS256 otherwise.
func LoadAndBuild(cfg config.SessionConfig) (*Manager, error) {
	if cfg.UsesRSA() {
		priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivateKeyPath, err)
		}

		pub, err := LoadRSAPublicKeyFromPEM(cfg.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PublicKeyPath, err)
		}

		return &Manager{
			Generator: NewGenerator(jwt.SigningMethodRS256, priv, cfg.Issuer, cfg.Audience, cfg.KeyID, cfg.TTL),
			Verifier:  NewVerifier(jwt.SigningMethodRS256, pub, cfg.Issuer, cfg.Audience),
		}, nil
	}

	if cfg.Secret == "" {
		return nil, fmt.Errorf("no session signing material configured")
	}
	secret := []byte(cfg.Secret)
	return &Manager{
		Generator: NewGenerator(jwt.SigningMethodHS256, secret, cfg.Issuer, cfg.Audience, "", cfg.TTL),
		Verifier:  NewVerifier(jwt.SigningMethodHS256, secret, cfg.Issuer, cfg.Audience),
	}, nil
}
