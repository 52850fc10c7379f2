package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"referee-dashboard/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func hsConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:   testSecret,
		Issuer:   "referee-dashboard",
		Audience: "referee-dashboard-web",
		TTL:      720 * time.Hour,
	}
}

func TestGenerateVerify_RoundTrip(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	subject := Subject{
		ID:          "42",
		Email:       "ref@example.com",
		Name:        "Ana Pérez",
		AccessToken: "upstream-token",
		Profile: map[string]interface{}{
			"id":    float64(42),
			"phone": "600000000",
			"address": map[string]interface{}{
				"city": "Palma",
			},
		},
	}

	token, jti, expiresAt, err := m.Generator.Generate(subject)
	require.NoError(t, err)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(720*time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, subject.Email, claims.Email)
	assert.Equal(t, subject.Name, claims.Name)
	assert.Equal(t, subject.AccessToken, claims.AccessToken)
	assert.Equal(t, subject.Profile, claims.Profile)
	assert.Equal(t, jti, claims.ID)
}

func TestVerify_Expired(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	m.Generator.now = func() time.Time { return time.Now().Add(-721 * time.Hour) }
	token, _, _, err := m.Generator.Generate(Subject{ID: "1", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = m.Verifier.Verify(token)
	require.Error(t, err)
}

func TestVerify_StillValidBeforeThirtyDays(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	m.Generator.now = func() time.Time { return time.Now().Add(-719 * time.Hour) }
	token, _, _, err := m.Generator.Generate(Subject{ID: "1", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = m.Verifier.Verify(token)
	require.NoError(t, err)
}

func TestVerify_TamperedSignature(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	token, _, _, err := m.Generator.Generate(Subject{ID: "1", Email: "a@b.c"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.Verifier.Verify(tampered)
	require.Error(t, err)
}

func TestVerify_OtherSecret(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	other := hsConfig()
	other.Secret = strings.Repeat("z", 32)
	m2, err := LoadAndBuild(other)
	require.NoError(t, err)

	token, _, _, err := m2.Generator.Generate(Subject{ID: "1", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = m.Verifier.Verify(token)
	require.Error(t, err)
}

func TestVerify_WrongAudience(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	other := hsConfig()
	other.Audience = "someone-else"
	m2, err := LoadAndBuild(other)
	require.NoError(t, err)

	token, _, _, err := m2.Generator.Generate(Subject{ID: "1", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = m.Verifier.Verify(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenInvalidAudience)
}

func TestVerify_WrongIssuer(t *testing.T) {
	m, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)

	other := hsConfig()
	other.Issuer = "another-app"
	m2, err := LoadAndBuild(other)
	require.NoError(t, err)

	token, _, _, err := m2.Generator.Generate(Subject{ID: "1", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = m.Verifier.Verify(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenInvalidIssuer)
}

func TestLoadAndBuild_RSA(t *testing.T) {
	dir := t.TempDir()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))

	cfg := hsConfig()
	cfg.Secret = ""
	cfg.PrivateKeyPath = privPath
	cfg.PublicKeyPath = pubPath
	cfg.KeyID = "k1"

	m, err := LoadAndBuild(cfg)
	require.NoError(t, err)

	token, _, _, err := m.Generator.Generate(Subject{ID: "7", Email: "x@y.z"})
	require.NoError(t, err)

	claims, err := m.Verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)

	// an HS256 verifier must not accept an RS256 token
	hs, err := LoadAndBuild(hsConfig())
	require.NoError(t, err)
	_, err = hs.Verifier.Verify(token)
	require.Error(t, err)
}

func TestLoadRSAPrivateKeyFromPEM_NotPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	_, err := LoadRSAPrivateKeyFromPEM(path)
	require.Error(t, err)
}

func TestLoadAndBuild_NoMaterial(t *testing.T) {
	_, err := LoadAndBuild(config.SessionConfig{Issuer: "x", Audience: "y"})
	require.Error(t, err)
}
