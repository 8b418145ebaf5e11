package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jobboard-backend/pkg/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier_HS256(t *testing.T) {
	v := auth.NewVerifier(secret, "")

	t.Run("Should extract the identity", func(t *testing.T) {
		token := signHS256(t, jwt.MapClaims{
			"sub":           "user-1",
			"email":         "jane@example.com",
			"user_metadata": map[string]interface{}{"full_name": "Jane Doe"},
			"exp":           time.Now().Add(time.Hour).Unix(),
		})

		identity, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", identity.Subject)
		assert.Equal(t, "jane@example.com", identity.Email)
		assert.Equal(t, "Jane Doe", identity.FullName)
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		token := signHS256(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Minute).Unix()})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Should reject tokens without a subject", func(t *testing.T) {
		token := signHS256(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Should reject a wrong signature", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other"))
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestVerifier_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(auth.JWKSet{Keys: []auth.JWK{{
			Kid: "k1",
			Kty: "RSA",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	}))
	defer srv.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user-2", "name": "John", "exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "k1"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	identity, err := auth.NewVerifier("", srv.URL).Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-2", identity.Subject)
	assert.Equal(t, "John", identity.FullName)

	_, err = auth.NewVerifier("", "").Verify(signed)
	assert.Error(t, err)

	t.Run("Should reject a kid the provider does not publish", func(t *testing.T) {
		rotated := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "user-2", "exp": time.Now().Add(time.Hour).Unix(),
		})
		rotated.Header["kid"] = "k2"
		signed, err := rotated.SignedString(key)
		require.NoError(t, err)

		_, err = auth.NewVerifier("", srv.URL).Verify(signed)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
