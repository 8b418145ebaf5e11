package auth

import (
	"errors"
	"fmt"
	"strings"

	"go-jobboard-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks bearer tokens from the identity provider. HS256 tokens are
// checked against the shared secret, RS256 tokens against the JWKS.
type Verifier struct {
	secret []byte
	jwks   *KeySet
}

// NewVerifier accepts either or both key sources; an empty one disables that algorithm.
func NewVerifier(secret, jwksURL string) *Verifier {
	v := &Verifier{}
	if secret != "" {
		v.secret = []byte(secret)
	}
	if jwksURL != "" {
		v.jwks = NewKeySet(jwksURL)
	}
	return v
}

// Verify parses the token and returns the identity it asserts. The role claim is
// ignored; roles come from the local account record.
func (v *Verifier) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.Parse(tokenString, v.keyFunc, jwt.WithValidMethods([]string{"HS256", "RS256"}))
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}

	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return domain.Identity{}, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)

	return domain.Identity{Subject: sub, Email: email, FullName: fullName(claims)}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.jwks == nil {
			return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
		}
		return v.jwks.Keyfunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

// fullName reads "name" or the Supabase-style user_metadata.full_name.
func fullName(claims jwt.MapClaims) string {
	if name, ok := claims["name"].(string); ok && name != "" {
		return name
	}
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		if name, ok := meta["full_name"].(string); ok {
			return name
		}
	}
	return ""
}
