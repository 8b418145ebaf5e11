package middleware

import (
	"context"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Gin keys set by the auth middleware.
const (
	keyIdentity = "Identity"
)

// TokenVerifier turns a bearer token into the identity it asserts.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// bearerToken reads the Authorization header, falling back to the auth_token cookie.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// VerifyToken only checks the token. It guards account registration, where
// the caller has no local record yet.
func VerifyToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, apperror.Unauthorized("Authorization header or auth_token cookie required"))
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err)
			abort(c, apperror.Unauthorized("Invalid token"))
			return
		}
		c.Set(keyIdentity, identity)
		c.Next()
	}
}

// Authenticate resolves the token to a registered, non-blocked account and
// exposes it as the request principal. Roles come from the account record,
// never from token claims.
func Authenticate(verifier TokenVerifier, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, apperror.Unauthorized("Authorization header or auth_token cookie required"))
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err)
			abort(c, apperror.Unauthorized("Invalid token"))
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), identity.Subject)
		if apperror.IsKind(err, apperror.KindNotFound) {
			abort(c, apperror.Unauthorized("Account is not registered"))
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if user.AccountStatus == domain.AccountStatusBlocked {
			abort(c, apperror.Forbidden("Account is blocked"))
			return
		}

		c.Set(keyIdentity, identity)
		setPrincipal(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid token for a registered,
// non-blocked account is present, and otherwise lets the request through
// anonymously.
func OptionalAuth(verifier TokenVerifier, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			c.Next()
			return
		}
		user, err := authUC.GetCurrentUser(c.Request.Context(), identity.Subject)
		if err == nil && user.AccountStatus != domain.AccountStatusBlocked {
			setPrincipal(c, user)
		}
		c.Next()
	}
}

// RequireRole rejects principals whose role is not in roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abort(c, apperror.Unauthorized("Authentication required"))
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abort(c, apperror.Forbidden("You do not have permission to access this resource"))
	}
}

// RequireActiveAccount blocks accounts still awaiting approval.
func RequireActiveAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abort(c, apperror.Unauthorized("Authentication required"))
			return
		}
		if principal.AccountStatus != domain.AccountStatusActive {
			abort(c, apperror.Forbidden("Your account is awaiting approval"))
			return
		}
		c.Next()
	}
}

// RequireResume short-circuits candidates without an active resume. The
// application usecase re-checks this; the gate only spares the round-trip.
func RequireResume(resumes domain.ResumeLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abort(c, apperror.Unauthorized("Authentication required"))
			return
		}
		_, err := resumes.GetActiveResume(c.Request.Context(), principal.ID)
		if apperror.IsKind(err, apperror.KindNotFound) {
			abort(c, apperror.PreconditionFailed("Upload a resume before applying"))
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func setPrincipal(c *gin.Context, user *domain.User) {
	c.Set(string(domain.KeyUserID), user.ID)
	c.Set(string(domain.KeyUserEmail), user.Email)
	c.Set(string(domain.KeyUserRole), user.Role)
	c.Set(string(domain.KeyAccountStatus), user.AccountStatus)

	// usecases that re-check the role read it from the request context
	ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, user.ID)
	ctx = context.WithValue(ctx, domain.KeyUserRole, user.Role)
	c.Request = c.Request.WithContext(ctx)
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	id := c.GetString(string(domain.KeyUserID))
	if id == "" {
		return domain.Principal{}, false
	}
	return domain.Principal{
		ID:            id,
		Email:         c.GetString(string(domain.KeyUserEmail)),
		Role:          c.GetString(string(domain.KeyUserRole)),
		AccountStatus: c.GetString(string(domain.KeyAccountStatus)),
	}, true
}

// GetIdentity returns the verified token identity, if any.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(keyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}
