package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFixedWindow(t *testing.T) {
	w := newFixedWindow()
	now := time.Now()

	t.Run("Should count hits per key within the window", func(t *testing.T) {
		count, _ := w.hit("a", time.Minute, now)
		assert.Equal(t, 1, count)
		count, _ = w.hit("a", time.Minute, now.Add(time.Second))
		assert.Equal(t, 2, count)
		count, _ = w.hit("b", time.Minute, now)
		assert.Equal(t, 1, count)
	})

	t.Run("Should reset after the window expires", func(t *testing.T) {
		count, resetAt := w.hit("a", time.Minute, now.Add(2*time.Minute))
		assert.Equal(t, 1, count)
		assert.True(t, resetAt.After(now.Add(2*time.Minute)))
	})
}

func TestRateLimit_MemoryFallback(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, GlobalRateLimitConfig(2, 60), security.NopAuditLogger()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	var body response.Response
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, apperror.KindRateLimited, body.Error.Kind)
}

func TestRoleGuards(t *testing.T) {
	withUser := func(user *domain.User) gin.HandlerFunc {
		return func(c *gin.Context) {
			if user != nil {
				setPrincipal(c, user)
			}
			c.Next()
		}
	}
	serve := func(user *domain.User, guards ...gin.HandlerFunc) int {
		r := gin.New()
		r.Use(ErrorHandler())
		handlers := append([]gin.HandlerFunc{withUser(user)}, guards...)
		handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
		r.GET("/x", handlers...)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w.Code
	}

	recruiter := &domain.User{ID: "r1", Role: domain.RoleRecruiter, AccountStatus: domain.AccountStatusActive}
	pending := &domain.User{ID: "r2", Role: domain.RoleRecruiter, AccountStatus: domain.AccountStatusPending}
	candidate := &domain.User{ID: "c1", Role: domain.RoleCandidate, AccountStatus: domain.AccountStatusActive}

	t.Run("Should require a principal", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(nil, RequireRole(domain.RoleRecruiter)))
	})

	t.Run("Should reject the wrong role", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(candidate, RequireRole(domain.RoleRecruiter)))
	})

	t.Run("Should reject pending recruiters", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(pending, RequireRole(domain.RoleRecruiter), RequireActiveAccount()))
	})

	t.Run("Should pass an active recruiter", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(recruiter, RequireRole(domain.RoleRecruiter), RequireActiveAccount()))
	})
}
