package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(g routeGroups, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	// token only: the caller may not have an account yet
	g.registration.POST("/auth/sync", handler.Sync)
	g.authed.GET("/auth/me", handler.Me)
}

// SyncRequest picks the role for a first-time account
type SyncRequest struct {
	Role string `json:"role"`
}

// Sync godoc
// @Summary      Register the caller's account
// @Description  Creates the local account for a verified identity on first use. Candidates are active at once; recruiters await admin approval. Returns the existing account unchanged on repeat calls.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      SyncRequest  false  "Requested role (candidate or recruiter)"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) Sync(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.Validation("Invalid request body"))
			return
		}
	}

	user, err := h.authUC.SyncUser(c.Request.Context(), identity, req.Role)
	if err != nil {
		c.Error(err)
		return
	}
	if user.AccountStatus == domain.AccountStatusBlocked {
		c.Error(apperror.Forbidden("Account is blocked"))
		return
	}

	response.Success(c, http.StatusOK, "Account synced", user)
}

// Me godoc
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Principal}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.Error(apperror.Unauthorized("Authentication required"))
		return
	}

	response.Success(c, http.StatusOK, "Current user", principal)
}
