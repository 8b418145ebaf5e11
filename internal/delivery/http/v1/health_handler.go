package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

func NewHealthHandler(g routeGroups, healthUC usecase.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	g.public.GET("/health", handler.Check)
}

// Check godoc
// @Summary      Health check
// @Description  Reports database and cache status. 503 when a required dependency is down.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	healthy, components := h.healthUC.Check(c.Request.Context())
	if !healthy {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", apperror.KindUnavailable, components)
		return
	}
	response.Success(c, http.StatusOK, "System operational", components)
}
