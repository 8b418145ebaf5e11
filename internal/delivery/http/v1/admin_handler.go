package v1

import (
	"net/http"
	"strconv"

	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
	jobUC   domain.JobUsecase
}

func NewAdminHandler(g routeGroups, adminUC domain.AdminUsecase, jobUC domain.JobUsecase) {
	handler := &AdminHandler{adminUC: adminUC, jobUC: jobUC}

	admin := g.admin.Group("/admin")
	{
		// User management
		admin.GET("/users", handler.ListUsers)
		admin.GET("/users/pending", handler.ListPendingRecruiters)
		admin.PATCH("/users/:id/status", handler.SetStatus)
		admin.POST("/users/:id/approve", handler.statusAlias(domain.AccountStatusActive, "Recruiter approved"))
		admin.POST("/users/:id/reject", handler.statusAlias(domain.AccountStatusBlocked, "Recruiter rejected"))

		// Job oversight
		admin.GET("/jobs", handler.ListJobs)
	}
}

// SetStatusRequest is the payload for account moderation
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        role       query     string  false  "candidate, recruiter or admin"
// @Param        status     query     string  false  "pending, active or blocked"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.User]}
// @Failure      403        {object}  response.Response
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := domain.UserFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, err := h.adminUC.ListUsers(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User list", users)
}

// ListPendingRecruiters godoc
// @Summary      Recruiters awaiting approval
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.User}
// @Router       /admin/users/pending [get]
// @Security     BearerAuth
func (h *AdminHandler) ListPendingRecruiters(c *gin.Context) {
	users, err := h.adminUC.ListPendingRecruiters(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Pending recruiters", users)
}

// SetStatus godoc
// @Summary      Change an account's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "User ID"
// @Param        body  body      SetStatusRequest  true  "pending, active or blocked"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /admin/users/{id}/status [patch]
// @Security     BearerAuth
func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}
	h.setStatus(c, req.Status, "Account status updated")
}

// statusAlias serves the approve and reject shortcuts.
func (h *AdminHandler) statusAlias(status, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.setStatus(c, status, message)
	}
}

func (h *AdminHandler) setStatus(c *gin.Context, status, message string) {
	user, err := h.adminUC.SetAccountStatus(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id"), status)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, message, user)
}

// ListJobs godoc
// @Summary      List all jobs
// @Description  Every job in any status, newest first.
// @Tags         admin
// @Produce      json
// @Param        title      query     string  false  "Title contains"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.Job]}
// @Router       /admin/jobs [get]
// @Security     BearerAuth
func (h *AdminHandler) ListJobs(c *gin.Context) {
	filter, err := parseJobFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	jobs, err := h.jobUC.ListAllJobs(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job list", jobs)
}
