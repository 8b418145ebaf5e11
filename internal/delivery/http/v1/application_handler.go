package v1

import (
	"net/http"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(g routeGroups, applicationUC domain.ApplicationUsecase, resumes domain.ResumeLookup) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	candidates := g.candidate.Group("/candidates")
	{
		candidates.POST("/jobs/:id/apply", middleware.RequireResume(resumes), handler.Apply)
		candidates.GET("/applications", handler.ListMine)
	}

	recruiters := g.recruiter.Group("/recruiters")
	{
		recruiters.GET("/jobs/:id/applications", handler.ListForJob)
		recruiters.GET("/jobs/:id/applications/export", handler.Export)
		recruiters.PATCH("/applications/:id/status", handler.UpdateStatus)
	}
}

// UpdateStatusRequest is the payload for moving an application in the pipeline
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Candidate only. Requires an uploaded resume; the job must be open.
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      201  {object}  response.Response{data=domain.Application}
// @Failure      409  {object}  response.Response
// @Failure      412  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /candidates/jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	app, err := h.applicationUC.ApplyForJob(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted", app)
}

// ListMine godoc
// @Summary      List my applications
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateApplicationList}
// @Router       /candidates/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	list, err := h.applicationUC.ListApplicationsForCandidate(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", list)
}

// ListForJob godoc
// @Summary      List applicants for a job
// @Tags         recruiters
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.ApplicantList}
// @Failure      403  {object}  response.Response
// @Router       /recruiters/jobs/{id}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	list, err := h.applicationUC.ListApplicantsForJob(c.Request.Context(), c.Param("id"), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applicants retrieved", list)
}

// Export godoc
// @Summary      Export applicants
// @Description  Applicant listing as an xlsx workbook.
// @Tags         recruiters
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path      string  true  "Job ID"
// @Success      200  {file}    binary
// @Failure      403  {object}  response.Response
// @Router       /recruiters/jobs/{id}/applications/export [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Export(c *gin.Context) {
	export, err := h.applicationUC.ExportApplicants(c.Request.Context(), c.Param("id"), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+export.FileName)
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// UpdateStatus godoc
// @Summary      Update application status
// @Description  Any of applied, shortlisted, rejected, hired; moves are unrestricted.
// @Tags         recruiters
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "New status"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /recruiters/applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	app, err := h.applicationUC.UpdateStatus(c.Request.Context(), c.Param("id"), c.GetString(string(domain.KeyUserID)), req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application status updated", app)
}
