package v1

import (
	"net/http"
	"strconv"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(g routeGroups, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	// PUBLIC routes: only open, unexpired jobs are ever returned
	g.public.GET("/jobs", handler.PublicList)
	g.optional.GET("/jobs/:id", handler.PublicGetDetails)

	// Recruiter routes: ownership is enforced in the usecase
	g.recruiter.POST("/jobs", handler.Create)
	g.recruiter.PATCH("/jobs/:id", handler.Update)
	g.recruiter.POST("/jobs/:id/close", handler.Close)
	g.recruiter.DELETE("/jobs/:id", handler.Close)

	recruiters := g.recruiter.Group("/recruiters")
	{
		recruiters.GET("/jobs", handler.ListOwned)
		recruiters.GET("/jobs/:id", handler.GetOwned)
	}
}

// parseJobFilter reads listing filters from the query string.
func parseJobFilter(c *gin.Context) (domain.JobFilter, error) {
	filter := domain.JobFilter{
		Title:    c.Query("title"),
		Location: c.Query("location"),
		JobType:  c.Query("job_type"),
		Skill:    c.Query("skill"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if raw := c.Query("is_remote"); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperror.Validation("is_remote must be true or false")
		}
		filter.IsRemote = &remote
	}
	return filter, nil
}

// PublicList godoc
// @Summary      List open jobs (public)
// @Description  Open, unexpired jobs, newest first. No authentication required.
// @Tags         jobs
// @Produce      json
// @Param        title      query     string  false  "Title contains (case-insensitive)"
// @Param        location   query     string  false  "Location contains (case-insensitive)"
// @Param        job_type   query     string  false  "Job type"
// @Param        is_remote  query     bool    false  "Remote only"
// @Param        skill      query     string  false  "Required skill"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.Job]}
// @Router       /jobs [get]
func (h *JobHandler) PublicList(c *gin.Context) {
	filter, err := parseJobFilter(c)
	if err != nil {
		c.Error(err)
		return
	}

	jobs, err := h.jobUC.ListPublicJobs(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Public job list", jobs)
}

// PublicGetDetails godoc
// @Summary      Get an open job (public)
// @Description  Signed-in candidates also see whether they already applied.
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.PublicJob}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) PublicGetDetails(c *gin.Context) {
	var viewer string
	if principal, ok := middleware.GetPrincipal(c); ok && principal.Role == domain.RoleCandidate {
		viewer = principal.ID
	}

	job, err := h.jobUC.GetPublicJobByID(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job details", job)
}

// Create godoc
// @Summary      Create a job
// @Description  Recruiter only. Status defaults to draft.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      domain.JobInput  true  "Job JSON"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var input domain.JobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	job, err := h.jobUC.CreateJob(c.Request.Context(), c.GetString(string(domain.KeyUserID)), &input)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Job created", job)
}

// Update godoc
// @Summary      Update a job
// @Description  Partial update of the caller's job. Closed jobs cannot be edited.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Job ID"
// @Param        job   body      domain.JobPatch  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.Job}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /jobs/{id} [patch]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	var patch domain.JobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	job, err := h.jobUC.UpdateJob(c.Request.Context(), c.Param("id"), c.GetString(string(domain.KeyUserID)), patch)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job updated", job)
}

// Close godoc
// @Summary      Close a job
// @Description  Stops accepting applications. Existing applications are kept.
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /jobs/{id}/close [post]
// @Security     BearerAuth
func (h *JobHandler) Close(c *gin.Context) {
	job, err := h.jobUC.CloseJob(c.Request.Context(), c.Param("id"), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job closed", job)
}

// ListOwned godoc
// @Summary      List my jobs
// @Description  Every job the caller posted, any status, newest first.
// @Tags         recruiters
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Job}
// @Router       /recruiters/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) ListOwned(c *gin.Context) {
	jobs, err := h.jobUC.ListOwnedJobs(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Recruiter job list", jobs)
}

// GetOwned godoc
// @Summary      Get one of my jobs
// @Tags         recruiters
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.Job}
// @Failure      403  {object}  response.Response
// @Router       /recruiters/jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) GetOwned(c *gin.Context) {
	job, err := h.jobUC.GetOwnedJob(c.Request.Context(), c.Param("id"), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job details", job)
}
