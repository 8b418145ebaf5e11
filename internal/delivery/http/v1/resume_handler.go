package v1

import (
	"fmt"
	"io"
	"net/http"

	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/delivery/http/response"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
	maxBytes int64
}

func NewResumeHandler(g routeGroups, resumeUC domain.ResumeUsecase, limiter *security.UploadLimiter, audit *security.AuditLogger, maxBytes int64) {
	handler := &ResumeHandler{resumeUC: resumeUC, maxBytes: maxBytes}
	throttle := middleware.UploadRateLimit(limiter, audit)

	resumes := g.candidate.Group("/candidates/resume")
	{
		resumes.POST("", throttle, handler.Upload)
		resumes.GET("", handler.Get)
		resumes.PUT("/:id", throttle, handler.Replace)
		resumes.DELETE("/:id", handler.Delete)
	}
}

// readUpload pulls the "file" form field into memory, refusing anything over
// the size ceiling before reading it.
func (h *ResumeHandler) readUpload(c *gin.Context) (domain.ResumeFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return domain.ResumeFile{}, apperror.Validation("No file uploaded")
	}
	if header.Size > h.maxBytes {
		return domain.ResumeFile{}, apperror.Validation(fmt.Sprintf("file exceeds the %d MB limit", h.maxBytes/(1<<20)))
	}

	f, err := header.Open()
	if err != nil {
		return domain.ResumeFile{}, apperror.Validation("Uploaded file could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return domain.ResumeFile{}, apperror.Validation("Uploaded file could not be read")
	}
	return domain.ResumeFile{FileName: header.Filename, Data: data}, nil
}

// Upload godoc
// @Summary      Upload my resume
// @Description  PDF, DOC or DOCX. One resume per candidate; use PUT to replace it.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume file"
// @Success      201   {object}  response.Response{data=domain.Resume}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /candidates/resume [post]
// @Security     BearerAuth
func (h *ResumeHandler) Upload(c *gin.Context) {
	file, err := h.readUpload(c)
	if err != nil {
		c.Error(err)
		return
	}

	resume, err := h.resumeUC.Upload(c.Request.Context(), c.GetString(string(domain.KeyUserID)), file)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Resume uploaded", resume)
}

// Get godoc
// @Summary      Get my resume
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Resume}
// @Failure      404  {object}  response.Response
// @Router       /candidates/resume [get]
// @Security     BearerAuth
func (h *ResumeHandler) Get(c *gin.Context) {
	resume, err := h.resumeUC.Get(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume retrieved", resume)
}

// Replace godoc
// @Summary      Replace my resume
// @Description  Existing applications keep the file they were submitted with.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Resume ID"
// @Param        file  formData  file    true  "Resume file"
// @Success      200   {object}  response.Response{data=domain.Resume}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /candidates/resume/{id} [put]
// @Security     BearerAuth
func (h *ResumeHandler) Replace(c *gin.Context) {
	file, err := h.readUpload(c)
	if err != nil {
		c.Error(err)
		return
	}

	resume, err := h.resumeUC.Replace(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id"), file)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume replaced", resume)
}

// Delete godoc
// @Summary      Delete my resume
// @Tags         resumes
// @Produce      json
// @Param        id   path      string  true  "Resume ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /candidates/resume/{id} [delete]
// @Security     BearerAuth
func (h *ResumeHandler) Delete(c *gin.Context) {
	if err := h.resumeUC.Delete(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume deleted", nil)
}
