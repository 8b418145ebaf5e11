package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jobboard-backend/config"
	v1 "go-jobboard-backend/internal/delivery/http/v1"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     *struct {
		Kind string `json:"kind"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:                   "test",
		FrontendURL:              "http://localhost:3000",
		RateLimitGlobalThreshold: 1000,
		RateLimitWindowSeconds:   60,
		UploadsPerMinute:         10,
		UploadsPerDay:            50,
		MaxResumeSizeMB:          5,
	}

	store := memory.NewStore()
	audit := security.NopAuditLogger()
	jobUC := usecase.NewJobUsecase(store.Jobs(), store.Applications(), validation.New(), audit)
	resumeUC := usecase.NewResumeUsecase(store.Resumes(), memory.NewBlobStore(), antivirus.NoOpScanner{}, cfg.MaxResumeBytes(), audit)

	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        usecase.NewAuthUsecase(store.Users()),
		JobUC:         jobUC,
		ResumeUC:      resumeUC,
		ApplicationUC: usecase.NewApplicationUsecase(store.Applications(), jobUC, resumeUC, audit),
		AdminUC:       usecase.NewAdminUsecase(store.Users(), audit),
		HealthUC:      usecase.NewHealthUsecase(nil, nil),
		Verifier:      auth.NewVerifier(testSecret, ""),
		UploadLimiter: security.NewUploadLimiter(nil, cfg.UploadsPerMinute, cfg.UploadsPerDay),
		Audit:         audit,
		Config:        cfg,
	})

	return &testServer{t: t, router: router, store: store}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": subject + "@example.com",
		"name":  "User " + subject,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(method, path, subject string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+token(s.t, subject))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) json(method, path, subject string, payload any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, subject, body, "application/json")
}

func (s *testServer) upload(method, path, subject, filename string, data []byte) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())
	return s.do(method, path, subject, &buf, mw.FormDataContentType())
}

func (s *testServer) seedAdmin(id string) {
	s.t.Helper()
	now := time.Now()
	require.NoError(s.t, s.store.Users().Create(context.Background(), &domain.User{
		ID: id, Email: id + "@example.com", Role: domain.RoleAdmin, AccountStatus: domain.AccountStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func docxBytes() []byte {
	return append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x01}, 256)...)
}

func jobPayload() map[string]any {
	return map[string]any{
		"title":           "Platform Engineer",
		"description":     "Run the fleet",
		"required_skills": []string{"Go", "Kubernetes"},
		"location":        "Remote",
		"job_type":        "full-time",
		"is_remote":       true,
		"company_name":    "Acme",
		"status":          "open",
		"expires_at":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t)

	w, env := s.json(http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), env.RequestID)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("Should reject requests without a token", func(t *testing.T) {
		w, env := s.json(http.MethodGet, "/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("Should reject tokens signed with another key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte("other"))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should require registration before other routes", func(t *testing.T) {
		w, _ := s.json(http.MethodGet, "/v1/auth/me", "newcomer", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w, env := s.json(http.MethodPost, "/v1/auth/sync", "newcomer", map[string]string{"role": "candidate"})
		require.Equal(t, http.StatusOK, w.Code)
		user := decode[domain.User](t, env)
		assert.Equal(t, domain.AccountStatusActive, user.AccountStatus)

		w, env = s.json(http.MethodGet, "/v1/auth/me", "newcomer", nil)
		require.Equal(t, http.StatusOK, w.Code)
		principal := decode[domain.Principal](t, env)
		assert.Equal(t, domain.RoleCandidate, principal.Role)
	})

	t.Run("Should refuse self-assigned admin", func(t *testing.T) {
		w, _ := s.json(http.MethodPost, "/v1/auth/sync", "sneaky", map[string]string{"role": "admin"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestJobBoardFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin("admin-1")

	w, _ := s.json(http.MethodPost, "/v1/auth/sync", "rec-1", map[string]string{"role": "recruiter"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.json(http.MethodPost, "/v1/auth/sync", "cand-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// pending recruiters cannot post
	w, _ = s.json(http.MethodPost, "/v1/jobs", "rec-1", jobPayload())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.json(http.MethodGet, "/v1/admin/users/pending", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.User](t, env), 1)

	w, _ = s.json(http.MethodPost, "/v1/admin/users/rec-1/approve", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// candidates cannot post jobs
	w, _ = s.json(http.MethodPost, "/v1/jobs", "cand-1", jobPayload())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.json(http.MethodPost, "/v1/jobs", "rec-1", jobPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	job := decode[domain.Job](t, env)
	jobPath := "/v1/jobs/" + job.ID.String()

	w, env = s.json(http.MethodGet, "/v1/jobs?skill=go&is_remote=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[domain.PaginatedResult[domain.Job]](t, env)
	require.Len(t, page.Data, 1)
	assert.Equal(t, job.ID, page.Data[0].ID)

	// applying without a resume is stopped at the gate
	w, env = s.json(http.MethodPost, "/v1/candidates/jobs/"+job.ID.String()+"/apply", "cand-1", nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "precondition_failed", env.Error.Kind)

	w, _ = s.upload(http.MethodPost, "/v1/candidates/resume", "cand-1", "cv.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.upload(http.MethodPost, "/v1/candidates/resume", "cand-1", "cv.docx", docxBytes())
	require.Equal(t, http.StatusCreated, w.Code)
	resume := decode[domain.Resume](t, env)

	w, _ = s.upload(http.MethodPost, "/v1/candidates/resume", "cand-1", "cv.docx", docxBytes())
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.json(http.MethodPost, "/v1/candidates/jobs/"+job.ID.String()+"/apply", "cand-1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	app := decode[domain.Application](t, env)
	assert.Equal(t, resume.File.URL, app.ResumeSnapshot.FileURL)

	w, _ = s.json(http.MethodPost, "/v1/candidates/jobs/"+job.ID.String()+"/apply", "cand-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.json(http.MethodGet, jobPath, "cand-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.PublicJob](t, env).AlreadyApplied)
	assert.Equal(t, 1, decode[domain.PublicJob](t, env).ApplicationCount)

	// a second recruiter cannot see the first one's pipeline
	w, _ = s.json(http.MethodPost, "/v1/auth/sync", "rec-2", map[string]string{"role": "recruiter"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.json(http.MethodPatch, "/v1/admin/users/rec-2/status", "admin-1", map[string]string{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.json(http.MethodGet, "/v1/recruiters/jobs/"+job.ID.String()+"/applications", "rec-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.json(http.MethodPatch, "/v1/recruiters/applications/"+app.ID.String()+"/status", "rec-2", map[string]string{"status": "hired"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.json(http.MethodGet, "/v1/recruiters/jobs/"+job.ID.String()+"/applications", "rec-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[domain.ApplicantList](t, env).TotalApplications)

	w, _ = s.json(http.MethodPatch, "/v1/recruiters/applications/"+app.ID.String()+"/status", "rec-1", map[string]string{"status": "hired"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.json(http.MethodGet, "/v1/recruiters/jobs/"+job.ID.String()+"/applications/export", "rec-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "applicants_")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))

	w, _ = s.json(http.MethodPost, jobPath+"/close", "rec-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.json(http.MethodPatch, jobPath, "rec-1", map[string]any{"title": "Reopened?"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = s.json(http.MethodGet, jobPath, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.json(http.MethodGet, "/v1/candidates/applications", "cand-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[domain.CandidateApplicationList](t, env)
	require.Equal(t, 1, mine.TotalApplications)
	assert.Equal(t, domain.ApplicationStatusHired, mine.Applications[0].Status)

	w, env = s.json(http.MethodGet, "/v1/admin/jobs", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[domain.PaginatedResult[domain.Job]](t, env).Total)
}

func TestCreateJobValidation(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin("admin-1")
	w, _ := s.json(http.MethodPost, "/v1/auth/sync", "rec-1", map[string]string{"role": "recruiter"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.json(http.MethodPost, "/v1/admin/users/rec-1/approve", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := jobPayload()
	payload["title"] = "   "
	payload["expires_at"] = time.Now().Add(-time.Hour).Format(time.RFC3339)

	w, env := s.json(http.MethodPost, "/v1/jobs", "rec-1", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation", env.Error.Kind)
	assert.Contains(t, env.Message, "Title is required")
	assert.Contains(t, env.Message, "Expiration date must be in the future")
}

func TestBlockedAccount(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin("admin-1")

	w, _ := s.json(http.MethodPost, "/v1/auth/sync", "cand-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.json(http.MethodPost, "/v1/admin/users/cand-1/reject", "admin-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.json(http.MethodGet, "/v1/auth/me", "cand-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.json(http.MethodGet, "/v1/admin/users", "cand-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/jobs", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
