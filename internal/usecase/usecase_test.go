package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/repository/memory"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"
	"go-jobboard-backend/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const maxResumeBytes = 5 << 20

// fixture wires every usecase against one in-memory store.
type fixture struct {
	store   *memory.Store
	blobs   *memory.BlobStore
	jobs    domain.JobUsecase
	resumes domain.ResumeUsecase
	apps    domain.ApplicationUsecase
	auth    domain.AuthUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, antivirus.NoOpScanner{})
}

func newFixtureWith(t *testing.T, scanner antivirus.Scanner) *fixture {
	t.Helper()

	store := memory.NewStore()
	blobs := memory.NewBlobStore()
	audit := security.NopAuditLogger()

	jobs := usecase.NewJobUsecase(store.Jobs(), store.Applications(), validation.New(), audit)
	resumes := usecase.NewResumeUsecase(store.Resumes(), blobs, scanner, maxResumeBytes, audit)

	return &fixture{
		store:   store,
		blobs:   blobs,
		jobs:    jobs,
		resumes: resumes,
		apps:    usecase.NewApplicationUsecase(store.Applications(), jobs, resumes, audit),
		auth:    usecase.NewAuthUsecase(store.Users()),
	}
}

func (f *fixture) candidate(t *testing.T, id string) string {
	t.Helper()
	_, err := f.auth.SyncUser(context.Background(), domain.Identity{Subject: id, Email: id + "@example.com", FullName: "Candidate " + id}, domain.RoleCandidate)
	require.NoError(t, err)
	return id
}

func (f *fixture) openJob(t *testing.T, recruiterID string) *domain.Job {
	t.Helper()
	input := jobInput()
	input.Status = domain.JobStatusOpen
	job, err := f.jobs.CreateJob(context.Background(), recruiterID, input)
	require.NoError(t, err)
	return job
}

func (f *fixture) uploadResume(t *testing.T, candidateID string) *domain.Resume {
	t.Helper()
	resume, err := f.resumes.Upload(context.Background(), candidateID, docx("resume.docx"))
	require.NoError(t, err)
	return resume
}

// insertJob bypasses the usecase so tests can create jobs that are already expired.
func (f *fixture) insertJob(t *testing.T, recruiterID, status string, expiresAt time.Time) *domain.Job {
	t.Helper()
	job := &domain.Job{
		ID:             uuid.New(),
		RecruiterID:    recruiterID,
		Title:          "Legacy posting",
		Description:    "desc",
		RequiredSkills: []string{"Go"},
		Location:       "Berlin",
		JobType:        domain.JobTypeContract,
		CompanyName:    "Acme",
		Status:         status,
		ExpiresAt:      expiresAt,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, f.store.Jobs().Create(context.Background(), job))
	return job
}

func jobInput() *domain.JobInput {
	level := "senior"
	return &domain.JobInput{
		Title:           "  Backend Engineer ",
		Description:     "Design and run Go services",
		RequiredSkills:  []string{"Go", " PostgreSQL ", "Go"},
		Location:        "Jakarta",
		JobType:         domain.JobTypeFullTime,
		IsRemote:        true,
		ExperienceLevel: &level,
		CompanyName:     "Acme",
		ExpiresAt:       time.Now().Add(24 * time.Hour),
	}
}

// docx returns bytes recognised as an Office Open XML container.
func docx(name string) domain.ResumeFile {
	return domain.ResumeFile{FileName: name, Data: append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x01}, 128)...)}
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), err.Error())
}

// MockBlobStore lets tests fail individual blob operations.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Store(ctx context.Context, obj domain.BlobObject) (*domain.FileReference, error) {
	args := m.Called(ctx, obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileReference), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, blobID string) error {
	return m.Called(ctx, blobID).Error(0)
}

// MockJobLookup stands in for the job lifecycle in application tests.
type MockJobLookup struct {
	mock.Mock
}

func (m *MockJobLookup) GetJobOwnerAndStatus(ctx context.Context, jobID uuid.UUID) (*domain.JobOwnerStatus, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobOwnerStatus), args.Error(1)
}

func (m *MockJobLookup) IncrementApplicationCount(ctx context.Context, jobID uuid.UUID) error {
	return m.Called(ctx, jobID).Error(0)
}

// MockResumeRepo is used where the memory store cannot be made to fail.
type MockResumeRepo struct {
	mock.Mock
}

func (m *MockResumeRepo) Create(ctx context.Context, r *domain.Resume) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResumeRepo) GetByCandidateID(ctx context.Context, candidateID string) (*domain.Resume, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) GetByIDForCandidate(ctx context.Context, id uuid.UUID, candidateID string) (*domain.Resume, error) {
	args := m.Called(ctx, id, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resume), args.Error(1)
}

func (m *MockResumeRepo) UpdateFile(ctx context.Context, r *domain.Resume) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockResumeRepo) Delete(ctx context.Context, id uuid.UUID, candidateID string) error {
	return m.Called(ctx, id, candidateID).Error(0)
}

type stubScanner struct {
	verdict antivirus.Verdict
}

func (s stubScanner) Scan(context.Context, string, []byte) antivirus.Verdict { return s.verdict }
func (s stubScanner) Name() string                                          { return "stub" }
