package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Application status constants. Any status may follow any other: the
// recruiter owns the pipeline and moves candidates freely.
const (
	ApplicationStatusApplied     = "applied"
	ApplicationStatusShortlisted = "shortlisted"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusHired       = "hired"
)

var ApplicationStatuses = []string{
	ApplicationStatusApplied,
	ApplicationStatusShortlisted,
	ApplicationStatusRejected,
	ApplicationStatusHired,
}

func IsValidApplicationStatus(status string) bool {
	for _, s := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ResumeSnapshot is copied from the resume when the application is created
// and never refreshed afterwards.
type ResumeSnapshot struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

// Application links a candidate, a job and the resume used to apply.
type Application struct {
	ID             uuid.UUID      `json:"id"`
	JobID          uuid.UUID      `json:"job_id"`
	CandidateID    string         `json:"candidate_id"`
	RecruiterID    string         `json:"recruiter_id"`
	ResumeID       uuid.UUID      `json:"resume_id"`
	ResumeSnapshot ResumeSnapshot `json:"resume_snapshot"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Applicant is an application as seen by the recruiter who owns the job.
// Rows whose candidate account is gone are left out; name and email are nil
// when the account has them blank.
type Applicant struct {
	ApplicationID  uuid.UUID      `json:"application_id"`
	CandidateID    string         `json:"candidate_id"`
	CandidateName  *string        `json:"candidate_name"`
	CandidateEmail *string        `json:"candidate_email"`
	ResumeID       uuid.UUID      `json:"resume_id"`
	Resume         ResumeSnapshot `json:"resume"`
	Status         string         `json:"status"`
	AppliedAt      time.Time      `json:"applied_at"`
}

// CandidateApplication is an application as seen by the candidate.
type CandidateApplication struct {
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	CompanyName   string    `json:"company_name"`
	JobStatus     string    `json:"job_status"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"applied_at"`
}

// ApplicantList is the recruiter-facing applicant listing.
type ApplicantList struct {
	TotalApplications int         `json:"total_applications"`
	Applications      []Applicant `json:"applications"`
}

// CandidateApplicationList is the candidate-facing application listing.
type CandidateApplicationList struct {
	TotalApplications int                    `json:"total_applications"`
	Applications      []CandidateApplication `json:"applications"`
}

// ApplicantExport is a rendered spreadsheet of a job's applicants.
type ApplicantExport struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ApplicationRepository interface {
	// Create fails with ErrDuplicate when (JobID, CandidateID) already exists.
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	Exists(ctx context.Context, jobID uuid.UUID, candidateID string) (bool, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]Applicant, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]CandidateApplication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type ApplicationUsecase interface {
	// Candidate operations
	ApplyForJob(ctx context.Context, candidateID, jobID string) (*Application, error)
	ListApplicationsForCandidate(ctx context.Context, candidateID string) (*CandidateApplicationList, error)

	// Recruiter operations
	ListApplicantsForJob(ctx context.Context, jobID, recruiterID string) (*ApplicantList, error)
	UpdateStatus(ctx context.Context, applicationID, recruiterID, status string) (*Application, error)
	ExportApplicants(ctx context.Context, jobID, recruiterID string) (*ApplicantExport, error)
}
