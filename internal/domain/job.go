package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common domain errors returned by repositories.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
	ErrJobClosed = errors.New("job is closed")
)

// Job status constants
const (
	JobStatusDraft  = "draft"
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Job type constants
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeTemporary  = "temporary"
)

var JobTypes = []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeTemporary}

type Job struct {
	ID               uuid.UUID `json:"id"`
	RecruiterID      string    `json:"recruiter_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	RequiredSkills   []string  `json:"required_skills"`
	Location         string    `json:"location"`
	JobType          string    `json:"job_type"`
	IsRemote         bool      `json:"is_remote"`
	ExperienceLevel  *string   `json:"experience_level"`
	SalaryRange      *string   `json:"salary_range"`
	CompanyName      string    `json:"company_name"`
	Status           string    `json:"status"`
	ApplicationCount int       `json:"application_count"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsPubliclyVisible reports whether the job may appear on the public board.
// Expired jobs drop off even if nobody closed them.
func (j *Job) IsPubliclyVisible(now time.Time) bool {
	return j.Status == JobStatusOpen && j.ExpiresAt.After(now)
}

// JobInput carries the fields a recruiter supplies when posting a job.
type JobInput struct {
	Title           string    `json:"title" validate:"notblank,max=200"`
	Description     string    `json:"description" validate:"notblank"`
	RequiredSkills  []string  `json:"required_skills" validate:"required,min=1,dive,notblank"`
	Location        string    `json:"location" validate:"notblank"`
	JobType         string    `json:"job_type" validate:"required,oneof=full-time part-time contract internship temporary"`
	IsRemote        bool      `json:"is_remote"`
	ExperienceLevel *string   `json:"experience_level"`
	SalaryRange     *string   `json:"salary_range"`
	CompanyName     string    `json:"company_name" validate:"notblank"`
	Status          string    `json:"status" validate:"omitempty,oneof=draft open"`
	ExpiresAt       time.Time `json:"expires_at" validate:"required,future"`
}

// JobPatch is a partial update: only fields whose Set flag is true are
// applied, and an explicit null clears the optional ones.
type JobPatch struct {
	Title           Optional[string]    `json:"title"`
	Description     Optional[string]    `json:"description"`
	RequiredSkills  Optional[[]string]  `json:"required_skills"`
	Location        Optional[string]    `json:"location"`
	JobType         Optional[string]    `json:"job_type"`
	IsRemote        Optional[bool]      `json:"is_remote"`
	ExperienceLevel Optional[string]    `json:"experience_level"`
	SalaryRange     Optional[string]    `json:"salary_range"`
	CompanyName     Optional[string]    `json:"company_name"`
	Status          Optional[string]    `json:"status"`
	ExpiresAt       Optional[time.Time] `json:"expires_at"`
}

// IsEmpty reports whether no field was supplied.
func (p JobPatch) IsEmpty() bool {
	return !(p.Title.Set || p.Description.Set || p.RequiredSkills.Set || p.Location.Set ||
		p.JobType.Set || p.IsRemote.Set || p.ExperienceLevel.Set || p.SalaryRange.Set ||
		p.CompanyName.Set || p.Status.Set || p.ExpiresAt.Set)
}

// JobFilter narrows job listings. Zero values mean "no constraint".
type JobFilter struct {
	Title    string
	Location string
	JobType  string
	IsRemote *bool
	Skill    string
	Page     int
	PageSize int
}

// Normalize clamps pagination to sane bounds.
func (f *JobFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 10
	}
}

func (f JobFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// PublicJob is a job as shown on the public board, optionally annotated
// for the candidate viewing it.
type PublicJob struct {
	Job
	AlreadyApplied bool `json:"already_applied"`
}

// JobOwnerStatus is the minimal view of a job the application flow needs.
type JobOwnerStatus struct {
	JobID       uuid.UUID
	RecruiterID string
	Status      string
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	FetchPublic(ctx context.Context, filter JobFilter, now time.Time) ([]Job, int64, error)
	FetchAll(ctx context.Context, filter JobFilter) ([]Job, int64, error)
	FetchByRecruiter(ctx context.Context, recruiterID string) ([]Job, error)
	// Update writes only while the stored job is not closed and returns
	// ErrJobClosed otherwise.
	Update(ctx context.Context, job *Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// IncrementApplicationCount must be a single atomic store operation.
	IncrementApplicationCount(ctx context.Context, id uuid.UUID) error
}

// JobLookup is the part of the job lifecycle the application flow depends on.
type JobLookup interface {
	GetJobOwnerAndStatus(ctx context.Context, jobID uuid.UUID) (*JobOwnerStatus, error)
	IncrementApplicationCount(ctx context.Context, jobID uuid.UUID) error
}

type JobUsecase interface {
	JobLookup
	CreateJob(ctx context.Context, recruiterID string, input *JobInput) (*Job, error)
	UpdateJob(ctx context.Context, jobID, recruiterID string, patch JobPatch) (*Job, error)
	CloseJob(ctx context.Context, jobID, recruiterID string) (*Job, error)
	ListPublicJobs(ctx context.Context, filter JobFilter) (*PaginatedResult[Job], error)
	GetPublicJobByID(ctx context.Context, jobID, viewerCandidateID string) (*PublicJob, error)
	ListOwnedJobs(ctx context.Context, recruiterID string) ([]Job, error)
	GetOwnedJob(ctx context.Context, jobID, recruiterID string) (*Job, error)
	ListAllJobs(ctx context.Context, filter JobFilter) (*PaginatedResult[Job], error)
}
