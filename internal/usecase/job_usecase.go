package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const msgJobNotFoundOrForbidden = "Job not found or you do not have access to it"

type jobUsecase struct {
	jobRepo  domain.JobRepository
	appRepo  domain.ApplicationRepository
	validate *validator.Validate
	audit    *security.AuditLogger
}

func NewJobUsecase(jobRepo domain.JobRepository, appRepo domain.ApplicationRepository, validate *validator.Validate, audit *security.AuditLogger) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		appRepo:  appRepo,
		validate: validate,
		audit:    audit,
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, recruiterID string, input *domain.JobInput) (*domain.Job, error) {
	if input == nil {
		return nil, apperror.Validation("Job details are required")
	}
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.Validation(validation.Message(err))
	}

	status := input.Status
	if status == "" {
		status = domain.JobStatusDraft
	}

	now := time.Now()
	job := &domain.Job{
		ID:              uuid.New(),
		RecruiterID:     recruiterID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		RequiredSkills:  normalizeSkills(input.RequiredSkills),
		Location:        strings.TrimSpace(input.Location),
		JobType:         input.JobType,
		IsRemote:        input.IsRemote,
		ExperienceLevel: trimOptional(input.ExperienceLevel),
		SalaryRange:     trimOptional(input.SalaryRange),
		CompanyName:     strings.TrimSpace(input.CompanyName),
		Status:          status,
		ExpiresAt:       input.ExpiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, apperror.Internal(err)
	}
	return job, nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, jobID, recruiterID string, patch domain.JobPatch) (*domain.Job, error) {
	id, err := parseID(jobID, "job")
	if err != nil {
		return nil, err
	}

	job, err := u.getJobForOwner(ctx, id, recruiterID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusClosed {
		return nil, apperror.InvalidState("Closed jobs cannot be edited")
	}
	if patch.IsEmpty() {
		return nil, apperror.Validation("At least one field must be provided")
	}

	if err := applyJobPatch(job, patch); err != nil {
		return nil, err
	}
	job.UpdatedAt = time.Now()

	if err := u.jobRepo.Update(ctx, job); err != nil {
		if errors.Is(err, domain.ErrJobClosed) {
			return nil, apperror.InvalidState("Closed jobs cannot be edited")
		}
		return nil, apperror.Internal(err)
	}
	return job, nil
}

// applyJobPatch copies supplied fields onto job. Mandatory fields reject null and
// blank values; the two optional descriptors are cleared by null.
func applyJobPatch(job *domain.Job, p domain.JobPatch) error {
	var problems []string
	requireText := func(field domain.Optional[string], label string, dst *string) {
		if !field.Set {
			return
		}
		if field.Null || strings.TrimSpace(field.Value) == "" {
			problems = append(problems, label+" cannot be empty")
			return
		}
		*dst = strings.TrimSpace(field.Value)
	}

	requireText(p.Title, "Title", &job.Title)
	requireText(p.Description, "Description", &job.Description)
	requireText(p.Location, "Location", &job.Location)
	requireText(p.CompanyName, "Company name", &job.CompanyName)

	if p.RequiredSkills.Set {
		skills := normalizeSkills(p.RequiredSkills.Value)
		if p.RequiredSkills.Null || len(skills) == 0 {
			problems = append(problems, "Required skills must contain at least one skill")
		} else {
			job.RequiredSkills = skills
		}
	}
	if p.JobType.Set {
		if p.JobType.Null || !isJobType(p.JobType.Value) {
			problems = append(problems, "Job type must be one of: "+strings.Join(domain.JobTypes, ", "))
		} else {
			job.JobType = p.JobType.Value
		}
	}
	if p.IsRemote.Set {
		if p.IsRemote.Null {
			problems = append(problems, "Remote flag cannot be null")
		} else {
			job.IsRemote = p.IsRemote.Value
		}
	}
	if p.Status.Set {
		// closing goes through CloseJob
		if p.Status.Null || (p.Status.Value != domain.JobStatusDraft && p.Status.Value != domain.JobStatusOpen) {
			problems = append(problems, "Status must be one of: draft, open")
		} else {
			job.Status = p.Status.Value
		}
	}
	if p.ExpiresAt.Set {
		if p.ExpiresAt.Null || p.ExpiresAt.Value.IsZero() {
			problems = append(problems, "Expiration date cannot be empty")
		} else {
			job.ExpiresAt = p.ExpiresAt.Value
		}
	}
	if p.ExperienceLevel.Set {
		job.ExperienceLevel = trimOptional(p.ExperienceLevel.Ptr())
	}
	if p.SalaryRange.Set {
		job.SalaryRange = trimOptional(p.SalaryRange.Ptr())
	}

	if len(problems) > 0 {
		return apperror.Validation(strings.Join(problems, "; "))
	}
	return nil
}

// CloseJob is the only way a job leaves the board for good. Jobs are never deleted.
func (u *jobUsecase) CloseJob(ctx context.Context, jobID, recruiterID string) (*domain.Job, error) {
	id, err := parseID(jobID, "job")
	if err != nil {
		return nil, err
	}

	job, err := u.getJobForOwner(ctx, id, recruiterID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusClosed {
		return nil, apperror.InvalidState("Job is already closed")
	}

	if err := u.jobRepo.UpdateStatus(ctx, id, domain.JobStatusClosed); err != nil {
		return nil, apperror.Internal(err)
	}
	job.Status = domain.JobStatusClosed
	job.UpdatedAt = time.Now()

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventJobClosed,
		ActorID:  recruiterID,
		Resource: "job",
		TargetID: jobID,
		Details:  map[string]interface{}{"applications": job.ApplicationCount},
	})
	return job, nil
}

func (u *jobUsecase) ListPublicJobs(ctx context.Context, filter domain.JobFilter) (*domain.PaginatedResult[domain.Job], error) {
	filter.Normalize()
	jobs, total, err := u.jobRepo.FetchPublic(ctx, filter, time.Now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(jobs, total, filter.Page, filter.PageSize), nil
}

// GetPublicJobByID applies the same visibility rule as the listing. A hidden job is
// reported as missing.
func (u *jobUsecase) GetPublicJobByID(ctx context.Context, jobID, viewerCandidateID string) (*domain.PublicJob, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, apperror.NotFound("Job not found")
	}

	job, err := u.jobRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !job.IsPubliclyVisible(time.Now()) {
		return nil, apperror.NotFound("Job not found")
	}

	result := &domain.PublicJob{Job: *job}
	if viewerCandidateID != "" {
		applied, err := u.appRepo.Exists(ctx, id, viewerCandidateID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		result.AlreadyApplied = applied
	}
	return result, nil
}

func (u *jobUsecase) ListOwnedJobs(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	jobs, err := u.jobRepo.FetchByRecruiter(ctx, recruiterID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	return jobs, nil
}

func (u *jobUsecase) GetOwnedJob(ctx context.Context, jobID, recruiterID string) (*domain.Job, error) {
	id, err := parseID(jobID, "job")
	if err != nil {
		return nil, err
	}
	return u.getJobForOwner(ctx, id, recruiterID)
}

// ListAllJobs is the admin view: every status, same filters.
func (u *jobUsecase) ListAllJobs(ctx context.Context, filter domain.JobFilter) (*domain.PaginatedResult[domain.Job], error) {
	filter.Normalize()
	jobs, total, err := u.jobRepo.FetchAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(jobs, total, filter.Page, filter.PageSize), nil
}

func (u *jobUsecase) GetJobOwnerAndStatus(ctx context.Context, jobID uuid.UUID) (*domain.JobOwnerStatus, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Job not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.JobOwnerStatus{JobID: job.ID, RecruiterID: job.RecruiterID, Status: job.Status}, nil
}

func (u *jobUsecase) IncrementApplicationCount(ctx context.Context, jobID uuid.UUID) error {
	return wrapErr(u.jobRepo.IncrementApplicationCount(ctx, jobID))
}

// getJobForOwner answers missing and foreign jobs identically.
func (u *jobUsecase) getJobForOwner(ctx context.Context, id uuid.UUID, recruiterID string) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFoundOrForbidden(msgJobNotFoundOrForbidden)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if job.RecruiterID != recruiterID {
		u.audit.Denied(ctx, recruiterID, "job", id.String())
		return nil, apperror.NotFoundOrForbidden(msgJobNotFoundOrForbidden)
	}
	return job, nil
}

// normalizeSkills trims entries and drops blanks and exact duplicates, keeping order.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func isJobType(t string) bool {
	for _, jt := range domain.JobTypes {
		if jt == t {
			return true
		}
	}
	return false
}
