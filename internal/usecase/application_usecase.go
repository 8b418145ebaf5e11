package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	msgApplicationNotFoundOrForbidden = "Application not found or you do not have access to it"
	xlsxContentType                   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type applicationUsecase struct {
	appRepo domain.ApplicationRepository
	jobs    domain.JobLookup
	resumes domain.ResumeLookup
	audit   *security.AuditLogger
}

func NewApplicationUsecase(appRepo domain.ApplicationRepository, jobs domain.JobLookup, resumes domain.ResumeLookup, audit *security.AuditLogger) domain.ApplicationUsecase {
	return &applicationUsecase{
		appRepo: appRepo,
		jobs:    jobs,
		resumes: resumes,
		audit:   audit,
	}
}

// ApplyForJob checks eligibility, inserts the application and bumps the job's
// counter. The eligibility reads and the insert are separate round-trips; the
// (job, candidate) unique index is the only guard against double applies.
func (u *applicationUsecase) ApplyForJob(ctx context.Context, candidateID, jobID string) (*domain.Application, error) {
	id, err := parseID(jobID, "job")
	if err != nil {
		return nil, err
	}

	job, err := u.jobs.GetJobOwnerAndStatus(ctx, id)
	if err != nil {
		return nil, wrapErr(err)
	}
	if job.Status != domain.JobStatusOpen {
		return nil, apperror.InvalidState("This job is not accepting applications")
	}

	resume, err := u.resumes.GetActiveResume(ctx, candidateID)
	if apperror.IsKind(err, apperror.KindNotFound) {
		return nil, apperror.PreconditionFailed("Upload a resume before applying")
	}
	if err != nil {
		return nil, wrapErr(err)
	}

	now := time.Now()
	app := &domain.Application{
		ID:          uuid.New(),
		JobID:       job.JobID,
		CandidateID: candidateID,
		RecruiterID: job.RecruiterID,
		ResumeID:    resume.ID,
		ResumeSnapshot: domain.ResumeSnapshot{
			FileURL:  resume.File.URL,
			FileName: resume.FileName,
		},
		Status:    domain.ApplicationStatusApplied,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.appRepo.Create(ctx, app); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			u.audit.Log(ctx, security.AuditEvent{
				Event:    security.EventDuplicateApplication,
				ActorID:  candidateID,
				Resource: "job",
				TargetID: jobID,
			})
			return nil, apperror.Conflict("You have already applied to this job")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}

	// The application is committed; a failed increment leaves the counter short
	// and is reported rather than undone.
	if err := u.jobs.IncrementApplicationCount(ctx, job.JobID); err != nil {
		logger.Log.Error("Failed to increment application count", "job_id", jobID, "error", err)
		u.audit.Log(ctx, security.AuditEvent{
			Event:    security.EventCounterDrift,
			Resource: "job",
			TargetID: jobID,
			Details:  map[string]interface{}{"application_id": app.ID.String()},
		})
	}

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventApplicationCreated,
		ActorID:  candidateID,
		Resource: "application",
		TargetID: app.ID.String(),
		Details:  map[string]interface{}{"job_id": jobID},
	})
	return app, nil
}

func (u *applicationUsecase) ListApplicationsForCandidate(ctx context.Context, candidateID string) (*domain.CandidateApplicationList, error) {
	apps, err := u.appRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if apps == nil {
		apps = []domain.CandidateApplication{}
	}
	return &domain.CandidateApplicationList{TotalApplications: len(apps), Applications: apps}, nil
}

func (u *applicationUsecase) ListApplicantsForJob(ctx context.Context, jobID, recruiterID string) (*domain.ApplicantList, error) {
	id, err := parseID(jobID, "job")
	if err != nil {
		return nil, err
	}
	if err := u.requireJobOwner(ctx, id, recruiterID); err != nil {
		return nil, err
	}

	applicants, err := u.appRepo.ListByJob(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if applicants == nil {
		applicants = []domain.Applicant{}
	}
	return &domain.ApplicantList{TotalApplications: len(applicants), Applications: applicants}, nil
}

// UpdateStatus writes any of the four statuses; moves between them are not restricted.
func (u *applicationUsecase) UpdateStatus(ctx context.Context, applicationID, recruiterID, status string) (*domain.Application, error) {
	id, err := parseID(applicationID, "application")
	if err != nil {
		return nil, err
	}

	app, err := u.appRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFoundOrForbidden(msgApplicationNotFoundOrForbidden)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if app.RecruiterID != recruiterID {
		u.audit.Denied(ctx, recruiterID, "application", applicationID)
		return nil, apperror.NotFoundOrForbidden(msgApplicationNotFoundOrForbidden)
	}

	if status == "" {
		return nil, apperror.Validation("Status is required")
	}
	if !domain.IsValidApplicationStatus(status) {
		return nil, apperror.Validation("Status must be one of: applied, shortlisted, rejected, hired")
	}

	if err := u.appRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, wrapErr(err)
	}

	previous := app.Status
	app.Status = status
	app.UpdatedAt = time.Now()

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventApplicationStatus,
		ActorID:  recruiterID,
		Resource: "application",
		TargetID: applicationID,
		Details:  map[string]interface{}{"from": previous, "to": status},
	})
	return app, nil
}

// ExportApplicants renders the applicant listing as an xlsx workbook.
func (u *applicationUsecase) ExportApplicants(ctx context.Context, jobID, recruiterID string) (*domain.ApplicantExport, error) {
	list, err := u.ListApplicantsForJob(ctx, jobID, recruiterID)
	if err != nil {
		return nil, err
	}

	data, err := applicantsWorkbook(list.Applications)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.ApplicantExport{
		FileName:    fmt.Sprintf("applicants_%s_%s.xlsx", jobID, time.Now().Format("20060102_150405")),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

func (u *applicationUsecase) requireJobOwner(ctx context.Context, jobID uuid.UUID, recruiterID string) error {
	job, err := u.jobs.GetJobOwnerAndStatus(ctx, jobID)
	if apperror.IsKind(err, apperror.KindNotFound) {
		return apperror.NotFoundOrForbidden(msgJobNotFoundOrForbidden)
	}
	if err != nil {
		return wrapErr(err)
	}
	if job.RecruiterID != recruiterID {
		u.audit.Denied(ctx, recruiterID, "job", jobID.String())
		return apperror.NotFoundOrForbidden(msgJobNotFoundOrForbidden)
	}
	return nil
}

var applicantColumns = []string{"CANDIDATE NAME", "EMAIL", "STATUS", "APPLIED AT", "RESUME FILE", "RESUME URL"}

func applicantsWorkbook(applicants []domain.Applicant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applicants"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, header := range applicantColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(applicantColumns), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for rowIdx, a := range applicants {
		values := []interface{}{
			deref(a.CandidateName),
			deref(a.CandidateEmail),
			a.Status,
			a.AppliedAt.UTC().Format("2006-01-02 15:04"),
			a.Resume.FileName,
			a.Resume.FileURL,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	for i := range applicantColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
