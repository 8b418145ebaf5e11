package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestApplicationLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	job := f.openJob(t, "rec-R")
	cand := f.candidate(t, "cand-A")
	resume := f.uploadResume(t, cand)

	app, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApplied, app.Status)
	assert.Equal(t, "rec-R", app.RecruiterID)
	assert.Equal(t, resume.ID, app.ResumeID)
	assert.Equal(t, resume.File.URL, app.ResumeSnapshot.FileURL)

	stored, err := f.store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ApplicationCount)

	_, err = f.apps.ApplyForJob(ctx, cand, job.ID.String())
	assertKind(t, err, apperror.KindConflict)

	hired, err := f.apps.UpdateStatus(ctx, app.ID.String(), "rec-R", domain.ApplicationStatusHired)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusHired, hired.Status)

	_, err = f.jobs.CloseJob(ctx, job.ID.String(), "rec-R")
	require.NoError(t, err)

	public, err := f.jobs.ListPublicJobs(ctx, domain.JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, public.Data)

	mine, err := f.apps.ListApplicationsForCandidate(ctx, cand)
	require.NoError(t, err)
	require.Equal(t, 1, mine.TotalApplications)
	assert.Equal(t, domain.ApplicationStatusHired, mine.Applications[0].Status)
	assert.Equal(t, domain.JobStatusClosed, mine.Applications[0].JobStatus)

	stored, err = f.store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ApplicationCount)
}

func TestApplyForJob_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject malformed and unknown job ids", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.apps.ApplyForJob(ctx, "cand-1", "42")
		assertKind(t, err, apperror.KindValidation)

		_, err = f.apps.ApplyForJob(ctx, "cand-1", uuid.NewString())
		assertKind(t, err, apperror.KindNotFound)
	})

	t.Run("Should refuse jobs that are not open, with or without a resume", func(t *testing.T) {
		f := newFixture(t)
		draft, err := f.jobs.CreateJob(ctx, "rec-1", jobInput())
		require.NoError(t, err)
		closed := f.openJob(t, "rec-1")
		_, err = f.jobs.CloseJob(ctx, closed.ID.String(), "rec-1")
		require.NoError(t, err)

		withResume := f.candidate(t, "cand-1")
		f.uploadResume(t, withResume)
		withoutResume := f.candidate(t, "cand-2")

		for _, job := range []*domain.Job{draft, closed} {
			for _, cand := range []string{withResume, withoutResume} {
				_, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
				assertKind(t, err, apperror.KindInvalidState)
			}
		}
	})

	t.Run("Should require a resume on file", func(t *testing.T) {
		f := newFixture(t)
		job := f.openJob(t, "rec-1")
		cand := f.candidate(t, "cand-1")

		_, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
		assertKind(t, err, apperror.KindPreconditionFailed)

		stored, err := f.store.Jobs().GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.ApplicationCount)
	})
	t.Run("Should treat an inactive resume as missing", func(t *testing.T) {
		f := newFixture(t)
		job := f.openJob(t, "rec-1")
		cand := f.candidate(t, "cand-1")
		require.NoError(t, f.store.Resumes().Create(ctx, &domain.Resume{
			ID:          uuid.New(),
			CandidateID: cand,
			FileName:    "old.pdf",
			Status:      domain.ResumeStatusInactive,
			CreatedAt:   time.Now(),
		}))

		_, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
		assertKind(t, err, apperror.KindPreconditionFailed)
	})
}

func TestApplyForJob_ConcurrentCandidatesAreAllCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")

	const n = 40
	candidates := make([]string, n)
	for i := range candidates {
		candidates[i] = f.candidate(t, fmt.Sprintf("cand-%d", i))
		f.uploadResume(t, candidates[i])
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, cand := range candidates {
		wg.Add(1)
		go func(cand string) {
			defer wg.Done()
			_, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
			errs <- err
		}(cand)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	stored, err := f.store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored.ApplicationCount)
}

func TestApplyForJob_ConcurrentDuplicatesYieldOneApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")
	cand := f.candidate(t, "cand-1")
	f.uploadResume(t, cand)

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.IsKind(err, apperror.KindConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	stored, err := f.store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ApplicationCount)
}

func TestApplyForJob_CounterFailureKeepsApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")
	cand := f.candidate(t, "cand-1")
	f.uploadResume(t, cand)

	lookup := new(MockJobLookup)
	lookup.On("GetJobOwnerAndStatus", mock.Anything, job.ID).
		Return(&domain.JobOwnerStatus{JobID: job.ID, RecruiterID: "rec-1", Status: domain.JobStatusOpen}, nil)
	lookup.On("IncrementApplicationCount", mock.Anything, job.ID).Return(errors.New("deadlock detected"))

	uc := usecase.NewApplicationUsecase(f.store.Applications(), lookup, f.resumes, security.NopAuditLogger())
	app, err := uc.ApplyForJob(ctx, cand, job.ID.String())
	require.NoError(t, err)
	require.NotNil(t, app)

	exists, err := f.store.Applications().Exists(ctx, job.ID, cand)
	require.NoError(t, err)
	assert.True(t, exists)
	lookup.AssertExpectations(t)
}

func TestUpdateApplicationStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")
	cand := f.candidate(t, "cand-1")
	f.uploadResume(t, cand)
	app, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
	require.NoError(t, err)

	t.Run("Should hide applications from other recruiters", func(t *testing.T) {
		_, errForeign := f.apps.UpdateStatus(ctx, app.ID.String(), "rec-2", domain.ApplicationStatusHired)
		_, errMissing := f.apps.UpdateStatus(ctx, uuid.NewString(), "rec-2", domain.ApplicationStatusHired)
		assertKind(t, errForeign, apperror.KindNotFoundOrForbidden)
		assertKind(t, errMissing, apperror.KindNotFoundOrForbidden)
	})

	t.Run("Should validate the status value", func(t *testing.T) {
		for _, status := range []string{"", "interviewing", "HIRED"} {
			_, err := f.apps.UpdateStatus(ctx, app.ID.String(), "rec-1", status)
			assertKind(t, err, apperror.KindValidation)
		}
	})

	t.Run("Should allow any transition including back from rejected", func(t *testing.T) {
		path := []string{
			domain.ApplicationStatusRejected,
			domain.ApplicationStatusApplied,
			domain.ApplicationStatusHired,
			domain.ApplicationStatusShortlisted,
		}
		for _, status := range path {
			updated, err := f.apps.UpdateStatus(ctx, app.ID.String(), "rec-1", status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
		}

		stored, err := f.store.Applications().GetByID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusShortlisted, stored.Status)
	})
}

func TestListApplicantsForJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")

	first := f.candidate(t, "cand-1")
	f.uploadResume(t, first)
	_, err := f.apps.ApplyForJob(ctx, first, job.ID.String())
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	second := f.candidate(t, "cand-2")
	f.uploadResume(t, second)
	_, err = f.apps.ApplyForJob(ctx, second, job.ID.String())
	require.NoError(t, err)

	// an applicant whose account record is gone drops out of the listing
	ghost := "cand-ghost"
	f.uploadResume(t, ghost)
	_, err = f.apps.ApplyForJob(ctx, ghost, job.ID.String())
	require.NoError(t, err)

	list, err := f.apps.ListApplicantsForJob(ctx, job.ID.String(), "rec-1")
	require.NoError(t, err)
	require.Equal(t, 2, list.TotalApplications)
	assert.Equal(t, second, list.Applications[0].CandidateID)
	assert.Equal(t, first, list.Applications[1].CandidateID)
	assert.Equal(t, "Candidate cand-2", *list.Applications[0].CandidateName)

	_, err = f.apps.ListApplicantsForJob(ctx, job.ID.String(), "rec-2")
	assertKind(t, err, apperror.KindNotFoundOrForbidden)

	_, err = f.apps.ListApplicantsForJob(ctx, uuid.NewString(), "rec-1")
	assertKind(t, err, apperror.KindNotFoundOrForbidden)
}

func TestResumeSnapshotSurvivesResumeChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")
	cand := f.candidate(t, "cand-1")
	resume := f.uploadResume(t, cand)

	app, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
	require.NoError(t, err)

	_, err = f.resumes.Replace(ctx, cand, resume.ID.String(), docx("v2.docx"))
	require.NoError(t, err)
	require.NoError(t, f.resumes.Delete(ctx, cand, resume.ID.String()))

	stored, err := f.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, resume.File.URL, stored.ResumeSnapshot.FileURL)
	assert.Equal(t, "resume.docx", stored.ResumeSnapshot.FileName)

	list, err := f.apps.ListApplicantsForJob(ctx, job.ID.String(), "rec-1")
	require.NoError(t, err)
	require.Len(t, list.Applications, 1)
	assert.Equal(t, resume.File.URL, list.Applications[0].Resume.FileURL)
}

func TestExportApplicants(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.openJob(t, "rec-1")
	cand := f.candidate(t, "cand-1")
	f.uploadResume(t, cand)
	_, err := f.apps.ApplyForJob(ctx, cand, job.ID.String())
	require.NoError(t, err)

	export, err := f.apps.ExportApplicants(ctx, job.ID.String(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.ContentType)
	assert.Contains(t, export.FileName, job.ID.String())

	book, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Applicants", "A1")
	require.NoError(t, err)
	assert.Equal(t, "CANDIDATE NAME", header)

	email, err := book.GetCellValue("Applicants", "B2")
	require.NoError(t, err)
	assert.Equal(t, "cand-1@example.com", email)

	_, err = f.apps.ExportApplicants(ctx, job.ID.String(), "rec-2")
	assertKind(t, err, apperror.KindNotFoundOrForbidden)
}
