package memory

import (
	"context"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
)

type applicationRepo struct {
	s *Store
}

// Create enforces uniqueness of (job, candidate) under the write lock, the
// in-process equivalent of the unique index.
func (r *applicationRepo) Create(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[app.JobID]; !ok {
		return domain.ErrNotFound
	}
	key := appKey{jobID: app.JobID, candidateID: app.CandidateID}
	if _, exists := r.s.appByPair[key]; exists {
		return domain.ErrDuplicate
	}

	c := *app
	r.s.applications[app.ID] = &c
	r.s.appByPair[key] = app.ID
	r.s.appOrder = append(r.s.appOrder, app.ID)
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	app, ok := r.s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *app
	return &c, nil
}

func (r *applicationRepo) Exists(_ context.Context, jobID uuid.UUID, candidateID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.appByPair[appKey{jobID: jobID, candidateID: candidateID}]
	return ok, nil
}

// ListByJob skips applications whose candidate has no user record.
func (r *applicationRepo) ListByJob(_ context.Context, jobID uuid.UUID) ([]domain.Applicant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.appOrder, func(id uuid.UUID) (domain.Applicant, time.Time, bool) {
		app := r.s.applications[id]
		if app.JobID != jobID {
			return domain.Applicant{}, time.Time{}, false
		}
		user, ok := r.s.users[app.CandidateID]
		if !ok {
			return domain.Applicant{}, time.Time{}, false
		}
		return domain.Applicant{
			ApplicationID:  app.ID,
			CandidateID:    app.CandidateID,
			CandidateName:  nonEmpty(user.FullName),
			CandidateEmail: nonEmpty(user.Email),
			ResumeID:       app.ResumeID,
			Resume:         app.ResumeSnapshot,
			Status:         app.Status,
			AppliedAt:      app.CreatedAt,
		}, app.CreatedAt, true
	}), nil
}

func (r *applicationRepo) ListByCandidate(_ context.Context, candidateID string) ([]domain.CandidateApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.appOrder, func(id uuid.UUID) (domain.CandidateApplication, time.Time, bool) {
		app := r.s.applications[id]
		if app.CandidateID != candidateID {
			return domain.CandidateApplication{}, time.Time{}, false
		}
		job, ok := r.s.jobs[app.JobID]
		if !ok {
			return domain.CandidateApplication{}, time.Time{}, false
		}
		return domain.CandidateApplication{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			JobTitle:      job.Title,
			CompanyName:   job.CompanyName,
			JobStatus:     job.Status,
			Status:        app.Status,
			AppliedAt:     app.CreatedAt,
		}, app.CreatedAt, true
	}), nil
}

func (r *applicationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	app, ok := r.s.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now()
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
