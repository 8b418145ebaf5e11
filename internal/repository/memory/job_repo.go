package memory

import (
	"context"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
)

type jobRepo struct {
	s *Store
}

func cloneJob(j *domain.Job) domain.Job {
	c := *j
	c.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	return c
}

func (r *jobRepo) Create(_ context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.jobs[job.ID]; exists {
		return domain.ErrDuplicate
	}
	c := cloneJob(job)
	r.s.jobs[job.ID] = &c
	r.s.jobOrder = append(r.s.jobOrder, job.ID)
	return nil
}

func (r *jobRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneJob(j)
	return &c, nil
}

func (r *jobRepo) FetchPublic(_ context.Context, filter domain.JobFilter, now time.Time) ([]domain.Job, int64, error) {
	return r.fetch(filter, func(j *domain.Job) bool { return j.IsPubliclyVisible(now) })
}

func (r *jobRepo) FetchAll(_ context.Context, filter domain.JobFilter) ([]domain.Job, int64, error) {
	return r.fetch(filter, func(*domain.Job) bool { return true })
}

func (r *jobRepo) FetchByRecruiter(_ context.Context, recruiterID string) ([]domain.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.sorted(func(j *domain.Job) bool { return j.RecruiterID == recruiterID }), nil
}

func (r *jobRepo) fetch(filter domain.JobFilter, visible func(*domain.Job) bool) ([]domain.Job, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.sorted(func(j *domain.Job) bool { return visible(j) && matches(j, filter) })
	return paginate(all, filter.Offset(), filter.PageSize), int64(len(all)), nil
}

// sorted must be called with the read lock held.
func (r *jobRepo) sorted(keep func(*domain.Job) bool) []domain.Job {
	return newestFirst(r.s.jobOrder, func(id uuid.UUID) (domain.Job, time.Time, bool) {
		j := r.s.jobs[id]
		if !keep(j) {
			return domain.Job{}, time.Time{}, false
		}
		return cloneJob(j), j.CreatedAt, true
	})
}

func matches(j *domain.Job, f domain.JobFilter) bool {
	if f.Title != "" && !containsFold(j.Title, f.Title) {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	if f.IsRemote != nil && j.IsRemote != *f.IsRemote {
		return false
	}
	if f.Skill != "" {
		found := false
		for _, s := range j.RequiredSkills {
			if strings.EqualFold(s, f.Skill) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *jobRepo) Update(_ context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.jobs[job.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if existing.Status == domain.JobStatusClosed {
		return domain.ErrJobClosed
	}
	c := cloneJob(job)
	c.RecruiterID = existing.RecruiterID
	c.ApplicationCount = existing.ApplicationCount
	c.CreatedAt = existing.CreatedAt
	r.s.jobs[job.ID] = &c
	return nil
}

func (r *jobRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	return nil
}

func (r *jobRepo) IncrementApplicationCount(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	j.ApplicationCount++
	return nil
}
