package memory

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
)

type resumeRepo struct {
	s *Store
}

func cloneResume(r *domain.Resume) *domain.Resume {
	c := *r
	if r.PageCount != nil {
		n := *r.PageCount
		c.PageCount = &n
	}
	return &c
}

func (r *resumeRepo) Create(_ context.Context, res *domain.Resume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.resumeByCandidate[res.CandidateID]; exists {
		return domain.ErrDuplicate
	}
	r.s.resumes[res.ID] = cloneResume(res)
	r.s.resumeByCandidate[res.CandidateID] = res.ID
	return nil
}

func (r *resumeRepo) GetByCandidateID(_ context.Context, candidateID string) (*domain.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.resumeByCandidate[candidateID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneResume(r.s.resumes[id]), nil
}

func (r *resumeRepo) GetByIDForCandidate(_ context.Context, id uuid.UUID, candidateID string) (*domain.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.resumes[id]
	if !ok || res.CandidateID != candidateID {
		return nil, domain.ErrNotFound
	}
	return cloneResume(res), nil
}

func (r *resumeRepo) UpdateFile(_ context.Context, res *domain.Resume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.resumes[res.ID]
	if !ok || existing.CandidateID != res.CandidateID {
		return domain.ErrNotFound
	}
	updated := cloneResume(res)
	updated.CreatedAt = existing.CreatedAt
	r.s.resumes[res.ID] = updated
	return nil
}

func (r *resumeRepo) Delete(_ context.Context, id uuid.UUID, candidateID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.resumes[id]
	if !ok || res.CandidateID != candidateID {
		return domain.ErrNotFound
	}
	delete(r.s.resumes, id)
	delete(r.s.resumeByCandidate, candidateID)
	return nil
}
