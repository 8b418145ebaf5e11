// Package memory holds mutex-guarded repositories with the same uniqueness and
// atomicity guarantees as the postgres ones. Used by tests and STORAGE_DRIVER=memory.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
)

type appKey struct {
	jobID       uuid.UUID
	candidateID string
}

// Store is the shared state behind every memory repository.
type Store struct {
	mu sync.RWMutex

	users map[string]*domain.User

	jobs     map[uuid.UUID]*domain.Job
	jobOrder []uuid.UUID

	resumes           map[uuid.UUID]*domain.Resume
	resumeByCandidate map[string]uuid.UUID

	applications map[uuid.UUID]*domain.Application
	appOrder     []uuid.UUID
	appByPair    map[appKey]uuid.UUID
}

func NewStore() *Store {
	return &Store{
		users:             make(map[string]*domain.User),
		jobs:              make(map[uuid.UUID]*domain.Job),
		resumes:           make(map[uuid.UUID]*domain.Resume),
		resumeByCandidate: make(map[string]uuid.UUID),
		applications:      make(map[uuid.UUID]*domain.Application),
		appByPair:         make(map[appKey]uuid.UUID),
	}
}

func (s *Store) Jobs() domain.JobRepository                 { return &jobRepo{s} }
func (s *Store) Resumes() domain.ResumeRepository           { return &resumeRepo{s} }
func (s *Store) Applications() domain.ApplicationRepository { return &applicationRepo{s} }
func (s *Store) Users() domain.UserRepository               { return &userRepo{s} }

// newestFirst walks ids from the latest insert backwards and orders by created time,
// so ties keep the later insert first.
func newestFirst[T any](order []uuid.UUID, lookup func(uuid.UUID) (T, time.Time, bool)) []T {
	type item struct {
		v  T
		at time.Time
	}
	items := make([]item, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		if v, at, ok := lookup(order[i]); ok {
			items = append(items, item{v, at})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].at.After(items[j].at) })

	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.v
	}
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
