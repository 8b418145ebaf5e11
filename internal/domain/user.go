package domain

import (
	"context"
	"time"
)

const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

const (
	AccountStatusPending = "pending"
	AccountStatusActive  = "active"
	AccountStatusBlocked = "blocked"
)

func IsValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusPending, AccountStatusActive, AccountStatusBlocked:
		return true
	}
	return false
}

// User is the local account record behind an identity-provider subject.
type User struct {
	ID            string    `json:"id"` // identity provider subject
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	AccountStatus string    `json:"account_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Principal is the authenticated caller, trusted verbatim for role and
// ownership checks.
type Principal struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	AccountStatus string `json:"account_status"`
}

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	Subject  string
	Email    string
	FullName string
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role     string
	Status   string
	Page     int
	PageSize int
}

func (f *UserFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

func (f UserFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	UpdateAccountStatus(ctx context.Context, id, status string) error
}

type AuthUsecase interface {
	SyncUser(ctx context.Context, identity Identity, role string) (*User, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}
