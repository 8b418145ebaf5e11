package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// SyncUser creates the local account for a verified identity on first sight.
// It is idempotent: an existing account is returned unchanged, role included.
// Candidates start active; recruiters wait for admin approval.
func (u *authUsecase) SyncUser(ctx context.Context, identity domain.Identity, role string) (*domain.User, error) {
	existing, err := u.userRepo.GetByID(ctx, identity.Subject)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	var status string
	switch role {
	case domain.RoleCandidate, "":
		role = domain.RoleCandidate
		status = domain.AccountStatusActive
	case domain.RoleRecruiter:
		status = domain.AccountStatusPending
	case domain.RoleAdmin:
		return nil, apperror.Validation("The admin role cannot be self-assigned")
	default:
		return nil, apperror.Validation("Role must be one of: candidate, recruiter")
	}

	now := time.Now()
	user := &domain.User{
		ID:            identity.Subject,
		Email:         strings.ToLower(strings.TrimSpace(identity.Email)),
		FullName:      strings.TrimSpace(identity.FullName),
		Role:          role,
		AccountStatus: status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// a concurrent sync for the same subject won
			return u.GetCurrentUser(ctx, identity.Subject)
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}
