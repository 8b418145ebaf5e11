package usecase

import (
	"context"
	"errors"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/security"
)

type adminUsecase struct {
	userRepo domain.UserRepository
	audit    *security.AuditLogger
}

func NewAdminUsecase(userRepo domain.UserRepository, audit *security.AuditLogger) domain.AdminUsecase {
	return &adminUsecase{userRepo: userRepo, audit: audit}
}

// ListUsers returns paginated users
func (u *adminUsecase) ListUsers(ctx context.Context, filter domain.UserFilter) (*domain.PaginatedResult[domain.User], error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if filter.Role != "" && filter.Role != domain.RoleCandidate && filter.Role != domain.RoleRecruiter && filter.Role != domain.RoleAdmin {
		return nil, apperror.Validation("Role must be one of: candidate, recruiter, admin")
	}
	if filter.Status != "" && !domain.IsValidAccountStatus(filter.Status) {
		return nil, apperror.Validation("Status must be one of: pending, active, blocked")
	}

	filter.Normalize()
	users, total, err := u.userRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.NewPaginatedResult(users, total, filter.Page, filter.PageSize), nil
}

// ListPendingRecruiters returns up to 100 recruiters awaiting approval, newest first.
func (u *adminUsecase) ListPendingRecruiters(ctx context.Context) ([]domain.User, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	filter := domain.UserFilter{Role: domain.RoleRecruiter, Status: domain.AccountStatusPending, Page: 1, PageSize: 100}
	users, _, err := u.userRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (u *adminUsecase) SetAccountStatus(ctx context.Context, adminID, userID, status string) (*domain.User, error) {
	if err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !domain.IsValidAccountStatus(status) {
		return nil, apperror.Validation("Status must be one of: pending, active, blocked")
	}
	if adminID == userID {
		return nil, apperror.Validation("You cannot change your own account status")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := u.userRepo.UpdateAccountStatus(ctx, userID, status); err != nil {
		return nil, wrapErr(err)
	}

	previous := user.AccountStatus
	user.AccountStatus = status
	user.UpdatedAt = time.Now()

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventAccountStatus,
		ActorID:  adminID,
		Resource: "user",
		TargetID: userID,
		Details:  map[string]interface{}{"from": previous, "to": status, "email": security.MaskEmail(user.Email)},
	})
	return user, nil
}

// requireAdmin re-checks the role the auth middleware put on the request context.
func (u *adminUsecase) requireAdmin(ctx context.Context) error {
	if role, _ := ctx.Value(domain.KeyUserRole).(string); role != domain.RoleAdmin {
		return apperror.Forbidden("Only admins can perform this action")
	}
	return nil
}
