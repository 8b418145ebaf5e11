package domain

import "context"

// PaginatedResult is a generic paginated response
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginatedResult computes the page count for total items.
func NewPaginatedResult[T any](data []T, total int64, page, pageSize int) *PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

type AdminUsecase interface {
	ListUsers(ctx context.Context, filter UserFilter) (*PaginatedResult[User], error)
	ListPendingRecruiters(ctx context.Context) ([]User, error)
	SetAccountStatus(ctx context.Context, adminID, userID, status string) (*User, error)
}
