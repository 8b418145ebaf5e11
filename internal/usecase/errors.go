package usecase

import (
	"errors"

	"go-jobboard-backend/pkg/apperror"

	"github.com/google/uuid"
)

// parseID turns a path identifier into a UUID or a ValidationError naming it.
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid " + what + " ID")
	}
	return id, nil
}

// wrapErr leaves typed errors alone and hides anything else behind Internal.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(err)
}
