package http

import (
	stderrors "errors"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/features/project/service"
)

// MapError maps project and sharing errors; it returns nil for other errors.
func MapError(err error) *errors.AppError {
	var code errors.ErrorCode
	switch {
	case stderrors.Is(err, service.ErrProjectNotFound):
		code = errors.ErrCodeProjectNotFound
	case stderrors.Is(err, service.ErrNotOwner):
		code = errors.ErrCodeNotOwner
	case stderrors.Is(err, service.ErrAlreadyOwner):
		code = errors.ErrCodeAlreadyOwner
	case stderrors.Is(err, service.ErrAlreadyMember):
		code = errors.ErrCodeAlreadyMember
	case stderrors.Is(err, service.ErrNotMember):
		code = errors.ErrCodeNotMember
	case stderrors.Is(err, service.ErrCodeSpaceExhausted):
		code = errors.ErrCodeShareCodeExhausted
	case stderrors.Is(err, service.ErrRotationDisabled):
		code = errors.ErrCodeRotationDisabled
	case stderrors.Is(err, service.ErrNameTaken):
		code = errors.ErrCodeProjectNameTaken
	default:
		return nil
	}
	return errors.Wrap(err, code, err.Error())
}
