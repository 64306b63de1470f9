// Package httputil holds request helpers shared by the delivery handlers.
package httputil

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/middleware"
	"github.com/open-builders/todo-backend/internal/common/validation"
)

// PathID parses a positive integer path parameter.
func PathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// UserID returns the authenticated user id or an UNAUTHORIZED error.
func UserID(c *gin.Context) (int64, error) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return 0, errors.NewUnauthorizedError("authentication required")
	}
	return sess.UserID, nil
}

// BindJSON binds the request body and reports binding failures as
// VALIDATION_ERROR.
func BindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(lowerFirst(fe.Field()), fmt.Sprintf("failed on '%s'", fe.Tag()))
		}
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return errors.Wrapf(err, errors.ErrCodeBadRequest, "Invalid value for field '%s'", typeErr.Field).
				WithDetail("field", typeErr.Field)
		}
		return errors.Wrap(err, errors.ErrCodeBadRequest, "Invalid request body")
	}
	return nil
}

// Abort maps err with mapper, falling back to MapCommon, and aborts.
func Abort(c *gin.Context, err error, mapper func(error) *errors.AppError) {
	var appErr *errors.AppError
	if mapper != nil {
		appErr = mapper(err)
	}
	if appErr == nil {
		appErr = MapCommon(err)
	}
	middleware.AbortWithError(c, appErr)
}

// MapCommon handles errors every feature can return.
func MapCommon(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	var fieldErr *validation.FieldError
	if stderrors.As(err, &fieldErr) {
		return errors.NewValidationError(fieldErr.Field, fieldErr.Reason)
	}
	return errors.NewDatabaseError("storage", err)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
