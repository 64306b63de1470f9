package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxProjectNameLength  = 100
	MaxCategoryNameLength = 50
	MaxTaskTitleLength    = 200
	MaxDescriptionLength  = 1000
	MinPasswordLength     = 8
	MaxPasswordLength     = 72 // bcrypt ignores everything past 72 bytes
)

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// FieldError describes a rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fieldErr(field, format string, args ...interface{}) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func requiredText(field, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fieldErr(field, "cannot be empty")
	}
	if utf8.RuneCountInString(value) > max {
		return fieldErr(field, "cannot exceed %d characters", max)
	}
	return nil
}

func ValidateProjectName(name string) error {
	return requiredText("name", name, MaxProjectNameLength)
}

func ValidateCategoryName(name string) error {
	return requiredText("name", name, MaxCategoryNameLength)
}

func ValidateTaskTitle(title string) error {
	return requiredText("title", title, MaxTaskTitleLength)
}

// ValidateDescription accepts an empty description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fieldErr("description", "cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateColor requires #RRGGBB.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fieldErr("color", "must be a hex color like #3390EC")
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldErr("email", "must be a valid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fieldErr("password", "must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fieldErr("password", "cannot exceed %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateDueDate rejects dates before 2000, which are almost always a client
// sending seconds where milliseconds were expected.
func ValidateDueDate(due *time.Time) error {
	if due == nil {
		return nil
	}
	if due.Year() < 2000 {
		return fieldErr("dueDate", "is out of range")
	}
	return nil
}

func ValidatePositiveInt(value int64, field string) error {
	if value <= 0 {
		return fieldErr(field, "must be positive")
	}
	return nil
}
