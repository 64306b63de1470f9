package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProjectName(t *testing.T) {
	assert.NoError(t, ValidateProjectName("Groceries"))
	assert.NoError(t, ValidateProjectName(strings.Repeat("я", MaxProjectNameLength)))
	assert.Error(t, ValidateProjectName("   "))
	assert.Error(t, ValidateProjectName(strings.Repeat("a", MaxProjectNameLength+1)))
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, ValidateColor("#3390EC"))
	assert.NoError(t, ValidateColor("#abcdef"))
	for _, c := range []string{"", "3390EC", "#3390E", "#GGGGGG", "#3390EC0"} {
		assert.Error(t, ValidateColor(c), c)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail("Alice <alice@example.com>"))
	assert.Error(t, ValidateEmail("not-an-email"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateDueDate(t *testing.T) {
	assert.NoError(t, ValidateDueDate(nil))
	ok := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateDueDate(&ok))
	old := time.Unix(1_700_000, 0)
	assert.Error(t, ValidateDueDate(&old))
}

func TestFieldError(t *testing.T) {
	err := ValidateTaskTitle("")
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "title", fe.Field)
	assert.Equal(t, "cannot be empty", fe.Reason)
}
