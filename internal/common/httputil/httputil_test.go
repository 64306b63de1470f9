package httputil

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/todo-backend/internal/common/errors"
	"github.com/open-builders/todo-backend/internal/common/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPathID(t *testing.T) {
	for raw, ok := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "abc": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}

		id, err := PathID(c, "id")
		if ok {
			require.NoError(t, err, raw)
			assert.Positive(t, id)
			continue
		}
		appErr, isApp := errors.AsAppError(err)
		require.True(t, isApp, raw)
		assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	}
}

func TestBindJSON(t *testing.T) {
	type body struct {
		Code string `json:"code" binding:"required"`
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	var b body
	appErr, _ := errors.AsAppError(BindJSON(c, &b))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, "code", appErr.Details["field"])

	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	appErr, _ = errors.AsAppError(BindJSON(c, &b))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCodeBadRequest, appErr.Code)

	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":5}`))
	c.Request.Header.Set("Content-Type", "application/json")
	appErr, _ = errors.AsAppError(BindJSON(c, &b))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCodeBadRequest, appErr.Code)
	assert.Equal(t, "Invalid value for field 'code'", appErr.Message)
	assert.Equal(t, "code", appErr.Details["field"])
}

func TestUserID_WithoutSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := UserID(c)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnauthorized, appErr.Code)
}

func TestMapCommon(t *testing.T) {
	assert.Equal(t, errors.ErrCodeValidation, MapCommon(validation.ValidateColor("red")).Code)
	assert.Equal(t, errors.ErrCodeDatabaseError, MapCommon(stderrors.New("conn reset")).Code)

	own := errors.New(errors.ErrCodeNotOwner, "x")
	assert.Same(t, own, MapCommon(own))
}
