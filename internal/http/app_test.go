package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/open-builders/todo-backend/internal/common/config"
	"github.com/open-builders/todo-backend/internal/common/middleware"
	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
	"github.com/open-builders/todo-backend/internal/platform/memory"
)

const botToken = "7342037359:AAHI25ES9xCOMPeNTUUu8Hy-cQzbm9Nlj8w"

var now = time.Unix(1_760_000_000, 0)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Origins = []string{"https://web.telegram.org"}
	cfg.Telegram.BotToken = botToken
	cfg.Telegram.InitDataTTL = time.Hour
	cfg.Telegram.RequireAuthDate = true
	cfg.Auth.JWTSecret = "0123456789abcdef0123"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.Issuer = "todo-backend"
	cfg.Sharing.CodeLength = 6
	cfg.Sharing.MaxAttempts = 5
	return cfg
}

func newTestApp(t *testing.T, checks ...HealthCheck) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.New()
	return NewApp(Options{
		Config: testConfig(),
		Repos: Repositories{
			Users:      store.Users(),
			Projects:   store.Projects(),
			Categories: store.Categories(),
			Tasks:      store.Tasks(),
		},
		HealthChecks: checks,
		Now:          func() time.Time { return now },
		BcryptCost:   bcrypt.MinCost,
	})
}

func initData(telegramID int64, username string) string {
	user, _ := json.Marshal(map[string]interface{}{
		"id":         telegramID,
		"first_name": strings.ToUpper(username[:1]) + username[1:],
		"username":   username,
	})
	return initdata.Sign(map[string]string{
		"user":      string(user),
		"auth_date": strconv.FormatInt(now.Unix(), 10),
	}, botToken)
}

type client struct {
	t      *testing.T
	router *gin.Engine
	header string
	value  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.header != "" {
		req.Header.Set(c.header, c.value)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &resp)
	assert.False(t, resp.Success)
	return resp.Error.Code
}

// login exchanges signed init-data for a bearer token.
func login(t *testing.T, router *gin.Engine, telegramID int64, username string) *client {
	t.Helper()
	anon := &client{t: t, router: router}
	w := anon.do(http.MethodPost, "/api/auth/telegram", gin.H{"initData": initData(telegramID, username)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID         int64  `json:"id"`
			TelegramID string `json:"telegramId"`
		} `json:"user"`
	}
	decode(t, w, &result)
	require.NotEmpty(t, result.AccessToken)
	assert.Equal(t, strconv.FormatInt(telegramID, 10), result.User.TelegramID)

	return &client{t: t, router: router, header: "Authorization", value: "Bearer " + result.AccessToken}
}

func TestShareAndJoinFlow(t *testing.T) {
	router := newTestApp(t)
	alice := login(t, router, 111, "alice")
	bob := login(t, router, 222, "bob")

	w := alice.do(http.MethodPost, "/api/projects", gin.H{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &project)
	base := "/api/projects/" + strconv.FormatInt(project.ID, 10)

	w = alice.do(http.MethodPost, base+"/categories", gin.H{"name": "Dairy", "color": "#FFFFFF"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = alice.do(http.MethodPost, base+"/tasks", gin.H{"title": "Buy milk", "priority": "HIGH"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Only the owner can generate the code.
	w = bob.do(http.MethodPost, base+"/share", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_OWNER", errorCode(t, w))

	w = alice.do(http.MethodPost, base+"/share", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var share struct {
		ShareCode string `json:"shareCode"`
	}
	decode(t, w, &share)
	assert.Len(t, share.ShareCode, 6)

	w = alice.do(http.MethodPost, base+"/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var again struct {
		ShareCode string `json:"shareCode"`
	}
	decode(t, w, &again)
	assert.Equal(t, share.ShareCode, again.ShareCode, "code is stable")

	w = bob.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = bob.do(http.MethodPost, "/api/projects/join", gin.H{"code": strings.ToLower(share.ShareCode)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		ID         int64  `json:"id"`
		Role       string `json:"role"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Tasks []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}
	decode(t, w, &summary)
	assert.Equal(t, project.ID, summary.ID)
	assert.Equal(t, "member", summary.Role)
	require.Len(t, summary.Categories, 1)
	require.Len(t, summary.Tasks, 1)
	assert.Equal(t, "Buy milk", summary.Tasks[0].Title)

	w = bob.do(http.MethodPost, "/api/projects/join", gin.H{"code": share.ShareCode})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_MEMBER", errorCode(t, w))

	w = alice.do(http.MethodPost, "/api/projects/join", gin.H{"code": share.ShareCode})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_OWNER", errorCode(t, w))

	// Members read and write project content.
	w = bob.do(http.MethodPost, base+"/tasks", gin.H{"title": "Buy bread"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = bob.do(http.MethodGet, base+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []json.RawMessage
	decode(t, w, &tasks)
	assert.Len(t, tasks, 2)

	w = bob.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = alice.do(http.MethodGet, base+"/members", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []struct {
		Username string `json:"username"`
	}
	decode(t, w, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].Username)
}

func TestJoinUnknownCode(t *testing.T) {
	router := newTestApp(t)
	bob := login(t, router, 222, "bob")

	w := bob.do(http.MethodPost, "/api/projects/join", gin.H{"code": "ZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PROJECT_NOT_FOUND", errorCode(t, w))
}

func TestInitDataHeaderAuthenticates(t *testing.T) {
	router := newTestApp(t)
	mini := &client{t: t, router: router, header: middleware.InitDataHeader, value: initData(333, "carol")}

	w := mini.do(http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me struct {
		TelegramID string `json:"telegramId"`
		Username   string `json:"username"`
	}
	decode(t, w, &me)
	assert.Equal(t, "333", me.TelegramID)
	assert.Equal(t, "carol", me.Username)

	// Same telegram user through the login endpoint maps to the same account.
	carol := login(t, router, 333, "carol")
	w = carol.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var again struct {
		TelegramID string `json:"telegramId"`
	}
	decode(t, w, &again)
	assert.Equal(t, "333", again.TelegramID)
}

func TestTamperedInitDataRejected(t *testing.T) {
	router := newTestApp(t)
	raw := strings.Replace(initData(333, "carol"), "carol", "mallory", 1)
	mini := &client{t: t, router: router, header: middleware.InitDataHeader, value: raw}

	w := mini.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_INIT_DATA", errorCode(t, w))
}

func TestProtectedRoutesNeedCredentials(t *testing.T) {
	router := newTestApp(t)
	anon := &client{t: t, router: router}

	w := anon.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}

func TestEmailRegistration(t *testing.T) {
	router := newTestApp(t)
	anon := &client{t: t, router: router}

	w := anon.do(http.MethodPost, "/api/auth/register", gin.H{"email": "Dave@Example.com", "password": "correct horse"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = anon.do(http.MethodPost, "/api/auth/register", gin.H{"email": "dave@example.com", "password": "other pass"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_TAKEN", errorCode(t, w))

	w = anon.do(http.MethodPost, "/api/auth/login", gin.H{"email": "dave@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = anon.do(http.MethodPost, "/api/auth/login", gin.H{"email": "dave@example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendButtonWithoutBot(t *testing.T) {
	router := newTestApp(t)
	alice := login(t, router, 111, "alice")

	w := alice.do(http.MethodPost, "/api/telegram/send-button", gin.H{"chatId": 111})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", errorCode(t, w))
}

func TestHealthEndpoints(t *testing.T) {
	down := HealthCheck{Name: "postgres", Check: func(context.Context) error { return errors.New("refused") }}

	router := newTestApp(t, down)
	anon := &client{t: t, router: router}

	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/live", nil).Code)

	w := anon.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "postgres unavailable")

	healthy := newTestApp(t)
	w = (&client{t: t, router: healthy}).do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestApp(t)

	w := (&client{t: t, router: router}).do(http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
	assert.Contains(t, w.Body.String(), "/api/nowhere")
}

func TestSwaggerDocServed(t *testing.T) {
	router := newTestApp(t)

	w := (&client{t: t, router: router}).do(http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/projects/join")
}
