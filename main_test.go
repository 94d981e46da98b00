package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurora/config"
	"aurora/database"
	"aurora/handlers"
	"aurora/middleware"
	"aurora/models"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "aurora-test-*")
	if err != nil {
		panic(err)
	}
	os.Setenv("AURORA_CONFIG_DIR", dir)

	if err := database.ConnectPath(":memory:"); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

var (
	appOnce sync.Once
	testApp *fiber.App
)

// testServer returns the full application, built once. Its auth rate
// limiter is shared across tests, so everything except TestAuthFlow seeds
// users straight into the database instead of going through /register.
func testServer() *fiber.App {
	appOnce.Do(func() {
		testApp = newApp()
	})
	return testApp
}

func request(t *testing.T, method, target, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := testServer().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

// seedUser creates an account directly and signs a token for it, bypassing
// the rate-limited auth endpoints.
func seedUser(t *testing.T, username, timezone string) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "seeded-offline",
		Timezone:     timezone,
	}
	require.NoError(t, database.DB.Create(user).Error)

	claims := middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.GetConfig().JWTSecret))
	require.NoError(t, err)

	return user, token
}

func TestHealth(t *testing.T) {
	resp := request(t, "GET", "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Version)
}

// TestAuthFlow drives the rate-limited endpoints. The limiter allows five
// requests per IP per minute and every request here shares one fake IP, so
// the test spends all five allowed calls deliberately and expects the sixth
// to be throttled.
func TestAuthFlow(t *testing.T) {
	register := map[string]any{
		"username": "aurora-auth",
		"password": "long-enough-pass",
		"timezone": "Europe/Madrid",
	}

	resp := request(t, "POST", "/api/register", "", register)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Timezone string `json:"timezone"`
		} `json:"user"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.Token)
	assert.Equal(t, "aurora-auth", created.User.Username)
	assert.Equal(t, "Europe/Madrid", created.User.Timezone)

	// The fresh token works on a protected route.
	resp = request(t, "GET", "/api/user", created.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me struct {
		Username string `json:"username"`
	}
	decode(t, resp, &me)
	assert.Equal(t, "aurora-auth", me.Username)

	// Duplicate username.
	resp = request(t, "POST", "/api/register", "", register)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Unknown timezone.
	resp = request(t, "POST", "/api/register", "", map[string]any{
		"username": "aurora-auth2",
		"password": "long-enough-pass",
		"timezone": "Mars/Olympus",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Login round trip.
	resp = request(t, "POST", "/api/login", "", map[string]any{
		"username": "aurora-auth",
		"password": "long-enough-pass",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var loggedIn struct {
		Token string `json:"token"`
	}
	decode(t, resp, &loggedIn)
	assert.NotEmpty(t, loggedIn.Token)

	resp = request(t, "POST", "/api/login", "", map[string]any{
		"username": "aurora-auth",
		"password": "wrong-password!",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Sixth request inside the minute: throttled.
	resp = request(t, "POST", "/api/login", "", map[string]any{
		"username": "aurora-auth",
		"password": "long-enough-pass",
	})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

// TestRegisterValidation exercises the input checks on a bare app without
// the limiter in front.
func TestRegisterValidation(t *testing.T) {
	app := fiber.New()
	app.Post("/register", handlers.Register)

	send := func(body any) *http.Response {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/register", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := send(map[string]any{"username": "ab", "password": "long-enough-pass"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = send(map[string]any{"username": "valid-name", "password": "short"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Without a timezone the configured default applies.
	resp = send(map[string]any{"username": "aurora-default-tz", "password": "long-enough-pass"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		User struct {
			Timezone string `json:"timezone"`
		} `json:"user"`
	}
	decode(t, resp, &created)
	assert.Equal(t, config.GetConfig().DefaultTimezone, created.User.Timezone)
}

func TestAuthRequired(t *testing.T) {
	resp := request(t, "GET", "/api/user", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, "GET", "/api/user", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest("GET", "/api/user", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := testServer().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestSettings(t *testing.T) {
	_, token := seedUser(t, "aurora-settings", "UTC")

	resp := request(t, "GET", "/api/settings", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var settings handlers.AppSettings
	decode(t, resp, &settings)
	assert.Equal(t, 24, settings.SessionDurationHours)
	assert.False(t, settings.AIEnabled)

	resp = request(t, "PUT", "/api/settings", token, handlers.AppSettings{SessionDurationHours: 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, "PUT", "/api/settings", token, handlers.AppSettings{
		SessionDurationHours: 48,
		DefaultTimezone:      "Europe/Madrid",
		AIModel:              "gpt-4o",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &settings)
	assert.Equal(t, 48, settings.SessionDurationHours)
	assert.Equal(t, "Europe/Madrid", settings.DefaultTimezone)
	assert.Equal(t, "gpt-4o", settings.AIModel)

	resp = request(t, "PUT", "/api/settings", token, handlers.AppSettings{
		SessionDurationHours: 48,
		DefaultTimezone:      "Nowhere/Nonsense",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Restore defaults so later tests see the documented baseline.
	resp = request(t, "PUT", "/api/settings", token, handlers.AppSettings{
		SessionDurationHours: 24,
		DefaultTimezone:      "UTC",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
