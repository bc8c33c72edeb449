package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamy/api/internal/config"
	"github.com/kamy/api/internal/database"
	"github.com/kamy/api/internal/models"
	"github.com/kamy/api/internal/router"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
	"gorm.io/gorm"
)

const testJWTSecret = "handlers-test-secret-0123456789"

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *utils.TokenManager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.SetOutput(io.Discard)

	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	tokens, err := utils.NewTokenManager(testJWTSecret, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("failed creating token manager: %v", err)
	}

	notifier := services.NewNotifier(config.NotificationsAtomic, services.NewNotificationService(db), nil)
	app := router.New(router.Deps{
		DB:          db,
		Tokens:      tokens,
		Notifier:    notifier,
		FrontendURL: "http://localhost:3000",
	})

	return &testEnv{app: app, db: db, tokens: tokens}
}

func createTestUser(t *testing.T, env *testEnv, name string) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := models.User{
		Name:         name,
		Email:        strings.ToLower(name) + "-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: hash,
	}
	if err := env.db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}

	token, err := env.tokens.Generate(utils.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		t.Fatalf("failed generating token: %v", err)
	}
	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload interface{}, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed marshalling payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	allHeaders := map[string]string{"Content-Type": "application/json"}
	for key, value := range headers {
		allHeaders[key] = value
	}
	return performRequest(t, app, method, path, body, allHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed decoding json: %v body=%q", err, string(raw))
	}
	return body
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d body=%s", expected, resp.StatusCode, string(raw))
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any) {
	t.Helper()
	if success, ok := body["success"].(bool); !ok || success {
		t.Fatalf("expected success=false envelope, got %v", body)
	}
	if msg, ok := body["error"].(string); !ok || msg == "" {
		t.Fatalf("expected non-empty error message, got %v", body)
	}
}

// createGroup creates a group through the API and returns its id.
func createGroup(t *testing.T, env *testEnv, token, name string) string {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups", map[string]any{"name": name}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
	body := decodeJSONMap(t, resp)
	group := body["group"].(map[string]any)
	return group["id"].(string)
}

func addMember(t *testing.T, env *testEnv, token, groupID, email string) {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups/"+groupID+"/members", map[string]any{"email": email}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
}

func createTask(t *testing.T, env *testEnv, token, groupID, assignee, title string) map[string]any {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/tasks", map[string]any{
		"title":      title,
		"groupId":    groupID,
		"assignedTo": assignee,
		"dueDate":    "2025-01-01",
	}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)
	return decodeJSONMap(t, resp)["task"].(map[string]any)
}
