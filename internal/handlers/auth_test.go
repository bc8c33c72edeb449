package handlers_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestAuthHandlers(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("register returns user and token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Alice",
			"email":    "  Alice@Example.com ",
			"password": "secret123",
		}, nil)
		assertStatus(t, resp, http.StatusCreated)

		body := decodeJSONMap(t, resp)
		if token, _ := body["token"].(string); token == "" {
			t.Fatalf("expected token, got %v", body)
		}
		user := body["user"].(map[string]any)
		if user["email"] != "alice@example.com" {
			t.Fatalf("expected normalized email, got %v", user["email"])
		}
		if _, leaked := user["password"]; leaked {
			t.Fatalf("password must not be serialized: %v", user)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Alice Again",
			"email":    "alice@example.com",
			"password": "secret123",
		}, nil)
		assertStatus(t, resp, http.StatusBadRequest)

		body := decodeJSONMap(t, resp)
		assertEnvelopeError(t, body)
		if body["error"] != "email already registered" {
			t.Fatalf("unexpected error: %v", body["error"])
		}
	})

	t.Run("register validation", func(t *testing.T) {
		cases := []struct {
			name    string
			payload map[string]any
			want    string
		}{
			{"short name", map[string]any{"name": "A", "email": "a@example.com", "password": "secret123"}, "name"},
			{"blank name", map[string]any{"name": "    ", "email": "blank@example.com", "password": "secret123"}, "name must be at least 2 characters"},
			{"name short once trimmed", map[string]any{"name": "  B  ", "email": "b@example.com", "password": "secret123"}, "name"},
			{"bad email", map[string]any{"name": "Bob", "email": "not-an-email", "password": "secret123"}, "invalid email"},
			{"short password", map[string]any{"name": "Bob", "email": "bob@example.com", "password": "123"}, "password"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/register", tc.payload, nil)
				assertStatus(t, resp, http.StatusBadRequest)

				body := decodeJSONMap(t, resp)
				assertEnvelopeError(t, body)
				if msg := body["error"].(string); !strings.Contains(msg, tc.want) {
					t.Fatalf("expected error mentioning %q, got %q", tc.want, msg)
				}
			})
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPost, "/api/auth/register", strings.NewReader("{"), map[string]string{
			"Content-Type": "application/json",
		})
		assertStatus(t, resp, http.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp))
	})

	t.Run("login succeeds with case-insensitive email", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "ALICE@example.com",
			"password": "secret123",
		}, nil)
		assertStatus(t, resp, http.StatusOK)

		body := decodeJSONMap(t, resp)
		token, _ := body["token"].(string)
		if token == "" {
			t.Fatalf("expected token, got %v", body)
		}

		me := performRequest(t, env.app, http.MethodGet, "/api/users/me", nil, authHeaders(token))
		assertStatus(t, me, http.StatusOK)
	})

	t.Run("wrong password returns 401 without token", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password",
		}, nil)
		assertStatus(t, resp, http.StatusUnauthorized)

		body := decodeJSONMap(t, resp)
		assertEnvelopeError(t, body)
		if _, ok := body["token"]; ok {
			t.Fatalf("no token may be issued on failed login: %v", body)
		}
	})

	t.Run("unknown email returns 401", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "secret123",
		}, nil)
		assertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("forgot password answers the same for unknown emails", func(t *testing.T) {
		for _, email := range []string{"alice@example.com", "nobody@example.com"} {
			resp := performJSONRequest(t, env.app, http.MethodPost, "/api/auth/forgot-password", map[string]any{
				"email": email,
			}, nil)
			assertStatus(t, resp, http.StatusOK)

			body := decodeJSONMap(t, resp)
			if msg, _ := body["message"].(string); msg == "" {
				t.Fatalf("expected message for %s, got %v", email, body)
			}
		}
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/groups"},
		{http.MethodGet, "/api/tasks/my-tasks"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodPatch, "/api/notifications/read-all"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			resp := performRequest(t, env.app, p.method, p.path, nil, nil)
			assertStatus(t, resp, http.StatusUnauthorized)
			assertEnvelopeError(t, decodeJSONMap(t, resp))
		})
	}

	t.Run("invalid token", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/groups", nil, authHeaders("not-a-jwt"))
		assertStatus(t, resp, http.StatusUnauthorized)
	})
}

func TestVersionAndHealth(t *testing.T) {
	env := setupTestEnv(t)

	resp := performRequest(t, env.app, http.MethodGet, "/health", nil, nil)
	assertStatus(t, resp, http.StatusOK)
	if body := decodeJSONMap(t, resp); body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/version", nil, nil)
	assertStatus(t, resp, http.StatusOK)
	body := decodeJSONMap(t, resp)
	if body["name"] != "kamy" || body["apiVersion"] != "v1" {
		t.Fatalf("unexpected version body: %v", body)
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/does-not-exist", nil, nil)
	assertStatus(t, resp, http.StatusNotFound)
	assertEnvelopeError(t, decodeJSONMap(t, resp))
}
