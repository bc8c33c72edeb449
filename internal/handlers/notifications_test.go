package handlers_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/models"
)

func seedNotification(t *testing.T, env *testEnv, userID uuid.UUID, title string) models.Notification {
	t.Helper()

	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: title,
		Type:    models.NotificationTaskAssigned,
	}
	if err := env.db.Create(&n).Error; err != nil {
		t.Fatalf("failed creating notification: %v", err)
	}
	return n
}

func unreadCount(t *testing.T, env *testEnv, token string) float64 {
	t.Helper()

	resp := performRequest(t, env.app, http.MethodGet, "/api/notifications/unread-count", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	return decodeJSONMap(t, resp)["count"].(float64)
}

func TestNotificationHandlers(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := createTestUser(t, env, "Alice")
	bob, bobToken := createTestUser(t, env, "Bob")

	first := seedNotification(t, env, alice.ID, "first")
	seedNotification(t, env, alice.ID, "second")
	bobs := seedNotification(t, env, bob.ID, "bob's")

	t.Run("list returns only own notifications", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodGet, "/api/notifications", nil, authHeaders(aliceToken))
		assertStatus(t, resp, http.StatusOK)
		notifications := decodeJSONMap(t, resp)["notifications"].([]any)
		if len(notifications) != 2 {
			t.Fatalf("expected 2 notifications, got %d", len(notifications))
		}
		for _, raw := range notifications {
			if raw.(map[string]any)["read"] != false {
				t.Fatalf("expected unread notifications, got %v", raw)
			}
		}
	})

	t.Run("reading another user's notification is forbidden", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPatch, "/api/notifications/"+bobs.ID.String()+"/read", nil, authHeaders(aliceToken))
		assertStatus(t, resp, http.StatusForbidden)
		assertEnvelopeError(t, decodeJSONMap(t, resp))

		var stored models.Notification
		env.db.First(&stored, "id = ?", bobs.ID)
		if stored.Read {
			t.Fatalf("notification must stay unread")
		}
	})

	t.Run("unknown notification returns 404", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPatch, "/api/notifications/"+uuid.NewString()+"/read", nil, authHeaders(aliceToken))
		assertStatus(t, resp, http.StatusNotFound)
	})

	t.Run("mark read is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp := performRequest(t, env.app, http.MethodPatch, "/api/notifications/"+first.ID.String()+"/read", nil, authHeaders(aliceToken))
			assertStatus(t, resp, http.StatusOK)
			if body := decodeJSONMap(t, resp); body["success"] != true {
				t.Fatalf("expected success, got %v", body)
			}
		}

		var stored models.Notification
		env.db.First(&stored, "id = ?", first.ID)
		if !stored.Read {
			t.Fatalf("expected notification to be read")
		}
		if got := unreadCount(t, env, aliceToken); got != 1 {
			t.Fatalf("expected 1 unread, got %v", got)
		}
	})

	t.Run("read all", func(t *testing.T) {
		resp := performRequest(t, env.app, http.MethodPatch, "/api/notifications/read-all", nil, authHeaders(aliceToken))
		assertStatus(t, resp, http.StatusOK)

		if got := unreadCount(t, env, aliceToken); got != 0 {
			t.Fatalf("expected 0 unread, got %v", got)
		}
		if got := unreadCount(t, env, bobToken); got != 1 {
			t.Fatalf("bob's notifications must be untouched, got %v", got)
		}
	})
}

func TestNotificationListLimit(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env, "Busy")

	for i := 0; i < 55; i++ {
		seedNotification(t, env, user.ID, "n")
	}

	resp := performRequest(t, env.app, http.MethodGet, "/api/notifications", nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)
	if notifications := decodeJSONMap(t, resp)["notifications"].([]any); len(notifications) != 50 {
		t.Fatalf("expected 50 notifications, got %d", len(notifications))
	}
}
