package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kamy/api/internal/cli/config"
	"github.com/kamy/api/internal/cli/output"
	"github.com/kamy/api/internal/database"
	"github.com/kamy/api/internal/router"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

func startServer(t *testing.T) string {
	t.Helper()
	logger.SetOutput(io.Discard)

	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("failed opening database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating: %v", err)
	}

	tokens, err := utils.NewTokenManager("cli-test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("failed creating token manager: %v", err)
	}

	app := router.New(router.Deps{DB: db, Tokens: tokens, FrontendURL: "http://localhost:3000"})
	server := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(server.Close)
	return server.URL
}

// run executes one CLI invocation with its own config directory.
func run(t *testing.T, configDir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigDir, configDir)

	prev := output.Writer
	t.Cleanup(func() { output.Writer = prev })

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, configDir, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, configDir, stdin, args...)
	if err != nil {
		t.Fatalf("kamy %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func decodeInto(t *testing.T, raw string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("failed decoding %q: %v", raw, err)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	url := startServer(t)
	dir := t.TempDir()

	for _, args := range [][]string{
		{"whoami"},
		{"groups", "list"},
		{"tasks", "mine"},
		{"notifications", "list"},
	} {
		_, err := run(t, dir, "", append(args, "--server", url)...)
		if err != errNotAuthenticated {
			t.Errorf("kamy %v: expected not-authenticated error, got %v", args, err)
		}
	}
}

func TestCLIWorkflow(t *testing.T) {
	url := startServer(t)
	alice := t.TempDir()
	bob := t.TempDir()

	mustRun(t, alice, "secret123\n", "register", "--server", url, "--name", "Alice", "--email", "alice@example.com")
	out := mustRun(t, bob, "", "register", "--server", url, "--name", "Bob", "--email", "bob@example.com", "--password", "secret123", "--json")
	var bobUser struct {
		ID string `json:"id"`
	}
	decodeInto(t, out, &bobUser)

	t.Run("stored session is reused", func(t *testing.T) {
		saved := mustRun(t, alice, "", "whoami", "--server", url)
		if !strings.Contains(saved, "alice@example.com") {
			t.Fatalf("expected alice in whoami output, got %q", saved)
		}
	})

	var group struct {
		ID string `json:"id"`
	}
	decodeInto(t, mustRun(t, alice, "", "groups", "create", "Launch", "--server", url, "--json"), &group)
	mustRun(t, alice, "", "groups", "add-member", group.ID, "bob@example.com", "--server", url)

	t.Run("non-owner cannot add members", func(t *testing.T) {
		_, err := run(t, bob, "", "groups", "add-member", group.ID, "alice@example.com", "--server", url)
		if err == nil || !strings.Contains(err.Error(), "403") {
			t.Fatalf("expected 403 error, got %v", err)
		}
	})

	var task struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeInto(t, mustRun(t, alice, "", "tasks", "create", "Write specs",
		"--group", group.ID, "--assignee", bobUser.ID, "--due", "2025-01-01",
		"--server", url, "--json"), &task)
	if task.Status != "pending" {
		t.Fatalf("expected pending task, got %q", task.Status)
	}

	t.Run("invalid due date is rejected locally", func(t *testing.T) {
		_, err := run(t, alice, "", "tasks", "create", "Later", "--group", group.ID, "--assignee", bobUser.ID, "--due", "tomorrow", "--server", url)
		if err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
			t.Fatalf("expected due date error, got %v", err)
		}
	})

	mine := mustRun(t, bob, "", "tasks", "mine", "--server", url)
	if !strings.Contains(mine, "Write specs") || !strings.Contains(mine, "Launch") {
		t.Fatalf("expected task in bob's list, got %q", mine)
	}

	var bobInbox []struct {
		Type string `json:"type"`
		Read bool   `json:"read"`
	}
	decodeInto(t, mustRun(t, bob, "", "notifications", "list", "--server", url, "--json"), &bobInbox)
	assigned := 0
	for _, n := range bobInbox {
		if n.Type == "task_assigned" && !n.Read {
			assigned++
		}
	}
	if assigned != 1 {
		t.Fatalf("expected one unread task_assigned notification, got %+v", bobInbox)
	}

	done := mustRun(t, bob, "", "tasks", "done", task.ID, "--server", url)
	if !strings.Contains(done, "done") {
		t.Fatalf("expected done confirmation, got %q", done)
	}

	var aliceInbox []struct {
		Type string `json:"type"`
	}
	decodeInto(t, mustRun(t, alice, "", "notifications", "list", "--server", url, "--json"), &aliceInbox)
	if len(aliceInbox) != 1 || aliceInbox[0].Type != "task_completed" {
		t.Fatalf("expected one task_completed notification, got %+v", aliceInbox)
	}

	mustRun(t, alice, "", "notifications", "read-all", "--server", url)
	var count struct {
		Count int64 `json:"count"`
	}
	decodeInto(t, mustRun(t, alice, "", "notifications", "count", "--server", url, "--json"), &count)
	if count.Count != 0 {
		t.Fatalf("expected no unread notifications, got %d", count.Count)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := run(t, t.TempDir(), "", "login", "--server", url, "--email", "alice@example.com", "--password", "nope")
		if err == nil || err.Error() != "invalid email or password" {
			t.Fatalf("expected invalid credentials error, got %v", err)
		}
	})

	t.Run("logout clears the session", func(t *testing.T) {
		mustRun(t, alice, "", "logout")
		if _, err := run(t, alice, "", "whoami", "--server", url); err != errNotAuthenticated {
			t.Fatalf("expected not-authenticated error, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	url := startServer(t)

	var out struct {
		CLIVersion string `json:"cliVersion"`
		APIVersion string `json:"apiVersion"`
	}
	decodeInto(t, mustRun(t, t.TempDir(), "", "version", "--server", url, "--json"), &out)
	if out.CLIVersion != Version || out.APIVersion != "v1" {
		t.Fatalf("unexpected version output %+v", out)
	}
}
