package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv(EnvConfigDir, t.TempDir())
	store, err := Open()
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	return store
}

func TestOpen(t *testing.T) {
	t.Run("honours override directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(EnvConfigDir, dir)
		store, err := Open()
		if err != nil {
			t.Fatalf("Open() returned error: %v", err)
		}
		if store.Path != filepath.Join(dir, sessionFile) {
			t.Errorf("unexpected path %s", store.Path)
		}
	})

	t.Run("defaults to user config dir", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		base, err := os.UserConfigDir()
		if err != nil {
			t.Skipf("no user config dir: %v", err)
		}
		store, err := Open()
		if err != nil {
			t.Fatalf("Open() returned error: %v", err)
		}
		if store.Path != filepath.Join(base, appDir, sessionFile) {
			t.Errorf("unexpected path %s", store.Path)
		}
	})
}

func TestStoreLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := tempStore(t).Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL || cfg.HasToken() {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("fills empty server url", func(t *testing.T) {
		store := tempStore(t)
		if err := os.WriteFile(store.Path, []byte(`{"token":"abc"}`), fileMode); err != nil {
			t.Fatalf("failed writing session: %v", err)
		}
		cfg, err := store.Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL || cfg.Token != "abc" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		store := tempStore(t)
		if err := os.WriteFile(store.Path, []byte("{"), fileMode); err != nil {
			t.Fatalf("failed writing session: %v", err)
		}
		if _, err := store.Load(); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestStoreSaveAndClear(t *testing.T) {
	store := &Store{Path: filepath.Join(t.TempDir(), "nested", sessionFile)}

	cfg := &Config{ServerURL: "https://kamy.example.com", Token: "jwt", Email: "alice@example.com"}
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(store.Path)
	if err != nil {
		t.Fatalf("session file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != fileMode {
		t.Errorf("expected mode %o, got %o", fileMode, info.Mode().Perm())
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if _, err := os.Stat(store.Path); !os.IsNotExist(err) {
		t.Errorf("expected session file removed, got %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() returned error: %v", err)
	}
}
