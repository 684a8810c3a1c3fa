package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func unsetKeys(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})
}

func writeEnvFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
}

func TestReloadPicksUpEdits(t *testing.T) {
	unsetKeys(t, "LOG_LEVEL", "ADMIN_EMAILS")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeEnvFile(t, path, "LOG_LEVEL=info\nADMIN_EMAILS=a@riseup.test\n")
	t.Chdir(dir)

	cfg := Load()
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if !cfg.IsAdminEmail("a@riseup.test") {
		t.Fatal("a@riseup.test missing from admin list")
	}

	// Load has exported the keys into the process environment; Reload must
	// still see the edited file, not the stale exports.
	writeEnvFile(t, path, "LOG_LEVEL=error\nADMIN_EMAILS=a@riseup.test,b@riseup.test\n")

	cfg = Reload(path)
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel after reload = %q, want error", cfg.LogLevel)
	}
	if !cfg.IsAdminEmail("b@riseup.test") {
		t.Error("b@riseup.test missing from admin list after reload")
	}
}

func TestWatcherDeliversReloadedConfig(t *testing.T) {
	unsetKeys(t, "LOG_LEVEL")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeEnvFile(t, path, "LOG_LEVEL=info\n")

	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Stop()

	reloaded := make(chan *Config, 4)
	watcher.OnChange(func(cfg *Config) {
		reloaded <- cfg
	})
	watcher.Start()

	writeEnvFile(t, path, "LOG_LEVEL=error\n")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.LogLevel == "error" {
				return
			}
			// An intermediate event may still carry the old value; keep
			// waiting for the final one.
		case <-deadline:
			t.Fatal("no reload with the edited log level within 3s")
		}
	}
}
