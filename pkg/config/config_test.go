package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets all ADWATCH_* variables for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ADWATCH_CONFIG", "ADWATCH_BASE_URL", "ADWATCH_TOKEN", "ADWATCH_WORKSPACE", "ADWATCH_FILTER", "ADWATCH_REFRESH_SECONDS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("reads toml values", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `
base_url = "https://api.example.com"
token = "secret"
workspace = "ws-42"
filter = "triggered"
refresh_seconds = 10
`)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.BaseURL != "https://api.example.com" {
			t.Errorf("BaseURL = %q", cfg.BaseURL)
		}
		if cfg.Workspace != "ws-42" {
			t.Errorf("Workspace = %q", cfg.Workspace)
		}
		if cfg.Filter != "triggered" {
			t.Errorf("Filter = %q", cfg.Filter)
		}
		if cfg.RefreshSeconds != 10 {
			t.Errorf("RefreshSeconds = %d", cfg.RefreshSeconds)
		}
	})

	t.Run("missing file yields defaults without error", func(t *testing.T) {
		clearEnv(t)
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Filter != DefaultFilter {
			t.Errorf("Filter = %q, want default", cfg.Filter)
		}
		if cfg.RefreshSeconds != DefaultRefreshSeconds {
			t.Errorf("RefreshSeconds = %d, want default", cfg.RefreshSeconds)
		}
	})

	t.Run("malformed toml is an error", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `base_url = [broken`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `
base_url = "https://file.example.com"
workspace = "ws-file"
`)
		t.Setenv("ADWATCH_BASE_URL", "https://env.example.com")
		t.Setenv("ADWATCH_WORKSPACE", "ws-env")
		t.Setenv("ADWATCH_REFRESH_SECONDS", "5")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.BaseURL != "https://env.example.com" {
			t.Errorf("BaseURL = %q, env should win", cfg.BaseURL)
		}
		if cfg.Workspace != "ws-env" {
			t.Errorf("Workspace = %q, env should win", cfg.Workspace)
		}
		if cfg.RefreshSeconds != 5 {
			t.Errorf("RefreshSeconds = %d, want 5", cfg.RefreshSeconds)
		}
	})

	t.Run("bad refresh env ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ADWATCH_REFRESH_SECONDS", "not-a-number")
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.RefreshSeconds != DefaultRefreshSeconds {
			t.Errorf("RefreshSeconds = %d, want default", cfg.RefreshSeconds)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"complete", Config{BaseURL: "https://x", Workspace: "ws"}, ""},
		{"missing base url", Config{Workspace: "ws"}, "base_url"},
		{"missing workspace", Config{BaseURL: "https://x"}, "workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv("ADWATCH_CONFIG", "/tmp/custom.toml")
		got, err := DefaultPath()
		if err != nil {
			t.Fatalf("DefaultPath: %v", err)
		}
		if got != "/tmp/custom.toml" {
			t.Errorf("DefaultPath = %q", got)
		}
	})

	t.Run("defaults under home", func(t *testing.T) {
		clearEnv(t)
		got, err := DefaultPath()
		if err != nil {
			t.Fatalf("DefaultPath: %v", err)
		}
		if !strings.HasSuffix(got, filepath.Join(".adwatch", "config.toml")) {
			t.Errorf("DefaultPath = %q", got)
		}
	})
}
