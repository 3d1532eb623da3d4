package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "/custom/config.toml")
		t.Setenv(EnvHome, "/custom/coursekit")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/coursekit" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/coursekit")
		}
		if defaults["log_dir"] != "/custom/coursekit/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/coursekit/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		t.Setenv(EnvHome, "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "coursekit.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "coursekit")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("sets unset variables only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := EnvHome + "=/from/dotenv\n" + EnvConfigPath + "=/from/dotenv.toml\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(EnvConfigPath, "/already/set.toml")
		t.Setenv(EnvHome, "")
		os.Unsetenv(EnvHome)

		if err := LoadEnv(path); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}
		if got := os.Getenv(EnvHome); got != "/from/dotenv" {
			t.Errorf("%s = %q, want /from/dotenv", EnvHome, got)
		}
		if got := os.Getenv(EnvConfigPath); got != "/already/set.toml" {
			t.Errorf("%s = %q, want it unchanged", EnvConfigPath, got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("LoadEnv() error = %v, want nil", err)
		}
	})
}
