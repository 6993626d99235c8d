package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port     int           `env:"LOTTERY_TEST_PORT" envDefault:"123"`
	Interval time.Duration `env:"LOTTERY_TEST_INTERVAL" envDefault:"10s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Interval != 10*time.Second {
		t.Fatalf("expected default interval 10s, got %v", cfg.Interval)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("LOTTERY_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")
	if err := LoadDotEnv("", missing); err != nil {
		t.Fatalf("load missing env file: %v", err)
	}
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "LOTTERY_TEST_PORT=456\nLOTTERY_TEST_DOTENV_ONLY=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("LOTTERY_TEST_PORT", "789")
	t.Setenv("LOTTERY_TEST_DOTENV_ONLY", "")
	if err := os.Unsetenv("LOTTERY_TEST_DOTENV_ONLY"); err != nil {
		t.Fatalf("unset env: %v", err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("LOTTERY_TEST_PORT"); got != "789" {
		t.Fatalf("LOTTERY_TEST_PORT = %q, want 789", got)
	}
	if got := os.Getenv("LOTTERY_TEST_DOTENV_ONLY"); got != "from-file" {
		t.Fatalf("LOTTERY_TEST_DOTENV_ONLY = %q, want from-file", got)
	}
}
