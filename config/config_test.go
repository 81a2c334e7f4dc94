package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  board_port: 9000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.BoardPort != 9000 {
		t.Errorf("board_port = %d, want 9000", cfg.Server.BoardPort)
	}
	if cfg.Server.RefreshInterval != 15*time.Second {
		t.Errorf("refresh_interval = %s, want 15s", cfg.Server.RefreshInterval)
	}
	if cfg.Roster.MaxCourts != 4 {
		t.Errorf("max_courts = %d, want 4", cfg.Roster.MaxCourts)
	}
	if cfg.Roster.StorageKey != "tennisClubState" {
		t.Errorf("storage_key = %q", cfg.Roster.StorageKey)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if len(cfg.Roster.Genders) != 2 {
		t.Errorf("genders = %v", cfg.Roster.Genders)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfig(t, `
server:
  refresh_interval: 30s
roster:
  max_courts: 6
  genders: [M, F, X]
storage:
  backend: redis
redis:
  host: cache
  port: 6380
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.RefreshInterval != 30*time.Second {
		t.Errorf("refresh_interval = %s", cfg.Server.RefreshInterval)
	}
	if cfg.Roster.MaxCourts != 6 {
		t.Errorf("max_courts = %d", cfg.Roster.MaxCourts)
	}
	if got := cfg.Redis.GetRedisAddr(); got != "cache:6380" {
		t.Errorf("redis addr = %q", got)
	}
	if cfg.Storage.Backend != BackendRedis {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "roster:\n  max_courts: 2\n")
	t.Setenv("ROSTER_MAX_COURTS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Roster.MaxCourts != 8 {
		t.Errorf("max_courts = %d, want 8", cfg.Roster.MaxCourts)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"no courts":       "roster:\n  max_courts: 0\n",
		"unknown backend": "storage:\n  backend: s3\n",
		"zero interval":   "server:\n  refresh_interval: 0s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("期望返回错误")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("期望返回错误")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认配置无效: %v", err)
	}
	if got := cfg.Database.GetDSN(); got != "host=localhost port=5432 user=postgres password= dbname=courtboard sslmode=disable" {
		t.Errorf("dsn = %q", got)
	}
}
