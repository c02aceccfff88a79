package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "HOST", "SERVER_PORT", "ALLOWED_ORIGINS", "SERVER_KICK_GRACE",
		"ADMIN_PASSWORD", "JWT_SECRET", "UPLOAD_BACKEND", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

// TestLoadDefaults verifies the values used when neither a file nor the
// environment provides settings.
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3030 {
		t.Errorf("Server.Port = %d, want 3030", cfg.Server.Port)
	}
	if !cfg.Server.PortFallback {
		t.Error("Server.PortFallback = false, want true")
	}
	if cfg.Server.KickGrace != 100*time.Millisecond {
		t.Errorf("Server.KickGrace = %v, want 100ms", cfg.Server.KickGrace)
	}
	if cfg.Server.RateLimit.RefillInterval != time.Second {
		t.Errorf("RateLimit.RefillInterval = %v, want 1s", cfg.Server.RateLimit.RefillInterval)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 defaults", cfg.Server.AllowedOrigins)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Upload.TTL != 10*time.Minute || cfg.Upload.SweepInterval != time.Minute {
		t.Errorf("Upload TTL/sweep = %v/%v, want 10m/1m", cfg.Upload.TTL, cfg.Upload.SweepInterval)
	}
	if cfg.Upload.Backend != "local" {
		t.Errorf("Upload.Backend = %q, want local", cfg.Upload.Backend)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

// TestLoadEnvironmentOverrides verifies the short variable names and the
// dotted-path names both override defaults.
func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "4000")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("SERVER_KICK_GRACE", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("UPLOAD_BACKEND", "s3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Auth.AdminPassword != "hunter2" {
		t.Errorf("Auth.AdminPassword = %q, want hunter2", cfg.Auth.AdminPassword)
	}
	if cfg.Server.KickGrace != 250*time.Millisecond {
		t.Errorf("Server.KickGrace = %v, want 250ms", cfg.Server.KickGrace)
	}
	want := []string{"http://a.example", "http://b.example"}
	if len(cfg.Server.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.Server.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.Server.AllowedOrigins[i], want[i])
		}
	}
	if cfg.Upload.Backend != "s3" {
		t.Errorf("Upload.Backend = %q, want s3", cfg.Upload.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

// TestLoadConfigFile verifies settings are read from config.yaml in the
// given directory.
func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	content := []byte(`server:
  port: 5000
  kick_grace: 2s
  rate_limit:
    burst: 9
auth:
  admin_password: from-file
upload:
  ttl: 30m
log:
  level: warn
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Server.KickGrace != 2*time.Second {
		t.Errorf("Server.KickGrace = %v, want 2s", cfg.Server.KickGrace)
	}
	if cfg.Server.RateLimit.Burst != 9 {
		t.Errorf("RateLimit.Burst = %d, want 9", cfg.Server.RateLimit.Burst)
	}
	if cfg.Auth.AdminPassword != "from-file" {
		t.Errorf("Auth.AdminPassword = %q, want from-file", cfg.Auth.AdminPassword)
	}
	if cfg.Upload.TTL != 30*time.Minute {
		t.Errorf("Upload.TTL = %v, want 30m", cfg.Upload.TTL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}
