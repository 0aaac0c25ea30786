package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "anthropic:\n  model: claude-test\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Anthropic.Model != "claude-test" {
		t.Errorf("expected model from file, got %q", cfg.Anthropic.Model)
	}
	if cfg.Defaults.Protocol != "sequential" {
		t.Errorf("expected default protocol, got %q", cfg.Defaults.Protocol)
	}
	if cfg.Defaults.MaxTurns != 20 {
		t.Errorf("expected default max_turns 20, got %d", cfg.Defaults.MaxTurns)
	}
	if cfg.Defaults.ContextEntries != 10 {
		t.Errorf("expected default context_entries 10, got %d", cfg.Defaults.ContextEntries)
	}
	if cfg.Defaults.TaskTimeout != 0 {
		t.Errorf("expected no default timeout, got %s", cfg.Defaults.TaskTimeout)
	}
}

func TestLoadFromPathOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
defaults:
  protocol: parallel
  max_turns: 5
  max_concurrency: 3
  task_timeout: 90s
steering:
  dir: /tmp/steer
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Protocol != "parallel" || cfg.Defaults.MaxTurns != 5 || cfg.Defaults.MaxConcurrency != 3 {
		t.Errorf("overrides not applied: %+v", cfg.Defaults)
	}
	if cfg.Defaults.TaskTimeout != 90*time.Second {
		t.Errorf("expected 90s timeout, got %s", cfg.Defaults.TaskTimeout)
	}
	if cfg.Steering.Dir != "/tmp/steer" {
		t.Errorf("expected steering dir, got %q", cfg.Steering.Dir)
	}
}

func TestLoadFromPathExpandsAPIKeyEnv(t *testing.T) {
	t.Setenv("TEST_SWARM_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "anthropic:\n  api_key: ${TEST_SWARM_KEY}\n")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-from-env" {
		t.Errorf("expected expanded key, got %q", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRolesEmptyFileName(t *testing.T) {
	cfg := &Config{}
	roles, err := cfg.LoadRoles()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roles != nil {
		t.Errorf("expected no roles, got %v", roles)
	}
}

func TestLoadRolesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	writeFile(t, path, `
roles:
  - id: security-auditor
    name: Security Auditor
    system_prompt: Audit for vulnerabilities.
    temperature: 0.1
  - id: coder
    name: Go Specialist
    system_prompt: Write idiomatic Go.
`)

	cfg := &Config{Roles: RolesConfig{File: path}}
	roles, err := cfg.LoadRoles()
	if err != nil {
		t.Fatalf("load roles: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}
	if roles[0].ID != "security-auditor" || roles[0].Temperature != 0.1 {
		t.Errorf("unexpected first role: %+v", roles[0])
	}
	if roles[1].Name != "Go Specialist" {
		t.Errorf("unexpected second role: %+v", roles[1])
	}
}

func TestLoadRolesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	writeFile(t, path, "roles: [not : valid { yaml")

	cfg := &Config{Roles: RolesConfig{File: path}}
	if _, err := cfg.LoadRoles(); err == nil {
		t.Error("expected parse error")
	}
}

func TestUserConfigPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	want := filepath.Join("/tmp/xdg-test", "swarm", "config.yaml")
	if got := UserConfigPath(); got != want {
		t.Errorf("UserConfigPath() = %q, want %q", got, want)
	}
}
