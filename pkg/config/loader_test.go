package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Check defaults
	if cfg.App.Name != "bellman-service" {
		t.Errorf("expected app name 'bellman-service', got %s", cfg.App.Name)
	}
	if cfg.GRPC.Port != 50052 {
		t.Errorf("expected gRPC port 50052, got %d", cfg.GRPC.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Requests != 120 {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: custom-service
  version: 2.0.0
  environment: staging
grpc:
  port: 50060
log:
  level: debug
solver:
  default_method: jacobi
  max_nodes: 50
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-service" {
		t.Errorf("expected app name 'custom-service', got %s", cfg.App.Name)
	}
	if cfg.App.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %s", cfg.App.Version)
	}
	if cfg.GRPC.Port != 50060 {
		t.Errorf("expected port 50060, got %d", cfg.GRPC.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
	if cfg.Solver.DefaultMethod != "jacobi" {
		t.Errorf("expected solver method 'jacobi', got %s", cfg.Solver.DefaultMethod)
	}
	if cfg.Solver.MaxNodes != 50 {
		t.Errorf("expected max nodes 50, got %d", cfg.Solver.MaxNodes)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	// Set env vars
	os.Setenv("BELLMAN_APP_NAME", "env-service")
	os.Setenv("BELLMAN_GRPC_PORT", "50053")
	defer func() {
		os.Unsetenv("BELLMAN_APP_NAME")
		os.Unsetenv("BELLMAN_GRPC_PORT")
	}()

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-service" {
		t.Errorf("expected app name 'env-service', got %s", cfg.App.Name)
	}
	if cfg.GRPC.Port != 50053 {
		t.Errorf("expected port 50053, got %d", cfg.GRPC.Port)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: file-service
grpc:
  port: 50054
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	// Env should override file
	os.Setenv("BELLMAN_APP_NAME", "env-override")
	defer os.Unsetenv("BELLMAN_APP_NAME")

	cfg, err := NewLoader(WithConfigPaths(configPath)).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "env-override" {
		t.Errorf("expected env override, got %s", cfg.App.Name)
	}
	// Port should come from file
	if cfg.GRPC.Port != 50054 {
		t.Errorf("expected port from file 50054, got %d", cfg.GRPC.Port)
	}
}

func TestLoader_WithEnvPrefix(t *testing.T) {
	os.Setenv("CUSTOM_APP_NAME", "custom-prefix-service")
	defer os.Unsetenv("CUSTOM_APP_NAME")

	cfg, err := NewLoader(WithEnvPrefix("CUSTOM_")).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "custom-prefix-service" {
		t.Errorf("expected 'custom-prefix-service', got %s", cfg.App.Name)
	}
}

func TestMustLoad_Success(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("MustLoad should not panic with valid config")
		}
	}()

	cfg := MustLoad()
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoad_Simple(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg == nil {
		t.Error("expected non-nil config")
	}
}

func TestLoadWithServiceDefaults(t *testing.T) {
	cfg, err := LoadWithServiceDefaults("test-svc", 60000)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	// Should use service defaults since no explicit config
	if cfg.App.Name != "test-svc" {
		t.Errorf("expected app name 'test-svc', got %s", cfg.App.Name)
	}
	if cfg.GRPC.Port != 60000 {
		t.Errorf("expected port 60000, got %d", cfg.GRPC.Port)
	}
}

func TestLoader_ConfigEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")

	configContent := `
app:
  name: config-env-var-service
`
	os.WriteFile(configPath, []byte(configContent), 0644)

	os.Setenv("CONFIG_PATH", configPath)
	defer os.Unsetenv("CONFIG_PATH")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "config-env-var-service" {
		t.Errorf("expected 'config-env-var-service', got %s", cfg.App.Name)
	}
}

func TestLoader_EnvKeyMappings(t *testing.T) {
	t.Setenv("BELLMAN_SOLVER_DEFAULT_METHOD", "jacobi")
	t.Setenv("BELLMAN_SOLVER_MAX_EDGES", "10")
	t.Setenv("BELLMAN_HTTP_CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("BELLMAN_RATE_LIMIT_BACKEND", "redis")

	cfg, err := NewLoader(WithConfigPaths()).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Solver.DefaultMethod != "jacobi" {
		t.Errorf("expected 'jacobi', got %s", cfg.Solver.DefaultMethod)
	}
	if cfg.Solver.MaxEdges != 10 {
		t.Errorf("expected max edges 10, got %d", cfg.Solver.MaxEdges)
	}
	if len(cfg.HTTP.CORS.AllowedOrigins) != 2 || cfg.HTTP.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.HTTP.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.Backend != "redis" {
		t.Errorf("expected rate limit backend 'redis', got %s", cfg.RateLimit.Backend)
	}
}

func TestLoader_InvalidEnvFailsValidation(t *testing.T) {
	t.Setenv("BELLMAN_SOLVER_DEFAULT_METHOD", "dijkstra")

	if _, err := NewLoader(WithConfigPaths()).Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoader_MissingFileIsWarning(t *testing.T) {
	l := NewLoader(WithConfigPaths(filepath.Join(t.TempDir(), "absent.yaml")))
	if _, err := l.Load(); err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if len(l.Warnings()) != 1 {
		t.Errorf("expected one warning, got %v", l.Warnings())
	}
}
