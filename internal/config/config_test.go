package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("TRYON_PIXELCUT_API_KEY", "sk_test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Provider.Name != ProviderPixelcut {
		t.Errorf("Provider.Name = %q", cfg.Provider.Name)
	}
	if cfg.Provider.Timeout != 0 {
		t.Errorf("Provider.Timeout = %v, want no bound", cfg.Provider.Timeout)
	}
	if cfg.Pixelcut.APIKey != "sk_test" {
		t.Errorf("Pixelcut.APIKey not read from env")
	}
	if cfg.Upload.Mode != UploadInline {
		t.Errorf("Upload.Mode = %q", cfg.Upload.Mode)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v", cfg.Session.TTL)
	}
}

func TestLoadPortFallback(t *testing.T) {
	t.Setenv("TRYON_PIXELCUT_API_KEY", "sk_test")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
}

func TestLoadUseSDKFromEnv(t *testing.T) {
	t.Setenv("TRYON_PROVIDER_NAME", ProviderVertex)
	t.Setenv("PROJECT_ID", "demo-project")
	t.Setenv("USE_SDK", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Vertex.UseSDK {
		t.Errorf("Vertex.UseSDK should be read from USE_SDK")
	}
	if cfg.Vertex.ProjectID != "demo-project" {
		t.Errorf("Vertex.ProjectID = %q", cfg.Vertex.ProjectID)
	}
}

func TestLoadRejectsTinySessionTTL(t *testing.T) {
	t.Setenv("TRYON_PIXELCUT_API_KEY", "sk_test")
	t.Setenv("TRYON_SESSION_TTL", "1ns")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "session.ttl") {
		t.Errorf("Load() error = %v, want session.ttl error", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
provider:
  name: vertex
  timeout: 2m
vertex:
  project_id: demo-project
upload:
  mode: object
minio:
  endpoint: localhost:9000
  bucket: tryon
  secure: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != ProviderVertex || cfg.Vertex.ProjectID != "demo-project" {
		t.Errorf("vertex settings not loaded: %+v", cfg.Vertex)
	}
	if cfg.Provider.Timeout != 2*time.Minute {
		t.Errorf("Provider.Timeout = %v", cfg.Provider.Timeout)
	}
	if cfg.Vertex.Location != "us-central1" {
		t.Errorf("Vertex.Location default lost: %q", cfg.Vertex.Location)
	}
	if cfg.Minio.Secure {
		t.Errorf("Minio.Secure should be false")
	}
	if cfg.Minio.URLExpiry != 15*time.Minute {
		t.Errorf("Minio.URLExpiry = %v", cfg.Minio.URLExpiry)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Provider: Provider{Name: ProviderPixelcut},
			Pixelcut: Pixelcut{Endpoint: "https://example.test/try-on", APIKey: "sk"},
			Upload:   Upload{Mode: UploadInline},
			Session:  Session{TTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Pixelcut.APIKey = "" }, wantErr: "pixelcut.api_key"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Name = "other" }, wantErr: "unknown provider.name"},
		{name: "vertex without project", mutate: func(c *Config) { c.Provider.Name = ProviderVertex }, wantErr: "vertex.project_id"},
		{name: "object mode without bucket", mutate: func(c *Config) { c.Upload.Mode = UploadObject }, wantErr: "minio.endpoint"},
		{name: "unknown upload mode", mutate: func(c *Config) { c.Upload.Mode = "ftp" }, wantErr: "unknown upload.mode"},
		{name: "negative timeout", mutate: func(c *Config) { c.Provider.Timeout = -time.Second }, wantErr: "provider.timeout"},
		{name: "zero ttl", mutate: func(c *Config) { c.Session.TTL = 0 }, wantErr: "session.ttl"},
		{name: "sub-second ttl", mutate: func(c *Config) { c.Session.TTL = time.Nanosecond }, wantErr: "session.ttl must be at least 1s"},
		{name: "one second ttl", mutate: func(c *Config) { c.Session.TTL = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
