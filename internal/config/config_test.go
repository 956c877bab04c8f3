package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "VERISKILL_BACKEND",
		"GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION", "GOOGLE_APPLICATION_CREDENTIALS", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	want := DefaultConfig()
	if *cfg != *want {
		t.Errorf("LoadFrom() = %+v, want %+v", cfg, want)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.GeminiAPIKey = "file-key"
	cfg.MaxDocumentMB = 5
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if loaded.GeminiAPIKey != "file-key" || loaded.MaxDocumentMB != 5 {
		t.Errorf("Loaded config mismatch: %+v", loaded)
	}
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0600)

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "9090")
	t.Setenv("VERISKILL_BACKEND", "vertex")

	cfg := DefaultConfig()
	cfg.GeminiAPIKey = "file-key"
	cfg.ApplyEnv()

	if cfg.GeminiAPIKey != "env-key" {
		t.Errorf("GeminiAPIKey = %q, want env-key", cfg.GeminiAPIKey)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.ListenAddr)
	}
	if cfg.Backend != "vertex" {
		t.Errorf("Backend = %q, want vertex", cfg.Backend)
	}
}

func TestAPIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "first")
	t.Setenv("GOOGLE_API_KEY", "third")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.GeminiAPIKey != "first" {
		t.Errorf("GeminiAPIKey = %q, want first", cfg.GeminiAPIKey)
	}
}

func TestValidate(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "creds.json")
	os.WriteFile(existing, []byte("{}"), 0600)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Defaults without API key", mutate: func(c *Config) {}},
		{name: "Vertex without project", mutate: func(c *Config) { c.Backend = "vertex" }, wantErr: true},
		{name: "Vertex with project", mutate: func(c *Config) { c.Backend = "vertex"; c.GoogleCloudProject = "p" }},
		{name: "Unknown backend", mutate: func(c *Config) { c.Backend = "openai" }, wantErr: true},
		{name: "Google identity without credentials", mutate: func(c *Config) { c.IdentityProvider = "google" }, wantErr: true},
		{name: "Google identity with credentials", mutate: func(c *Config) {
			c.IdentityProvider = "google"
			c.OAuthCredentialsPath = existing
		}},
		{name: "Missing credentials file", mutate: func(c *Config) { c.GoogleCredentialsPath = "/nonexistent/creds.json" }, wantErr: true},
		{name: "Negative size limit", mutate: func(c *Config) { c.MaxDocumentMB = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaxDocumentBytes(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxDocumentBytes() != 0 {
		t.Errorf("Default MaxDocumentBytes = %d, want 0", cfg.MaxDocumentBytes())
	}
	cfg.MaxDocumentMB = 5
	if cfg.MaxDocumentBytes() != 5*1024*1024 {
		t.Errorf("MaxDocumentBytes = %d, want %d", cfg.MaxDocumentBytes(), 5*1024*1024)
	}
}
