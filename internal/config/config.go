package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	GeminiAPIKey          string `json:"gemini_api_key"`
	Backend               string `json:"backend"` // "gemini" or "vertex"
	Model                 string `json:"model"`
	GoogleCloudProject    string `json:"google_cloud_project"`
	GoogleCloudLocation   string `json:"google_cloud_location"`
	GoogleCredentialsPath string `json:"google_credentials_path"`
	OAuthCredentialsPath  string `json:"oauth_credentials_path"` // Google sign-in and Gmail import
	IdentityProvider      string `json:"identity_provider"`      // "simulated" or "google"
	ListenAddr            string `json:"listen_addr"`
	MaxDocumentMB         int    `json:"max_document_mb"` // 0 disables the check
	LogLevel              string `json:"log_level"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Backend:             "gemini",
		Model:               "gemini-3-flash-preview",
		GoogleCloudLocation: "us-central1",
		IdentityProvider:    "simulated",
		ListenAddr:          ":8080",
		LogLevel:            "info",
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/VeriSkill/config.json
// On Unix: ~/.config/VeriSkill/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "VeriSkill")
	} else {
		// Unix-like systems
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "VeriSkill")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path, then applies
// .env and environment overrides
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path, then applies
// .env and environment overrides
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults are used if the file doesn't exist
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is fine
	_ = godotenv.Load()
	config.ApplyEnv()

	return config, nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid. A missing API key is not an
// error here: the app still starts and every analysis reports a failure.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "", "gemini":
	case "vertex":
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("google_cloud_project is required for the vertex backend")
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("google_cloud_location is required for the vertex backend")
		}
	default:
		return fmt.Errorf("backend must be 'gemini' or 'vertex', got %q", c.Backend)
	}

	switch strings.ToLower(c.IdentityProvider) {
	case "", "simulated":
	case "google":
		if c.OAuthCredentialsPath == "" {
			return fmt.Errorf("oauth_credentials_path is required for the google identity provider")
		}
	default:
		return fmt.Errorf("identity_provider must be 'simulated' or 'google', got %q", c.IdentityProvider)
	}

	if c.GoogleCredentialsPath != "" {
		if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	if c.OAuthCredentialsPath != "" {
		if _, err := os.Stat(c.OAuthCredentialsPath); err != nil {
			return fmt.Errorf("oauth credentials file not found: %w", err)
		}
	}

	if c.MaxDocumentMB < 0 {
		return fmt.Errorf("max_document_mb must not be negative")
	}

	return nil
}

// ApplyEnv overlays environment variables on top of file values
func (c *Config) ApplyEnv() {
	for _, key := range []string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(key); v != "" {
			c.GeminiAPIKey = v
			break
		}
	}
	if v := os.Getenv("VERISKILL_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.GoogleCloudProject = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		c.GoogleCloudLocation = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.GoogleCredentialsPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
}

// MaxDocumentBytes converts the configured limit to bytes
func (c *Config) MaxDocumentBytes() int64 {
	return int64(c.MaxDocumentMB) << 20
}
