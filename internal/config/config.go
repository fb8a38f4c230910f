package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	applog "github.com/andy/workcal/internal/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Logging settings
	Log LogConfig `yaml:"log"`

	// Assistant (chat) settings
	Assistant AssistantConfig `yaml:"assistant"`

	// Export settings for backups and calendar files
	Export ExportConfig `yaml:"export"`

	// Billing settings for statements
	Billing BillingConfig `yaml:"billing"`

	// HTTP API settings
	Server ServerConfig `yaml:"server"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to the encrypted SQLite database
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Path  string `yaml:"path"`  // Log file used while the TUI owns the terminal
}

type AssistantConfig struct {
	Model     string `yaml:"model"`       // Generative model name, e.g. gemini-pro
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable holding the API key
	Endpoint  string `yaml:"endpoint"`    // Optional API base URL override
}

type ExportConfig struct {
	OutputDir string `yaml:"output_dir"` // Directory for backups and .ics files
}

type BillingConfig struct {
	TaxRate  float64 `yaml:"tax_rate"` // Tax rate as decimal (0.22 = 22%)
	Currency string  `yaml:"currency"` // Currency symbol for display
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Dir returns ~/.config/workcal
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "workcal")
	}
	return filepath.Join(homeDir, ".config", "workcal")
}

// DefaultConfigPath returns ~/.config/workcal/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "workcal.db"),
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(dir, "workcal.log"),
		},
		Assistant: AssistantConfig{
			Model:     "gemini-pro",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Export: ExportConfig{
			OutputDir: filepath.Join(dir, "exports"),
		},
		Billing: BillingConfig{
			TaxRate:  0,
			Currency: "€",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
	}
}

// Load loads config from the given path, or returns defaults if the file doesn't exist
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Database.Path) == "" {
		problems = append(problems, "database.path cannot be empty")
	}
	if _, err := applog.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if !(c.Billing.TaxRate >= 0 && c.Billing.TaxRate <= 1) {
		problems = append(problems, fmt.Sprintf("billing.tax_rate %.4f must be between 0 and 1", c.Billing.TaxRate))
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		problems = append(problems, "server.listen cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AssistantAPIKey reads the assistant key from the configured environment variable.
// An empty result means the local responder is used.
func (c *Config) AssistantAPIKey() string {
	if c.Assistant.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Assistant.APIKeyEnv))
}

// EnsureDirectories creates all necessary directories (database, exports, logs)
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		c.Export.OutputDir,
	}
	if c.Log.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Log.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
