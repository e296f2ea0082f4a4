// Package config loads docwatch configuration.
//
// Non-secret settings live in .docwatch/config.json and have working
// defaults. Credentials are environment-only and are never written to disk:
//
//	GEMINI_API_KEY      key for the Gemini generateContent API
//	GMAIL_USER          SMTP login / From address
//	GMAIL_PASSWORD      SMTP app password
//	NOTIFICATION_EMAIL  recipient of the documentation report
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"docwatch/internal/errors"
)

// Config represents the complete docwatch configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Revisions RevisionsConfig `json:"revisions" mapstructure:"revisions"`
	Generator GeneratorConfig `json:"generator" mapstructure:"generator"`
	Notify    NotifyConfig    `json:"notify" mapstructure:"notify"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// RevisionsConfig sets the default revision range to diff
type RevisionsConfig struct {
	From string `json:"from" mapstructure:"from"`
	To   string `json:"to" mapstructure:"to"`
}

// GeneratorConfig contains text-generation settings
type GeneratorConfig struct {
	Model       string `json:"model" mapstructure:"model"`
	BaseURL     string `json:"baseUrl" mapstructure:"baseUrl"`
	MaxRetries  int    `json:"maxRetries" mapstructure:"maxRetries"`
	TimeoutMs   int    `json:"timeoutMs" mapstructure:"timeoutMs"`
	PromptsPath string `json:"promptsPath" mapstructure:"promptsPath"`
}

// NotifyConfig contains notification transport settings
type NotifyConfig struct {
	SMTPHost        string `json:"smtpHost" mapstructure:"smtpHost"`
	SMTPPort        int    `json:"smtpPort" mapstructure:"smtpPort"`
	SlackWebhookURL string `json:"slackWebhookUrl" mapstructure:"slackWebhookUrl"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// Credentials holds the environment-supplied secrets, resolved once at
// process start and passed to collaborators as opaque strings.
type Credentials struct {
	GeminiAPIKey      string
	SMTPUser          string
	SMTPPassword      string
	NotificationEmail string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Revisions: RevisionsConfig{
			From: "HEAD^",
			To:   "HEAD",
		},
		Generator: GeneratorConfig{
			Model:      "gemini-1.5-flash",
			BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
			MaxRetries: 3,
			TimeoutMs:  30000,
		},
		Notify: NotifyConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 587,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .docwatch/config.json, falling back
// to defaults when the file does not exist.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".docwatch"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .docwatch/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".docwatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// LoadCredentials resolves the required secrets from the environment.
// All missing values are reported in one error so CI logs show the full
// list instead of one variable per failed run.
func LoadCredentials() (*Credentials, error) {
	creds := &Credentials{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		SMTPUser:          os.Getenv("GMAIL_USER"),
		SMTPPassword:      os.Getenv("GMAIL_PASSWORD"),
		NotificationEmail: os.Getenv("NOTIFICATION_EMAIL"),
	}

	var missing []string
	if creds.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if creds.SMTPUser == "" {
		missing = append(missing, "GMAIL_USER")
	}
	if creds.SMTPPassword == "" {
		missing = append(missing, "GMAIL_PASSWORD")
	}
	if creds.NotificationEmail == "" {
		missing = append(missing, "NOTIFICATION_EMAIL")
	}

	if len(missing) > 0 {
		return nil, errors.New(
			errors.ConfigMissing,
			"missing environment variables: "+strings.Join(missing, ", "),
			nil,
		)
	}

	return creds, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Generator.MaxRetries < 1 {
		return &ConfigError{Field: "generator.maxRetries", Message: "must be at least 1"}
	}
	if c.Notify.SMTPPort <= 0 || c.Notify.SMTPPort > 65535 {
		return &ConfigError{Field: "notify.smtpPort", Message: "invalid port"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
