package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fmuoria/talent-screening-agent/internal/ingestion"
)

// Config holds application configuration
type Config struct {
	Port                 int    `json:"port"`
	UploadsDir           string `json:"uploads_dir"`
	ReportsDir           string `json:"reports_dir"`
	SkillsFile           string `json:"skills_file"`
	GmailCredentialsPath string `json:"gmail_credentials_path"`
	GmailTokenPath       string `json:"gmail_token_path"`
	S3Endpoint           string `json:"s3_endpoint"`
	S3Region             string `json:"s3_region"`
	S3Bucket             string `json:"s3_bucket"`
	S3AccessKey          string `json:"s3_access_key"`
	S3SecretKey          string `json:"s3_secret_key"`
	AMQPURL              string `json:"amqp_url"`
	AMQPExchange         string `json:"amqp_exchange"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Port:                 8080,
		UploadsDir:           "uploads",
		ReportsDir:           "reports",
		GmailCredentialsPath: "credentials.json",
		GmailTokenPath:       "token.json",
		S3Region:             "auto",
		AMQPExchange:         "screening_events",
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/TalentScreeningAgent/config.json
// On Unix: ~/.config/TalentScreeningAgent/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		// Windows
		configDir = filepath.Join(os.Getenv("APPDATA"), "TalentScreeningAgent")
	} else {
		// Unix-like systems
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "TalentScreeningAgent")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

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
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.UploadsDir == "" {
		return fmt.Errorf("uploads_dir is required")
	}

	if c.SkillsFile != "" {
		if _, err := os.Stat(c.SkillsFile); err != nil {
			return fmt.Errorf("skills file not found: %w", err)
		}
	}

	if c.S3AccessKey != "" && c.S3SecretKey == "" {
		return fmt.Errorf("s3_secret_key is required when s3_access_key is set")
	}

	return nil
}

// envString maps environment variables onto string settings
func (c *Config) envString() map[string]*string {
	return map[string]*string{
		"UPLOADS_DIR":            &c.UploadsDir,
		"REPORTS_DIR":            &c.ReportsDir,
		"SKILLS_FILE":            &c.SkillsFile,
		"GMAIL_CREDENTIALS_PATH": &c.GmailCredentialsPath,
		"GMAIL_TOKEN_PATH":       &c.GmailTokenPath,
		"S3_ENDPOINT":            &c.S3Endpoint,
		"S3_REGION":              &c.S3Region,
		"S3_BUCKET":              &c.S3Bucket,
		"S3_ACCESS_KEY_ID":       &c.S3AccessKey,
		"S3_SECRET_ACCESS_KEY":   &c.S3SecretKey,
		"RABBITMQ_URL":           &c.AMQPURL,
		"AMQP_EXCHANGE":          &c.AMQPExchange,
	}
}

// ApplyEnvOverrides overwrites settings with any non-empty environment variables
func (c *Config) ApplyEnvOverrides() error {
	for key, field := range c.envString() {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}

	return nil
}

// S3Options returns the settings of the S3 resume source under a key prefix
func (c *Config) S3Options(prefix string) ingestion.S3Options {
	return ingestion.S3Options{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		Prefix:    prefix,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}
}
