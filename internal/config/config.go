package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlefevre/consoscope/internal/source"
)

// Config holds the application configuration
type Config struct {
	API  APIConfig  `yaml:"api,omitempty"`
	MQTT MQTTConfig `yaml:"mqtt,omitempty"`
}

// APIConfig holds the ODRE open-data endpoint settings
type APIConfig struct {
	URL            string `yaml:"url,omitempty"`             // Records endpoint (default: ODRE daily gross consumption)
	DateField      string `yaml:"date_field,omitempty"`      // Date column in the source schema
	ValueField     string `yaml:"value_field,omitempty"`     // Consumption column to analyze
	RecordLimit    int    `yaml:"record_limit,omitempty"`    // Records per fetch (fallback: 100)
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"` // HTTP timeout (fallback: 10)
}

// MQTTConfig holds MQTT broker configuration for publishing readings
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // e.g. "localhost:1883"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // default "consoscope"
}

// Load reads the config file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetURL returns the API endpoint, defaulting to the ODRE dataset
func (c *Config) GetURL() string {
	if c.API.URL != "" {
		return c.API.URL
	}
	return source.DefaultEndpoint
}

// GetDateField returns the date column name in the remote schema
func (c *Config) GetDateField() string {
	if c.API.DateField != "" {
		return c.API.DateField
	}
	return "date_heure"
}

// GetValueField returns the consumption column to analyze
func (c *Config) GetValueField() string {
	if c.API.ValueField != "" {
		return c.API.ValueField
	}
	return "consommation_brute_totale"
}

// GetRecordLimit returns the records-per-fetch limit with a default of 100
func (c *Config) GetRecordLimit() int {
	if c.API.RecordLimit <= 0 {
		return 100
	}
	return c.API.RecordLimit
}

// GetTimeout returns the HTTP timeout with a default of 10 seconds
func (c *Config) GetTimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// GetTopicPrefix returns the MQTT topic prefix with a default
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix != "" {
		return c.MQTT.TopicPrefix
	}
	return "consoscope"
}
