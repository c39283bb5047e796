package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. Every value has a working
// default so a missing config file only matters once a command needs
// credentials.
type Config struct {
	Timezone  string       `yaml:"timezone,omitempty"`
	SensorID  string       `yaml:"sensor_id,omitempty"`
	OutputDir string       `yaml:"output_dir,omitempty"`
	Cosmos    CosmosConfig `yaml:"cosmos,omitempty"`
	Dynamo    DynamoConfig `yaml:"dynamo,omitempty"`
	CSV       CSVConfig    `yaml:"csv,omitempty"`
	MQTT      MQTTConfig   `yaml:"mqtt,omitempty"`
}

// CosmosConfig holds the document-store connection settings.
type CosmosConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Database  string `yaml:"database,omitempty"`
	Container string `yaml:"container,omitempty"`
}

// DynamoConfig holds the key-value-table connection settings.
type DynamoConfig struct {
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Table     string `yaml:"table,omitempty"`
	DeviceID  string `yaml:"device_id,omitempty"`
}

// CSVConfig holds the local-file source settings.
type CSVConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// MQTTConfig holds broker settings for summary publishing.
type MQTTConfig struct {
	Broker      string `yaml:"broker,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// Load reads the config file.
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

// Save writes the config to file.
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

// DefaultConfigPath returns the default config file path (local directory).
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetSensorID returns the sensor to query, defaulting to the meter's id.
func (c *Config) GetSensorID() string {
	if c.SensorID == "" {
		return "smartmeter"
	}
	return c.SensorID
}

// GetTimezone returns the display timezone name.
func (c *Config) GetTimezone() string {
	if c.Timezone == "" {
		return "Asia/Tokyo"
	}
	return c.Timezone
}

// Location loads the display timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.GetTimezone())
	if err != nil {
		return nil, fmt.Errorf("loading timezone %s: %w", c.GetTimezone(), err)
	}
	return loc, nil
}

// GetOutputDir returns the chart/CSV output directory.
func (c *Config) GetOutputDir() string {
	if c.OutputDir == "" {
		return "."
	}
	return c.OutputDir
}

// GetDatabase returns the document database name.
func (c *CosmosConfig) GetDatabase() string {
	if c.Database == "" {
		return "ThingsDatabase"
	}
	return c.Database
}

// GetContainer returns the document container name.
func (c *CosmosConfig) GetContainer() string {
	if c.Container == "" {
		return "Measurements"
	}
	return c.Container
}

// GetTable returns the key-value table name.
func (c *DynamoConfig) GetTable() string {
	if c.Table == "" {
		return "measurements"
	}
	return c.Table
}

// GetDeviceID returns the table's hash key value.
func (c *DynamoConfig) GetDeviceID() string {
	if c.DeviceID == "" {
		return "m5-WiSUN"
	}
	return c.DeviceID
}

// GetDir returns the CSV source directory.
func (c *CSVConfig) GetDir() string {
	if c.Dir == "" {
		return "."
	}
	return c.Dir
}
