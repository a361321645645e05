package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for RoofSentry.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Device   DeviceConfig   `yaml:"device"`
	Alpaca   AlpacaConfig   `yaml:"alpaca"`
	Safety   SafetyConfig   `yaml:"safety"`
	Window   WindowConfig   `yaml:"window"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains observatory-specific information.
type SiteConfig struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Location LocationConfig `yaml:"location"`
}

// LocationConfig contains geographic coordinates for solar calculations.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DeviceConfig describes the Alpaca safety monitor device presented to clients.
type DeviceConfig struct {
	// Name is the device name shown to ASCOM clients.
	Name string `yaml:"name"`

	// Description is the device description shown to ASCOM clients.
	Description string `yaml:"description"`

	// Number is the Alpaca device number (almost always 0).
	Number int `yaml:"number"`

	// UniqueID identifies this device instance across restarts.
	// If empty, a random UUID is generated at startup.
	UniqueID string `yaml:"unique_id"`

	// DriverVersion is reported on the driverversion endpoint.
	DriverVersion string `yaml:"driver_version"`

	// Manufacturer is reported in management and discovery responses.
	Manufacturer string `yaml:"manufacturer"`
}

// AlpacaConfig contains the Alpaca HTTP server and discovery settings.
type AlpacaConfig struct {
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	Timeouts  APITimeoutConfig `yaml:"timeouts"`
	Discovery DiscoveryConfig  `yaml:"discovery"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// DiscoveryConfig contains the UDP discovery responder settings.
type DiscoveryConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// SafetyConfig contains the safety decision engine and poller settings.
type SafetyConfig struct {
	// MonitorFolder is the directory watched for roof camera frames (PNG).
	MonitorFolder string `yaml:"monitor_folder"`

	// ClassifierCommand is the external predictor invoked with the newest
	// frame path as its single argument. It must print OPEN or CLOSED.
	ClassifierCommand string `yaml:"classifier_command"`

	// ClassifierTimeout bounds a single classification (seconds).
	ClassifierTimeout int `yaml:"classifier_timeout"`

	// PollInterval is the cadence of the background safety poller (seconds).
	PollInterval int `yaml:"poll_interval"`

	// SunAngleThreshold is the twilight threshold in degrees. The sun must be
	// strictly below this elevation for an OPEN verdict to stand.
	// Common presets: -6 (civil), -12 (nautical), -18 (astronomical).
	SunAngleThreshold float64 `yaml:"sun_angle_threshold"`

	// StatusLog is the append-only roof status log consumed by downstream
	// automation. Never truncated.
	StatusLog string `yaml:"status_log"`

	// SecondarySource is an optional independent roof status file used for
	// diagnostic cross-checking only.
	SecondarySource SecondarySourceConfig `yaml:"secondary_source"`
}

// SecondarySourceConfig contains the optional cross-check source settings.
type SecondarySourceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// WindowConfig contains observation window search settings.
type WindowConfig struct {
	// SearchStep is the forward-search increment in minutes (max 30).
	SearchStep int `yaml:"search_step"`

	// SearchHorizon is the total search horizon in hours.
	SearchHorizon int `yaml:"search_horizon"`
}

// DatabaseConfig contains SQLite database settings for decision history.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays bounds how long decision history is kept.
	// Zero disables pruning entirely.
	RetentionDays int `yaml:"retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ROOFSENTRY_SECTION_KEY
// For example: ROOFSENTRY_ALPACA_PORT, ROOFSENTRY_INFLUXDB_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "observatory-001",
			Name: "Observatory",
		},
		Device: DeviceConfig{
			Name:          "RoofSentry Safety Monitor",
			Description:   "Safety monitor based on roof image classification",
			Number:        0,
			DriverVersion: "1.0.0",
			Manufacturer:  "RoofSentry Project",
		},
		Alpaca: AlpacaConfig{
			Host: "0.0.0.0",
			Port: 11111,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			Discovery: DiscoveryConfig{
				Enabled: true,
				Port:    32227,
			},
		},
		Safety: SafetyConfig{
			ClassifierTimeout: 20,
			PollInterval:      30,
			SunAngleThreshold: -12.0,
			StatusLog:         "./data/roofstatus.log",
		},
		Window: WindowConfig{
			SearchStep:    10,
			SearchHorizon: 48,
		},
		Database: DatabaseConfig{
			Enabled:       true,
			Path:          "./data/roofsentry.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "roofsentry",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ROOFSENTRY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Alpaca server
	if v := os.Getenv("ROOFSENTRY_ALPACA_HOST"); v != "" {
		cfg.Alpaca.Host = v
	}
	if v := os.Getenv("ROOFSENTRY_ALPACA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Alpaca.Port = port
		}
	}

	// Safety
	if v := os.Getenv("ROOFSENTRY_SAFETY_MONITOR_FOLDER"); v != "" {
		cfg.Safety.MonitorFolder = v
	}
	if v := os.Getenv("ROOFSENTRY_SAFETY_STATUS_LOG"); v != "" {
		cfg.Safety.StatusLog = v
	}

	// Database
	if v := os.Getenv("ROOFSENTRY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ROOFSENTRY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ROOFSENTRY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ROOFSENTRY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("ROOFSENTRY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validation bounds for the window search settings.
const (
	maxSearchStepMinutes = 30
	maxSearchHorizonHrs  = 96
)

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Location.Latitude < -90 || c.Site.Location.Latitude > 90 {
		errs = append(errs, "site.location.latitude must be between -90 and 90")
	}
	if c.Site.Location.Longitude < -180 || c.Site.Location.Longitude > 180 {
		errs = append(errs, "site.location.longitude must be between -180 and 180")
	}

	// Device validation
	if c.Device.Number < 0 {
		errs = append(errs, "device.number must not be negative")
	}

	// Alpaca validation
	if c.Alpaca.Port < 1 || c.Alpaca.Port > 65535 {
		errs = append(errs, "alpaca.port must be between 1 and 65535")
	}
	if c.Alpaca.Discovery.Enabled && (c.Alpaca.Discovery.Port < 1 || c.Alpaca.Discovery.Port > 65535) {
		errs = append(errs, "alpaca.discovery.port must be between 1 and 65535")
	}

	// Safety validation
	if c.Safety.PollInterval < 1 {
		errs = append(errs, "safety.poll_interval must be at least 1 second")
	}
	if c.Safety.StatusLog == "" {
		errs = append(errs, "safety.status_log is required")
	}
	if c.Safety.SecondarySource.Enabled && c.Safety.SecondarySource.Path == "" {
		errs = append(errs, "safety.secondary_source.path is required when enabled")
	}

	// Window validation
	if c.Window.SearchStep < 1 || c.Window.SearchStep > maxSearchStepMinutes {
		errs = append(errs, "window.search_step must be between 1 and 30 minutes")
	}
	if c.Window.SearchHorizon < 1 || c.Window.SearchHorizon > maxSearchHorizonHrs {
		errs = append(errs, "window.search_horizon must be between 1 and 96 hours")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when enabled")
	}
	if c.Database.RetentionDays < 0 {
		errs = append(errs, "database.retention_days must not be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the Alpaca server read timeout as a Duration.
func (c AlpacaConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the Alpaca server write timeout as a Duration.
func (c AlpacaConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the Alpaca server idle timeout as a Duration.
func (c AlpacaConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}

// GetHistoryRetention returns the decision-history retention window as
// a Duration. Zero means keep everything.
func (c *Config) GetHistoryRetention() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
}

// GetPollInterval returns the safety poller cadence as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Safety.PollInterval) * time.Second
}

// GetClassifierTimeout returns the classifier command timeout as a Duration.
func (c *Config) GetClassifierTimeout() time.Duration {
	return time.Duration(c.Safety.ClassifierTimeout) * time.Second
}

// GetSearchStep returns the window search increment as a Duration.
func (c *Config) GetSearchStep() time.Duration {
	return time.Duration(c.Window.SearchStep) * time.Minute
}

// GetSearchHorizon returns the window search horizon as a Duration.
func (c *Config) GetSearchHorizon() time.Duration {
	return time.Duration(c.Window.SearchHorizon) * time.Hour
}
