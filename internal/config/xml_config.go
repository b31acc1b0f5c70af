// Package config provides XML-based configuration with environment overrides.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/panel-layout/backend/internal/geometry"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendDuckDB = "duckdb"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PanelLayout"`

	Server    ServerConfig      `xml:"Server"`
	Storage   StorageConfig     `xml:"Storage"`
	Jobs      JobsConfig        `xml:"Jobs"`
	Command   CommandConfig     `xml:"Command"`
	Oracle    OracleConfig      `xml:"Oracle"`
	Broadcast BroadcastConfig   `xml:"Broadcast"`
	Geometry  geometry.Settings `xml:"Geometry"`
	Advanced  AdvancedConfig    `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port" env:"PANEL_LAYOUT_PORT"`
	BindAddress  string `xml:"BindAddress" env:"PANEL_LAYOUT_BIND"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins" env:"PANEL_LAYOUT_ALLOW_ORIGINS"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig selects and configures the layout store
type StorageConfig struct {
	Backend           string `xml:"Backend" env:"PANEL_LAYOUT_STORE"`
	DataDirectory     string `xml:"DataDirectory" env:"PANEL_LAYOUT_DATA_DIR"`
	AutoCreateLayouts bool   `xml:"AutoCreateLayouts" env:"PANEL_LAYOUT_AUTO_CREATE"`
}

// JobsConfig configures async optimize job tracking
type JobsConfig struct {
	RedisAddr              string `xml:"RedisAddress" env:"PANEL_LAYOUT_REDIS_ADDR"`
	TTLMinutes             int    `xml:"TTLMinutes"`
	TimeoutSeconds         int    `xml:"TimeoutSeconds"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
}

// CommandConfig tunes the command dispatcher
type CommandConfig struct {
	SummaryLimit int `xml:"SummaryLimit"`
	HistoryLimit int `xml:"HistoryLimit"`
}

// OracleConfig configures the fallback text model
type OracleConfig struct {
	APIKey         string  `xml:"APIKey" env:"GEMINI_API_KEY"`
	Model          string  `xml:"Model" env:"PANEL_LAYOUT_ORACLE_MODEL"`
	MaxTokens      int     `xml:"MaxTokens"`
	Temperature    float64 `xml:"Temperature"`
	TimeoutSeconds int     `xml:"TimeoutSeconds"`
	MaxConcurrent  int64   `xml:"MaxConcurrent"`
}

// BroadcastConfig configures the websocket hub
type BroadcastConfig struct {
	QueueSize           int `xml:"QueueSize"`
	PublishTimeoutMs    int `xml:"PublishTimeoutMs"`
	PingIntervalSeconds int `xml:"PingIntervalSeconds"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel" env:"PANEL_LAYOUT_LOG_LEVEL"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	GeometryProfile      string `xml:"GeometryProfile" env:"PANEL_LAYOUT_GEOMETRY_PROFILE"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "10M",
		},
		Storage: StorageConfig{
			Backend:           BackendMemory,
			DataDirectory:     "./data",
			AutoCreateLayouts: true,
		},
		Jobs: JobsConfig{
			TTLMinutes:             60,
			TimeoutSeconds:         120,
			CleanupIntervalMinutes: 5,
		},
		Command: CommandConfig{
			SummaryLimit: 50,
			HistoryLimit: 6,
		},
		Oracle: OracleConfig{
			Model:          "gemini-2.5-flash",
			MaxTokens:      512,
			Temperature:    0.3,
			TimeoutSeconds: 25,
			MaxConcurrent:  4,
		},
		Broadcast: BroadcastConfig{
			QueueSize:           32,
			PublishTimeoutMs:    5000,
			PingIntervalSeconds: 30,
		},
		Geometry: geometry.DefaultSettings(),
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// Start from defaults so sections missing from older files keep sane values.
	config := DefaultConfig()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.finish(filepath.Dir(configPath)); err != nil {
		return nil, err
	}
	return config, nil
}

// finish applies environment overrides, resolves paths, loads the geometry
// profile and validates. Every load path goes through it.
func (c *AppConfig) finish(configDir string) error {
	if err := c.applyEnvironmentOverrides(); err != nil {
		return err
	}
	c.resolvePaths(configDir)

	if c.Advanced.GeometryProfile != "" {
		settings, err := geometry.LoadSettings(c.Advanced.GeometryProfile)
		if err != nil {
			return fmt.Errorf("failed to load geometry profile: %w", err)
		}
		c.Geometry = settings
	}
	c.Geometry = c.Geometry.Normalized()

	return c.Validate()
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Panel Layout Service Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the server cannot start with.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendDuckDB:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendMemory, BackendDuckDB)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// applyEnvironmentOverrides lets environment variables override config values.
// Only variables that are set replace the file's values.
func (c *AppConfig) applyEnvironmentOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if p := c.Advanced.GeometryProfile; p != "" && !filepath.IsAbs(p) {
		c.Advanced.GeometryProfile = filepath.Join(configDir, p)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// OracleTimeout returns the oracle call deadline.
func (c *AppConfig) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// PublishTimeout returns the per-notification broadcast deadline.
func (c *AppConfig) PublishTimeout() time.Duration {
	return time.Duration(c.Broadcast.PublishTimeoutMs) * time.Millisecond
}

// JobTTL returns how long job records are kept.
func (c *AppConfig) JobTTL() time.Duration {
	return time.Duration(c.Jobs.TTLMinutes) * time.Minute
}

// JobTimeout returns the deadline of a single async optimize run.
func (c *AppConfig) JobTimeout() time.Duration {
	return time.Duration(c.Jobs.TimeoutSeconds) * time.Second
}

// CleanupInterval returns the job sweep period, never less than a minute.
func (c *AppConfig) CleanupInterval() time.Duration {
	if c.Jobs.CleanupIntervalMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.Jobs.CleanupIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Storage.DataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.Storage.DataDirectory, err)
	}
	return nil
}
