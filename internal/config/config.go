package config

import (
	"errors"
	"strings"
	"time"
)

// DefaultAdminPassword is the shared admin password used when none is configured.
const DefaultAdminPassword = "admin123"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"` // console or json
	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For is honored.
	// Empty means the direct peer address identifies the client.
	TrustedProxies    []string      `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`

	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Admin   AdminConfig   `mapstructure:"admin" yaml:"admin"`
	Gate    GateConfig    `mapstructure:"gate" yaml:"gate"`
	Limits  LimitsConfig  `mapstructure:"limits" yaml:"limits"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// StorageConfig selects where documents live.
type StorageConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"` // file or sqlite
	MessagesPath    string `mapstructure:"messages_path" yaml:"messages_path"`
	CelebrationPath string `mapstructure:"celebration_path" yaml:"celebration_path"`
	BackupSuffix    string `mapstructure:"backup_suffix" yaml:"backup_suffix"`
	DatabasePath    string `mapstructure:"database_path" yaml:"database_path"`
}

// AdminConfig holds the shared admin credential.
type AdminConfig struct {
	Password     string        `mapstructure:"password" yaml:"password"`
	PasswordHash string        `mapstructure:"password_hash" yaml:"password_hash"`
	SessionTTL   time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"` // 0 keeps sessions until logout
}

// GateConfig controls verification passes.
type GateConfig struct {
	Secret      string        `mapstructure:"secret" yaml:"secret"`
	PassTTL     time.Duration `mapstructure:"pass_ttl" yaml:"pass_ttl"`
	RequirePass bool          `mapstructure:"require_pass" yaml:"require_pass"`
}

// LimitsConfig bounds request payloads and guest write rates.
type LimitsConfig struct {
	MaxPhotoBytes  int `mapstructure:"max_photo_bytes" yaml:"max_photo_bytes"`
	// PostsPerMinute caps posts, likes and comments per client IP; 0 disables.
	PostsPerMinute int `mapstructure:"posts_per_minute" yaml:"posts_per_minute"`
	PostBurst      int `mapstructure:"post_burst" yaml:"post_burst"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		Storage: StorageConfig{
			Driver:          DriverFile,
			MessagesPath:    "birthday_messages.json",
			CelebrationPath: "birthday_config.json",
			BackupSuffix:    ".backup",
			DatabasePath:    "birthdaywall.db",
		},
		Admin: AdminConfig{
			Password:   DefaultAdminPassword,
			SessionTTL: 12 * time.Hour,
		},
		Gate: GateConfig{
			PassTTL: 24 * time.Hour,
		},
		Limits: LimitsConfig{
			MaxPhotoBytes:  5 << 20,
			PostsPerMinute: 30,
			PostBurst:      10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Storage.Driver != "" {
		c.Storage.Driver = other.Storage.Driver
	}
	if other.Storage.DatabasePath != "" {
		c.Storage.DatabasePath = other.Storage.DatabasePath
	}
}

// Validate checks settings that would otherwise fail at request time.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return errors.New("storage.driver must be file or sqlite")
	}
	if c.Storage.BackupSuffix == "" {
		return errors.New("storage.backup_suffix must not be empty")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return errors.New("admin.password or admin.password_hash is required")
	}
	if c.Gate.RequirePass && c.Gate.Secret == "" {
		return errors.New("gate.secret is required when gate.require_pass is set")
	}
	if c.Admin.SessionTTL < 0 {
		return errors.New("admin.session_ttl must not be negative")
	}
	if c.Limits.MaxPhotoBytes < 0 {
		return errors.New("limits.max_photo_bytes must not be negative")
	}
	if c.Limits.PostsPerMinute < 0 || c.Limits.PostBurst < 0 {
		return errors.New("limits.posts_per_minute and limits.post_burst must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
