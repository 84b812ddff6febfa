package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
	Session  SessionConfig  `yaml:"session" envconfig:"SESSION"`
	Debug    bool           `yaml:"debug" envconfig:"DEBUG" default:"false"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	// AccessSecret is the shared secret exchanged for a session token.
	// Empty disables the gate (local use).
	AccessSecret   string          `yaml:"access_secret" envconfig:"ACCESS_SECRET"`
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/reqcheck.log"`
}

// UploadConfig bounds the spreadsheet uploads the service accepts
type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"16777216" validate:"min=1"`
	MaxRows     int   `yaml:"max_rows" envconfig:"MAX_ROWS" default:"100000" validate:"min=1"`
}

// SessionConfig controls the in-memory session store
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" envconfig:"TTL" default:"2h"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SWEEP_INTERVAL" default:"10m"`
	MaxSessions   int           `yaml:"max_sessions" envconfig:"MAX_SESSIONS" default:"256" validate:"min=1"`
}

// Load loads configuration from environment variables and config file.
// File values fill in what the environment leaves unset.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("REQCHECK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		if err := mergeFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// configFilePath returns the config file location, overridable via env
func configFilePath() string {
	if p := os.Getenv("REQCHECK_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// mergeFromFile overlays YAML values onto zero-valued fields
func mergeFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}

	if cfg.Security.AccessSecret == "" {
		cfg.Security.AccessSecret = fileCfg.Security.AccessSecret
	}
	if fileCfg.Server.Port != 0 && os.Getenv("REQCHECK_SERVER_PORT") == "" {
		cfg.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Logging.Level != "" && os.Getenv("REQCHECK_LOGGING_LEVEL") == "" {
		cfg.Logging.Level = fileCfg.Logging.Level
	}
	if len(fileCfg.Security.AllowedOrigins) > 0 && os.Getenv("REQCHECK_SECURITY_ALLOWED_ORIGINS") == "" {
		cfg.Security.AllowedOrigins = fileCfg.Security.AllowedOrigins
	}

	return nil
}

// validate checks configuration invariants via struct tags
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var msgs []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fieldErr.Namespace(), fieldErr.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive")
	}

	return nil
}
