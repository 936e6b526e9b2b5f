package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/termcore/internal/providers/terminal"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Terminal  TerminalConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// TerminalConfig holds the shell session configuration.
type TerminalConfig struct {
	Shell        string        `envconfig:"TERMINAL_SHELL" default:"/bin/sh"`
	ShellArgs    []string      `envconfig:"TERMINAL_SHELL_ARGS"`
	WorkingDir   string        `envconfig:"TERMINAL_WORKDIR"`
	Env          []string      `envconfig:"TERMINAL_ENV"`
	ReadMode     string        `envconfig:"TERMINAL_READ_MODE" default:"single"`
	ReadTimeout  time.Duration `envconfig:"TERMINAL_READ_TIMEOUT" default:"5s"`
	QuietPeriod  time.Duration `envconfig:"TERMINAL_QUIET_PERIOD" default:"150ms"`
	BufferSize   int           `envconfig:"TERMINAL_BUFFER_SIZE" default:"4096"`
	CloseTimeout time.Duration `envconfig:"TERMINAL_CLOSE_TIMEOUT" default:"2s"`
	MaxSessions  int           `envconfig:"TERMINAL_MAX_SESSIONS" default:"64"`
	BuiltinsFile string        `envconfig:"TERMINAL_BUILTINS_FILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Terminal: TerminalConfig{
			Shell:        terminal.DefaultShell,
			ReadMode:     string(terminal.ReadSingle),
			ReadTimeout:  terminal.DefaultReadTimeout,
			QuietPeriod:  terminal.DefaultQuietPeriod,
			BufferSize:   terminal.DefaultBufferSize,
			CloseTimeout: terminal.DefaultCloseTimeout,
			MaxSessions:  64,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate rejects values the terminal core cannot run with.
func (c *Config) Validate() error {
	if !terminal.ReadMode(c.Terminal.ReadMode).Valid() {
		return fmt.Errorf("invalid TERMINAL_READ_MODE %q: want single or quiesce", c.Terminal.ReadMode)
	}
	if c.Terminal.ReadTimeout < 0 {
		return fmt.Errorf("invalid TERMINAL_READ_TIMEOUT %s: must not be negative", c.Terminal.ReadTimeout)
	}
	if c.Terminal.BufferSize <= 0 {
		return fmt.Errorf("invalid TERMINAL_BUFFER_SIZE %d: must be positive", c.Terminal.BufferSize)
	}
	if c.Terminal.MaxSessions < 0 {
		return fmt.Errorf("invalid TERMINAL_MAX_SESSIONS %d: must not be negative", c.Terminal.MaxSessions)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// TerminalOptions converts the terminal section into session options,
// loading the builtin texts file when one is configured.
func (c *Config) TerminalOptions() (terminal.Options, error) {
	t := c.Terminal
	opts := terminal.Options{
		Shell:        t.Shell,
		Args:         t.ShellArgs,
		WorkingDir:   t.WorkingDir,
		Env:          t.Env,
		ReadMode:     terminal.ReadMode(t.ReadMode),
		ReadTimeout:  t.ReadTimeout,
		QuietPeriod:  t.QuietPeriod,
		BufferSize:   t.BufferSize,
		CloseTimeout: t.CloseTimeout,
	}

	if t.BuiltinsFile != "" {
		msgs, err := terminal.LoadMessages(t.BuiltinsFile)
		if err != nil {
			return terminal.Options{}, fmt.Errorf("failed to load builtins file: %w", err)
		}
		opts.Messages = &msgs
	}

	return opts, nil
}
