// Package config handles loading and validating the jarvis configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the jarvis daemon.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Transports   TransportsConfig   `mapstructure:"transports"`
	Session      SessionConfig      `mapstructure:"session"`
	Confirmation ConfirmationConfig `mapstructure:"confirmation"`
	Directories  DirectoriesConfig  `mapstructure:"directories"`
	Automation   AutomationConfig   `mapstructure:"automation"`
	Interpreter  InterpreterConfig  `mapstructure:"interpreter"`
	History      HistoryConfig      `mapstructure:"history"`
	Schedules    []ScheduleConfig   `mapstructure:"schedules"`
	Client       ClientConfig       `mapstructure:"client"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // empty allows any origin
}

// SessionConfig tunes the persistent client connection.
type SessionConfig struct {
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MissedHeartbeats  int           `mapstructure:"missed_heartbeats"` // silent windows before a session is dropped
	StatusInterval    time.Duration `mapstructure:"status_interval"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes"`
}

// ConfirmationConfig configures the gate for dangerous commands.
type ConfirmationConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	Retention       time.Duration `mapstructure:"retention"` // how long resolved requests stay queryable
	EnableDangerous bool          `mapstructure:"enable_dangerous"`
	// DangerousCommands overrides the built-in danger set when non-empty.
	DangerousCommands []string `mapstructure:"dangerous_commands"`
}

// DirectoriesConfig lists the contacts and applications the resolver knows.
// Inline entries are merged under the YAML files. Viper lower-cases map
// keys, so inline names are stored lower-case.
type DirectoriesConfig struct {
	ContactsFile string            `mapstructure:"contacts_file"`
	AppsFile     string            `mapstructure:"apps_file"`
	Contacts     map[string]string `mapstructure:"contacts"`
	Apps         map[string]string `mapstructure:"apps"`
}

// AutomationConfig selects the execution host.
type AutomationConfig struct {
	Mode    string        `mapstructure:"mode"` // "simulated" or "http"
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker around host calls.
type BreakerConfig struct {
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

// InterpreterConfig selects the conversational fallback backend.
type InterpreterConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Backend string       `mapstructure:"backend"` // "openai" or "local"
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Local   LocalConfig  `mapstructure:"local"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	CompletionModel string `mapstructure:"completion_model"`
}

// LocalConfig holds self-hosted LLM settings.
type LocalConfig struct {
	LLMEndpoint string `mapstructure:"llm_endpoint"`
	LLMModel    string `mapstructure:"llm_model"` // Ollama model name (e.g., "llama3.2:1b")
}

// HistoryConfig configures the command history store.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Limit   int    `mapstructure:"limit"` // default page size for /api/history

	// Retention is how long rows are kept; the scheduler prunes older ones.
	// Zero keeps everything.
	Retention time.Duration `mapstructure:"retention"`
}

// ScheduleConfig runs a command on a cron schedule.
type ScheduleConfig struct {
	Name    string `mapstructure:"name"`
	Spec    string `mapstructure:"spec"` // robfig/cron spec, e.g. "0 9 * * *" or "@every 1h"
	Command string `mapstructure:"command"`
}

// ClientConfig configures `jarvis connect`.
type ClientConfig struct {
	URL                  string        `mapstructure:"url"`
	HeartbeatInterval    time.Duration `mapstructure:"heartbeat_interval"`
	MissedHeartbeats     int           `mapstructure:"missed_heartbeats"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
	BaseBackoff          time.Duration `mapstructure:"base_backoff"`
	MaxBackoff           time.Duration `mapstructure:"max_backoff"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./jarvis.yaml, ./configs/jarvis.yaml, /etc/jarvis/jarvis.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.allowed_origins", []string{})
	v.SetDefault("session.heartbeat_interval", "30s")
	v.SetDefault("session.missed_heartbeats", 3)
	v.SetDefault("session.status_interval", "5s")
	v.SetDefault("session.send_buffer", 64)
	v.SetDefault("session.max_message_bytes", 64*1024)
	v.SetDefault("confirmation.timeout", "30s")
	v.SetDefault("confirmation.retention", "5m")
	v.SetDefault("confirmation.enable_dangerous", true)
	v.SetDefault("confirmation.dangerous_commands", []string{})
	v.SetDefault("directories.contacts_file", "")
	v.SetDefault("directories.apps_file", "")
	v.SetDefault("automation.mode", "simulated")
	v.SetDefault("automation.url", "http://localhost:8765")
	v.SetDefault("automation.token", "")
	v.SetDefault("automation.timeout", "15s")
	v.SetDefault("automation.breaker.max_requests", 1)
	v.SetDefault("automation.breaker.interval", "1m")
	v.SetDefault("automation.breaker.timeout", "30s")
	v.SetDefault("automation.breaker.consecutive_failures", 5)
	v.SetDefault("interpreter.enabled", false)
	v.SetDefault("interpreter.backend", "openai")
	v.SetDefault("interpreter.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("interpreter.openai.completion_model", "gpt-4o-mini")
	v.SetDefault("interpreter.local.llm_endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("interpreter.local.llm_model", "llama3")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "jarvis.db")
	v.SetDefault("history.limit", 50)
	v.SetDefault("history.retention", "720h")
	v.SetDefault("client.url", "ws://localhost:8080/ws")
	v.SetDefault("client.heartbeat_interval", "30s")
	v.SetDefault("client.missed_heartbeats", 3)
	v.SetDefault("client.max_reconnect_attempts", 5)
	v.SetDefault("client.base_backoff", "1s")
	v.SetDefault("client.max_backoff", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("jarvis")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/jarvis")
	}

	// Environment variables: JARVIS_SERVER_HEALTH_PORT, JARVIS_CONFIRMATION_TIMEOUT, etc.
	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Interpreter.OpenAI.APIKey = resolveEnvRef(cfg.Interpreter.OpenAI.APIKey)
	cfg.Automation.Token = resolveEnvRef(cfg.Automation.Token)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Automation.Mode {
	case "simulated":
	case "http":
		if c.Automation.URL == "" {
			return fmt.Errorf("automation.url is required in http mode")
		}
	default:
		return fmt.Errorf("unknown automation.mode %q", c.Automation.Mode)
	}
	if c.Session.HeartbeatInterval <= 0 {
		return fmt.Errorf("session.heartbeat_interval must be positive")
	}
	if c.Session.MissedHeartbeats < 1 {
		return fmt.Errorf("session.missed_heartbeats must be at least 1")
	}
	if c.Session.StatusInterval <= 0 {
		return fmt.Errorf("session.status_interval must be positive")
	}
	if c.Confirmation.Timeout <= 0 {
		return fmt.Errorf("confirmation.timeout must be positive")
	}
	for _, s := range c.Schedules {
		if s.Spec == "" || s.Command == "" {
			return fmt.Errorf("schedule %q needs both spec and command", s.Name)
		}
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
