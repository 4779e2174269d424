// Package config provides configuration management for the AI chat service.
// It supports environment variable-based configuration with validation and
// default values for all service components including server, OpenAI upstream,
// chat policy, security, and logging settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// MinPortNumber is the minimum valid port number.
	MinPortNumber = 1
	// MaxPortNumber is the maximum valid port number.
	MaxPortNumber = 65535
	// MinMessageLength is the smallest allowed cap on message length.
	MinMessageLength = 1
)

// Config represents the complete configuration for the chat service,
// aggregating all component-specific configurations.
type Config struct {
	// Environment holds environment-specific settings.
	Environment EnvironmentConfig `envconfig:"ENVIRONMENT"`
	// Server contains HTTP server configuration including ports, timeouts, and TLS settings.
	Server ServerConfig `envconfig:"SERVER"`
	// OpenAI contains the upstream completion provider configuration.
	OpenAI OpenAIConfig `envconfig:"OPENAI"`
	// Chat contains conversation policy settings such as history bounds and expiry.
	Chat ChatConfig `envconfig:"CHAT"`
	// Security contains security-related settings like CORS and rate limiting.
	Security SecurityConfig `envconfig:"SECURITY"`
	// Logging contains logging configuration.
	Logging LoggingConfig `envconfig:"LOGGING"`
}

type Environment string

const (
	Local   Environment = "LOCAL"
	NonProd Environment = "NONPROD"
	Prod    Environment = "PROD"
)

// EnvironmentConfig holds environment-specific settings.
type EnvironmentConfig struct {
	// Environment indicates the current running environment (LOCAL, NONPROD, PROD).
	Environment Environment `envconfig:"ENV" default:"LOCAL"`
}

// ServerConfig holds HTTP server configuration including network settings,
// timeouts, and TLS certificate paths.
type ServerConfig struct {
	// Port is the HTTP server listening port.
	Port int `envconfig:"PORT"             default:"8080"`
	// Host is the network interface to bind to.
	Host string `envconfig:"HOST"             default:"0.0.0.0"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT"     default:"15s"`
	// WriteTimeout is the maximum duration before timing out writes.
	// It must leave room for the upstream completion call.
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT"    default:"45s"`
	// IdleTimeout is the maximum amount of time to wait for keep-alive connections.
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT"     default:"60s"`
	// ShutdownTimeout is the maximum time to wait for graceful server shutdown.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// StaticDir is the directory of frontend assets served at the root path.
	// Static serving is disabled when the directory does not exist.
	StaticDir string `envconfig:"STATIC_DIR"       default:"./web"`
	// TLSCert is the path to the TLS certificate file for HTTPS.
	TLSCert string `envconfig:"TLS_CERT"`
	// TLSKey is the path to the TLS private key file for HTTPS.
	TLSKey string `envconfig:"TLS_KEY"`
}

// OpenAIConfig contains the upstream chat-completions provider configuration.
type OpenAIConfig struct {
	// APIKey is the provider API key. The service starts without one but
	// reports itself unconfigured and fails chat requests upstream.
	APIKey string `envconfig:"API_KEY"`
	// BaseURL is the provider endpoint base URL.
	BaseURL string `envconfig:"BASE_URL"        default:"https://api.openai.com/v1"`
	// Model is the chat-completions model identifier.
	Model string `envconfig:"MODEL"           default:"gpt-3.5-turbo"`
	// MaxTokens is the completion token ceiling per request.
	MaxTokens int `envconfig:"MAX_TOKENS"      default:"500"`
	// Temperature is the sampling temperature for completions.
	Temperature float64 `envconfig:"TEMPERATURE"     default:"0.7"`
	// RequestTimeout is the upstream call time budget.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// ChatConfig contains conversation policy settings.
type ChatConfig struct {
	// MaxMessageLength is the maximum user message length in characters.
	MaxMessageLength int `envconfig:"MAX_MESSAGE_LENGTH" default:"1000"`
	// MaxHistoryTurns is the maximum number of retained turns per session.
	MaxHistoryTurns int `envconfig:"MAX_HISTORY_TURNS"  default:"20"`
	// SessionMaxIdle is the idle duration after which a session expires.
	SessionMaxIdle time.Duration `envconfig:"SESSION_MAX_IDLE"   default:"24h"`
	// SweepInterval is the period of the background expired-session sweep.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL"     default:"10m"`
	// ResponseLanguage is the language the assistant is instructed to answer in.
	ResponseLanguage string `envconfig:"RESPONSE_LANGUAGE"  default:"Urdu"`
	// SystemPrompt overrides the built-in system instruction when set.
	SystemPrompt string `envconfig:"SYSTEM_PROMPT"`
}

// SecurityConfig contains security-related settings including
// rate limiting and CORS configuration.
type SecurityConfig struct {
	// RateLimitRequests is the maximum requests per client within the window.
	RateLimitRequests int `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	// RateLimitWindow is the sliding time window for rate limiting.
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW"   default:"1m"`
	// AllowedOrigins are the CORS allowed origins.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"     default:"*"`
	// AllowedMethods are the CORS allowed HTTP methods.
	AllowedMethods []string `envconfig:"ALLOWED_METHODS"     default:"GET,POST,DELETE,OPTIONS"`
	// AllowedHeaders are the CORS allowed headers.
	AllowedHeaders []string `envconfig:"ALLOWED_HEADERS"     default:"*"`
	// TrustedProxies are the trusted proxy IP addresses exempt from rate limiting.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
	// MaxAge is the CORS preflight cache duration in seconds.
	MaxAge int `envconfig:"MAX_AGE"             default:"86400"`
}

// LoggingConfig contains logging configuration including
// log level, format, and output destination.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `envconfig:"LEVEL"  default:"info"`
	// Format is the log output format (json, text).
	Format string `envconfig:"FORMAT" default:"json"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `envconfig:"OUTPUT" default:"stdout"`
}

// Load reads configuration from environment variables, overlays optional
// YAML operational settings, and returns a validated Config instance.
// It returns an error if configuration is invalid.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// YAML files carry operational values that change between deployments
	// without touching the environment (prompt wording, CORS origins).
	if err := cfg.applyYAMLOverrides(); err != nil {
		return nil, fmt.Errorf("failed to apply YAML configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate performs validation of all configuration values,
// ensuring they meet operational requirements.
func (c *Config) Validate() error {
	if c.Server.Port < MinPortNumber || c.Server.Port > MaxPortNumber {
		return errors.New("server port must be between 1 and 65535")
	}

	if c.Chat.MaxMessageLength < MinMessageLength {
		return errors.New("max message length must be positive")
	}

	if c.Chat.MaxHistoryTurns < 2 || c.Chat.MaxHistoryTurns%2 != 0 {
		return errors.New("max history turns must be a positive even number")
	}

	if c.Chat.SessionMaxIdle <= 0 {
		return errors.New("session max idle must be positive")
	}

	if c.Chat.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	if c.Security.RateLimitRequests < 1 {
		return errors.New("rate limit requests must be at least 1")
	}

	if c.Security.RateLimitWindow <= 0 {
		return errors.New("rate limit window must be positive")
	}

	if c.OpenAI.MaxTokens < 1 {
		return errors.New("max tokens must be at least 1")
	}

	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}

	if c.OpenAI.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}

	return nil
}

// ServerAddr returns the formatted server address string in host:port format.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsTLSEnabled returns true if both TLS certificate and key paths are configured.
func (c *Config) IsTLSEnabled() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}

// IsProviderConfigured returns true if an upstream API key is configured.
func (c *Config) IsProviderConfigured() bool {
	return c.OpenAI.APIKey != ""
}

// IsProduction returns true when running in the PROD environment.
// Verbose diagnostics are only exposed outside production.
func (c *Config) IsProduction() bool {
	return c.Environment.Environment == Prod
}
