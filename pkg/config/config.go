package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Model provider configuration
	Provider ProviderConfig `mapstructure:"provider"`

	// BackendURL switches clients into proxied mode when set
	BackendURL string `mapstructure:"backend_url"`

	// Database configuration for the generation audit log
	Database DatabaseConfig `mapstructure:"database"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// Workspace session configuration
	Session SessionConfig `mapstructure:"session"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	ReadTimeout   int    `mapstructure:"read_timeout"`
	WriteTimeout  int    `mapstructure:"write_timeout"`
	IdleTimeout   int    `mapstructure:"idle_timeout"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
	MaxBodyBytes  int64  `mapstructure:"max_body_bytes"`
}

// ProviderConfig holds the model provider settings
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	RequestsPerMin  int  `mapstructure:"requests_per_min"`
	CleanupInterval int  `mapstructure:"cleanup_interval"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	MetricsPath     string  `mapstructure:"metrics_path"`
	HealthPath      string  `mapstructure:"health_path"`
	TracingEndpoint string  `mapstructure:"tracing_endpoint"`
	TracingInsecure bool    `mapstructure:"tracing_insecure"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	ServiceName     string  `mapstructure:"service_name"`
	ServiceVersion  string  `mapstructure:"service_version"`
	Environment     string  `mapstructure:"environment"`
}

// SessionConfig controls in-memory workspace sessions
type SessionConfig struct {
	IdleTTL         int `mapstructure:"idle_ttl"`
	CleanupInterval int `mapstructure:"cleanup_interval"`
	MaxWorkspaces   int `mapstructure:"max_workspaces"`
}

// ErrNoGenerationMode is returned by RequireGeneration when neither a
// provider credential nor a backend URL is configured
var ErrNoGenerationMode = errors.New("either API_KEY/GEMINI_API_KEY or BACKEND_URL must be set")

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom loads configuration using the supplied viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideWithEnv(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 150)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Provider defaults
	v.SetDefault("provider.model", "gemini-2.5-flash")
	v.SetDefault("provider.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("provider.timeout", 120)

	// Database defaults
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 300)

	// Rate limiting defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_min", 30)
	v.SetDefault("rate_limit.cleanup_interval", 60)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.health_path", "/health")
	v.SetDefault("monitoring.sampling_rate", 1.0)
	v.SetDefault("monitoring.tracing_insecure", true)
	v.SetDefault("monitoring.service_name", "clinical-documentation-assistant")
	v.SetDefault("monitoring.service_version", "1.0.0")
	v.SetDefault("monitoring.environment", "development")

	// Session defaults
	v.SetDefault("session.idle_ttl", 3600)
	v.SetDefault("session.cleanup_interval", 300)
	v.SetDefault("session.max_workspaces", 1000)

	// Logging defaults
	v.SetDefault("log_level", "info")
}

// overrideWithEnv applies the environment names used by the deployment
func overrideWithEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// API_KEY takes precedence over GEMINI_API_KEY
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Provider.APIKey = key
	}
	if key := os.Getenv("API_KEY"); key != "" {
		config.Provider.APIKey = key
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Provider.Model = model
	}

	if baseURL := os.Getenv("GEMINI_BASE_URL"); baseURL != "" {
		config.Provider.BaseURL = baseURL
	}

	if timeout := os.Getenv("PROVIDER_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Provider.Timeout = t
		}
	}

	if backendURL := os.Getenv("BACKEND_URL"); backendURL != "" {
		config.BackendURL = backendURL
	}

	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		config.Server.AllowedOrigin = origin
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}

	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.RateLimit.Enabled = b
		}
	}

	if rpm := os.Getenv("RATE_LIMIT_REQUESTS_PER_MIN"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil {
			config.RateLimit.RequestsPerMin = n
		}
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		config.Monitoring.TracingEndpoint = endpoint
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Provider.Model == "" {
		return fmt.Errorf("provider model is required")
	}

	if config.Provider.Timeout <= 0 {
		return fmt.Errorf("invalid provider timeout: %d", config.Provider.Timeout)
	}

	if config.RateLimit.Enabled && config.RateLimit.RequestsPerMin <= 0 {
		return fmt.Errorf("invalid rate limit: %d", config.RateLimit.RequestsPerMin)
	}

	if config.Monitoring.SamplingRate < 0 || config.Monitoring.SamplingRate > 1 {
		return fmt.Errorf("invalid sampling rate: %v", config.Monitoring.SamplingRate)
	}

	return nil
}

// HasCredential reports whether the server can call the provider directly
func (c *Config) HasCredential() bool {
	return c.Provider.APIKey != ""
}

// Proxied reports whether clients should route generation through the backend
func (c *Config) Proxied() bool {
	return c.BackendURL != ""
}

// RequireGeneration fails when no generation mode can be selected
func (c *Config) RequireGeneration() error {
	if !c.Proxied() && !c.HasCredential() {
		return ErrNoGenerationMode
	}
	return nil
}

// ProviderTimeout returns the provider request timeout
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.Timeout) * time.Second
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
