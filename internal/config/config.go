package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Cache     CacheConfig     `yaml:"cache" envconfig:"CACHE"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" split_words:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true"`
	EnableCORS     bool            `yaml:"enable_cors" split_words:"true"`
	AdminAPIKey    string          `yaml:"admin_api_key" split_words:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true"`
	RPS     float64 `yaml:"rps" split_words:"true"`
	Burst   int     `yaml:"burst" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true"`
	Output   string `yaml:"output" split_words:"true"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// DataConfig selects where the combine dataset comes from
type DataConfig struct {
	Source string `yaml:"source" split_words:"true"`
	Path   string `yaml:"path" split_words:"true"`
	Sheet  string `yaml:"sheet" split_words:"true"`
}

// DatabaseConfig contains PostgreSQL configuration
type DatabaseConfig struct {
	URL      string `yaml:"url" split_words:"true"`
	LogLevel string `yaml:"log_level" split_words:"true"`
}

// CacheConfig contains the rendered-view cache configuration
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" split_words:"true"`
	Addr     string        `yaml:"addr" split_words:"true"`
	Password string        `yaml:"password" split_words:"true"`
	DB       int           `yaml:"db" split_words:"true"`
	TTL      time.Duration `yaml:"ttl" split_words:"true"`
	Prefix   string        `yaml:"prefix" split_words:"true"`
}

// DashboardConfig holds the dashboard policies
type DashboardConfig struct {
	TopPicks               int  `yaml:"top_picks" split_words:"true"`
	SkipSentinelPercentile bool `yaml:"skip_sentinel_percentile" split_words:"true"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" split_words:"true"`
	Environment   string  `yaml:"environment" split_words:"true"`
	EnableTracing bool    `yaml:"enable_tracing" split_words:"true"`
	TraceExporter string  `yaml:"trace_exporter" split_words:"true"`
	SampleRatio   float64 `yaml:"sample_ratio" split_words:"true"`
	EnableMetrics bool    `yaml:"enable_metrics" split_words:"true"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" split_words:"true"`
	WriteBufferSize int           `yaml:"write_buffer_size" split_words:"true"`
	PingPeriod      time.Duration `yaml:"ping_period" split_words:"true"`
	PongWait        time.Duration `yaml:"pong_wait" split_words:"true"`
	MaxMessageBytes int64         `yaml:"max_message_bytes" split_words:"true"`
}

// Load builds the configuration from defaults, the configuration file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit configuration file. An empty path skips
// the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// fields without an environment variable keep their current value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate checks the configuration and normalizes enumerated values
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	c.Data.Source = strings.ToLower(c.Data.Source)
	switch c.Data.Source {
	case SourceFile:
		if c.Data.Path == "" {
			return fmt.Errorf("data path is required for the file source")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database url is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		return fmt.Errorf("cache addr is required when the cache is enabled")
	}

	if c.Dashboard.TopPicks <= 0 {
		return fmt.Errorf("dashboard top_picks must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "stdout", "":
		c.Logging.Output = "console"
	case "file", "both":
		if c.Logging.FilePath == "" {
			c.Logging.FilePath = "logs/combine.log"
		}
	default:
		return fmt.Errorf("unknown logging output %q", c.Logging.Output)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1]")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/combine.log",
		},
		Data: DataConfig{
			Source: SourceFile,
			Path:   DefaultDataFile,
		},
		Database: DatabaseConfig{
			LogLevel: "silent",
		},
		Cache: CacheConfig{
			Addr:   "localhost:6379",
			TTL:    DefaultCacheTTL,
			Prefix: DefaultCacheKeyspace,
		},
		Dashboard: DashboardConfig{
			TopPicks: 5,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "combine-pulse",
			Environment:   "development",
			TraceExporter: "none",
			SampleRatio:   1.0,
			EnableMetrics: true,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageBytes: 4096,
		},
	}
}
