package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tushare-mcp/internal/sector"
	"tushare-mcp/internal/signals"
)

// Config represents the application configuration
type Config struct {
	Tushare    TushareConfig      `yaml:"tushare"`
	Server     ServerConfig       `yaml:"server"`
	Log        LogConfig          `yaml:"log"`
	Scan       ScanConfig         `yaml:"scan"`
	Thresholds signals.Thresholds `yaml:"thresholds"`
	Sector     sector.Thresholds  `yaml:"sector"`
}

// TushareConfig holds the data provider settings
type TushareConfig struct {
	Token      string         `yaml:"token"`
	BaseURL    string         `yaml:"base_url"`
	RateLimit  int            `yaml:"rate_limit"`  // requests per minute, per API
	RateLimits map[string]int `yaml:"rate_limits"` // per-API overrides, e.g. stk_factor_pro: 30
	Timeout    time.Duration  `yaml:"timeout"`
	MaxRetries int            `yaml:"max_retries"`
	CacheTTL   time.Duration  `yaml:"cache_ttl"` // reference interfaces; 0 disables
}

// ServerConfig holds MCP transport settings
type ServerConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Addr        string   `yaml:"addr"`
	JWTSecret   string   `yaml:"jwt_secret"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level         string `yaml:"level"`  // debug, info, warn, error
	Format        string `yaml:"format"` // json, pretty
	FileEnabled   bool   `yaml:"file_enabled"`
	FilePath      string `yaml:"file_path"`
	RotationSize  int    `yaml:"rotation_size"` // MB
	RetentionDays int    `yaml:"retention_days"`
}

// ScanConfig holds sector scan settings
type ScanConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Tushare: TushareConfig{
			Token:      os.Getenv("TUSHARE_TOKEN"),
			BaseURL:    "http://api.tushare.pro",
			RateLimit:  200,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Server: ServerConfig{
			Name:    "Tushare MCP Server",
			Version: "0.1.0",
			Addr:    ":8080",
		},
		Log: LogConfig{
			Level:         "info",
			Format:        "pretty",
			FilePath:      "logs",
			RotationSize:  50,
			RetentionDays: 14,
		},
		Scan: ScanConfig{
			Workers: 4,
			Timeout: 10 * time.Minute,
		},
		Thresholds: signals.DefaultThresholds(),
		Sector:     sector.DefaultThresholds(),
	}
}

// Load loads configuration from a YAML file. A .env file in the working
// directory is read first so TUSHARE_TOKEN can live there.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if token := os.Getenv("TUSHARE_TOKEN"); token != "" {
		cfg.Tushare.Token = token
	}
	if v := os.Getenv("TUSHARE_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing TUSHARE_RATE_LIMIT: %w", err)
		}
		cfg.Tushare.RateLimit = n
	}
	if secret := os.Getenv("MCP_JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// Validate checks if the configuration is valid. The token is checked by
// the client, since some commands never call the provider.
func (c *Config) Validate() error {
	if c.Tushare.RateLimit < 1 {
		return fmt.Errorf("rate_limit must be at least 1")
	}
	for api, n := range c.Tushare.RateLimits {
		if n < 1 {
			return fmt.Errorf("rate_limits.%s must be at least 1", api)
		}
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Thresholds.Valuation.MinHistory < 1 {
		return fmt.Errorf("thresholds.valuation.min_history must be at least 1")
	}
	return nil
}
