package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Search configuration
	Search SearchConfig `mapstructure:"search"`

	// Vision configuration
	Vision VisionConfig `mapstructure:"vision"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// SearchConfig holds search engine tuning
type SearchConfig struct {
	PerStrategyLimit int           `mapstructure:"per_strategy_limit"`
	Budget           int           `mapstructure:"budget"`
	DistinctVideos   int           `mapstructure:"distinct_videos"`
	CacheSize        int           `mapstructure:"cache_size"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	Platform         string        `mapstructure:"platform"`
	BoostsFile       string        `mapstructure:"boosts_file"`
	HintsFile        string        `mapstructure:"hints_file"`
}

// VisionConfig holds thumbnail describer configuration
type VisionConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("database.path", "captions.db")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("search.per_strategy_limit", 12)
	viper.SetDefault("search.budget", 15)
	viper.SetDefault("search.distinct_videos", 10)
	viper.SetDefault("search.cache_size", 1000)
	viper.SetDefault("search.cache_ttl", time.Hour)
	viper.SetDefault("search.platform", "youtube.com")
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Vision.APIKey = apiKey
	}
	if dbPath := os.Getenv("CAPSEARCH_DB_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
}
