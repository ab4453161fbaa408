// Package config loads application configuration from a YAML file,
// environment variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	Server   Server   `mapstructure:"server"`
	AI       AI       `mapstructure:"ai"`
	News     News     `mapstructure:"news"`
	Insights Insights `mapstructure:"insights"`
	Database Database `mapstructure:"database"`
	Auth     Auth     `mapstructure:"auth"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// AI holds the Groq gateway configuration. Groq exposes an OpenAI-compatible
// API, so only a key, base URL and model are needed.
type AI struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     string  `mapstructure:"timeout"`
}

// News holds news aggregation configuration.
type News struct {
	FeedURL       string `mapstructure:"feed_url"`
	HNStoryLimit  int    `mapstructure:"hn_story_limit"`
	RedditListing string `mapstructure:"reddit_listing"`
	UserAgent     string `mapstructure:"user_agent"`
	FetchTimeout  string `mapstructure:"fetch_timeout"`
	CacheTTL      string `mapstructure:"cache_ttl"`
	MaxItems      int    `mapstructure:"max_items"`
}

// Insights holds insights engine configuration.
type Insights struct {
	CacheTTL      string `mapstructure:"cache_ttl"`
	SweepInterval string `mapstructure:"sweep_interval"`
}

// Database holds Postgres configuration. An empty connection string means
// the in-memory user store is used instead.
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// Auth holds session configuration.
type Auth struct {
	SessionTTL string `mapstructure:"session_ttl"`
}

var globalConfig *Config

// Load loads the configuration, merging file values over defaults and
// environment variables over both.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if present; useful for the Groq API key in development.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".prepwise")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	viper.SetDefault("ai.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("ai.model", "llama-3.3-70b-versatile")
	viper.SetDefault("ai.max_tokens", 2048)
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.timeout", "30s")

	viper.SetDefault("news.feed_url", "https://techcrunch.com/feed/")
	viper.SetDefault("news.hn_story_limit", 20)
	viper.SetDefault("news.reddit_listing", "https://www.reddit.com/r/cscareerquestions+programming+ExperiencedDevs+csMajors/hot.json?limit=25")
	viper.SetDefault("news.user_agent", "prepwise-news-aggregator/1.0")
	viper.SetDefault("news.fetch_timeout", "10s")
	viper.SetDefault("news.cache_ttl", "5m")
	viper.SetDefault("news.max_items", 50)

	viper.SetDefault("insights.cache_ttl", "5m")
	viper.SetDefault("insights.sweep_interval", "10m")

	viper.SetDefault("auth.session_ttl", "168h")
}

// bindEnvironmentVariables maps well-known env vars onto viper keys.
func bindEnvironmentVariables() {
	bindEnvKeys("ai.api_key", []string{
		"GROQ_API_KEY",
		"PREPWISE_AI_API_KEY",
	})
	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
	})
	bindEnvKeys("app.debug", []string{
		"PREPWISE_DEBUG",
	})
}

// bindEnvKeys binds the first non-empty environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig checks duration strings. A missing API key is deliberately
// not an error: the gateway client degrades to fallback responses instead of
// preventing startup.
func validateConfig(config *Config) error {
	durations := map[string]string{
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
		"ai.timeout":              config.AI.Timeout,
		"news.fetch_timeout":      config.News.FetchTimeout,
		"news.cache_ttl":          config.News.CacheTTL,
		"insights.cache_ttl":      config.Insights.CacheTTL,
		"insights.sweep_interval": config.Insights.SweepInterval,
		"auth.session_ttl":        config.Auth.SessionTTL,
	}

	var errs []string
	for key, duration := range durations {
		if duration == "" {
			continue
		}
		if _, err := time.ParseDuration(duration); err != nil {
			errs = append(errs, fmt.Sprintf("invalid duration for %s: %s", key, duration))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Duration parses a duration string, falling back to def on empty or
// malformed values. Validation has already flagged malformed config, so the
// fallback only really covers programmatic construction in tests.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// Reset clears the global configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viper.Reset()
}
