package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	KnowledgeBase KnowledgeBaseConfig `mapstructure:"kb"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Log           LogConfig           `mapstructure:"log"`
	Export        ExportConfig        `mapstructure:"export"`
}

// KnowledgeBaseConfig holds helpdesk portal API configuration
type KnowledgeBaseConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	AccountID            int      `mapstructure:"account_id"`
	Portal               string   `mapstructure:"portal"`
	AccessToken          string   `mapstructure:"api_access_token"`
	AuthorID             int      `mapstructure:"author_id"`
	Locale               string   `mapstructure:"locale"`
	Timeout              int      `mapstructure:"timeout"`
	MaxPages             int      `mapstructure:"max_pages"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`

	ReuseExistingCategories bool `mapstructure:"reuse_existing_categories"`
}

// DatabaseConfig holds the article ledger connection. The ledger is skipped when disabled.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details for the article queue
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	Consumer      string `mapstructure:"consumer"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ExportConfig holds settings for writing split articles to disk
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from the environment, an optional .env file and an
// optional config.yaml in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	var missing []string

	kb := c.KnowledgeBase
	if kb.BaseURL == "" {
		missing = append(missing, "KB_BASE_URL")
	}
	if kb.AccountID == 0 {
		missing = append(missing, "KB_ACCOUNT_ID")
	}
	if kb.Portal == "" {
		missing = append(missing, "KB_PORTAL")
	}
	if kb.AccessToken == "" {
		missing = append(missing, "KB_API_ACCESS_TOKEN")
	}
	if kb.AuthorID == 0 {
		missing = append(missing, "KB_AUTHOR_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Required keys still need a default so AutomaticEnv picks them up on Unmarshal.
	v.SetDefault("kb.base_url", "")
	v.SetDefault("kb.account_id", 0)
	v.SetDefault("kb.portal", "")
	v.SetDefault("kb.api_access_token", "")
	v.SetDefault("kb.author_id", 0)
	v.SetDefault("kb.locale", "")
	v.SetDefault("kb.timeout", 30)
	v.SetDefault("kb.max_pages", 1000)
	v.SetDefault("kb.max_requests_per_second", 5)
	v.SetDefault("kb.proxies", []string{})
	v.SetDefault("kb.reuse_existing_categories", true)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "kbsync")
	v.SetDefault("database.user", "kbsync_user")
	v.SetDefault("database.password", "kbsync_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "kbsync_consumer")
	v.SetDefault("redis.consumer", "kbsync-drain")
	v.SetDefault("redis.min_idle_time", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("export.dir", "articles")
}
