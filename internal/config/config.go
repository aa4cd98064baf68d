package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Locate LocateConfig `yaml:"locate" mapstructure:"locate"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures the rate-limited HTTP fetcher.
type FetchConfig struct {
	TimeoutSecs        int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts        int `yaml:"max_attempts" mapstructure:"max_attempts"`
	MaxRedirects       int `yaml:"max_redirects" mapstructure:"max_redirects"`
	DomainDelaySecs    int `yaml:"domain_delay_secs" mapstructure:"domain_delay_secs"`
	CacheTTLHours      int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	MaxBodyBytes       int `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InitialBackoffSecs int `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
}

// Timeout returns the per-request timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// DomainDelay returns the minimum spacing between requests to one domain.
func (f FetchConfig) DomainDelay() time.Duration {
	return time.Duration(f.DomainDelaySecs) * time.Second
}

// CacheTTL returns the response-cache lifetime.
func (f FetchConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLHours) * time.Hour
}

// LocateConfig configures candidate-page location.
type LocateConfig struct {
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages"`
}

// BatchConfig configures the enrichment run.
type BatchConfig struct {
	Size      int `yaml:"size" mapstructure:"size"`
	StaggerMs int `yaml:"stagger_ms" mapstructure:"stagger_ms"`
	Limit     int `yaml:"limit" mapstructure:"limit"`
	PauseSecs int `yaml:"pause_secs" mapstructure:"pause_secs"`
}

// Stagger returns the delay between opportunity launches within a batch.
func (b BatchConfig) Stagger() time.Duration {
	return time.Duration(b.StaggerMs) * time.Millisecond
}

// Pause returns the rest between consecutive batches.
func (b BatchConfig) Pause() time.Duration {
	return time.Duration(b.PauseSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "contact-enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_attempts", 4)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.domain_delay_secs", 5)
	v.SetDefault("fetch.cache_ttl_hours", 24)
	v.SetDefault("fetch.max_body_bytes", 512*1024)
	v.SetDefault("fetch.initial_backoff_secs", 1)
	v.SetDefault("locate.max_pages", 16)
	v.SetDefault("batch.size", 10)
	v.SetDefault("batch.stagger_ms", 250)
	v.SetDefault("batch.limit", 100)
	v.SetDefault("batch.pause_secs", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
