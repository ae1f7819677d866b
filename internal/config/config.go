package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harborlight/scout-cli/internal/optimizer"
	"github.com/harborlight/scout-cli/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Registry   RegistryConfig   `yaml:"registry" mapstructure:"registry"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EngineConfig configures learning thresholds and caps.
type EngineConfig struct {
	HistoryLimit          int     `yaml:"history_limit" mapstructure:"history_limit"`
	StrategyConfidenceMin float64 `yaml:"strategy_confidence_min" mapstructure:"strategy_confidence_min"`
	LocationConfidenceMin float64 `yaml:"location_confidence_min" mapstructure:"location_confidence_min"`
	SiteSimilarityMin     float64 `yaml:"site_similarity_min" mapstructure:"site_similarity_min"`
	FailureRateWarning    float64 `yaml:"failure_rate_warning" mapstructure:"failure_rate_warning"`
	CorrectionWarning     int     `yaml:"correction_warning" mapstructure:"correction_warning"`
	MaxLocations          int     `yaml:"max_locations" mapstructure:"max_locations"`
	MaxPatterns           int     `yaml:"max_patterns" mapstructure:"max_patterns"`
	SaveRetryAttempts     int     `yaml:"save_retry_attempts" mapstructure:"save_retry_attempts"`
	SaveRetryBackoffMs    int     `yaml:"save_retry_backoff_ms" mapstructure:"save_retry_backoff_ms"`
	SaveRetryMaxMs        int     `yaml:"save_retry_max_ms" mapstructure:"save_retry_max_ms"`
}

// Optimizer maps the flat config section onto the engine's config,
// starting from engine defaults so zeroed fields keep their meaning.
func (c EngineConfig) Optimizer() optimizer.Config {
	cfg := optimizer.DefaultConfig()
	if c.HistoryLimit > 0 {
		cfg.HistoryLimit = c.HistoryLimit
	}
	if c.StrategyConfidenceMin > 0 {
		cfg.StrategyConfidenceMin = c.StrategyConfidenceMin
	}
	if c.LocationConfidenceMin > 0 {
		cfg.LocationConfidenceMin = c.LocationConfidenceMin
	}
	if c.SiteSimilarityMin > 0 {
		cfg.SiteSimilarityMin = c.SiteSimilarityMin
	}
	if c.FailureRateWarning > 0 {
		cfg.FailureRateWarning = c.FailureRateWarning
	}
	if c.CorrectionWarning > 0 {
		cfg.CorrectionWarning = c.CorrectionWarning
	}
	if c.MaxLocations > 0 {
		cfg.MaxLocations = c.MaxLocations
	}
	if c.MaxPatterns > 0 {
		cfg.MaxPatterns = c.MaxPatterns
	}
	if c.SaveRetryAttempts > 0 {
		cfg.SaveRetry = resilience.FromRetryConfig(c.SaveRetryAttempts, c.SaveRetryBackoffMs, c.SaveRetryMaxMs)
	}
	return cfg
}

// RegistryConfig points at the field registry file.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MonitoringConfig configures metric collection and alert thresholds.
type MonitoringConfig struct {
	CheckIntervalSecs  int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackMins       int     `yaml:"lookback_mins" mapstructure:"lookback_mins"`
	MinConfidence      float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxFailureRate     float64 `yaml:"max_failure_rate" mapstructure:"max_failure_rate"`
	MaxCorrectionShare float64 `yaml:"max_correction_share" mapstructure:"max_correction_share"`
	WebhookURL         string  `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields a run mode depends on. CLI commands use
// "cli"; the API server uses "serve", which additionally checks the
// listener settings.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "memory":
	case "file", "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for driver "+c.Store.Driver)
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for driver postgres")
		}
	default:
		problems = append(problems, "store.driver must be one of memory, file, sqlite, postgres")
	}

	ratios := []struct {
		name  string
		value float64
	}{
		{"engine.strategy_confidence_min", c.Engine.StrategyConfidenceMin},
		{"engine.location_confidence_min", c.Engine.LocationConfidenceMin},
		{"engine.site_similarity_min", c.Engine.SiteSimilarityMin},
		{"engine.failure_rate_warning", c.Engine.FailureRateWarning},
	}
	for _, r := range ratios {
		if r.value < 0 || r.value > 1 {
			problems = append(problems, r.name+" must be between 0 and 1")
		}
	}
	if c.Engine.HistoryLimit < 0 {
		problems = append(problems, "engine.history_limit must be >= 0")
	}

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Server.RateLimitRPS <= 0 {
			problems = append(problems, "server.rate_limit_rps must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "scout.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 50)
	v.SetDefault("server.rate_limit_burst", 100)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("registry.path", "fields.yaml")
	v.SetDefault("monitoring.lookback_mins", 60)
	v.SetDefault("monitoring.min_confidence", 0.5)
	v.SetDefault("monitoring.max_failure_rate", 0.5)
	v.SetDefault("monitoring.max_correction_share", 0.25)

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
