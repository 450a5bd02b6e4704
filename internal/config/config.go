package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the admin API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ScoringConfig holds the tunable constants of the scoring pipeline. The
// category weights and thresholds are shared by the scoring engine and every
// display surface so they cannot drift apart.
type ScoringConfig struct {
	// Component weights (must sum to 100).
	PMSWeight  float64 `yaml:"pms_weight" mapstructure:"pms_weight"`
	PCIIWeight float64 `yaml:"pcii_weight" mapstructure:"pcii_weight"`
	PIMWeight  float64 `yaml:"pim_weight" mapstructure:"pim_weight"`
	PEWeight   float64 `yaml:"pe_weight" mapstructure:"pe_weight"`
	GLCWeight  float64 `yaml:"glc_weight" mapstructure:"glc_weight"`

	// AwardThreshold marks a company as a top performer when its composite
	// total meets or exceeds it.
	AwardThreshold float64 `yaml:"award_threshold" mapstructure:"award_threshold"`

	// VarianceThreshold is the precision-parity eligibility cutoff on
	// |IVC - SAT|. Adjustable 0-20.
	VarianceThreshold float64 `yaml:"variance_threshold" mapstructure:"variance_threshold"`

	// LeaderboardTopN is the number of merged tie groups shown per category.
	// Adjustable 1-10.
	LeaderboardTopN int `yaml:"leaderboard_top_n" mapstructure:"leaderboard_top_n"`
}

// WeightSum returns the sum of all category weights.
func (c ScoringConfig) WeightSum() float64 {
	return c.PMSWeight + c.PCIIWeight + c.PIMWeight + c.PEWeight + c.GLCWeight
}

// Validate checks that a ScoringConfig is internally consistent.
func (c ScoringConfig) Validate() error {
	var errs []string

	weights := map[string]float64{
		"pms_weight":  c.PMSWeight,
		"pcii_weight": c.PCIIWeight,
		"pim_weight":  c.PIMWeight,
		"pe_weight":   c.PEWeight,
		"glc_weight":  c.GLCWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// Weights must sum to 100 (allow tolerance for floating-point).
	if math.Abs(c.WeightSum()-100) > 0.001 {
		errs = append(errs, fmt.Sprintf("category weights must sum to 100, got %.1f", c.WeightSum()))
	}

	if c.AwardThreshold < 0 || c.AwardThreshold > 100 {
		errs = append(errs, "award_threshold must be between 0 and 100")
	}
	if c.VarianceThreshold < 0 || c.VarianceThreshold > 20 {
		errs = append(errs, "variance_threshold must be between 0 and 20")
	}
	if c.LeaderboardTopN < 1 || c.LeaderboardTopN > 10 {
		errs = append(errs, "leaderboard_top_n must be between 1 and 10")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: scoring validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DefaultScoring returns the production scoring constants.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		PMSWeight:         15,
		PCIIWeight:        25,
		PIMWeight:         25,
		PEWeight:          10,
		GLCWeight:         25,
		AwardThreshold:    85,
		VarianceThreshold: 5,
		LeaderboardTopN:   3,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KMFI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "kmfi.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 25.0)
	v.SetDefault("server.rate_limit_burst", 50)
	v.SetDefault("scoring.pms_weight", 15.0)
	v.SetDefault("scoring.pcii_weight", 25.0)
	v.SetDefault("scoring.pim_weight", 25.0)
	v.SetDefault("scoring.pe_weight", 10.0)
	v.SetDefault("scoring.glc_weight", 25.0)
	v.SetDefault("scoring.award_threshold", 85.0)
	v.SetDefault("scoring.variance_threshold", 5.0)
	v.SetDefault("scoring.leaderboard_top_n", 3)

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
