package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bcdannyboy/optanalytics/models"
	"github.com/bcdannyboy/optanalytics/positions"
	"github.com/bcdannyboy/optanalytics/probability"
)

// EnvPrefix namespaces environment overrides, e.g. OPTANALYTICS_IV_TOLERANCE.
const EnvPrefix = "OPTANALYTICS"

type Config struct {
	RiskFreeRate float64          `mapstructure:"risk_free_rate" validate:"gte=-1,lte=1"`
	IV           IVConfig         `mapstructure:"iv"`
	Curve        GridConfig       `mapstructure:"curve"`
	Analysis     GridConfig       `mapstructure:"analysis"`
	Simulation   SimulationConfig `mapstructure:"simulation"`
	Log          LogConfig        `mapstructure:"log"`
}

type IVConfig struct {
	MaxIterations int     `mapstructure:"max_iterations" validate:"min=1"`
	Tolerance     float64 `mapstructure:"tolerance"      validate:"gt=0"`
}

type GridConfig struct {
	RangeFraction float64 `mapstructure:"range_fraction" validate:"gte=0,lt=1"`
	Steps         int     `mapstructure:"steps"          validate:"min=1"`
}

type SimulationConfig struct {
	Paths   int    `mapstructure:"paths"   validate:"min=1"`
	Workers int    `mapstructure:"workers" validate:"min=1,max=256"`
	Seed    uint64 `mapstructure:"seed"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Default returns the engine defaults.
func Default() Config {
	sim := probability.DefaultSimulationConfig()
	analysis := positions.DefaultAnalysisGrid()
	return Config{
		RiskFreeRate: models.DefaultRiskFreeRate,
		IV:           IVConfig{MaxIterations: models.DefaultIVMaxIterations, Tolerance: models.DefaultIVTolerance},
		Curve:        GridConfig{RangeFraction: positions.DefaultRangeFraction, Steps: positions.DefaultSteps},
		Analysis:     GridConfig{RangeFraction: analysis.RangeFraction, Steps: analysis.Steps},
		Simulation:   SimulationConfig{Paths: sim.Paths, Workers: sim.Workers, Seed: sim.Seed},
		Log:          LogConfig{Level: "info", Format: "text"},
	}
}

// Load layers configuration: defaults, then the optional YAML file, then
// OPTANALYTICS_* environment variables. envFile, when set, is loaded into
// the process environment first and does not override variables already set.
func Load(envFile, configFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override it
// during Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("risk_free_rate", d.RiskFreeRate)
	v.SetDefault("iv.max_iterations", d.IV.MaxIterations)
	v.SetDefault("iv.tolerance", d.IV.Tolerance)
	v.SetDefault("curve.range_fraction", d.Curve.RangeFraction)
	v.SetDefault("curve.steps", d.Curve.Steps)
	v.SetDefault("analysis.range_fraction", d.Analysis.RangeFraction)
	v.SetDefault("analysis.steps", d.Analysis.Steps)
	v.SetDefault("simulation.paths", d.Simulation.Paths)
	v.SetDefault("simulation.workers", d.Simulation.Workers)
	v.SetDefault("simulation.seed", d.Simulation.Seed)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c Config) IVSolver() models.IVConfig {
	return models.IVConfig{MaxIterations: c.IV.MaxIterations, Tolerance: c.IV.Tolerance}
}

func (g GridConfig) Grid() positions.GridConfig {
	return positions.GridConfig{RangeFraction: g.RangeFraction, Steps: g.Steps}
}

func (s SimulationConfig) Sampler() probability.SimulationConfig {
	return probability.SimulationConfig{Paths: s.Paths, Workers: s.Workers, Seed: s.Seed}
}

// NewLogger builds a logrus logger from the log section.
func (l LogConfig) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
