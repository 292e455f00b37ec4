// Package config resolves the settings of a pmeval run from flags,
// PMEVAL_* environment variables, an optional .env file and an optional
// config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "PMEVAL"

const (
	KeyInputDir           = "input_dir"
	KeyOutputDir          = "output_dir"
	KeySuffix             = "suffix"
	KeyImageFormat        = "image_format"
	KeyMetricTimeout      = "metric_timeout"
	KeyWorkers            = "workers"
	KeyFailFast           = "fail_fast"
	KeyFilter             = "filter"
	KeyAlignmentMaxStates = "alignment_max_states"
	KeyILPMaxNodes        = "ilp_max_nodes"
	KeyDatabase           = "database"
	KeyStatsFile          = "stats_file"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	InputDir           string        `mapstructure:"input_dir"`
	OutputDir          string        `mapstructure:"output_dir"`
	Suffix             string        `mapstructure:"suffix"`
	ImageFormat        string        `mapstructure:"image_format"`
	MetricTimeout      time.Duration `mapstructure:"metric_timeout"`
	Workers            int           `mapstructure:"workers"`
	FailFast           bool          `mapstructure:"fail_fast"`
	Filter             string        `mapstructure:"filter"`
	AlignmentMaxStates int           `mapstructure:"alignment_max_states"`
	ILPMaxNodes        int           `mapstructure:"ilp_max_nodes"`
	// Database is the SQLite file runs are recorded in. Empty disables it.
	Database string `mapstructure:"database"`
	// StatsFile receives the run's Prometheus metrics. Empty disables it.
	StatsFile string `mapstructure:"stats_file"`
}

// SetDefaults registers the default of every key. Without flags or
// environment the run reads "generated event logs/" and writes "output/".
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyInputDir, "generated event logs/")
	v.SetDefault(KeyOutputDir, "output/")
	v.SetDefault(KeySuffix, ".xes")
	v.SetDefault(KeyImageFormat, "png")
	v.SetDefault(KeyMetricTimeout, time.Duration(0))
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyFailFast, false)
	v.SetDefault(KeyFilter, "")
	v.SetDefault(KeyAlignmentMaxStates, 2000000)
	v.SetDefault(KeyILPMaxNodes, 20000)
	v.SetDefault(KeyDatabase, "")
	v.SetDefault(KeyStatsFile, "")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads the given .env files, or ./.env when none is given. A
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ReadFile merges a config file into v when path is set.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	return v.ReadInConfig()
}

func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.InputDir == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyInputDir)
	case c.OutputDir == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyOutputDir)
	case c.Workers < 1:
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalid, KeyWorkers, c.Workers)
	case c.MetricTimeout < 0:
		return fmt.Errorf("%w: %s is negative", ErrInvalid, KeyMetricTimeout)
	}
	return nil
}
