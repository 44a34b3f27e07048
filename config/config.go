// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd/hhrq)
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override settings:
// HHRQ_MAX_EVALUE sets 'max-evalue', for example.
const EnvPrefix = "HHRQ"

// Config is the root-level settings struct and is a mix of settings
// available in a settings file, the environment and those available from
// the command line
type Config struct {
	// the report format given to searchio
	Format string `mapstructure:"format"`

	// one of zap's level names
	LogLevel string `mapstructure:"log-level"`

	// skip checking alignment coordinates against the hit table
	TrustCoordinates bool `mapstructure:"trust-coordinates"`

	// the number of reports parsed at the same time
	Workers int `mapstructure:"workers"`

	// hits with a larger E-value are left out; 0 keeps all of them
	MaxEValue float64 `mapstructure:"max-evalue"`

	// hits with a smaller probability (in [0, 1]) are left out
	MinProb float64 `mapstructure:"min-prob"`

	// path to the SQLite result store
	DB string `mapstructure:"db"`
}

// New returns a Viper instance with every setting given its default and
// bound to its environment variable.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("format", "hhsuite3-text")
	v.SetDefault("log-level", "warn")
	v.SetDefault("trust-coordinates", false)
	v.SetDefault("workers", 4)
	v.SetDefault("max-evalue", 0.0)
	v.SetDefault("min-prob", 0.0)
	v.SetDefault("db", "hhrq.db")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadEnv adds the variables in the given .env files (or ./.env) to the
// environment. Variables that are already set are left alone.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads the settings file at 'file', if it isn't empty, and returns
// the resulting settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if len(file) > 0 {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Error reading settings from '%s': %w",
				file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("Unable to decode settings: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("'workers' must be at least 1, but is %d.", c.Workers)
	case c.MinProb < 0 || c.MinProb > 1:
		return fmt.Errorf("'min-prob' must be in [0, 1], but is %g.", c.MinProb)
	case c.MaxEValue < 0:
		return fmt.Errorf("'max-evalue' must not be negative, but is %g.",
			c.MaxEValue)
	case len(c.Format) == 0:
		return fmt.Errorf("'format' must not be empty.")
	}
	return nil
}
