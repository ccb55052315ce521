package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "PROGRESSION"

// DefaultConfigName is the config file Load looks for in the working
// directory when no explicit file is given.
const DefaultConfigName = "progression"

// setDefaults registers a default for every key. Viper only maps environment
// variables onto keys it already knows, so every field needs one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("srs.ladder", []int{1, 3, 7, 14, 30})
	v.SetDefault("srs.min_ease_factor", 1.3)
	v.SetDefault("srs.max_ease_factor", 2.5)
	v.SetDefault("srs.struggling_failure_threshold", 3)
	v.SetDefault("srs.struggling_min_attempts", 5)
	v.SetDefault("srs.struggling_failure_ratio", 0.5)

	v.SetDefault("lesson.base_xp", 10)
	v.SetDefault("lesson.perfect_bonus_xp", 5)
	v.SetDefault("lesson.pass_threshold", 0)

	v.SetDefault("hearts.refill_cost_xp", 50)

	v.SetDefault("service.max_save_attempts", 3)

	v.SetDefault("metrics.namespace", "progression")
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the file.
//
// When configFile is empty, Load reads progression.yaml from the working
// directory if it exists and carries on with defaults otherwise. An explicit
// configFile must exist.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
