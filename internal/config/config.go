package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port" validate:"min=1,max=65535"`
	Secret string `mapstructure:"secret"`

	SeatCount         int           `mapstructure:"seat_count" validate:"min=1"`
	DefaultStartPrice int64         `mapstructure:"default_start_price" validate:"min=1"`
	DefaultIncrement  int64         `mapstructure:"default_increment" validate:"min=1"`
	CountdownSeconds  int           `mapstructure:"countdown_seconds" validate:"min=1"`
	ListingDelay      time.Duration `mapstructure:"listing_delay"`
	EventBuffer       int           `mapstructure:"event_buffer" validate:"min=1"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("seat_count", 6)
	v.SetDefault("default_start_price", 100)
	v.SetDefault("default_increment", 10)
	v.SetDefault("countdown_seconds", 30)
	v.SetDefault("listing_delay", "3s")
	v.SetDefault("event_buffer", 64)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
