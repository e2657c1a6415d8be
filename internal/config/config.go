package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/paat-dev/paat/internal/api"
	"github.com/paat-dev/paat/internal/watch"
)

// Config is the resolved runtime configuration.
type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Locale       string        `mapstructure:"locale"`
	Sound        bool          `mapstructure:"sound"`
	LogLevel     string        `mapstructure:"log_level"`
	NoCache      bool          `mapstructure:"no_cache"`
}

// Load resolves configuration with priority: environment variables
// (PAAT_ prefix), then an optional config file, then defaults. A .env
// file in the working directory is read first so PAAT_* variables can
// live there.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("paat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/paat")
	}

	v.SetEnvPrefix("PAAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; env vars and defaults cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault resolves configuration, falling back to pure defaults
// when resolution fails. The discarded configuration is never dropped
// silently.
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Warn("ignoring broken configuration, running on defaults", "err", err)
		v := viper.New()
		setDefaults(v)
		fallback := &Config{}
		_ = v.Unmarshal(fallback)
		return fallback
	}
	return cfg
}

// decodeHook extends viper's default decoding so duration fields also
// accept bare numbers, read as seconds: PAAT_POLL_INTERVAL=45 and
// PAAT_POLL_INTERVAL=45s configure the same interval.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func secondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			seconds, err := strconv.Atoi(strings.TrimSpace(data.(string)))
			if err != nil {
				// Not a bare number; the duration-string hook takes over.
				return data, nil
			}
			return time.Duration(seconds) * time.Second, nil
		case reflect.Int:
			return time.Duration(data.(int)) * time.Second, nil
		}
		return data, nil
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", api.BaseURL)
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("poll_interval", watch.DefaultPollInterval)
	v.SetDefault("locale", "en")
	v.SetDefault("sound", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("no_cache", false)
}

func validate(cfg *Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}
	return nil
}
