package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "LEXCLOCK"

// newViper returns a Viper with YAML file type, LEXCLOCK_ env binding and
// "." → "_" key mapping, so "redis.addr" reads LEXCLOCK_REDIS_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)
	return v
}

// Load reads the YAML file at configPath, overlays LEXCLOCK_* variables,
// applies defaults and validates. An empty path behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from defaults and LEXCLOCK_* variables only.
//
//	LEXCLOCK_<SECTION>_<FIELD>   e.g.  LEXCLOCK_SERVER_PORT, LEXCLOCK_CALENDAR_OBSERVANCE
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-reads configPath whenever it changes on disk and passes the new
// Config to onChange. An edit that fails to parse or validate is logged and
// skipped so the process keeps its last good configuration. Watch does not
// block.
func Watch(configPath string, logger logging.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			logger.Warn("ignoring invalid config change",
				logging.String("file", e.Name), logging.String("op", e.Op.String()), logging.Err(err))
			return
		}
		logger.Info("config reloaded", logging.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
