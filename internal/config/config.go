// Package config defines the configuration of the lexclock services and
// loads it from YAML files and LEXCLOCK_* environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize        int64         `mapstructure:"max_body_size"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig holds the optional shared holiday-set cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	Path                 string `mapstructure:"path"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
}

// HolidayConfig is one entry of a jurisdiction's holiday table.
//
// A fixed holiday sets Month and Day. A floating holiday sets Month, Weekday
// ("monday".."sunday") and Occurrence ("1".."4" or "last").
type HolidayConfig struct {
	Name       string `mapstructure:"name"`
	Month      int    `mapstructure:"month"`
	Day        int    `mapstructure:"day"`
	Weekday    string `mapstructure:"weekday"`
	Occurrence string `mapstructure:"occurrence"`
}

// CalendarConfig selects the holiday table and day-counting behaviour.
type CalendarConfig struct {
	// Jurisdiction is a display label for the holiday table in use.
	Jurisdiction string `mapstructure:"jurisdiction"`
	// Observance is "literal" or "nearest_weekday".
	Observance string `mapstructure:"observance"`
	// CacheYears bounds the in-process per-year holiday memo.
	CacheYears int `mapstructure:"cache_years"`
	// DefaultGraceDays applies when a request asks for a grace period
	// without a length.
	DefaultGraceDays int `mapstructure:"default_grace_days"`
	// Holidays replaces the built-in table when non-empty.
	Holidays []HolidayConfig `mapstructure:"holidays"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Log      logging.LogConfig `mapstructure:"log"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Calendar CalendarConfig    `mapstructure:"calendar"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be >= 0, got %d", c.Server.MaxBodySize)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with /", c.Metrics.Path)
	}

	if _, err := holiday.ParsePolicy(c.Calendar.Observance); err != nil {
		return fmt.Errorf("config: calendar.observance %q is invalid; expected literal|nearest_weekday", c.Calendar.Observance)
	}
	if c.Calendar.CacheYears < 1 {
		return fmt.Errorf("config: calendar.cache_years must be >= 1, got %d", c.Calendar.CacheYears)
	}
	if c.Calendar.DefaultGraceDays < 0 {
		return fmt.Errorf("config: calendar.default_grace_days must be >= 0, got %d", c.Calendar.DefaultGraceDays)
	}
	if _, err := c.Calendar.Definitions(); err != nil {
		return fmt.Errorf("config: calendar.holidays: %w", err)
	}
	return nil
}

// Policy returns the parsed observance policy.
func (c CalendarConfig) Policy() holiday.ObservancePolicy {
	p, _ := holiday.ParsePolicy(c.Observance)
	return p
}

// Definitions converts the configured holiday table. An empty table yields
// the built-in one.
func (c CalendarConfig) Definitions() ([]holiday.Definition, error) {
	if len(c.Holidays) == 0 {
		return holiday.Definitions(), nil
	}
	defs := make([]holiday.Definition, 0, len(c.Holidays))
	for i, h := range c.Holidays {
		def, err := h.definition()
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, h.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, holiday.ValidateAll(defs)
}

func (h HolidayConfig) definition() (holiday.Definition, error) {
	month := time.Month(h.Month)
	if h.Weekday == "" {
		def := holiday.Fixed(h.Name, month, h.Day)
		return def, def.Validate()
	}
	wd, ok := weekdays[strings.ToLower(h.Weekday)]
	if !ok {
		return holiday.Definition{}, fmt.Errorf("unknown weekday %q", h.Weekday)
	}
	occ := holiday.Last
	if !strings.EqualFold(h.Occurrence, "last") {
		// only the word "last" selects holiday.Last; -1 is not an alias
		n, err := strconv.Atoi(h.Occurrence)
		if err != nil || n < 1 || n > holiday.MaxOccurrence {
			return holiday.Definition{}, fmt.Errorf("occurrence %q is not 1..4 or last", h.Occurrence)
		}
		occ = n
	}
	def := holiday.Floating(h.Name, month, wd, occ)
	return def, def.Validate()
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}
