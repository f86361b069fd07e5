package docket

import (
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// NewCalendar builds the deadline calendar described by cfg. When metrics is
// non-nil every lookup in the in-process holiday memo is counted under the
// "memory" layer.
func NewCalendar(cfg config.CalendarConfig, metrics *prometheus.AppMetrics) (*deadline.Calendar, error) {
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	opts := []holiday.Option{
		holiday.WithDefinitions(defs),
		holiday.WithPolicy(cfg.Policy()),
		holiday.WithCacheYears(cfg.CacheYears),
	}
	if metrics != nil {
		opts = append(opts, holiday.WithObserver(func(_ int, hit bool) {
			prometheus.RecordHolidayCache(metrics, "memory", hit)
		}))
	}
	gen, err := holiday.NewGenerator(opts...)
	if err != nil {
		return nil, err
	}
	return deadline.NewCalendar(gen), nil
}
