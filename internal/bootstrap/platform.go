// Package bootstrap assembles the lexclock runtime from configuration. The
// API server and the CLI share it.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/database/redis"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/lexclock/internal/interfaces/http"
	"github.com/turtacn/lexclock/internal/interfaces/http/handlers"
	"github.com/turtacn/lexclock/pkg/deadline"
)

// warmLockLease covers a warm-up of docket.MaxWarmYears years.
const warmLockLease = 2 * time.Minute

// Platform holds the wired services and infrastructure clients of one
// process.
type Platform struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Redis     *redis.Client
	Holidays  *redis.HolidayStore
	Service   *docket.Service

	version  string
	checkers []handlers.HealthChecker
}

type options struct {
	version string
	clock   deadline.Clock
	redis   *redis.Client
}

// Option configures New.
type Option func(*options)

// WithVersion sets the version reported by build_info and /healthz.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithClock replaces the wall clock that decides "today".
func WithClock(c deadline.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRedisClient uses client instead of dialing cfg.Redis. The platform
// takes ownership and closes it.
func WithRedisClient(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

// New wires the metrics registry, the holiday calendar, the optional redis
// holiday store and the docket service.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) (*Platform, error) {
	o := options{version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	p := &Platform{Config: cfg, Logger: logger, version: o.version}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableGoMetrics:      cfg.Metrics.EnableGoMetrics,
		EnableProcessMetrics: cfg.Metrics.EnableProcessMetrics,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	p.Collector = collector
	p.Metrics = prometheus.NewAppMetrics(collector)
	p.Metrics.BuildInfo.WithLabelValues(o.version, cfg.Calendar.Jurisdiction).Set(1)

	cal, err := docket.NewCalendar(cfg.Calendar, p.Metrics)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	engineOpts := []deadline.EngineOption{deadline.WithCalendar(cal)}
	if o.clock != nil {
		engineOpts = append(engineOpts, deadline.WithClock(o.clock))
	}
	engine := deadline.NewEngine(engineOpts...)

	svcOpts := []docket.Option{
		docket.WithLogger(logger),
		docket.WithMetrics(p.Metrics),
		docket.WithJurisdiction(cfg.Calendar.Jurisdiction),
		docket.WithDefaultGraceDays(cfg.Calendar.DefaultGraceDays),
	}

	switch {
	case o.redis != nil:
		p.Redis = o.redis
	case cfg.Redis.Enabled:
		client, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		p.Redis = client
	}
	if p.Redis != nil {
		cache := redis.NewRedisCache(p.Redis, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.TTL))
		p.Holidays = redis.NewHolidayStore(cache, cfg.Calendar.Jurisdiction, cal.Holidays(), cfg.Redis.TTL, logger)
		client := p.Redis
		svcOpts = append(svcOpts,
			docket.WithHolidayStore(p.Holidays),
			docket.WithLockFactory(func(name string) docket.Locker {
				return redis.NewMutex(client, name, logger, redis.WithLockTTL(warmLockLease))
			}),
		)
		p.checkers = append(p.checkers, handlers.NewHealthChecker("redis", client.Ping))
		logger.Info("shared holiday store enabled",
			logging.String("scope", p.Holidays.Scope()), logging.Bool("cluster", client.IsCluster()))
	}

	p.Service = docket.NewService(engine, svcOpts...)
	return p, nil
}

// Router builds the HTTP route tree over the platform's service.
func (p *Platform) Router() http.Handler {
	rc := httpapi.RouterConfig{
		DeadlineHandler:    handlers.NewDeadlineHandler(p.Service, p.Logger, p.Config.Server.MaxBodySize),
		CalendarHandler:    handlers.NewCalendarHandler(p.Service, p.Logger),
		HealthHandler:      handlers.NewHealthHandler(p.version, p.checkers...),
		CORSAllowedOrigins: p.Config.Server.CORSAllowedOrigins,
		Logger:             p.Logger,
		Metrics:            p.Metrics,
	}
	if p.Config.Metrics.Enabled {
		rc.MetricsCollector = p.Collector
		rc.MetricsPath = p.Config.Metrics.Path
	}
	return httpapi.NewRouter(rc)
}

// WarmCurrent warms the holiday sets of the calendar's current year and the
// next, the window most computations touch.
func (p *Platform) WarmCurrent(ctx context.Context) (int, error) {
	year := p.Service.Engine().Today().Year()
	return p.Service.WarmHolidays(ctx, year, year+1)
}

// Close releases infrastructure clients.
func (p *Platform) Close() error {
	if p.Redis != nil {
		return p.Redis.Close()
	}
	return nil
}
