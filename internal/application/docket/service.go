// Package docket is the application layer over the deadline engine. It
// turns requests into deadline computations, shares resolved holiday sets
// through an optional external store, and records logs and metrics for the
// HTTP and CLI front ends.
package docket

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/errors"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// MaxWarmYears bounds a single WarmHolidays call.
const MaxWarmYears = 200

// HolidayStore shares resolved holiday sets between processes.
type HolidayStore interface {
	Load(ctx context.Context, year int, resolve func(year int) holiday.Set) (set holiday.Set, hit bool, err error)
	Invalidate(ctx context.Context) (int64, error)
}

// Locker is a lease-based mutual exclusion lock.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// LockFactory returns a Locker for name.
type LockFactory func(name string) Locker

// Service computes deadlines and inspects the holiday calendar.
type Service struct {
	engine       *deadline.Engine
	store        HolidayStore
	locks        LockFactory
	metrics      *prometheus.AppMetrics
	logger       logging.Logger
	validate     *validator.Validate
	jurisdiction string
	graceDays    int
	newID        func() string
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithHolidayStore makes holiday lookups read through store before falling
// back to local resolution.
func WithHolidayStore(store HolidayStore) Option {
	return func(s *Service) { s.store = store }
}

// WithLockFactory serializes WarmHolidays across processes.
func WithLockFactory(f LockFactory) Option {
	return func(s *Service) { s.locks = f }
}

// WithJurisdiction sets the label reported with holiday lists.
func WithJurisdiction(j string) Option {
	return func(s *Service) { s.jurisdiction = j }
}

// WithDefaultGraceDays sets the grace length used when a request asks for a
// grace period without a length.
func WithDefaultGraceDays(n int) Option {
	return func(s *Service) { s.graceDays = n }
}

// WithIDGenerator replaces the computation ID source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithNow replaces the timestamp source for ComputedAt.
func WithNow(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService builds a Service over engine.
func NewService(engine *deadline.Engine, opts ...Option) *Service {
	s := &Service{
		engine:       engine,
		logger:       logging.NewNopLogger(),
		validate:     validator.New(),
		jurisdiction: "US-FED",
		graceDays:    3,
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = deadline.NewEngine()
	}
	s.logger = s.logger.Named("docket")
	return s
}

// Engine returns the underlying engine.
func (s *Service) Engine() *deadline.Engine { return s.engine }

// Compute resolves the request's rule and computes its deadline, the
// deadline's status as of today and, when asked, a grace period.
func (s *Service) Compute(ctx context.Context, req *ComputeRequest) (*Computation, error) {
	if req == nil {
		return nil, errors.Validation("compute request must not be nil")
	}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	rule, err := s.ruleFor(req)
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	trigger, err := caldate.Parse(req.TriggerDate)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	s.primeYears(ctx, trigger.Year(), trigger.Year()+1)

	cal := s.engine.Calendar()
	start := time.Now()
	due, err := rule.Apply(cal, trigger)
	if s.metrics != nil {
		prometheus.RecordComputation(s.metrics, rule.Kind.String(), time.Since(start), err)
	}
	if err != nil {
		s.recordError(err)
		s.logger.Debug("deadline computation rejected",
			logging.String("rule", rule.Name), logging.Stringer("kind", rule.Kind),
			logging.Int("magnitude", rule.Magnitude), logging.Err(err))
		return nil, err
	}

	out := &Computation{
		ID:          s.newID(),
		Rule:        rule.Name,
		Kind:        rule.Kind,
		Magnitude:   rule.Magnitude,
		TriggerDate: trigger,
		Deadline:    due,
		Status:      deadline.StatusAt(s.engine.Today(), due),
		ComputedAt:  s.now().UTC(),
	}

	if graceDays, ok := s.graceFor(req); ok {
		grace, err := cal.WithGracePeriod(due, graceDays)
		if err != nil {
			s.recordError(err)
			return nil, err
		}
		out.Grace = &grace
	}

	s.logger.Info("deadline computed",
		logging.String("id", out.ID),
		logging.String("rule", out.Rule),
		logging.Stringer("kind", out.Kind),
		logging.Int("magnitude", out.Magnitude),
		logging.Stringer("trigger_date", out.TriggerDate),
		logging.Stringer("deadline", out.Deadline),
		logging.Stringer("urgency", out.Status.Urgency))
	return out, nil
}

// Status evaluates a deadline against today.
func (s *Service) Status(ctx context.Context, deadlineDate string) (*StatusReport, error) {
	d, err := caldate.Parse(deadlineDate)
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	today := s.engine.Today()
	return &StatusReport{Deadline: d, Today: today, Status: deadline.StatusAt(today, d)}, nil
}

// Day classifies one date.
func (s *Service) Day(ctx context.Context, date string) (*DayInfo, error) {
	d, err := caldate.Parse(date)
	if err != nil {
		s.recordError(err)
		return nil, err
	}
	set := s.holidaySet(ctx, d.Year())
	cal := s.engine.Calendar()

	info := &DayInfo{
		Date:      d,
		Weekday:   d.Weekday().String(),
		IsWeekend: cal.IsWeekend(d),
	}
	info.HolidayName, info.IsHoliday = set.Name(d)
	info.IsBusinessDay = !info.IsWeekend && !info.IsHoliday
	return info, nil
}

// Holidays returns the holiday list of year.
func (s *Service) Holidays(ctx context.Context, year int) (*HolidayList, error) {
	if err := checkYear(year); err != nil {
		s.recordError(err)
		return nil, err
	}
	set := s.holidaySet(ctx, year)
	return &HolidayList{
		Year:         year,
		Jurisdiction: s.jurisdiction,
		Observance:   s.engine.Calendar().Holidays().Policy().String(),
		Holidays:     set.Entries(),
	}, nil
}

// Rules returns the registered named rules.
func (s *Service) Rules() []deadline.Rule {
	return deadline.Rules()
}

// WarmHolidays resolves the years from..to into the local memo and, when a
// store is configured, into the shared store. With a lock factory only one
// process warms at a time; a process that loses the lock skips warming and
// reports zero years.
func (s *Service) WarmHolidays(ctx context.Context, from, to int) (int, error) {
	n, _, err := s.warm(ctx, from, to, false)
	return n, err
}

// RefreshHolidays is WarmHolidays after discarding every memoized set and,
// when a store is configured, every shared set of this calendar. It reports
// the number of shared sets removed.
func (s *Service) RefreshHolidays(ctx context.Context, from, to int) (warmed int, invalidated int64, err error) {
	return s.warm(ctx, from, to, true)
}

func (s *Service) warm(ctx context.Context, from, to int, refresh bool) (int, int64, error) {
	if err := checkYear(from); err != nil {
		return 0, 0, err
	}
	if err := checkYear(to); err != nil {
		return 0, 0, err
	}
	if from > to || to-from+1 > MaxWarmYears {
		return 0, 0, errors.Validation("invalid warm range").WithDetailf("%d..%d (at most %d years)", from, to, MaxWarmYears)
	}

	if s.store != nil && s.locks != nil {
		lock := s.locks("holiday-warm")
		ok, err := lock.TryLock(ctx)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			s.logger.Info("holiday warm-up already running elsewhere, skipping",
				logging.Int("from", from), logging.Int("to", to), logging.Bool("refresh", refresh))
			return 0, 0, nil
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release holiday warm-up lock", logging.Err(err))
			}
		}()
	}

	var invalidated int64
	if refresh {
		s.engine.Calendar().Holidays().Purge()
		if s.store != nil {
			n, err := s.store.Invalidate(ctx)
			if err != nil {
				return 0, n, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to invalidate shared holiday sets")
			}
			invalidated = n
		}
	}

	n := 0
	for year := from; year <= to; year++ {
		if err := ctx.Err(); err != nil {
			return n, invalidated, err
		}
		s.holidaySet(ctx, year)
		n++
	}
	s.logger.Info("holiday sets warmed", logging.Int("from", from), logging.Int("to", to),
		logging.Int("years", n), logging.Bool("refresh", refresh), logging.Int("invalidated", int(invalidated)))
	return n, invalidated, nil
}

func (s *Service) validateStruct(req *ComputeRequest) error {
	if err := s.validate.Struct(req); err != nil {
		appErr := errors.Validation("invalid compute request").WithCause(err)
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			appErr = appErr.WithDetailf("field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		s.recordError(appErr)
		return appErr
	}
	return nil
}

func (s *Service) ruleFor(req *ComputeRequest) (deadline.Rule, error) {
	rule := strings.TrimSpace(req.Rule)
	kind := strings.TrimSpace(req.Kind)
	switch {
	case rule != "" && kind != "":
		return deadline.Rule{}, errors.Validation("rule and kind are mutually exclusive")
	case rule != "":
		return deadline.RuleByName(rule)
	case kind == "":
		return deadline.Rule{}, errors.Validation("one of rule or kind is required")
	case req.Magnitude == nil:
		return deadline.Rule{}, errors.Validation("magnitude is required with kind")
	}
	k, err := deadline.ParseRuleKind(kind)
	if err != nil {
		return deadline.Rule{}, err
	}
	return deadline.Rule{Kind: k, Magnitude: *req.Magnitude}, nil
}

func (s *Service) graceFor(req *ComputeRequest) (int, bool) {
	switch {
	case req.GraceDays != nil:
		return *req.GraceDays, true
	case req.WithGrace:
		return s.graceDays, true
	}
	return 0, false
}

// holidaySet returns the set of year from the local memo, then the shared
// store, then local resolution. Store failures degrade to local resolution.
func (s *Service) holidaySet(ctx context.Context, year int) holiday.Set {
	gen := s.engine.Calendar().Holidays()
	if set, ok := gen.Cached(year); ok {
		return set
	}
	if s.store == nil {
		return gen.For(year)
	}

	set, hit, err := s.store.Load(ctx, year, func(y int) holiday.Set {
		return holiday.Resolve(y, gen.Definitions(), gen.Policy())
	})
	if err != nil {
		s.logger.Warn("shared holiday store unavailable, resolving locally",
			logging.Int("year", year), logging.Err(err))
		s.recordError(err)
		return gen.For(year)
	}
	if s.metrics != nil {
		prometheus.RecordHolidayCache(s.metrics, "redis", hit)
	}
	gen.Prime(set)
	return set
}

func (s *Service) primeYears(ctx context.Context, from, to int) {
	if s.store == nil {
		return
	}
	for year := from; year <= to && year <= caldate.MaxYear; year++ {
		s.holidaySet(ctx, year)
	}
}

func (s *Service) recordError(err error) {
	if s.metrics != nil {
		prometheus.RecordError(s.metrics, "docket", string(errors.GetCode(err)))
	}
}

func checkYear(year int) error {
	if year < caldate.MinYear || year > caldate.MaxYear {
		return caldate.ErrInvalidYear.WithDetailf("%d", year)
	}
	return nil
}
