package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// HolidayStore shares resolved holiday sets between processes. Keys are
// scoped by jurisdiction, observance policy and the fingerprint of the
// holiday table, so replicas configured with different tables never read
// each other's sets even when they share a jurisdiction label.
type HolidayStore struct {
	cache  Cache
	scope  string
	ttl    time.Duration
	logger logging.Logger
}

type holidaySetPayload struct {
	Year    int             `json:"year"`
	Entries []holiday.Entry `json:"entries"`
}

// NewHolidayStore builds a store over cache for sets resolved by table. A
// zero ttl uses the cache default.
func NewHolidayStore(cache Cache, jurisdiction string, table *holiday.Generator, ttl time.Duration, logger logging.Logger) *HolidayStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HolidayStore{
		cache:  cache,
		scope:  jurisdiction + ":" + table.Policy().String() + ":" + table.Fingerprint(),
		ttl:    ttl,
		logger: logger.Named("holiday_store"),
	}
}

// Scope returns the jurisdiction:policy:fingerprint triple the store's keys
// are bound to.
func (s *HolidayStore) Scope() string { return s.scope }

func (s *HolidayStore) key(year int) string {
	return fmt.Sprintf("holidays:%s:%d", s.scope, year)
}

// Load returns the set for year, resolving it with resolve and storing it on
// a miss. hit is false when this call ran resolve.
func (s *HolidayStore) Load(ctx context.Context, year int, resolve func(year int) holiday.Set) (set holiday.Set, hit bool, err error) {
	var payload holidaySetPayload
	loaded, err := s.cache.GetOrSet(ctx, s.key(year), &payload, s.ttl, func(context.Context) (interface{}, error) {
		resolved := resolve(year)
		return holidaySetPayload{Year: resolved.Year(), Entries: resolved.Entries()}, nil
	})
	if err != nil {
		return holiday.Set{}, false, err
	}
	if payload.Year != year {
		s.logger.Warn("Discarding holiday set stored under the wrong year",
			logging.Int("year", year), logging.Int("stored_year", payload.Year))
		return resolve(year), false, nil
	}
	return holiday.NewSet(year, payload.Entries), !loaded, nil
}

// Invalidate removes every set stored under this store's scope.
func (s *HolidayStore) Invalidate(ctx context.Context) (int64, error) {
	n, err := s.cache.DeleteByPrefix(ctx, "holidays:"+s.scope+":")
	if err != nil {
		return n, err
	}
	s.logger.Info("Invalidated shared holiday sets", logging.String("scope", s.scope), logging.Int("deleted", int(n)))
	return n, nil
}
