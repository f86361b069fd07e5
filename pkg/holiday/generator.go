package holiday

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/turtacn/lexclock/pkg/caldate"
)

// DefaultCacheYears bounds the number of memoized years.
const DefaultCacheYears = 64

// Generator resolves holiday sets and memoizes them per year. It is safe for
// concurrent use. Two goroutines missing on the same year both compute the
// set; the results are identical so the race is harmless.
type Generator struct {
	defs     []Definition
	policy   ObservancePolicy
	size     int
	cache    *lru.Cache[int, Set]
	observer func(year int, hit bool)
	print    string
}

// Option configures a Generator.
type Option func(*Generator)

// WithDefinitions replaces the built-in table. The slice is copied.
func WithDefinitions(defs []Definition) Option {
	return func(g *Generator) {
		g.defs = append([]Definition(nil), defs...)
	}
}

// WithPolicy sets the observance policy. Default ObserveLiteral.
func WithPolicy(p ObservancePolicy) Option {
	return func(g *Generator) { g.policy = p }
}

// WithCacheYears bounds the memo. Non-positive values keep the default.
func WithCacheYears(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.size = n
		}
	}
}

// WithObserver registers a callback invoked on every For lookup, reporting
// whether the memo already held the year. Used for cache metrics.
func WithObserver(fn func(year int, hit bool)) Option {
	return func(g *Generator) { g.observer = fn }
}

// NewGenerator validates the holiday table and builds a Generator.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		defs:   Definitions(),
		policy: ObserveLiteral,
		size:   DefaultCacheYears,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := ValidateAll(g.defs); err != nil {
		return nil, err
	}
	cache, err := lru.New[int, Set](g.size)
	if err != nil {
		return nil, err
	}
	g.cache = cache
	g.print = fingerprint(g.defs, g.policy)
	return g, nil
}

// MustNewGenerator is NewGenerator that panics on error.
func MustNewGenerator(opts ...Option) *Generator {
	g, err := NewGenerator(opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// For returns the holiday set of year.
func (g *Generator) For(year int) Set {
	if s, ok := g.cache.Get(year); ok {
		g.observe(year, true)
		return s
	}
	g.observe(year, false)
	s := Resolve(year, g.defs, g.policy)
	g.cache.Add(year, s)
	return s
}

// Cached returns the memoized set of year without resolving it.
func (g *Generator) Cached(year int) (Set, bool) {
	return g.cache.Get(year)
}

// Prime stores a precomputed set, typically one loaded from a shared cache.
// The set must have been resolved with this generator's table and policy.
func (g *Generator) Prime(s Set) {
	g.cache.Add(s.Year(), s)
}

// Lookup returns the name of the holiday on d, if any.
func (g *Generator) Lookup(d caldate.Date) (string, bool) {
	return g.For(d.Year()).Name(d)
}

// Policy returns the observance policy.
func (g *Generator) Policy() ObservancePolicy { return g.policy }

// Definitions returns a copy of the generator's holiday table.
func (g *Generator) Definitions() []Definition {
	return append([]Definition(nil), g.defs...)
}

// Fingerprint identifies the table and policy the generator resolves with.
// Changing any definition or the policy changes it; reordering the table
// does not.
func (g *Generator) Fingerprint() string { return g.print }

// Purge drops every memoized year.
func (g *Generator) Purge() { g.cache.Purge() }

func fingerprint(defs []Definition, policy ObservancePolicy) string {
	lines := make([]string, 0, len(defs))
	for _, d := range defs {
		switch d.Kind {
		case KindFixed:
			lines = append(lines, fmt.Sprintf("%s|%q|%d|%d", d.Kind, d.Name, d.Month, d.Day))
		default:
			lines = append(lines, fmt.Sprintf("%s|%q|%d|%d|%d", d.Kind, d.Name, d.Month, d.Weekday, d.Occurrence))
		}
	}
	sort.Strings(lines)

	h := sha256.New()
	fmt.Fprintf(h, "policy=%s\n", policy)
	for _, l := range lines {
		fmt.Fprintln(h, l)
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

func (g *Generator) observe(year int, hit bool) {
	if g.observer != nil {
		g.observer(year, hit)
	}
}
