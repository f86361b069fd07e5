package holiday

import (
	"sort"

	"github.com/turtacn/lexclock/pkg/caldate"
)

// Entry is one resolved holiday.
type Entry struct {
	Date caldate.Date `json:"date"`
	Name string       `json:"name"`
}

// Set is the immutable, sorted set of holidays that fall within one year.
// The zero Set is empty.
type Set struct {
	year    int
	entries []Entry
	index   map[caldate.Date]int
}

// NewSet builds a Set for year from entries. Entries outside year are
// dropped, and when two entries share a date the first one wins.
func NewSet(year int, entries []Entry) Set {
	s := Set{year: year, index: make(map[caldate.Date]int, len(entries))}
	for _, e := range entries {
		if e.Date.Year() != year {
			continue
		}
		if _, dup := s.index[e.Date]; dup {
			continue
		}
		s.index[e.Date] = -1
		s.entries = append(s.entries, e)
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Date.Before(s.entries[j].Date)
	})
	for i, e := range s.entries {
		s.index[e.Date] = i
	}
	return s
}

// Year returns the year the set was resolved for.
func (s Set) Year() int { return s.year }

// Len returns the number of holidays in the set.
func (s Set) Len() int { return len(s.entries) }

// Contains reports whether d is a holiday in the set.
func (s Set) Contains(d caldate.Date) bool {
	_, ok := s.index[d]
	return ok
}

// Name returns the holiday name for d.
func (s Set) Name(d caldate.Date) (string, bool) {
	i, ok := s.index[d]
	if !ok {
		return "", false
	}
	return s.entries[i].Name, true
}

// Entries returns a copy of the holidays in date order.
func (s Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Dates returns a copy of the holiday dates in order.
func (s Set) Dates() []caldate.Date {
	out := make([]caldate.Date, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Date
	}
	return out
}

// Strings returns the holiday dates as sorted ISO strings.
func (s Set) Strings() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Date.String()
	}
	return out
}
