// Package holiday derives the concrete holiday dates of a year from a static
// table of holiday definitions.
//
// Two kinds of definition exist: fixed-date holidays that fall on the same
// month and day every year, and floating holidays expressed as the Nth (or
// last) given weekday of a month. Resolving a table against a year is a pure
// function; Generator adds a bounded per-year memo on top of it.
package holiday

import (
	"fmt"
	"time"

	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/errors"
)

// ErrInvalidDefinition is returned when a definition cannot be resolved for
// every year, such as February 30 or a fifth Monday.
var ErrInvalidDefinition = errors.New(errors.ErrCodeInvalidHoliday, "invalid holiday definition")

// Kind discriminates the Definition variants.
type Kind uint8

const (
	KindFixed Kind = iota + 1
	KindFloating
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindFloating:
		return "floating"
	default:
		return "unknown"
	}
}

// Last selects the final occurrence of a weekday in a month.
const Last = -1

// MaxOccurrence is the highest ordinal occurrence that exists in every month.
const MaxOccurrence = 4

// Definition describes one annual holiday.
//
// For KindFixed, Month and Day are used. For KindFloating, Month, Weekday
// and Occurrence are used; Occurrence is 1..4 counted from the start of the
// month, or Last counted from its end.
type Definition struct {
	Name       string
	Kind       Kind
	Month      time.Month
	Day        int
	Weekday    time.Weekday
	Occurrence int
}

// Fixed returns a fixed-date definition.
func Fixed(name string, month time.Month, day int) Definition {
	return Definition{Name: name, Kind: KindFixed, Month: month, Day: day}
}

// Floating returns an Nth-weekday definition. Pass Last as occurrence for
// the final such weekday of the month.
func Floating(name string, month time.Month, weekday time.Weekday, occurrence int) Definition {
	return Definition{Name: name, Kind: KindFloating, Month: month, Weekday: weekday, Occurrence: occurrence}
}

// Validate checks that the definition names a date in every year.
func (d Definition) Validate() error {
	if d.Month < time.January || d.Month > time.December {
		return ErrInvalidDefinition.WithDetailf("%s: month %d", d.Name, int(d.Month))
	}
	switch d.Kind {
	case KindFixed:
		// 2000 is a leap year, so February 29 passes here; Resolve skips
		// it in common years.
		if d.Day < 1 || d.Day > caldate.DaysIn(2000, d.Month) {
			return ErrInvalidDefinition.WithDetailf("%s: day %d", d.Name, d.Day)
		}
	case KindFloating:
		if d.Weekday < time.Sunday || d.Weekday > time.Saturday {
			return ErrInvalidDefinition.WithDetailf("%s: weekday %d", d.Name, int(d.Weekday))
		}
		if d.Occurrence != Last && (d.Occurrence < 1 || d.Occurrence > MaxOccurrence) {
			return ErrInvalidDefinition.WithDetailf("%s: occurrence %d", d.Name, d.Occurrence)
		}
	default:
		return ErrInvalidDefinition.WithDetailf("%s: kind %d", d.Name, d.Kind)
	}
	return nil
}

// String renders the rule in words, e.g. "3rd Monday of January".
func (d Definition) String() string {
	if d.Kind == KindFixed {
		return fmt.Sprintf("%s %d", d.Month, d.Day)
	}
	return fmt.Sprintf("%s %s of %s", ordinal(d.Occurrence), d.Weekday, d.Month)
}

// dateIn resolves the literal date of d in year. ok is false only for
// February 29 in a common year.
func (d Definition) dateIn(year int) (date caldate.Date, ok bool) {
	if d.Kind == KindFloating {
		if d.Occurrence == Last {
			return lastWeekday(year, d.Month, d.Weekday), true
		}
		return nthWeekday(year, d.Month, d.Weekday, d.Occurrence), true
	}
	date, err := caldate.New(year, d.Month, d.Day)
	return date, err == nil
}

// nthWeekday finds the nth occurrence of weekday in the month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) caldate.Date {
	first, _ := caldate.New(year, month, 1)
	offset := int(weekday - first.Weekday())
	if offset < 0 {
		offset += 7
	}
	return first.AddDays(offset + (n-1)*7)
}

// lastWeekday finds the last occurrence of weekday in the month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) caldate.Date {
	first, _ := caldate.New(year, month, 1)
	last := first.LastOfMonth()
	offset := int(last.Weekday() - weekday)
	if offset < 0 {
		offset += 7
	}
	return last.AddDays(-offset)
}

func ordinal(n int) string {
	switch n {
	case Last:
		return "last"
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

// usFederal is the built-in table. Never handed out directly.
var usFederal = [...]Definition{
	Fixed("New Year's Day", time.January, 1),
	Floating("Martin Luther King Jr. Day", time.January, time.Monday, 3),
	Floating("Memorial Day", time.May, time.Monday, Last),
	Fixed("Juneteenth", time.June, 19),
	Fixed("Independence Day", time.July, 4),
	Floating("Labor Day", time.September, time.Monday, 1),
	Floating("Columbus Day", time.October, time.Monday, 2),
	Fixed("Veterans Day", time.November, 11),
	Floating("Thanksgiving Day", time.November, time.Thursday, 4),
	Fixed("Christmas Day", time.December, 25),
}

// Definitions returns a fresh copy of the built-in holiday table. Callers may
// modify the returned slice freely.
func Definitions() []Definition {
	out := make([]Definition, len(usFederal))
	copy(out, usFederal[:])
	return out
}

// ValidateAll validates every definition in defs.
func ValidateAll(defs []Definition) error {
	if len(defs) == 0 {
		return ErrInvalidDefinition.WithDetail("empty holiday table")
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}
