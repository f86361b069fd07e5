// Package caldate provides an immutable calendar-date value.
//
// A Date has year, month and day granularity only. It never carries a
// time-of-day or a location, so two Dates compare equal with == exactly when
// they name the same calendar day. All arithmetic returns a new value.
//
// The canonical text form is ISO 8601 "YYYY-MM-DD". Parse is strict: it
// accepts nothing else and does not guess at malformed input.
package caldate

import (
	"time"

	"github.com/turtacn/lexclock/pkg/errors"
)

// Layout is the only textual form accepted and produced by this package.
const Layout = "2006-01-02"

// Year bounds. Dates outside this range cannot be written as four-digit years.
const (
	MinYear = 1
	MaxYear = 9999
)

// SpanDays is the number of days from 0001-01-01 to 9999-12-31. No in-range
// Date can be shifted further than this and stay in range.
const SpanDays = 3652058

// Min and Max are the first and last representable days.
var (
	Min = Date{year: MinYear, month: time.January, day: 1}
	Max = Date{year: MaxYear, month: time.December, day: 31}
)

// Sentinel errors. Callers match them with errors.Is; returned errors carry
// the offending input in Detail.
var (
	ErrInvalidDateFormat = errors.New(errors.ErrCodeInvalidDateFormat, "invalid date format, expected YYYY-MM-DD")
	ErrInvalidYear       = errors.New(errors.ErrCodeInvalidYear, "year out of range")
)

// Date is a Gregorian calendar day. The zero value is not a valid date; see IsZero.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New builds a Date from its parts, rejecting components that do not name a
// real calendar day (e.g. February 30).
func New(year int, month time.Month, day int) (Date, error) {
	if year < MinYear || year > MaxYear {
		return Date{}, ErrInvalidYear.WithDetailf("%d", year)
	}
	if month < time.January || month > time.December || day < 1 || day > DaysIn(year, month) {
		return Date{}, ErrInvalidDateFormat.WithDetailf("%04d-%02d-%02d", year, int(month), day)
	}
	return Date{year: year, month: month, day: day}, nil
}

// Parse reads an ISO "YYYY-MM-DD" string.
func Parse(s string) (Date, error) {
	if len(s) != len(Layout) {
		return Date{}, ErrInvalidDateFormat.WithDetailf("%q", s)
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, ErrInvalidDateFormat.WithDetailf("%q", s).WithCause(err)
	}
	if t.Year() < MinYear {
		return Date{}, ErrInvalidYear.WithDetailf("%q", s)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and tables
// of constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Year returns the year.
func (d Date) Year() int { return d.year }

// Month returns the month.
func (d Date) Month() time.Month { return d.month }

// Day returns the day of the month.
func (d Date) Day() int { return d.day }

// InRange reports whether d lies between Min and Max.
func (d Date) InRange() bool { return d.year >= MinYear && d.year <= MaxYear }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsWeekend reports whether d is a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddDays returns d shifted by n days. n may be negative.
func (d Date) AddDays(n int) Date {
	return FromTime(time.Date(d.year, d.month, d.day+n, 0, 0, 0, 0, time.UTC))
}

// AddDaysChecked is AddDays for untrusted n. It fails with ErrInvalidYear
// when the result falls outside MinYear..MaxYear.
func (d Date) AddDaysChecked(n int) (Date, error) {
	if n > SpanDays || n < -SpanDays {
		return Date{}, ErrInvalidYear.WithDetailf("%s %+d days", d, n)
	}
	r := d.AddDays(n)
	if !r.InRange() {
		return Date{}, ErrInvalidYear.WithDetailf("%s %+d days", d, n)
	}
	return r, nil
}

// AddMonthsChecked is AddMonths for untrusted n, failing like AddDaysChecked.
func (d Date) AddMonthsChecked(n int) (Date, error) {
	const span = (MaxYear - MinYear + 1) * 12
	if n > span || n < -span {
		return Date{}, ErrInvalidYear.WithDetailf("%s %+d months", d, n)
	}
	r := d.AddMonths(n)
	if !r.InRange() {
		return Date{}, ErrInvalidYear.WithDetailf("%s %+d months", d, n)
	}
	return r, nil
}

// AddMonths returns d shifted by n calendar months holding the day of month.
// When that day does not exist in the target month the result is clamped to
// the month's last day: 2025-01-31 + 1 month = 2025-02-28.
func (d Date) AddMonths(n int) Date {
	// normalise through the 1st so time.Date never overflows the month
	first := time.Date(d.year, d.month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	y, m := first.Year(), first.Month()
	day := d.day
	if last := DaysIn(y, m); day > last {
		day = last
	}
	return Date{year: y, month: m, day: day}
}

// DaysUntil returns the signed number of days from d to other; negative when
// other is before d.
func (d Date) DaysUntil(other Date) int {
	return int((other.time().Unix() - d.time().Unix()) / 86400)
}

// Compare returns -1, 0 or +1 as d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return sign(d.year - other.year)
	case d.month != other.month:
		return sign(int(d.month) - int(other.month))
	default:
		return sign(d.day - other.day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date { return Date{year: d.year, month: d.month, day: 1} }

// LastOfMonth returns the last day of d's month.
func (d Date) LastOfMonth() Date {
	return Date{year: d.year, month: d.month, day: DaysIn(d.year, d.month)}
}

// String returns the ISO form.
func (d Date) String() string {
	return d.time().Format(Layout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	if d.year < MinYear || d.year > MaxYear {
		return nil, ErrInvalidYear.WithDetailf("%d", d.year)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Time returns midnight UTC on d. Useful for interop only; the result must
// not be used for day arithmetic in other locations.
func (d Date) Time() time.Time { return d.time() }

func (d Date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in month m of year.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
