// Package deadline computes statutory deadlines.
//
// A Calendar classifies days as weekend, holiday or business day and
// advances dates under one of three counting rules:
//
//   - CalendarDaysWithRollForward counts every day, then rolls a landing day
//     that is not a business day forward to the next business day.
//   - BusinessDaysOnly counts business days only.
//   - MonthsWithRollForward adds calendar months, clamping to the last day
//     of a shorter month, then rolls forward.
//
// Named statutory rules (answer deadline, discovery close, ...) compose one
// of these advancers with a fixed magnitude. Engine exposes the whole
// package behind an ISO date string boundary.
package deadline

import (
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// Calendar is the day classifier and advancer set for one holiday table.
// It holds no mutable state besides the generator's per-year memo and is
// safe for concurrent use.
type Calendar struct {
	holidays *holiday.Generator
}

// NewCalendar returns a Calendar backed by gen.
func NewCalendar(gen *holiday.Generator) *Calendar {
	return &Calendar{holidays: gen}
}

// DefaultCalendar returns a Calendar over the built-in holiday table with
// literal observance.
func DefaultCalendar() *Calendar {
	return NewCalendar(holiday.MustNewGenerator())
}

// Holidays returns the underlying generator.
func (c *Calendar) Holidays() *holiday.Generator { return c.holidays }

// HolidaysFor returns the holiday set of year.
func (c *Calendar) HolidaysFor(year int) holiday.Set {
	return c.holidays.For(year)
}

// IsWeekend reports whether d is a Saturday or Sunday.
func (c *Calendar) IsWeekend(d caldate.Date) bool {
	return d.IsWeekend()
}

// IsHoliday reports whether d is a holiday in its year's set.
func (c *Calendar) IsHoliday(d caldate.Date) bool {
	return c.holidays.For(d.Year()).Contains(d)
}

// IsHolidayIn reports whether d belongs to set. No set is computed.
func (c *Calendar) IsHolidayIn(d caldate.Date, set holiday.Set) bool {
	return set.Contains(d)
}

// HolidayName returns the name of the holiday on d.
func (c *Calendar) HolidayName(d caldate.Date) (string, bool) {
	return c.holidays.Lookup(d)
}

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
func (c *Calendar) IsBusinessDay(d caldate.Date) bool {
	return !c.IsWeekend(d) && !c.IsHoliday(d)
}

// RollForward returns d if it is a business day, otherwise the next business
// day after it. It fails with caldate.ErrInvalidYear when no business day
// remains before the end of 9999.
func (c *Calendar) RollForward(d caldate.Date) (caldate.Date, error) {
	start := d
	for !c.IsBusinessDay(d) {
		next, err := d.AddDaysChecked(1)
		if err != nil {
			return caldate.Date{}, caldate.ErrInvalidYear.WithDetailf("no business day on or after %s", start)
		}
		d = next
	}
	return d, nil
}
