package deadline

import (
	"strings"

	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/errors"
)

// ErrInvalidMagnitude is returned for negative day or month counts; statutes
// only define forward-looking deadlines. Counts that would carry a date past
// 9999-12-31 fail with caldate.ErrInvalidYear instead.
var ErrInvalidMagnitude = errors.New(errors.ErrCodeInvalidMagnitude, "invalid magnitude, counts must not be negative")

// RuleKind selects the counting rule an advance uses.
type RuleKind uint8

const (
	CalendarDaysWithRollForward RuleKind = iota + 1
	BusinessDaysOnly
	MonthsWithRollForward
)

var ruleKindNames = map[RuleKind]string{
	CalendarDaysWithRollForward: "calendar_days",
	BusinessDaysOnly:            "business_days",
	MonthsWithRollForward:       "months",
}

func (k RuleKind) String() string {
	if s, ok := ruleKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k RuleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RuleKind) UnmarshalText(b []byte) error {
	parsed, err := ParseRuleKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseRuleKind accepts the String form of a kind, with dashes or
// underscores.
func ParseRuleKind(s string) (RuleKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range ruleKindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, errors.New(errors.ErrCodeValidation, "unknown rule kind").WithDetail(s)
}

// AddCalendarDays adds n days, then rolls forward past weekends and holidays.
func (c *Calendar) AddCalendarDays(start caldate.Date, n int) (caldate.Date, error) {
	if n < 0 {
		return caldate.Date{}, ErrInvalidMagnitude.WithDetailf("days=%d", n)
	}
	d, err := start.AddDaysChecked(n)
	if err != nil {
		return caldate.Date{}, err
	}
	return c.RollForward(d)
}

// AddBusinessDays steps forward one day at a time, counting only business
// days, until n have been counted. The result is always a business day:
// n == 0 rolls a non-business start forward.
func (c *Calendar) AddBusinessDays(start caldate.Date, n int) (caldate.Date, error) {
	if n < 0 {
		return caldate.Date{}, ErrInvalidMagnitude.WithDetailf("business_days=%d", n)
	}
	if n == 0 {
		return c.RollForward(start)
	}
	if n > caldate.SpanDays {
		return caldate.Date{}, caldate.ErrInvalidYear.WithDetailf("%s + %d business days", start, n)
	}
	d := start
	for counted := 0; counted < n; {
		next, err := d.AddDaysChecked(1)
		if err != nil {
			return caldate.Date{}, caldate.ErrInvalidYear.WithDetailf("%s + %d business days", start, n)
		}
		d = next
		if c.IsBusinessDay(d) {
			counted++
		}
	}
	return d, nil
}

// AddMonths adds n calendar months holding the day of month, clamping to the
// last day of a shorter target month, then rolls forward.
func (c *Calendar) AddMonths(start caldate.Date, n int) (caldate.Date, error) {
	if n < 0 {
		return caldate.Date{}, ErrInvalidMagnitude.WithDetailf("months=%d", n)
	}
	d, err := start.AddMonthsChecked(n)
	if err != nil {
		return caldate.Date{}, err
	}
	return c.RollForward(d)
}

// Advance dispatches to the advancer for kind.
func (c *Calendar) Advance(kind RuleKind, start caldate.Date, n int) (caldate.Date, error) {
	switch kind {
	case CalendarDaysWithRollForward:
		return c.AddCalendarDays(start, n)
	case BusinessDaysOnly:
		return c.AddBusinessDays(start, n)
	case MonthsWithRollForward:
		return c.AddMonths(start, n)
	}
	return caldate.Date{}, errors.New(errors.ErrCodeValidation, "unknown rule kind").WithDetailf("%d", kind)
}
