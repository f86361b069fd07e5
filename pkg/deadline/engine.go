package deadline

import (
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// Engine is the string-boundary facade over a Calendar. Every date argument
// and result is an ISO "YYYY-MM-DD" string; malformed input fails with an
// error matching caldate.ErrInvalidDateFormat.
type Engine struct {
	cal   *Calendar
	clock Clock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCalendar replaces the default calendar.
func WithCalendar(c *Calendar) EngineOption {
	return func(e *Engine) { e.cal = c }
}

// WithClock replaces the system clock used for countdowns.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// NewEngine returns an Engine over the built-in holiday table and the
// system clock unless overridden.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.cal == nil {
		e.cal = DefaultCalendar()
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	return e
}

// Calendar returns the engine's calendar for typed access.
func (e *Engine) Calendar() *Calendar { return e.cal }

// Today returns the engine clock's current day.
func (e *Engine) Today() caldate.Date { return e.clock.Today() }

// IsHoliday reports whether date is a holiday. When holidays are supplied
// they are consulted instead of the calendar's own table.
func (e *Engine) IsHoliday(date string, holidays ...holiday.Set) (bool, error) {
	d, err := caldate.Parse(date)
	if err != nil {
		return false, err
	}
	if len(holidays) == 0 {
		return e.cal.IsHoliday(d), nil
	}
	for _, set := range holidays {
		if e.cal.IsHolidayIn(d, set) {
			return true, nil
		}
	}
	return false, nil
}

// IsBusinessDay reports whether date is neither a weekend day nor a holiday.
func (e *Engine) IsBusinessDay(date string) (bool, error) {
	d, err := caldate.Parse(date)
	if err != nil {
		return false, err
	}
	return e.cal.IsBusinessDay(d), nil
}

// AddCalendarDays see Calendar.AddCalendarDays.
func (e *Engine) AddCalendarDays(start string, days int) (string, error) {
	return e.advance(start, days, e.cal.AddCalendarDays)
}

// AddBusinessDays see Calendar.AddBusinessDays.
func (e *Engine) AddBusinessDays(start string, days int) (string, error) {
	return e.advance(start, days, e.cal.AddBusinessDays)
}

// AddMonths see Calendar.AddMonths.
func (e *Engine) AddMonths(start string, months int) (string, error) {
	return e.advance(start, months, e.cal.AddMonths)
}

// CalculateAnswerDeadline returns the answer deadline for a service date.
func (e *Engine) CalculateAnswerDeadline(serviceDate string) (string, error) {
	d, err := caldate.Parse(serviceDate)
	if err != nil {
		return "", err
	}
	out, err := e.cal.AnswerDeadline(d)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// CalculateDiscoveryClose returns the discovery close date for the date the
// answer was filed.
func (e *Engine) CalculateDiscoveryClose(answerFiledDate string) (string, error) {
	d, err := caldate.Parse(answerFiledDate)
	if err != nil {
		return "", err
	}
	out, err := e.cal.DiscoveryClose(d)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// DaysUntilDeadline returns the signed number of days from today to
// deadline; negative when overdue.
func (e *Engine) DaysUntilDeadline(deadline string) (int, error) {
	d, err := caldate.Parse(deadline)
	if err != nil {
		return 0, err
	}
	return e.clock.Today().DaysUntil(d), nil
}

// GetDeadlineStatus evaluates deadline against today.
func (e *Engine) GetDeadlineStatus(deadline string) (Status, error) {
	d, err := caldate.Parse(deadline)
	if err != nil {
		return Status{}, err
	}
	return StatusAt(e.clock.Today(), d), nil
}

// FormatWithGracePeriod pairs deadline with the end of a grace period.
func (e *Engine) FormatWithGracePeriod(deadline string, graceDays int) (GraceResult, error) {
	d, err := caldate.Parse(deadline)
	if err != nil {
		return GraceResult{}, err
	}
	return e.cal.WithGracePeriod(d, graceDays)
}

func (e *Engine) advance(start string, n int, fn func(caldate.Date, int) (caldate.Date, error)) (string, error) {
	d, err := caldate.Parse(start)
	if err != nil {
		return "", err
	}
	out, err := fn(d, n)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
