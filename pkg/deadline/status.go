package deadline

import (
	"time"

	"github.com/turtacn/lexclock/pkg/caldate"
)

// Urgency buckets days remaining until a deadline. Levels are ordered from
// most to least severe.
type Urgency uint8

const (
	Closed Urgency = iota
	Critical
	Urgent
	Warning
	Normal
)

// Inclusive upper bounds, in days remaining, of the open urgency bands.
const (
	CriticalDays = 30
	UrgentDays   = 60
	WarningDays  = 90
)

var urgencyNames = [...]string{
	Closed:   "closed",
	Critical: "critical",
	Urgent:   "urgent",
	Warning:  "warning",
	Normal:   "normal",
}

func (u Urgency) String() string {
	if int(u) < len(urgencyNames) {
		return urgencyNames[u]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Status is a point-in-time view of a deadline. It is only valid for the day
// it was computed and is never stored.
type Status struct {
	DaysRemaining int     `json:"days_remaining"`
	Urgency       Urgency `json:"urgency"`
	IsClosed      bool    `json:"is_closed"`
	IsCritical    bool    `json:"is_critical"`
}

// Classify maps signed days remaining to an urgency level.
func Classify(daysRemaining int) Urgency {
	switch {
	case daysRemaining < 0:
		return Closed
	case daysRemaining <= CriticalDays:
		return Critical
	case daysRemaining <= UrgentDays:
		return Urgent
	case daysRemaining <= WarningDays:
		return Warning
	default:
		return Normal
	}
}

// NewStatus builds the Status for daysRemaining.
func NewStatus(daysRemaining int) Status {
	u := Classify(daysRemaining)
	return Status{
		DaysRemaining: daysRemaining,
		Urgency:       u,
		IsClosed:      u == Closed,
		IsCritical:    u == Critical,
	}
}

// StatusAt evaluates deadline as seen on today.
func StatusAt(today, deadline caldate.Date) Status {
	return NewStatus(today.DaysUntil(deadline))
}

// Clock supplies "today".
type Clock interface {
	Today() caldate.Date
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() caldate.Date

// Today implements Clock.
func (f ClockFunc) Today() caldate.Date { return f() }

// FixedClock always reports d.
func FixedClock(d caldate.Date) Clock {
	return ClockFunc(func() caldate.Date { return d })
}

// SystemClock reads the local wall clock and keeps only its calendar day.
type SystemClock struct{}

// Today implements Clock.
func (SystemClock) Today() caldate.Date { return caldate.FromTime(time.Now()) }
