package docket

import (
	"time"

	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// ComputeRequest asks for one deadline. Exactly one of Rule or Kind selects
// the counting rule; Kind requires Magnitude.
//
// Grace is added when GraceDays is set, or when WithGrace is true, in which
// case the configured default length is used.
type ComputeRequest struct {
	Rule        string `json:"rule,omitempty" validate:"max=64"`
	Kind        string `json:"kind,omitempty" validate:"max=32"`
	Magnitude   *int   `json:"magnitude,omitempty" validate:"omitempty,max=36500"`
	TriggerDate string `json:"trigger_date" validate:"required"`
	GraceDays   *int   `json:"grace_days,omitempty" validate:"omitempty,min=0,max=365"`
	WithGrace   bool   `json:"with_grace,omitempty"`
}

// Computation is the result of one ComputeRequest.
type Computation struct {
	ID          string                `json:"id"`
	Rule        string                `json:"rule,omitempty"`
	Kind        deadline.RuleKind     `json:"kind"`
	Magnitude   int                   `json:"magnitude"`
	TriggerDate caldate.Date          `json:"trigger_date"`
	Deadline    caldate.Date          `json:"deadline"`
	Status      deadline.Status       `json:"status"`
	Grace       *deadline.GraceResult `json:"grace,omitempty"`
	ComputedAt  time.Time             `json:"computed_at"`
}

// StatusReport is a deadline countdown as of Today.
type StatusReport struct {
	Deadline caldate.Date    `json:"deadline"`
	Today    caldate.Date    `json:"today"`
	Status   deadline.Status `json:"status"`
}

// DayInfo classifies one calendar day.
type DayInfo struct {
	Date          caldate.Date `json:"date"`
	Weekday       string       `json:"weekday"`
	IsWeekend     bool         `json:"is_weekend"`
	IsHoliday     bool         `json:"is_holiday"`
	HolidayName   string       `json:"holiday_name,omitempty"`
	IsBusinessDay bool         `json:"is_business_day"`
}

// HolidayList is the holiday set of one year.
type HolidayList struct {
	Year         int             `json:"year"`
	Jurisdiction string          `json:"jurisdiction"`
	Observance   string          `json:"observance"`
	Holidays     []holiday.Entry `json:"holidays"`
}
