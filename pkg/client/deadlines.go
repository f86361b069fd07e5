package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/holiday"
)

// ComputeRequest asks for one deadline, by Rule or by Kind and Magnitude.
type ComputeRequest struct {
	Rule        string `json:"rule,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Magnitude   *int   `json:"magnitude,omitempty"`
	TriggerDate string `json:"trigger_date"`
	GraceDays   *int   `json:"grace_days,omitempty"`
	WithGrace   bool   `json:"with_grace,omitempty"`
}

// Status is a deadline countdown. Urgency is one of closed, critical,
// urgent, warning or normal.
type Status struct {
	DaysRemaining int    `json:"days_remaining"`
	Urgency       string `json:"urgency"`
	IsClosed      bool   `json:"is_closed"`
	IsCritical    bool   `json:"is_critical"`
}

// Computation is a computed deadline.
type Computation struct {
	ID          string                `json:"id"`
	Rule        string                `json:"rule,omitempty"`
	Kind        deadline.RuleKind     `json:"kind"`
	Magnitude   int                   `json:"magnitude"`
	TriggerDate caldate.Date          `json:"trigger_date"`
	Deadline    caldate.Date          `json:"deadline"`
	Status      Status                `json:"status"`
	Grace       *deadline.GraceResult `json:"grace,omitempty"`
	ComputedAt  time.Time             `json:"computed_at"`
}

// StatusReport is a deadline countdown as of the server's today.
type StatusReport struct {
	Deadline caldate.Date `json:"deadline"`
	Today    caldate.Date `json:"today"`
	Status   Status       `json:"status"`
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

// HolidayList is the holiday table of one year.
type HolidayList struct {
	Year         int             `json:"year"`
	Jurisdiction string          `json:"jurisdiction"`
	Observance   string          `json:"observance"`
	Holidays     []holiday.Entry `json:"holidays"`
}

// Compute computes a deadline.
func (c *Client) Compute(ctx context.Context, req *ComputeRequest) (*Computation, error) {
	var out Computation
	if err := c.post(ctx, "/api/v1/deadlines/compute", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status reports the countdown to deadlineDate.
func (c *Client) Status(ctx context.Context, deadlineDate string) (*StatusReport, error) {
	var out StatusReport
	if err := c.get(ctx, "/api/v1/deadlines/status?deadline="+url.QueryEscape(deadlineDate), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rules lists the server's named rules.
func (c *Client) Rules(ctx context.Context) ([]deadline.Rule, error) {
	var out struct {
		Rules []deadline.Rule `json:"rules"`
	}
	if err := c.get(ctx, "/api/v1/rules", &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}

// Holidays lists the holidays of year.
func (c *Client) Holidays(ctx context.Context, year int) (*HolidayList, error) {
	var out HolidayList
	if err := c.get(ctx, fmt.Sprintf("/api/v1/holidays/%d", year), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Day classifies date.
func (c *Client) Day(ctx context.Context, date string) (*DayInfo, error) {
	var out DayInfo
	if err := c.get(ctx, "/api/v1/days/"+url.PathEscape(date), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
