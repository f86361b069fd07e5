package deadline

import (
	"fmt"

	"github.com/turtacn/lexclock/pkg/caldate"
)

// GraceResult pairs an authoritative deadline with a display-only grace end.
// Deadline is always the input deadline, unchanged.
type GraceResult struct {
	Deadline    caldate.Date `json:"deadline"`
	GraceEnd    caldate.Date `json:"grace_end"`
	GraceDays   int          `json:"grace_days"`
	DisplayText string       `json:"display_text"`
}

// WithGracePeriod computes the end of a grace period of graceDays after
// deadline using the calendar-day advancer, so the grace end also rolls off
// weekends and holidays.
func (c *Calendar) WithGracePeriod(deadline caldate.Date, graceDays int) (GraceResult, error) {
	end, err := c.AddCalendarDays(deadline, graceDays)
	if err != nil {
		return GraceResult{}, err
	}
	return GraceResult{
		Deadline:    deadline,
		GraceEnd:    end,
		GraceDays:   graceDays,
		DisplayText: fmt.Sprintf("%s (grace period ends %s)", deadline, end),
	}, nil
}
