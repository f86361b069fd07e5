package deadline

import (
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/errors"
)

// ErrUnknownRule is returned by RuleByName for unregistered names.
var ErrUnknownRule = errors.New(errors.ErrCodeUnknownRule, "unknown deadline rule")

// ShortDeadlineDays is the threshold below which a period of days is a short
// deadline and counted in business days only.
const ShortDeadlineDays = 7

// Rule is a named statutory deadline: a counting rule fixed together with a
// magnitude.
type Rule struct {
	Name        string   `json:"name"`
	Kind        RuleKind `json:"kind"`
	Magnitude   int      `json:"magnitude"`
	Description string   `json:"description"`
}

// Apply computes the rule's deadline from trigger.
func (r Rule) Apply(c *Calendar, trigger caldate.Date) (caldate.Date, error) {
	return c.Advance(r.Kind, trigger, r.Magnitude)
}

// Registered rule names.
const (
	RuleAnswer         = "answer"
	RuleDiscoveryClose = "discovery_close"
	RuleObjection      = "objection"
	RuleMotionResponse = "motion_response"
)

var registry = [...]Rule{
	{
		Name:        RuleAnswer,
		Kind:        CalendarDaysWithRollForward,
		Magnitude:   30,
		Description: "answer due 30 days after service",
	},
	{
		Name:        RuleDiscoveryClose,
		Kind:        MonthsWithRollForward,
		Magnitude:   6,
		Description: "discovery closes 6 months after the answer is filed",
	},
	{
		Name:        RuleObjection,
		Kind:        CalendarDaysWithRollForward,
		Magnitude:   14,
		Description: "objections due 14 days after service of the report",
	},
	{
		Name:        RuleMotionResponse,
		Kind:        BusinessDaysOnly,
		Magnitude:   5,
		Description: "response due 5 court days after service of the motion",
	},
}

// Rules returns a copy of the registered rules.
func Rules() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry[:])
	return out
}

// RuleByName looks up a registered rule.
func RuleByName(name string) (Rule, error) {
	for _, r := range registry {
		if r.Name == name {
			return r, nil
		}
	}
	return Rule{}, ErrUnknownRule.WithDetail(name)
}

// AnswerDeadline is the answer deadline: 30 calendar days from service,
// rolled forward.
func (c *Calendar) AnswerDeadline(serviceDate caldate.Date) (caldate.Date, error) {
	return c.AddCalendarDays(serviceDate, 30)
}

// DiscoveryClose is the close of discovery: 6 months from the date the
// answer was filed, rolled forward.
func (c *Calendar) DiscoveryClose(answerFiledDate caldate.Date) (caldate.Date, error) {
	return c.AddMonths(answerFiledDate, 6)
}

// ShortDeadlineKind returns the counting rule for a period of days: short
// deadlines under a week count business days only.
func ShortDeadlineKind(days int) RuleKind {
	if days < ShortDeadlineDays {
		return BusinessDaysOnly
	}
	return CalendarDaysWithRollForward
}

// AddDays applies the general "N days" statute, choosing the counting rule
// by the length of the period.
func (c *Calendar) AddDays(start caldate.Date, n int) (caldate.Date, error) {
	return c.Advance(ShortDeadlineKind(n), start, n)
}
