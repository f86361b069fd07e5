package holiday

import (
	"strings"
	"time"

	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/errors"
)

// ObservancePolicy controls whether a fixed-date holiday that lands on a
// weekend is moved to a weekday.
type ObservancePolicy uint8

const (
	// ObserveLiteral records every holiday on its literal date.
	ObserveLiteral ObservancePolicy = iota
	// ObserveNearestWeekday moves a Saturday holiday to the preceding Friday
	// and a Sunday holiday to the following Monday. Floating holidays are
	// unaffected since they always land on their own weekday.
	ObserveNearestWeekday
)

var policyNames = map[ObservancePolicy]string{
	ObserveLiteral:        "literal",
	ObserveNearestWeekday: "nearest_weekday",
}

func (p ObservancePolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePolicy maps a configuration string to a policy. The empty string
// selects ObserveLiteral.
func ParsePolicy(s string) (ObservancePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return ObserveLiteral, nil
	case "nearest_weekday", "nearest-weekday":
		return ObserveNearestWeekday, nil
	}
	return 0, errors.New(errors.ErrCodeValidation, "unknown observance policy").WithDetail(s)
}

// Resolve computes the holidays falling in year. It is a pure function of
// its arguments. defs are assumed valid; see ValidateAll.
//
// Under ObserveNearestWeekday an observed date may cross a year boundary
// (January 1 on a Saturday is observed on December 31), so the neighbouring
// years' definitions are resolved as well and filtered to year.
func Resolve(year int, defs []Definition, policy ObservancePolicy) Set {
	entries := make([]Entry, 0, len(defs))
	years := []int{year}
	if policy == ObserveNearestWeekday {
		years = []int{year - 1, year, year + 1}
	}
	for _, y := range years {
		if y < caldate.MinYear || y > caldate.MaxYear {
			continue
		}
		for _, d := range defs {
			date, ok := d.dateIn(y)
			if !ok {
				continue
			}
			if policy == ObserveNearestWeekday && d.Kind == KindFixed {
				date = observed(date)
			}
			entries = append(entries, Entry{Date: date, Name: d.Name})
		}
	}
	return NewSet(year, entries)
}

func observed(d caldate.Date) caldate.Date {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(1)
	}
	return d
}
