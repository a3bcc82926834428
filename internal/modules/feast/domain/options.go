package domain

import (
	"math"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	MinWindowHours     = 8
	MaxWindowHours     = 24
	DefaultWindowHours = 16
	OptionCount        = 64
	OptionStep         = 15 * time.Minute
)

// GenerateTimeOptions lists the selectable end times for a new window: 64
// instants 15 minutes apart, starting at the first quarter hour that is at
// least MinWindowHours after now. It returns an empty slice if the series
// cannot be built.
//
// The rule runs in UTC so steps stay 15 elapsed minutes apart across a
// daylight saving change; results are returned in now's location.
func GenerateTimeOptions(now time.Time) []time.Time {
	start := alignToStep(now.Add(MinWindowHours * time.Hour))
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.MINUTELY,
		Interval: int(OptionStep / time.Minute),
		Count:    OptionCount,
		Dtstart:  start.UTC(),
	})
	if err != nil {
		return []time.Time{}
	}
	instants := rule.All()
	options := make([]time.Time, 0, len(instants))
	for _, at := range instants {
		options = append(options, at.In(now.Location()))
	}
	return options
}

// alignToStep rounds t up to the next wall-clock quarter hour in t's location.
// The floor is found by subtracting elapsed time, so an hour repeated by a
// daylight saving change cannot resolve to the wrong occurrence.
func alignToStep(t time.Time) time.Time {
	step := int(OptionStep / time.Minute)
	floor := t.Add(-(time.Duration(t.Minute()%step)*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())))
	if floor.Before(t) {
		return floor.Add(OptionStep)
	}
	return floor
}

// HoursForSelection maps a picked end time to the whole number of hours
// handed to Begin. Negative spans are treated as wrapping past midnight.
func HoursForSelection(picked, now time.Time) int {
	hours := picked.Sub(now).Hours()
	if hours < 0 {
		hours += 24
	}
	rounded := math.Round(hours)
	return int(math.Min(MaxWindowHours, math.Max(MinWindowHours, rounded)))
}

// DayLabel returns "today" when t falls on now's calendar day, otherwise
// "tomorrow".
func DayLabel(t, now time.Time) string {
	if SameDay(t, now, now.Location()) {
		return "today"
	}
	return "tomorrow"
}
