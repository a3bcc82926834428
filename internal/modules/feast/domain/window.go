package domain

import (
	"fmt"
	"math"
	"time"
)

// FeastWindow is one eating window. Only the active flag ever changes after
// creation, and it only goes from true to false.
type FeastWindow struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
}

// Same reports whether w and o describe the same record, comparing instants
// rather than their location encoding.
func (w FeastWindow) Same(o FeastWindow) bool {
	return w.ID == o.ID && w.StartDate.Equal(o.StartDate) && w.EndDate.Equal(o.EndDate) && w.IsActive == o.IsActive
}

func (w FeastWindow) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("feast window id is required")
	}
	if !w.EndDate.After(w.StartDate) {
		return fmt.Errorf("feast window %s: end must be after start", w.ID)
	}
	return nil
}

func (w FeastWindow) Duration() time.Duration {
	return w.EndDate.Sub(w.StartDate)
}

func (w FeastWindow) DurationInHours() float64 {
	return w.Duration().Hours()
}

// FormattedDuration renders whole hours, truncated ("16h").
func (w FeastWindow) FormattedDuration() string {
	return fmt.Sprintf("%dh", int(w.DurationInHours()))
}

func (w FeastWindow) TimeRemaining(now time.Time) time.Duration {
	remaining := w.EndDate.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TimeRemainingFormatted renders the remaining time as zero padded HH:MM.
func (w FeastWindow) TimeRemainingFormatted(now time.Time) string {
	total := int(w.TimeRemaining(now) / time.Minute)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (w FeastWindow) ProgressPercentage(now time.Time) float64 {
	if !w.IsActive {
		return 0
	}
	duration := w.Duration()
	if duration <= 0 {
		return 0
	}
	elapsed := now.Sub(w.StartDate)
	return math.Min(1, math.Max(0, float64(elapsed)/float64(duration)))
}

// Expired reports whether the scheduled end has been reached at now.
func (w FeastWindow) Expired(now time.Time) bool {
	return !now.Before(w.EndDate)
}
