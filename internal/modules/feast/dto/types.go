package dto

import "time"

type BeginInput struct {
	Duration time.Duration
}

// BeginAtInput carries an end time picked from the time options. Only the
// whole hours it maps to are used.
type BeginAtInput struct {
	Picked time.Time
}

type BeginOutput struct {
	Window      WindowOutput
	Hours       int
	DisplacedID string
}

type WindowOutput struct {
	ID                     string
	StartDate              time.Time
	EndDate                time.Time
	IsActive               bool
	Duration               time.Duration
	FormattedDuration      string
	TimeRemaining          time.Duration
	TimeRemainingFormatted string
	Progress               float64
}

type StatusOutput struct {
	Now          time.Time
	HasActive    bool
	Current      WindowOutput
	SelectedDate time.Time
	HistoryCount int
	Changed      bool
}

type TimeOptionOutput struct {
	At       time.Time
	Label    string
	DayLabel string
	Hours    int
}

type ExportOutput struct {
	Windows int
}
