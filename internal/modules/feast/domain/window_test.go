package domain_test

import (
	"testing"
	"time"

	"feastly/internal/modules/feast/domain"
)

func TestFeastWindowDerivedValues(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	w := domain.FeastWindow{ID: "w-1", StartDate: start, EndDate: start.Add(16 * time.Hour), IsActive: true}

	if w.Duration() != 16*time.Hour {
		t.Fatalf("expected 16h duration, got %s", w.Duration())
	}
	if w.DurationInHours() != 16 {
		t.Fatalf("expected 16 hours, got %.2f", w.DurationInHours())
	}
	if w.FormattedDuration() != "16h" {
		t.Fatalf("expected 16h label, got %q", w.FormattedDuration())
	}

	quarter := start.Add(4 * time.Hour)
	if got := w.ProgressPercentage(quarter); got != 0.25 {
		t.Fatalf("expected 0.25 progress, got %.4f", got)
	}
	if got := w.TimeRemaining(quarter); got != 12*time.Hour {
		t.Fatalf("expected 12h remaining, got %s", got)
	}
	if got := w.TimeRemainingFormatted(quarter.Add(30 * time.Second)); got != "11:59" {
		t.Fatalf("expected 11:59, got %q", got)
	}
}

func TestFeastWindowClampsOutsideRange(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	w := domain.FeastWindow{ID: "w-1", StartDate: start, EndDate: start.Add(8 * time.Hour), IsActive: true}

	if got := w.ProgressPercentage(start.Add(-time.Hour)); got != 0 {
		t.Fatalf("progress before start must clamp to 0, got %.2f", got)
	}
	if got := w.ProgressPercentage(start.Add(9 * time.Hour)); got != 1 {
		t.Fatalf("progress after end must clamp to 1, got %.2f", got)
	}
	if got := w.TimeRemaining(start.Add(9 * time.Hour)); got != 0 {
		t.Fatalf("remaining after end must be 0, got %s", got)
	}
	if got := w.TimeRemainingFormatted(start.Add(9 * time.Hour)); got != "00:00" {
		t.Fatalf("expected 00:00 after end, got %q", got)
	}

	w.IsActive = false
	if got := w.ProgressPercentage(start.Add(4 * time.Hour)); got != 0 {
		t.Fatalf("inactive window progress must be 0, got %.2f", got)
	}
}

func TestFeastWindowExpiredAtEnd(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	w := domain.FeastWindow{ID: "w-1", StartDate: start, EndDate: start.Add(time.Hour), IsActive: true}
	if w.Expired(start.Add(time.Hour - time.Nanosecond)) {
		t.Fatalf("window must not expire before its end")
	}
	if !w.Expired(start.Add(time.Hour)) {
		t.Fatalf("window must expire exactly at its end")
	}
}

func TestFeastWindowValidate(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	base := domain.FeastWindow{ID: "w-1", StartDate: start, EndDate: start.Add(time.Hour)}
	if err := base.Validate(); err != nil {
		t.Fatalf("window should be valid: %v", err)
	}
	missingID := base
	missingID.ID = ""
	if err := missingID.Validate(); err == nil {
		t.Fatalf("missing id should fail")
	}
	inverted := base
	inverted.EndDate = start
	if err := inverted.Validate(); err == nil {
		t.Fatalf("end equal to start should fail")
	}
}
