package domain_test

import (
	"testing"
	"time"

	"feastly/internal/modules/feast/domain"
)

func TestShiftDayStaysInsideMonth(t *testing.T) {
	t.Parallel()
	today := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	next, ok := domain.ShiftDay(today, today, 1)
	if !ok || next.Day() != 16 {
		t.Fatalf("expected move to the 16th, got %s ok=%v", next, ok)
	}

	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if got, ok := domain.ShiftDay(first, today, -1); ok || !got.Equal(first) {
		t.Fatalf("moving before the 1st must be refused, got %s ok=%v", got, ok)
	}
	last := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	if _, ok := domain.ShiftDay(last, today, 1); ok {
		t.Fatalf("moving past the end of the month must be refused")
	}
}

func TestMonthDays(t *testing.T) {
	t.Parallel()
	days := domain.MonthDays(time.Date(2024, 2, 10, 13, 0, 0, 0, time.UTC))
	if len(days) != 29 {
		t.Fatalf("expected 29 days in Feb 2024, got %d", len(days))
	}
	if days[0].Day() != 1 || days[0].Hour() != 0 || days[28].Day() != 29 {
		t.Fatalf("unexpected bounds %s .. %s", days[0], days[28])
	}
}

func TestWindowsOnMatchesLocalDay(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*3600)
	late := domain.FeastWindow{ID: "late", StartDate: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)}
	early := domain.FeastWindow{ID: "early", StartDate: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}

	got := domain.WindowsOn([]domain.FeastWindow{late, early}, time.Date(2024, 1, 2, 12, 0, 0, 0, loc), loc)
	if len(got) != 1 || got[0].ID != "late" {
		t.Fatalf("expected only the late window on Jan 2 local, got %+v", got)
	}
	if domain.SameDay(early.StartDate, time.Date(2024, 1, 1, 0, 30, 0, 0, loc), time.UTC) {
		t.Fatalf("00:30 at UTC+2 is still Dec 31 in UTC")
	}
}
