package domain

import "time"

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthDays lists midnight of every day in ref's month.
func MonthDays(ref time.Time) []time.Time {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	days := make([]time.Time, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ShiftDay moves date by the given number of days. The move is refused when
// the target leaves the month of today.
func ShiftDay(date, today time.Time, days int) (time.Time, bool) {
	target := date.AddDate(0, 0, days)
	ty, tm, _ := target.Date()
	ny, nm, _ := today.In(target.Location()).Date()
	if ty != ny || tm != nm {
		return date, false
	}
	return target, true
}

// WindowsOn filters windows whose start falls on date's calendar day in loc.
func WindowsOn(windows []FeastWindow, date time.Time, loc *time.Location) []FeastWindow {
	out := make([]FeastWindow, 0)
	for _, w := range windows {
		if SameDay(w.StartDate, date, loc) {
			out = append(out, w)
		}
	}
	return out
}
