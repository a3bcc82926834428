package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"feastly/internal/modules/feast/dto"
	"feastly/internal/ui/theme"
)

var (
	dayStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(theme.Stone)
	selectedStyle = lipgloss.NewStyle().Padding(0, 1).Background(theme.StoneSoft).Foreground(theme.Ink)
	todayStyle    = lipgloss.NewStyle().Padding(0, 1).Background(theme.Ink).Foreground(theme.Cream).Bold(true)
	markStyle     = lipgloss.NewStyle().Foreground(theme.Orange)
)

// Model renders the current month as a horizontal strip of day numbers,
// keeping the selected day centred, and lists the windows of that day.
type Model struct {
	days     []time.Time
	selected time.Time
	today    time.Time
	marked   map[string]bool
	windows  []dto.WindowOutput
	width    int
}

func New() Model {
	return Model{marked: map[string]bool{}}
}

func (m *Model) SetWidth(w int) { m.width = w }

// SetDates refreshes the strip for the month of today.
func (m *Model) SetDates(selected, today time.Time, days []time.Time) {
	m.selected = selected
	m.today = today
	m.days = days
}

// SetHistory marks every day that has at least one window.
func (m *Model) SetHistory(history []dto.WindowOutput) {
	m.marked = make(map[string]bool, len(history))
	for _, w := range history {
		m.marked[dayKey(w.StartDate.In(m.today.Location()))] = true
	}
}

func (m *Model) SetWindows(windows []dto.WindowOutput) { m.windows = windows }

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderStrip(), "", m.renderDay())
}

func (m Model) renderStrip() string {
	if len(m.days) == 0 {
		return ""
	}
	cells := make([]string, 0, len(m.days))
	selectedIdx := 0
	for i, d := range m.days {
		label := fmt.Sprintf("%2d", d.Day())
		if m.marked[dayKey(d)] {
			label += markStyle.Render("•")
		} else {
			label += " "
		}
		isSelected := dayKey(d) == dayKey(m.selected)
		isToday := dayKey(d) == dayKey(m.today)
		switch {
		case isSelected && isToday:
			cells = append(cells, todayStyle.Render(label))
		case isSelected:
			cells = append(cells, selectedStyle.Render(label))
		default:
			cells = append(cells, dayStyle.Render(label))
		}
		if isSelected {
			selectedIdx = i
		}
	}
	return strings.Join(m.visible(cells, selectedIdx), "")
}

// visible trims the strip to the width, centred on the selected cell.
func (m Model) visible(cells []string, selectedIdx int) []string {
	if m.width <= 0 || len(cells) == 0 {
		return cells
	}
	cellW := lipgloss.Width(cells[0])
	fit := m.width / cellW
	if fit >= len(cells) || fit <= 0 {
		return cells
	}
	start := selectedIdx - fit/2
	if start < 0 {
		start = 0
	}
	if start+fit > len(cells) {
		start = len(cells) - fit
	}
	return cells[start : start+fit]
}

func (m Model) renderDay() string {
	if len(m.windows) == 0 {
		return theme.Muted.Render("No feast windows on this day")
	}
	var sb strings.Builder
	for _, w := range m.windows {
		state := "done"
		if w.IsActive {
			state = theme.Hot.Render("active")
		}
		sb.WriteString(fmt.Sprintf("%s → %s  %s  %s\n",
			w.StartDate.In(m.today.Location()).Format("15:04"),
			w.EndDate.In(m.today.Location()).Format("Mon 15:04"),
			w.FormattedDuration,
			state,
		))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
