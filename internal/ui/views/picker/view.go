package picker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"feastly/internal/modules/feast/dto"
	"feastly/internal/ui/theme"
)

const visibleRows = 5

// Model is a wheel-style list of candidate end times.
type Model struct {
	options []dto.TimeOptionOutput
	cursor  int
}

func New() Model {
	return Model{}
}

// SetOptions replaces the options and keeps the cursor on the option whose
// hour count matches defaultHours, or the closest one before it.
func (m *Model) SetOptions(options []dto.TimeOptionOutput, defaultHours int) {
	m.options = options
	m.cursor = 0
	for i, o := range options {
		if o.Hours > defaultHours {
			break
		}
		m.cursor = i
	}
}

// Stale reports whether the options were generated for an earlier "now"
// and no longer start at least the minimum window ahead.
func (m Model) Stale(now time.Time, minimum time.Duration) bool {
	return len(m.options) == 0 || m.options[0].At.Before(now.Add(minimum))
}

func (m *Model) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Model) Down() {
	if m.cursor < len(m.options)-1 {
		m.cursor++
	}
}

func (m Model) Selected() (dto.TimeOptionOutput, bool) {
	if len(m.options) == 0 {
		return dto.TimeOptionOutput{}, false
	}
	return m.options[m.cursor], true
}

func (m Model) View() string {
	selected, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No time options available")
	}
	half := visibleRows / 2
	rows := make([]string, 0, visibleRows)
	for i := m.cursor - half; i <= m.cursor+half; i++ {
		if i < 0 || i >= len(m.options) {
			rows = append(rows, "")
			continue
		}
		label := fmt.Sprintf("%8s", m.options[i].Label)
		if i == m.cursor {
			rows = append(rows, theme.Hot.Render(label))
		} else {
			rows = append(rows, theme.Muted.Render(label))
		}
	}
	wheel := theme.Pane.Render(strings.Join(rows, "\n"))
	line := lipgloss.JoinHorizontal(lipgloss.Center,
		theme.Muted.Render("Feast by  "),
		wheel,
		theme.Muted.Render("  "+selected.DayLabel),
	)
	button := theme.Button.Render(fmt.Sprintf("Feast in %d hours", selected.Hours))
	return lipgloss.JoinVertical(lipgloss.Left, line, "", button)
}
