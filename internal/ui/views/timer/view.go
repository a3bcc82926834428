package timer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"feastly/internal/modules/feast/dto"
	"feastly/internal/ui/theme"
)

// Model shows the countdown and progress of the current window.
type Model struct {
	bar    progress.Model
	status dto.StatusOutput
}

func New() Model {
	bar := progress.New(progress.WithGradient(string(theme.Apricot), string(theme.Orange)))
	return Model{bar: bar}
}

func (m *Model) SetWidth(w int) {
	if w > 4 {
		m.bar.Width = w - 4
	}
}

func (m *Model) SetStatus(status dto.StatusOutput) { m.status = status }

func (m Model) View() string {
	if !m.status.HasActive {
		return ""
	}
	w := m.status.Current
	loc := m.status.Now.Location()
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Feasting") + "  " + theme.Muted.Render(w.FormattedDuration+" window") + "\n\n")
	sb.WriteString(theme.Hot.Render(w.TimeRemainingFormatted) + theme.Muted.Render(" remaining") + "\n\n")
	sb.WriteString(m.bar.ViewAs(w.Progress) + "\n\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("started %s · ends %s",
		w.StartDate.In(loc).Format("Mon 15:04"),
		w.EndDate.In(loc).Format("Mon 15:04"),
	)))
	sb.WriteString("\n\n" + theme.Muted.Render("c: cancel window"))
	return lipgloss.NewStyle().Render(sb.String())
}
