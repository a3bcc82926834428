package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"feastly/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Orange).
			Background(theme.Mantle).
			Foreground(theme.Ink).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().Foreground(theme.Stone)
)

// hints must stay in sync with the switch in app/model.go executePalette.
var paletteHints = []string{
	"feast:begin [hours]",
	"feast:cancel",
	"feast:complete",
	"day:next",
	"day:prev",
	"day:today",
	"export:ics <path>",
}

// Palette is a command line overlay backed by bubbles/textinput. Tab
// completes the first matching command.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

// NewPalette creates a hidden Palette ready to be opened.
func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "feast:begin 16"
	ti.CharLimit = 256
	return Palette{input: ti}
}

// Visible reports whether the palette is currently shown.
func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

// SetWidth sets the render width for the overlay.
func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if matches := matchingHints(p.input.Value(), 1); len(matches) == 1 {
				p.input.SetValue(strings.Fields(matches[0])[0] + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	lines := []string{theme.Title.Render("Commands"), ": " + p.input.View()}
	if matches := matchingHints(p.input.Value(), 5); len(matches) > 0 {
		lines = append(lines, "")
		for _, h := range matches {
			lines = append(lines, hintStyle.Render("  "+h))
		}
	}
	w := p.width
	if w < 20 {
		w = 48
	}
	return paletteStyle.Width(w - 2).Render(strings.Join(lines, "\n"))
}

func matchingHints(input string, limit int) []string {
	prefix := strings.ToLower(strings.TrimSpace(input))
	var out []string
	for _, h := range paletteHints {
		if prefix == "" || strings.HasPrefix(h, prefix) {
			out = append(out, h)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
