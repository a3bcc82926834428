package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"feastly/internal/modules/feast/domain"
	"feastly/internal/modules/feast/dto"
	"feastly/internal/ui/components"
	"feastly/internal/ui/theme"
	calendarview "feastly/internal/ui/views/calendar"
	pickerview "feastly/internal/ui/views/picker"
	timerview "feastly/internal/ui/views/timer"
)

// ─── port ────────────────────────────────────────────────────────────────────

type feastPort interface {
	BeginHours(ctx context.Context, hours int) (dto.BeginOutput, error)
	BeginAt(ctx context.Context, picked time.Time) (dto.BeginOutput, error)
	Cancel(ctx context.Context) (dto.StatusOutput, error)
	Complete(ctx context.Context) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	History(ctx context.Context) ([]dto.WindowOutput, error)
	WindowsForDate(ctx context.Context, date time.Time) ([]dto.WindowOutput, error)
	SelectDate(ctx context.Context, date time.Time) (dto.StatusOutput, error)
	ShiftSelectedDate(ctx context.Context, days int) (dto.StatusOutput, error)
	TimeOptions(ctx context.Context) ([]dto.TimeOptionOutput, error)
	ExportICS(ctx context.Context, w io.Writer) (dto.ExportOutput, error)
	Subscribe(fn func(dto.StatusOutput)) func()
}

// ─── async messages ──────────────────────────────────────────────────────────

type statusMsg struct {
	status dto.StatusOutput
	err    error
}

// changeMsg carries a status pushed by the engine subscription.
type changeMsg struct {
	status dto.StatusOutput
}

type windowsLoadedMsg struct {
	day     []dto.WindowOutput
	history []dto.WindowOutput
	err     error
}

type optionsLoadedMsg struct {
	options []dto.TimeOptionOutput
	err     error
}

type begunMsg struct {
	out dto.BeginOutput
	err error
}

type cancelledMsg struct {
	status dto.StatusOutput
	err    error
}

type completedMsg struct {
	status dto.StatusOutput
	err    error
}

type dayShiftedMsg struct {
	status dto.StatusOutput
	err    error
}

type exportedMsg struct {
	path string
	out  dto.ExportOutput
	err  error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Begin   key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "pick end time")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↑/↓", "pick end time")),
		PrevDay: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "browse days")),
		NextDay: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←/→", "browse days")),
		Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Begin:   key.NewBinding(key.WithKeys("enter", "b"), key.WithHelp("enter", "begin feast")),
		Cancel:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel feast")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Begin, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Begin, k.Cancel},
		{k.PrevDay, k.Today},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. Engine change notifications arrive on
// a channel fed by a subscription; the newest status replaces any that has
// not been consumed yet.
type Model struct {
	feast        feastPort
	defaultHours int
	changes      chan dto.StatusOutput
	unsubscribe  func()

	calendar calendarview.Model
	picker   pickerview.Model
	timer    timerview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette

	current      dto.StatusOutput
	historyCount int
	status       string
	width        int
	height       int
}

func NewModel(feast feastPort, defaultHours int) Model {
	changes := make(chan dto.StatusOutput, 1)
	unsubscribe := feast.Subscribe(func(s dto.StatusOutput) {
		select {
		case changes <- s:
		default:
			select {
			case <-changes:
			default:
			}
			select {
			case changes <- s:
			default:
			}
		}
	})
	return Model{
		feast:        feast,
		defaultHours: defaultHours,
		changes:      changes,
		unsubscribe:  unsubscribe,
		calendar:     calendarview.New(),
		picker:       pickerview.New(),
		timer:        timerview.New(),
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		historyCount: -1,
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.loadOptionsCmd(), m.waitForChangeCmd())
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette takes all key input while open; engine updates keep flowing.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.palette.SetWidth(min(msg.Width-4, 64))
		m.calendar.SetWidth(msg.Width)
		m.timer.SetWidth(min(msg.Width, 60))

	case statusMsg:
		if msg.err != nil {
			m.status = "status: " + msg.err.Error()
			return m, nil
		}
		cmds = append(cmds, m.applyStatus(msg.status)...)

	case changeMsg:
		cmds = append(cmds, m.applyStatus(msg.status)...)
		cmds = append(cmds, m.waitForChangeCmd())

	case windowsLoadedMsg:
		if msg.err != nil {
			m.status = "history: " + msg.err.Error()
			return m, nil
		}
		m.calendar.SetWindows(msg.day)
		m.calendar.SetHistory(msg.history)

	case optionsLoadedMsg:
		if msg.err != nil {
			m.status = "time options: " + msg.err.Error()
			return m, nil
		}
		m.picker.SetOptions(msg.options, m.defaultHours)

	case begunMsg:
		if msg.err != nil {
			m.status = "begin failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("feast window started (%dh)", msg.out.Hours)
		}

	case cancelledMsg:
		switch {
		case msg.err != nil:
			m.status = "cancel failed: " + msg.err.Error()
		case msg.status.Changed:
			m.status = "feast window cancelled"
		default:
			m.status = "no active feast window"
		}

	case completedMsg:
		switch {
		case msg.err != nil:
			m.status = "complete failed: " + msg.err.Error()
		case msg.status.Changed:
			m.status = "feast window completed"
		default:
			m.status = "no active feast window"
		}

	case dayShiftedMsg:
		if msg.err == nil && !msg.status.Changed {
			m.status = "end of month"
		}

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %d windows to %s", msg.out.Windows, msg.path)
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.unsubscribe != nil {
				m.unsubscribe()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Up):
			m.picker.Up()
		case key.Matches(msg, m.keys.Down):
			m.picker.Down()
		case key.Matches(msg, m.keys.PrevDay):
			cmds = append(cmds, m.shiftDayCmd(-1))
		case key.Matches(msg, m.keys.NextDay):
			cmds = append(cmds, m.shiftDayCmd(1))
		case key.Matches(msg, m.keys.Today):
			cmds = append(cmds, m.selectTodayCmd())
		case key.Matches(msg, m.keys.Begin):
			if m.current.HasActive {
				m.status = "a feast window is already running"
				break
			}
			if option, ok := m.picker.Selected(); ok {
				cmds = append(cmds, m.beginAtCmd(option.At))
			}
		case key.Matches(msg, m.keys.Cancel):
			cmds = append(cmds, m.cancelCmd())
		}
	}
	return m, tea.Batch(cmds...)
}

// applyStatus folds a fresh engine status into the views and returns the
// reloads it makes necessary.
func (m *Model) applyStatus(status dto.StatusOutput) []tea.Cmd {
	var cmds []tea.Cmd
	prev := m.current
	m.current = status
	m.timer.SetStatus(status)
	m.calendar.SetDates(status.SelectedDate, status.Now, domain.MonthDays(status.Now))

	if status.HistoryCount != m.historyCount ||
		prev.HasActive != status.HasActive ||
		!domain.SameDay(prev.SelectedDate, status.SelectedDate, status.Now.Location()) {
		m.historyCount = status.HistoryCount
		cmds = append(cmds, m.loadWindowsCmd(status.SelectedDate))
	}
	if m.picker.Stale(status.Now, domain.MinWindowHours*time.Hour) {
		cmds = append(cmds, m.loadOptionsCmd())
	}
	return cmds
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		main := m.picker.View()
		if m.current.HasActive {
			main = m.timer.View()
		}
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(
			lipgloss.JoinVertical(lipgloss.Left, m.calendar.View(), "", main),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	date := ""
	if !m.current.SelectedDate.IsZero() {
		date = strings.ToUpper(m.current.SelectedDate.Format("Monday, 2. Jan 2006"))
	}
	return theme.Muted.Render(date) + "\n" + theme.Title.Render("Feastly") + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.current.HasActive {
		left = theme.Hot.Render("● "+m.current.Current.TimeRemainingFormatted) + "  " + left
	}
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "feast:begin":
		hours := m.defaultHours
		if len(parts) >= 2 {
			h, err := strconv.Atoi(parts[1])
			if err != nil || h < domain.MinWindowHours || h > domain.MaxWindowHours {
				m.status = "usage: feast:begin [8-24]"
				return m, nil
			}
			hours = h
		}
		return m, m.beginHoursCmd(hours)
	case "feast:cancel":
		return m, m.cancelCmd()
	case "feast:complete":
		return m, m.completeCmd()
	case "day:next":
		return m, m.shiftDayCmd(1)
	case "day:prev":
		return m, m.shiftDayCmd(-1)
	case "day:today":
		return m, m.selectTodayCmd()
	case "export:ics":
		if len(parts) < 2 {
			m.status = "usage: export:ics <path>"
			return m, nil
		}
		return m, m.exportCmd(parts[1])
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) waitForChangeCmd() tea.Cmd {
	return func() tea.Msg {
		return changeMsg{status: <-m.changes}
	}
}

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.feast.Status(context.Background())
		return statusMsg{status: status, err: err}
	}
}

func (m Model) loadWindowsCmd(date time.Time) tea.Cmd {
	return func() tea.Msg {
		day, err := m.feast.WindowsForDate(context.Background(), date)
		if err != nil {
			return windowsLoadedMsg{err: err}
		}
		history, err := m.feast.History(context.Background())
		return windowsLoadedMsg{day: day, history: history, err: err}
	}
}

func (m Model) loadOptionsCmd() tea.Cmd {
	return func() tea.Msg {
		options, err := m.feast.TimeOptions(context.Background())
		return optionsLoadedMsg{options: options, err: err}
	}
}

func (m Model) beginAtCmd(picked time.Time) tea.Cmd {
	return func() tea.Msg {
		out, err := m.feast.BeginAt(context.Background(), picked)
		return begunMsg{out: out, err: err}
	}
}

func (m Model) beginHoursCmd(hours int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.feast.BeginHours(context.Background(), hours)
		return begunMsg{out: out, err: err}
	}
}

func (m Model) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.feast.Cancel(context.Background())
		return cancelledMsg{status: status, err: err}
	}
}

func (m Model) completeCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.feast.Complete(context.Background())
		return completedMsg{status: status, err: err}
	}
}

func (m Model) shiftDayCmd(days int) tea.Cmd {
	return func() tea.Msg {
		status, err := m.feast.ShiftSelectedDate(context.Background(), days)
		return dayShiftedMsg{status: status, err: err}
	}
}

func (m Model) selectTodayCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.feast.SelectDate(context.Background(), m.current.Now)
		return dayShiftedMsg{status: status, err: err}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{path: path, err: err}
		}
		out, err := m.feast.ExportICS(context.Background(), f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		return exportedMsg{path: path, out: out, err: err}
	}
}
