// The live view for `xray-inspect stats --watch`: a standard Bubble Tea
// Init/Update/View model, a key.Binding quit map, and the StatBoxStyle /
// TitleStyle rendering primitives from styles.go.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SpoolSnapshot is the data one poll of the spool produces. It is computed
// by the caller (cli/cmd) from internal/spool.StorageAdapter so this
// package never imports internal/ directly.
type SpoolSnapshot struct {
	TotalEntries int
	TotalBytes   int64
	Quota        int64
	DataEntries  int
	EventEntries int
	OldestAge    time.Duration
}

// PollFunc produces a fresh SpoolSnapshot on each tick.
type PollFunc func() (SpoolSnapshot, error)

type tickMsg time.Time

type spoolWatchModel struct {
	poll     PollFunc
	interval time.Duration
	snapshot SpoolSnapshot
	err      error
	quitting bool
}

// NewSpoolWatchModel builds the live spool-occupancy model.
func NewSpoolWatchModel(poll PollFunc, interval time.Duration) tea.Model {
	return spoolWatchModel{poll: poll, interval: interval}
}

func (m spoolWatchModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.pollCmd())
}

func (m spoolWatchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m spoolWatchModel) pollCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.poll()
		if err != nil {
			return errMsg{err}
		}
		return snap
	}
}

type errMsg struct{ error }

func (m spoolWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.pollCmd())
	case SpoolSnapshot:
		m.snapshot = msg
		m.err = nil
	case errMsg:
		m.err = msg.error
	}
	return m, nil
}

func (m spoolWatchModel) View() string {
	if m.quitting {
		return ""
	}

	title := TitleStyle.Render("xray spool — live occupancy")
	if m.err != nil {
		return title + "\n\n" + ErrorStyle.Render(m.err.Error()) + "\n\n" + HelpStyle.Render("Press q or Ctrl+C to quit")
	}

	occupancyColor := successColor
	if m.snapshot.Quota > 0 {
		ratio := float64(m.snapshot.TotalBytes) / float64(m.snapshot.Quota)
		switch {
		case ratio >= 0.9:
			occupancyColor = errorColor
		case ratio >= 0.6:
			occupancyColor = warningColor
		}
	}

	boxes := []string{
		statBox("Entries", fmt.Sprintf("%d", m.snapshot.TotalEntries), highlightColor),
		statBox("Data", fmt.Sprintf("%d", m.snapshot.DataEntries), highlightColor),
		statBox("Events", fmt.Sprintf("%d", m.snapshot.EventEntries), highlightColor),
		statBox("Bytes", formatBytes(m.snapshot.TotalBytes), occupancyColor),
		statBox("Oldest", m.snapshot.OldestAge.Round(time.Second).String(), mutedColor),
	}

	content := title + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
	return content + "\n\n" + HelpStyle.Render("Press q or Ctrl+C to quit")
}

func statBox(label, value string, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)
	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for x := n / unit; x >= unit; x /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

var quitKey = key.NewBinding(
	key.WithKeys("q", "ctrl+c"),
	key.WithHelp("q", "quit"),
)

// RunSpoolWatch runs the live TUI until the user quits.
func RunSpoolWatch(poll PollFunc, interval time.Duration) error {
	p := tea.NewProgram(NewSpoolWatchModel(poll, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
