// Package progress reports summarisation progress, as a bubbletea progress
// bar on a terminal or as log lines elsewhere.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/faqgen/internal/adapters/driving/tui/styles"
)

const (
	barPadding  = 2
	maxBarWidth = 60
)

// Model is the bubbletea model behind the progress bar.
type Model struct {
	bar      progress.Model
	keys     *keymap.KeyMap
	styles   *styles.Styles
	onCancel func()

	done     int
	total    int
	finished bool
	canceled bool
}

// Ensure Model implements tea.Model.
var _ tea.Model = Model{}

// NewModel creates a progress model. onCancel runs when the user quits.
func NewModel(onCancel func()) Model {
	s := styles.DefaultStyles()
	theme := s.Theme()
	return Model{
		bar: progress.New(
			progress.WithGradient(string(theme.Primary), string(theme.Secondary)),
			progress.WithWidth(maxBarWidth/2),
		),
		keys:     keymap.DefaultKeyMap(),
		styles:   s,
		onCancel: onCancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.canceled = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-barPadding*2-20, maxBarWidth)
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}

	case messages.Started:
		m.total = msg.Total
		m.done = 0

	case messages.Advanced:
		m.done = msg.Done
		m.total = msg.Total

	case messages.LogLine:
		return m, tea.Println(msg.Text)

	case messages.Finished:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	pad := strings.Repeat(" ", barPadding)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(pad + m.styles.Title.Render("Summarising codebase") + "\n")
	b.WriteString(pad + m.bar.ViewAs(m.Percent()) + " ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d/%d chunks", m.done, m.total)) + "\n")

	switch {
	case m.canceled:
		b.WriteString(pad + m.styles.Warning.Render("Cancelling...") + "\n")
	case !m.finished:
		help := m.keys.Quit.Help()
		b.WriteString(pad + m.styles.Help.Render(help.Key+" "+help.Desc) + "\n")
	}
	return b.String()
}

// Percent returns completion in [0, 1].
func (m Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// Done returns the number of completed chunks.
func (m Model) Done() int {
	return m.done
}

// Canceled reports whether the user quit.
func (m Model) Canceled() bool {
	return m.canceled
}
