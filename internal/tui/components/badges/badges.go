package badges

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitlit/internal/progression"
)

var (
	unlockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	Badges   []progression.BadgeStatus
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.Badges) == 0 {
		return "No badges in the catalog."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetBadges(badges []progression.BadgeStatus) {
	m.Badges = badges
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, s := range m.Badges {
		if s.Progress.Unlocked {
			b.WriteString(unlockedStyle.Render("★ " + s.Badge.Name))
		} else {
			b.WriteString(lockedStyle.Render(fmt.Sprintf("☆ %s (%d/%d)", s.Badge.Name, s.Progress.Progress, s.Badge.Target)))
		}
		b.WriteString("\n  " + descStyle.Render(s.Badge.Description) + "\n")
	}
	m.viewport.SetContent(b.String())
}
