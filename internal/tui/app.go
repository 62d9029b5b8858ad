// internal/tui/app.go
//
// Read-only bubbletea inspector for a finished consensus run. It follows The
// Elm Architecture: the Model holds the result plus view state, Update reacts
// to key and resize messages, and View renders the round list alongside a
// scrollable audit trail.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/The-Almonry/internal/allocation"
	"github.com/kingrea/The-Almonry/internal/consensus"
)

type focusArea int

const (
	focusRounds focusArea = iota
	focusAudit
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	paneStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("212"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	decisionColors = map[consensus.Decision]lipgloss.Color{
		consensus.DecisionApproved:  lipgloss.Color("42"),
		consensus.DecisionModified:  lipgloss.Color("214"),
		consensus.DecisionRejected:  lipgloss.Color("196"),
		consensus.DecisionEscalated: lipgloss.Color("99"),
	}
)

// Model is the inspector's application state.
type Model struct {
	result   consensus.Result
	selected int
	focus    focusArea
	audit    viewport.Model
	width    int
	height   int
	ready    bool
}

// New builds an inspector over a finished result.
func New(result consensus.Result) Model {
	return Model{result: result}
}

// Run opens the inspector in the alternate screen and blocks until quit.
func Run(result consensus.Result) error {
	_, err := tea.NewProgram(New(result), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		auditHeight := msg.Height/2 - 4
		if auditHeight < 3 {
			auditHeight = 3
		}
		if !m.ready {
			m.audit = viewport.New(msg.Width-4, auditHeight)
			m.audit.SetContent(m.auditContent())
			m.ready = true
		} else {
			m.audit.Width = msg.Width - 4
			m.audit.Height = auditHeight
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.focus == focusRounds {
				m.focus = focusAudit
			} else {
				m.focus = focusRounds
			}
			return m, nil
		case "up", "k":
			if m.focus == focusRounds {
				if m.selected > 0 {
					m.selected--
				}
				return m, nil
			}
		case "down", "j":
			if m.focus == focusRounds {
				if m.selected < len(m.result.Rounds)-1 {
					m.selected++
				}
				return m, nil
			}
		}
		if m.focus == focusAudit {
			var cmd tea.Cmd
			m.audit, cmd = m.audit.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	roundPane := paneStyle
	auditPane := paneStyle
	if m.focus == focusRounds {
		roundPane = focusedPaneStyle
	} else {
		auditPane = focusedPaneStyle
	}
	b.WriteString(roundPane.Width(m.width - 2).Render(m.roundsContent()))
	b.WriteString("\n")
	b.WriteString(auditPane.Width(m.width - 2).Render(
		titleStyle.Render("audit trail") + "\n" + m.audit.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: switch pane • up/down: select round or scroll • q: quit"))
	return b.String()
}

func (m Model) header() string {
	color, ok := decisionColors[m.result.Decision]
	if !ok {
		color = lipgloss.Color("245")
	}
	badge := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).
		Background(color).Padding(0, 1).Render(strings.ToUpper(string(m.result.Decision)))
	detail := labelStyle.Render(fmt.Sprintf(
		" run %s • %d round(s) • confidence %.2f • human review: %v",
		m.result.RunID, len(m.result.Rounds), m.result.Confidence, m.result.HumanReviewRecommended,
	))
	return badge + detail
}

func (m Model) roundsContent() string {
	if len(m.result.Rounds) == 0 {
		return labelStyle.Render("no rounds ran")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("rounds"))
	b.WriteString("\n")
	for i, round := range m.result.Rounds {
		line := round.Summary
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	round := m.result.Rounds[m.selected]
	for _, proposal := range round.Proposals {
		b.WriteString(fmt.Sprintf("\n%s %s (confidence %.2f)",
			labelStyle.Render(string(proposal.Evaluator)), proposal.Vote, proposal.Confidence))
		for _, mod := range proposal.Modifications {
			b.WriteString(fmt.Sprintf("\n  %s %s", mod.Type, describeModification(mod)))
		}
		for _, concern := range proposal.Concerns {
			b.WriteString("\n  concern: " + concern)
		}
	}
	return b.String()
}

func (m Model) auditContent() string {
	if len(m.result.AuditTrail) == 0 {
		return "empty"
	}
	lines := make([]string, len(m.result.AuditTrail))
	for i, entry := range m.result.AuditTrail {
		lines[i] = fmt.Sprintf("%s  %-22s %s",
			entry.Timestamp.Format("15:04:05"), entry.Event, entry.Description)
	}
	return strings.Join(lines, "\n")
}

func describeModification(mod allocation.Modification) string {
	switch mod.Type {
	case allocation.AdjustAmount:
		return fmt.Sprintf("%s: %.2f -> %.2f", mod.CauseID, mod.OriginalAmount, mod.ProposedAmount)
	case allocation.AddCondition:
		return fmt.Sprintf("%s: %s", mod.CauseID, mod.Condition)
	default:
		return mod.CauseID
	}
}
