package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/The-Almonry/internal/consensus"
)

// RenderSummary formats a finished result for plain terminal output, used by
// the CLI when the inspector is not requested.
func RenderSummary(result consensus.Result) string {
	color, ok := decisionColors[result.Decision]
	if !ok {
		color = lipgloss.Color("245")
	}
	badge := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).
		Background(color).Padding(0, 1).Render(strings.ToUpper(string(result.Decision)))

	var b strings.Builder
	b.WriteString(badge)
	fmt.Fprintf(&b, "  run %s\n\n", result.RunID)
	b.WriteString(result.Summary)
	b.WriteString("\n")
	if len(result.FinalModifications) > 0 {
		b.WriteString("\n" + titleStyle.Render("final modifications") + "\n")
		for _, mod := range result.FinalModifications {
			fmt.Fprintf(&b, "  %-13s %s\n", mod.Type, describeModification(mod))
		}
	}
	return b.String()
}
