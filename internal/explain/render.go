package explain

import (
	"fmt"
	"strings"
)

// Render turns Facts into the plain-text rationale shown to the operator.
// Output is deterministic for identical Facts. ASCII only, no decoration
// beyond "- " bullets: the text ends up in logs, consoles and audit records.
func Render(f Facts) string {
	var b strings.Builder

	b.WriteString(f.Summary)
	b.WriteString("\n\nCurrent reliability assessment:\n")
	fmt.Fprintf(&b, "- Human operator: %.0f%% (%s)\n", f.Human.Value*100, f.Human.Label)
	fmt.Fprintf(&b, "- Autonomous system: %.0f%% (%s)\n", f.Autonomous.Value*100, f.Autonomous.Label)
	if f.Docking != nil {
		fmt.Fprintf(&b, "- Docking operations: %.0f%% (%s)\n", f.Docking.Value*100, f.Docking.Label)
	}

	if len(f.Factors) > 0 {
		b.WriteString("\nContributing factors:\n")
		for _, factor := range f.Factors {
			fmt.Fprintf(&b, "- %s\n", factor)
		}
	}

	if len(f.OperatorState) > 0 {
		b.WriteString("\nOperator state:\n")
		for _, line := range f.OperatorState {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	fmt.Fprintf(&b, "\nMission context: %s phase\n", f.Phase)
	fmt.Fprintf(&b, "The system is %s in this assessment (%.0f%%).", f.ConfidenceLabel, f.Confidence*100)

	return b.String()
}
