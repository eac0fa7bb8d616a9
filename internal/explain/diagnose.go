package explain

import (
	"fmt"

	"github.com/oceanbotics/helmsman/internal/model"
)

// Diagnosis thresholds. The diagnoser is table-driven and best-effort:
// the real causal factors live inside the external reliability estimator,
// which we consume as an opaque score.
const (
	autonomousDegradedBelow = 0.6
	dockingDegradedBelow    = 0.7
)

// Diagnose derives plausible causal factors for reduced autonomous
// reliability. Always returns at least one factor.
func Diagnose(rec model.ModeRecommendation) []string {
	var factors []string

	if rec.AutonomousReliability < autonomousDegradedBelow {
		factors = append(factors,
			"Navigation accuracy reduced (possible acoustic positioning degradation)",
			"Environmental conditions affecting vehicle stability",
		)
	}

	if rec.DockingReliability != nil && *rec.DockingReliability < dockingDegradedBelow {
		factors = append(factors,
			fmt.Sprintf("Docking conditions suboptimal (reliability: %.0f%%)", *rec.DockingReliability*100))
	}

	if len(factors) == 0 {
		factors = append(factors, "Minor performance degradation detected")
	}

	return factors
}
