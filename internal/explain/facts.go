// Package explain builds operator-facing rationales for authority decisions.
//
// Composition is split in two: Compose produces a structured Facts value
// (metrics, labels, factors, confidence) and Render turns it into plain
// text. Tests assert on Facts; alternate renderings (console payloads, UI
// cards) only need a new renderer.
package explain

import "github.com/oceanbotics/helmsman/internal/model"

// Scenario selects which supporting detail a rationale includes.
type Scenario string

const (
	// ScenarioAutoToHuman explains a handoff away from a degraded autonomy.
	ScenarioAutoToHuman Scenario = "auto_to_human"
	// ScenarioHumanToAuto explains offering automation to the operator.
	ScenarioHumanToAuto Scenario = "human_to_auto"
	// ScenarioShared explains a shared-control recommendation.
	ScenarioShared Scenario = "shared"
	// ScenarioNeutral carries no transition-specific detail.
	ScenarioNeutral Scenario = ""
)

// Reliability label boundaries.
const (
	labelExcellentMin = 0.8
	labelGoodMin      = 0.7
	labelFairMin      = 0.6
	labelLowMin       = 0.5
)

// Metric is one reliability score with its qualitative label.
type Metric struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Facts is the structured rationale behind a decision. Identical inputs
// produce identical Facts; rendering may vary decoration, never content.
type Facts struct {
	Summary         string   `json:"summary"`
	Human           Metric   `json:"human"`
	Autonomous      Metric   `json:"autonomous"`
	Docking         *Metric  `json:"docking,omitempty"`
	Factors         []string `json:"factors,omitempty"`
	OperatorState   []string `json:"operator_state,omitempty"`
	Phase           string   `json:"phase"`
	Confidence      float64  `json:"confidence"`
	ConfidenceLabel string   `json:"confidence_label"`
}

// ReliabilityLabel maps a score to its qualitative label.
func ReliabilityLabel(v float64) string {
	switch {
	case v >= labelExcellentMin:
		return "Excellent"
	case v >= labelGoodMin:
		return "Good"
	case v >= labelFairMin:
		return "Fair"
	case v >= labelLowMin:
		return "Low"
	default:
		return "Critical"
	}
}

// ConfidenceLabel maps estimator confidence to a descriptor.
func ConfidenceLabel(v float64) string {
	switch {
	case v > 0.8:
		return "very confident"
	case v > 0.6:
		return "confident"
	default:
		return "moderately confident"
	}
}

// Compose builds the structured rationale for a decision.
//
// Degradation factors are included when the scenario is a handoff away from
// autonomy. Operator-state lines are included for human-related scenarios
// when human reliability is below the fair boundary; they sharpen to the
// critical wording below the low boundary.
func Compose(scenario Scenario, phase, summary string, rec model.ModeRecommendation) Facts {
	f := Facts{
		Summary:         summary,
		Human:           Metric{Value: rec.HumanReliability, Label: ReliabilityLabel(rec.HumanReliability)},
		Autonomous:      Metric{Value: rec.AutonomousReliability, Label: ReliabilityLabel(rec.AutonomousReliability)},
		Phase:           phase,
		Confidence:      rec.Confidence,
		ConfidenceLabel: ConfidenceLabel(rec.Confidence),
	}

	if rec.DockingReliability != nil {
		f.Docking = &Metric{Value: *rec.DockingReliability, Label: ReliabilityLabel(*rec.DockingReliability)}
	}

	if scenario == ScenarioAutoToHuman {
		f.Factors = Diagnose(rec)
	}

	if (scenario == ScenarioHumanToAuto || scenario == ScenarioShared) && rec.HumanReliability < labelFairMin {
		if rec.HumanReliability < labelLowMin {
			f.OperatorState = []string{
				"Fatigue level is critically high",
				"Attention capacity is significantly reduced",
				"Cognitive workload may be elevated",
			}
		} else {
			f.OperatorState = []string{
				"Fatigue is accumulating",
				"Consider using automation to reduce workload",
			}
		}
	}

	return f
}
