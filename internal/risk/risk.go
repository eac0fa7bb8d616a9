package risk

import "github.com/oceanbotics/helmsman/internal/model"

// phaseRisk maps mission phase names to base risk levels.
// Unknown phases get RiskMedium: the vehicle keeps operating, handoffs
// just need confirmation.
var phaseRisk = map[string]model.RiskLevel{
	"Docking":         model.RiskCritical,
	"DockingApproach": model.RiskCritical,
	"Undocking":       model.RiskHigh,
	"Inspection":      model.RiskMedium,
	"Transit":         model.RiskLow,
	"Charging":        model.RiskSafe,
}

// criticalityModifier maps task criticality to a risk increment.
// Unknown criticality contributes 0 (treated as Routine).
var criticalityModifier = map[string]int{
	"Routine":   0,
	"Important": 1,
	"Critical":  2,
}

// Level returns the effective risk for a phase and task criticality:
// base(phase) + modifier(criticality), clamped at RiskCritical.
// The modifier never reduces risk below the phase base.
func Level(phase, criticality string) model.RiskLevel {
	base, ok := phaseRisk[phase]
	if !ok {
		base = model.RiskMedium
	}

	effective := int(base) + criticalityModifier[criticality]
	if effective > int(model.RiskCritical) {
		effective = int(model.RiskCritical)
	}
	return model.RiskLevel(effective)
}

// AutonomousAllowed is the single hard safety gate: autonomous control is
// prohibited whenever the effective risk is critical.
func AutonomousAllowed(phase, criticality string) bool {
	return Level(phase, criticality) != model.RiskCritical
}
