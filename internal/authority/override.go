package authority

import (
	"fmt"

	"github.com/oceanbotics/helmsman/internal/model"
	"github.com/oceanbotics/helmsman/internal/risk"
)

// handleOverride resolves an explicit operator mode request. Overrides are
// honored except where the phase safety gate prohibits the target mode:
// requesting autonomous control during a critical-risk phase is blocked.
func (e *Engine) handleOverride(requested model.ControlMode, in Input, level model.RiskLevel) model.AuthorityDecision {
	if requested == model.ModeAutonomous && !risk.AutonomousAllowed(in.Phase, in.Criticality) {
		return model.AuthorityDecision{
			Action:     model.ActionBlock,
			TargetMode: in.CurrentMode,
			Message:    fmt.Sprintf("Autonomous mode not allowed during %s", in.Phase),
			Explanation: fmt.Sprintf("Safety rules prohibit autonomous operation during the %s phase. "+
				"This is a critical phase requiring human judgment. "+
				"Shared control is available if you need assistance.", in.Phase),
			Urgency: model.UrgencyHigh,
			Reasons: model.Reasons{
				Rule:        model.RuleOverrideBlocked,
				Phase:       in.Phase,
				RiskLevel:   level.String(),
				Blocked:     true,
				Alternative: "Shared control available",
			},
		}
	}

	warning := ""
	if level >= model.RiskHigh {
		warning = fmt.Sprintf(" Warning: %s is a high-risk phase.", in.Phase)
	}

	return model.AuthorityDecision{
		Action:     model.ActionAutoSwitch,
		TargetMode: requested,
		Message:    fmt.Sprintf("Operator override accepted: %s%s", requested.Label(), warning),
		Explanation: fmt.Sprintf("You have manually selected %s mode. "+
			"The system will respect your decision.%s", requested.Label(), warning),
		Urgency: model.UrgencyForRisk(level),
		Reasons: model.Reasons{
			Rule:             model.RuleOverrideAccepted,
			Phase:            in.Phase,
			RiskLevel:        level.String(),
			OperatorOverride: true,
		},
	}
}
