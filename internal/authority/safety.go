package authority

import (
	"fmt"
	"strings"

	"github.com/oceanbotics/helmsman/internal/explain"
	"github.com/oceanbotics/helmsman/internal/model"
)

// applySafetyRules checks the two hard safety rules, in fixed order. Both
// are independent of hysteresis: rule B in particular must be able to pull
// control away from a degraded autonomy inside the dwell window.
func (e *Engine) applySafetyRules(in Input, level model.RiskLevel) (model.AuthorityDecision, bool) {
	rec := in.Recommendation

	// Rule A: critically fatigued operator holding control during a
	// critical phase. Autonomy is prohibited here, so the best the engine
	// can do is alert and point at shared control.
	if level == model.RiskCritical &&
		in.CurrentMode == model.ModeHuman &&
		rec.HumanReliability < e.cfg.CriticalLowThreshold {
		return model.AuthorityDecision{
			Action:     model.ActionNotify,
			TargetMode: in.CurrentMode,
			Message:    fmt.Sprintf("SAFETY ALERT: Critical fatigue during %s", in.Phase),
			Explanation: fmt.Sprintf("Your reliability is critically low (%.2f) during the %s phase. "+
				"Consider aborting the operation and returning to a safe zone. "+
				"Autonomous mode is not allowed during this critical phase. "+
				"Shared control can provide assistance.", rec.HumanReliability, in.Phase),
			Urgency: model.UrgencyCritical,
			Reasons: model.Reasons{
				Rule:             model.RuleSafetyHumanFatigue,
				Phase:            in.Phase,
				SafetyAlert:      true,
				HumanReliability: model.Float(rec.HumanReliability),
				Threshold:        model.Float(e.cfg.CriticalLowThreshold),
				Recommendation:   "abort_and_rest",
			},
		}, true
	}

	// Rule B: autonomy wants to hand control to the human while its own
	// reliability is degraded. Switch immediately, no confirmation.
	if in.CurrentMode == model.ModeAutonomous &&
		rec.Mode == model.ModeHuman &&
		rec.AutonomousReliability < e.cfg.LowThreshold {
		diagnosis := explain.Diagnose(rec)
		return model.AuthorityDecision{
			Action:     model.ActionAutoSwitch,
			TargetMode: model.ModeHuman,
			Message:    "Autonomous performance degraded, switching to Human",
			Explanation: fmt.Sprintf("Autonomous control reliability has dropped to %.2f. "+
				"Factors: %s. Human control is required for safety.",
				rec.AutonomousReliability, strings.Join(diagnosis, "; ")),
			Urgency: model.UrgencyHigh,
			Reasons: model.Reasons{
				Rule:                  model.RuleSafetyAutoDegraded,
				Phase:                 in.Phase,
				AutonomousReliability: model.Float(rec.AutonomousReliability),
				Threshold:             model.Float(e.cfg.LowThreshold),
				Diagnosis:             diagnosis,
			},
		}, true
	}

	return model.AuthorityDecision{}, false
}
