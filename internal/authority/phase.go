package authority

import (
	"fmt"

	"github.com/oceanbotics/helmsman/internal/explain"
	"github.com/oceanbotics/helmsman/internal/model"
)

// applyPhaseRules dispatches on effective risk once the higher tiers have
// passed. A recommendation matching the current mode short-circuits to the
// stable decision regardless of risk.
func (e *Engine) applyPhaseRules(in Input, level model.RiskLevel) model.AuthorityDecision {
	if in.Recommendation.Mode == in.CurrentMode {
		return model.AuthorityDecision{
			Action:      model.ActionNone,
			TargetMode:  in.CurrentMode,
			Message:     fmt.Sprintf("Mode stable: %s", in.CurrentMode.Label()),
			Explanation: fmt.Sprintf("Current mode is optimal for the %s phase.", in.Phase),
			Urgency:     model.UrgencyLow,
			Reasons:     model.Reasons{Rule: model.RuleModeStable, NoChangeNeeded: true},
		}
	}

	switch level {
	case model.RiskCritical:
		return e.criticalPhase(in)
	case model.RiskHigh:
		return e.highRiskPhase(in)
	case model.RiskMedium:
		return e.mediumRiskPhase(in)
	case model.RiskLow:
		return e.lowRiskPhase(in)
	default:
		return e.safePhase(in)
	}
}

// criticalPhase: docking and docking approach. Handoffs to the human are
// immediate, handoffs to autonomy are never allowed, shared control needs
// confirmation.
func (e *Engine) criticalPhase(in Input) model.AuthorityDecision {
	rec := in.Recommendation

	switch {
	case in.CurrentMode == model.ModeAutonomous && rec.Mode == model.ModeHuman:
		facts := explain.Compose(explain.ScenarioAutoToHuman, in.Phase,
			"Autonomous system detected conditions requiring human judgment.", rec)
		return model.AuthorityDecision{
			Action:      model.ActionAutoSwitch,
			TargetMode:  model.ModeHuman,
			Message:     "Critical phase, switching to Human control",
			Explanation: explain.Render(facts),
			Urgency:     model.UrgencyCritical,
			Reasons: model.Reasons{
				Rule:                  model.RuleCriticalAutoToHuman,
				Phase:                 in.Phase,
				Transition:            "auto_to_human",
				AutonomousReliability: model.Float(rec.AutonomousReliability),
				HumanReliability:      model.Float(rec.HumanReliability),
			},
		}

	case in.CurrentMode == model.ModeHuman && rec.Mode == model.ModeAutonomous:
		return model.AuthorityDecision{
			Action:     model.ActionBlock,
			TargetMode: in.CurrentMode,
			Message:    fmt.Sprintf("Autonomous mode blocked during %s", in.Phase),
			Explanation: fmt.Sprintf("Autonomous operation is not permitted during %s. "+
				"This critical phase requires human judgment and decision-making. "+
				"Shared control is available if you need assistance with positioning or stabilization.", in.Phase),
			Urgency: model.UrgencyHigh,
			Reasons: model.Reasons{
				Rule:    model.RuleCriticalBlockAuto,
				Phase:   in.Phase,
				Blocked: true,
			},
		}

	case rec.Mode == model.ModeShared:
		facts := explain.Compose(explain.ScenarioShared, in.Phase,
			"Shared control can assist during this critical phase.", rec)
		return model.AuthorityDecision{
			Action:         model.ActionAsk,
			TargetMode:     model.ModeShared,
			Message:        fmt.Sprintf("Shared control recommended for %s", in.Phase),
			Explanation:    explain.Render(facts),
			Urgency:        model.UrgencyMedium,
			AllowDecline:   true,
			TimeoutSeconds: 30,
			Reasons: model.Reasons{
				Rule:       model.RuleCriticalAskShared,
				Phase:      in.Phase,
				Transition: fmt.Sprintf("%s_to_shared", in.CurrentMode),
				Benefit:    "System can assist with stabilization while you focus on critical decisions",
			},
		}
	}

	return e.maintain(in)
}

// highRiskPhase: undocking. Degraded autonomy hands off immediately;
// offering autonomy to the operator needs confirmation within a deadline.
func (e *Engine) highRiskPhase(in Input) model.AuthorityDecision {
	rec := in.Recommendation

	switch {
	case in.CurrentMode == model.ModeAutonomous && rec.Mode == model.ModeHuman:
		facts := explain.Compose(explain.ScenarioAutoToHuman, in.Phase,
			"Autonomous reliability has decreased.", rec)
		return model.AuthorityDecision{
			Action:      model.ActionAutoSwitch,
			TargetMode:  model.ModeHuman,
			Message:     "High risk phase, switching to Human control",
			Explanation: explain.Render(facts),
			Urgency:     model.UrgencyHigh,
			Reasons: model.Reasons{
				Rule:                  model.RuleHighAutoToHuman,
				Phase:                 in.Phase,
				AutonomousReliability: model.Float(rec.AutonomousReliability),
				HumanReliability:      model.Float(rec.HumanReliability),
			},
		}

	case in.CurrentMode == model.ModeHuman && rec.Mode == model.ModeAutonomous:
		fatigued := rec.HumanReliability < e.cfg.LowThreshold
		urgency := model.UrgencyMedium
		prefix := ""
		if fatigued {
			urgency = model.UrgencyHigh
			prefix = "Your fatigue is high. "
		}
		facts := explain.Compose(explain.ScenarioHumanToAuto, in.Phase,
			fmt.Sprintf("%sThe autonomous system can handle %s.", prefix, in.Phase), rec)
		return model.AuthorityDecision{
			Action:         model.ActionAsk,
			TargetMode:     model.ModeAutonomous,
			Message:        fmt.Sprintf("%sSwitch to Autonomous for %s?", prefix, in.Phase),
			Explanation:    explain.Render(facts),
			Urgency:        urgency,
			AllowDecline:   true,
			TimeoutSeconds: 45,
			Reasons: model.Reasons{
				Rule:                  model.RuleHighAskAutonomous,
				Phase:                 in.Phase,
				HumanReliability:      model.Float(rec.HumanReliability),
				AutonomousReliability: model.Float(rec.AutonomousReliability),
				FatigueWarning:        fatigued,
			},
		}

	case rec.Mode == model.ModeShared:
		facts := explain.Compose(explain.ScenarioShared, in.Phase,
			"Shared control balances human oversight with system assistance.", rec)
		return model.AuthorityDecision{
			Action:         model.ActionSuggest,
			TargetMode:     model.ModeShared,
			Message:        fmt.Sprintf("Shared control available for %s", in.Phase),
			Explanation:    explain.Render(facts),
			Urgency:        model.UrgencyMedium,
			AllowDecline:   true,
			TimeoutSeconds: 30,
			Reasons:        model.Reasons{Rule: model.RuleHighSuggestShared, Phase: in.Phase},
		}
	}

	return e.maintain(in)
}

// mediumRiskPhase: inspection. Changes are offered, never forced.
func (e *Engine) mediumRiskPhase(in Input) model.AuthorityDecision {
	rec := in.Recommendation

	switch {
	case in.CurrentMode == model.ModeAutonomous && rec.Mode == model.ModeHuman:
		facts := explain.Compose(explain.ScenarioAutoToHuman, in.Phase,
			"Autonomous performance has decreased but can continue.", rec)
		return model.AuthorityDecision{
			Action:         model.ActionAsk,
			TargetMode:     model.ModeHuman,
			Message:        "Autonomous performance degraded. Switch to manual?",
			Explanation:    explain.Render(facts) + " Autonomous mode can continue if you prefer.",
			Urgency:        model.UrgencyMedium,
			AllowDecline:   true,
			TimeoutSeconds: 60,
			Reasons: model.Reasons{
				Rule:                  model.RuleMediumAskHuman,
				Phase:                 in.Phase,
				AutonomousReliability: model.Float(rec.AutonomousReliability),
				CanContinueAutonomous: true,
			},
		}

	case in.CurrentMode == model.ModeHuman && rec.Mode == model.ModeAutonomous:
		facts := explain.Compose(explain.ScenarioHumanToAuto, in.Phase,
			"Autopilot can handle routine inspection tasks.", rec)
		return model.AuthorityDecision{
			Action:       model.ActionSuggest,
			TargetMode:   model.ModeAutonomous,
			Message:      "Autopilot available. Enable to conserve attention?",
			Explanation:  explain.Render(facts) + " You can monitor without active control.",
			Urgency:      model.UrgencyLow,
			AllowDecline: true,
			Reasons: model.Reasons{
				Rule:                  model.RuleMediumSuggestAuto,
				Phase:                 in.Phase,
				Benefit:               "reduce_operator_workload",
				AutonomousReliability: model.Float(rec.AutonomousReliability),
			},
		}

	case rec.Mode == model.ModeShared:
		facts := explain.Compose(explain.ScenarioShared, in.Phase,
			"Shared control optimizes human-system performance.", rec)
		return model.AuthorityDecision{
			Action:       model.ActionSuggest,
			TargetMode:   model.ModeShared,
			Message:      "Shared control recommended",
			Explanation:  explain.Render(facts),
			Urgency:      model.UrgencyLow,
			AllowDecline: true,
			Reasons:      model.Reasons{Rule: model.RuleMediumSuggestShared, Phase: in.Phase},
		}
	}

	return e.maintain(in)
}

// lowRiskPhase: transit. Degradation is informational only; autonomy is
// offered as a rest opportunity.
func (e *Engine) lowRiskPhase(in Input) model.AuthorityDecision {
	rec := in.Recommendation

	switch {
	case in.CurrentMode == model.ModeAutonomous && rec.Mode == model.ModeHuman:
		facts := explain.Compose(explain.ScenarioAutoToHuman, in.Phase,
			"Autonomous performance decreased.", rec)
		return model.AuthorityDecision{
			Action:      model.ActionNotify,
			TargetMode:  in.CurrentMode,
			Message:     "Autonomous performance note. Available to take control",
			Explanation: explain.Render(facts) + " No immediate action is required.",
			Urgency:     model.UrgencyLow,
			Reasons: model.Reasons{
				Rule:                  model.RuleLowNotifyDegraded,
				Phase:                 in.Phase,
				AutonomousReliability: model.Float(rec.AutonomousReliability),
				InfoOnly:              true,
			},
		}

	case in.CurrentMode == model.ModeHuman && rec.Mode == model.ModeAutonomous:
		facts := explain.Compose(explain.ScenarioHumanToAuto, in.Phase,
			"Autopilot can handle transit to conserve your attention.", rec)
		return model.AuthorityDecision{
			Action:       model.ActionSuggest,
			TargetMode:   model.ModeAutonomous,
			Message:      "Autopilot available for transit. Rest and monitor?",
			Explanation:  explain.Render(facts) + " This allows you to conserve attention for more demanding phases ahead.",
			Urgency:      model.UrgencyLow,
			AllowDecline: true,
			Reasons: model.Reasons{
				Rule:             model.RuleLowSuggestAuto,
				Phase:            in.Phase,
				Benefit:          "operator_rest",
				HumanReliability: model.Float(rec.HumanReliability),
			},
		}
	}

	// Any other differing recommendation is a low-stakes suggestion.
	return model.AuthorityDecision{
		Action:       model.ActionSuggest,
		TargetMode:   rec.Mode,
		Message:      fmt.Sprintf("Consider %s mode?", rec.Mode.Label()),
		Explanation:  fmt.Sprintf("%s mode is available during the low-risk %s phase.", rec.Mode.Label(), in.Phase),
		Urgency:      model.UrgencyLow,
		AllowDecline: true,
		Reasons:      model.Reasons{Rule: model.RuleLowSuggestOther, Phase: in.Phase},
	}
}

// safePhase: charging. Autonomy is preferred so the operator can stand down.
func (e *Engine) safePhase(in Input) model.AuthorityDecision {
	if in.Recommendation.Mode == model.ModeAutonomous && in.CurrentMode != model.ModeAutonomous {
		return model.AuthorityDecision{
			Action:     model.ActionAutoSwitch,
			TargetMode: model.ModeAutonomous,
			Message:    fmt.Sprintf("Switching to Autonomous mode during %s", in.Phase),
			Explanation: "Vehicle is safely docked and charging. Autonomous mode will monitor systems. " +
				"You can take control at any time if needed.",
			Urgency: model.UrgencyLow,
			Reasons: model.Reasons{
				Rule:                model.RuleSafeAutoSwitch,
				Phase:               in.Phase,
				SafePhaseAutonomous: true,
			},
		}
	}

	return e.maintain(in)
}

func (e *Engine) maintain(in Input) model.AuthorityDecision {
	return model.AuthorityDecision{
		Action:      model.ActionNone,
		TargetMode:  in.CurrentMode,
		Message:     fmt.Sprintf("Maintaining %s mode", in.CurrentMode.Label()),
		Explanation: fmt.Sprintf("Current mode is appropriate for %s.", in.Phase),
		Urgency:     model.UrgencyLow,
		Reasons:     model.Reasons{Rule: model.RuleMaintain, Phase: in.Phase},
	}
}
