package model

// Rule identifiers recorded in Reasons.Rule. One per engine branch, so an
// audit record always names exactly which tier and rule produced it.
const (
	RuleOverrideBlocked  = "override.blocked"
	RuleOverrideAccepted = "override.accepted"

	RuleSafetyHumanFatigue  = "safety.human_fatigue"
	RuleSafetyAutoDegraded  = "safety.autonomous_degraded"
	RuleHysteresisHold      = "hysteresis.hold"
	RuleModeStable          = "phase.stable"
	RuleCriticalAutoToHuman = "phase.critical.auto_to_human"
	RuleCriticalBlockAuto   = "phase.critical.block_autonomous"
	RuleCriticalAskShared   = "phase.critical.ask_shared"
	RuleHighAutoToHuman     = "phase.high.auto_to_human"
	RuleHighAskAutonomous   = "phase.high.ask_autonomous"
	RuleHighSuggestShared   = "phase.high.suggest_shared"
	RuleMediumAskHuman      = "phase.medium.ask_human"
	RuleMediumSuggestAuto   = "phase.medium.suggest_autonomous"
	RuleMediumSuggestShared = "phase.medium.suggest_shared"
	RuleLowNotifyDegraded   = "phase.low.notify_degraded"
	RuleLowSuggestAuto      = "phase.low.suggest_autonomous"
	RuleLowSuggestOther     = "phase.low.suggest_other"
	RuleSafeAutoSwitch      = "phase.safe.auto_switch"
	RuleMaintain            = "phase.maintain"
)

// Reasons is the typed diagnostic payload attached to every decision.
// It replaces the open map the original design used: each rule's field set
// is fixed, all fields are structs/scalars, and json.Marshal order is
// deterministic so audit lines hash reproducibly. Consumed by audit logging
// only; the engine never reads it back.
type Reasons struct {
	// Rule names the engine branch that produced the decision.
	Rule string `json:"rule"`

	Phase     string `json:"phase,omitempty"`
	RiskLevel string `json:"risk_level,omitempty"`

	// Override tier.
	OperatorOverride bool   `json:"operator_override,omitempty"`
	Blocked          bool   `json:"blocked,omitempty"`
	Alternative      string `json:"alternative,omitempty"`

	// Hard safety tier.
	SafetyAlert           bool     `json:"safety_alert,omitempty"`
	HumanReliability      *float64 `json:"human_reliability,omitempty"`
	AutonomousReliability *float64 `json:"autonomous_reliability,omitempty"`
	Threshold             *float64 `json:"threshold,omitempty"`
	Recommendation        string   `json:"recommendation,omitempty"`
	Diagnosis             []string `json:"diagnosis,omitempty"`

	// Hysteresis tier.
	Hysteresis       bool     `json:"hysteresis,omitempty"`
	RemainingSeconds *float64 `json:"remaining_seconds,omitempty"`

	// Phase-dependent tier.
	Transition            string `json:"transition,omitempty"`
	FatigueWarning        bool   `json:"fatigue_warning,omitempty"`
	CanContinueAutonomous bool   `json:"can_continue_autonomous,omitempty"`
	InfoOnly              bool   `json:"info_only,omitempty"`
	Benefit               string `json:"benefit,omitempty"`
	NoChangeNeeded        bool   `json:"no_change_needed,omitempty"`
	SafePhaseAutonomous   bool   `json:"safe_phase_autonomous,omitempty"`
}

// Float returns a pointer to v, for optional numeric Reasons fields.
func Float(v float64) *float64 {
	return &v
}
