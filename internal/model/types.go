package model

import (
	"fmt"
	"strings"
)

// ControlMode identifies who is flying the vehicle.
type ControlMode string

const (
	ModeAutonomous ControlMode = "autonomous"
	ModeHuman      ControlMode = "human"
	ModeShared     ControlMode = "shared"
)

// ParseMode maps a transport token to a ControlMode.
// Unknown tokens are an error, never silently defaulted, so that a
// misconfigured upstream cannot steer arbitration (see DESIGN.md).
func ParseMode(s string) (ControlMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "autonomous":
		return ModeAutonomous, nil
	case "human":
		return ModeHuman, nil
	case "shared":
		return ModeShared, nil
	default:
		return "", fmt.Errorf("unknown control mode %q", s)
	}
}

// Label returns the display name used in operator-facing text.
func (m ControlMode) Label() string {
	switch m {
	case ModeAutonomous:
		return "Autonomous"
	case ModeHuman:
		return "Human"
	case ModeShared:
		return "Shared"
	default:
		return string(m)
	}
}

// RiskLevel orders mission phases by how dangerous a control handoff is.
// Integer-valued so criticality modifiers can be added and clamped.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

// String returns the lowercase label for the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskSafe:
		return "safe"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ActionType is the kind of action a decision instructs the caller to take.
type ActionType string

const (
	// ActionAutoSwitch commits the mode change immediately, no confirmation.
	ActionAutoSwitch ActionType = "auto_switch"
	// ActionAsk requires operator confirmation before the change applies.
	ActionAsk ActionType = "ask"
	// ActionSuggest offers the change; the operator may apply it at leisure.
	ActionSuggest ActionType = "suggest"
	// ActionNotify is information only, no mode change.
	ActionNotify ActionType = "notify"
	// ActionBlock refuses a requested mode change.
	ActionBlock ActionType = "block"
	// ActionNone means no action is needed this cycle.
	ActionNone ActionType = "none"
)

// Urgency tags a decision for operator-interface prioritization.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// UrgencyForRisk maps a risk level to the urgency of an override warning.
func UrgencyForRisk(r RiskLevel) Urgency {
	switch r {
	case RiskMedium:
		return UrgencyMedium
	case RiskHigh:
		return UrgencyHigh
	case RiskCritical:
		return UrgencyCritical
	default:
		return UrgencyLow
	}
}

// ModeRecommendation is one evaluation cycle's view of the external
// reliability estimator. Constructed fresh per cycle, never mutated.
// All scores are validated into [0,1] at ingestion (internal/feed);
// the engine performs no clamping.
type ModeRecommendation struct {
	Mode                  ControlMode `json:"recommended_mode"`
	Confidence            float64     `json:"confidence"`
	HumanReliability      float64     `json:"human_reliability"`
	AutonomousReliability float64     `json:"autonomous_reliability"`
	DockingReliability    *float64    `json:"docking_reliability,omitempty"`
}

// AuthorityDecision is the engine's output: one fully populated decision
// per call. Every reachable branch of the engine yields one; there is no
// partially filled or error case.
type AuthorityDecision struct {
	Action         ActionType  `json:"action_type"`
	TargetMode     ControlMode `json:"target_mode"`
	Message        string      `json:"message"`
	Explanation    string      `json:"explanation"`
	Urgency        Urgency     `json:"urgency"`
	AllowDecline   bool        `json:"allow_decline"`
	TimeoutSeconds int         `json:"timeout_seconds,omitempty"` // 0 = no expiry
	Reasons        Reasons     `json:"reasons"`
}
