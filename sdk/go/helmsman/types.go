package helmsman

import (
	"github.com/oceanbotics/helmsman/internal/model"
)

// Mode identifies who is flying the vehicle.
type Mode = model.ControlMode

// Control modes.
const (
	ModeAutonomous = model.ModeAutonomous
	ModeHuman      = model.ModeHuman
	ModeShared     = model.ModeShared
)

// Action is the kind of action a decision instructs the caller to take.
type Action = model.ActionType

// Action types.
const (
	ActionAutoSwitch = model.ActionAutoSwitch
	ActionAsk        = model.ActionAsk
	ActionSuggest    = model.ActionSuggest
	ActionNotify     = model.ActionNotify
	ActionBlock      = model.ActionBlock
	ActionNone       = model.ActionNone
)

// Decision is one fully populated arbitration outcome.
type Decision = model.AuthorityDecision

// Situation is one evaluation's view of the world. Nil scores fall back
// to the feed defaults: human 0.85, autonomous 0.80, confidence 0.70.
// A non-nil score is taken as reported, including an explicit 0.0; empty
// phase and criticality default to Transit and Routine.
type Situation struct {
	// RecommendedMode is the estimator's recommendation. Required.
	RecommendedMode Mode

	HumanReliability      *float64
	AutonomousReliability *float64
	Confidence            *float64
	DockingReliability    *float64

	Phase       string
	Criticality string
}

// Float returns a pointer to v, for Situation score fields.
func Float(v float64) *float64 {
	return &v
}
