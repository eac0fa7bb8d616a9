package audit

import "github.com/oceanbotics/helmsman/internal/model"

// Entry types.
const (
	TypeDecision   = "decision"
	TypeModeChange = "mode_change"
	TypePending    = "pending_resolved"
)

// Pending-resolution outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeDeclined = "declined"
	OutcomeTimeout  = "timeout"
)

// Entry is one line in the hash-chained JSONL audit log. All fields are
// structs and scalars (no map[string]any) so json.Marshal field order is
// deterministic and lines hash reproducibly.
type Entry struct {
	Timestamp  string `json:"ts"`
	MissionID  string `json:"mission_id"`
	Type       string `json:"type"`
	DecisionID string `json:"decision_id,omitempty"`

	// Decision fields.
	Action      string `json:"action_type,omitempty"`
	CurrentMode string `json:"current_mode,omitempty"`
	TargetMode  string `json:"target_mode,omitempty"`
	Phase       string `json:"phase,omitempty"`
	Criticality string `json:"criticality,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	Rule        string `json:"rule,omitempty"`

	HumanReliability      float64  `json:"human_reliability,omitempty"`
	AutonomousReliability float64  `json:"autonomous_reliability,omitempty"`
	DockingReliability    *float64 `json:"docking_reliability,omitempty"`
	Confidence            float64  `json:"confidence,omitempty"`

	Reasons *model.Reasons `json:"reasons,omitempty"`

	// Mode-change fields.
	OldMode string `json:"old_mode,omitempty"`
	NewMode string `json:"new_mode,omitempty"`
	Reason  string `json:"reason,omitempty"`

	// Pending-resolution fields.
	Outcome string `json:"outcome,omitempty"`

	// ConfigHash identifies the threshold configuration in force.
	ConfigHash string `json:"config_hash,omitempty"`
	PrevHash   string `json:"prev_hash"`
}
