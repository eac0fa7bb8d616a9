package arbiter

import (
	"time"

	"github.com/oceanbotics/helmsman/internal/model"
)

// PendingStatus describes the outstanding confirmation request.
type PendingStatus struct {
	DecisionID string           `json:"decision_id"`
	TargetMode model.ControlMode `json:"target_mode"`
	Message    string           `json:"message"`
	Urgency    model.Urgency    `json:"urgency"`
	// ExpiresInSeconds is 0 when the request has no deadline.
	ExpiresInSeconds float64 `json:"expires_in_seconds,omitempty"`
}

// Status is a point-in-time view of the arbitration state, published
// periodically and served to the CLI and MCP surfaces.
type Status struct {
	MissionID          string            `json:"mission_id"`
	Mode               model.ControlMode `json:"mode"`
	Phase              string            `json:"phase"`
	Criticality        string            `json:"criticality"`
	SinceChangeSeconds float64           `json:"since_change_seconds"`
	HasRecommendation  bool              `json:"has_recommendation"`
	Pending            *PendingStatus    `json:"pending,omitempty"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// Status returns the current arbitration state.
func (a *Arbiter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	snap := a.feeds.Snapshot()

	st := Status{
		MissionID:          a.missionID,
		Mode:               a.mode,
		Phase:              snap.Phase,
		Criticality:        snap.Criticality,
		SinceChangeSeconds: now.Sub(a.lastChange).Seconds(),
		HasRecommendation:  snap.HasRecommendation,
		UpdatedAt:          now,
	}

	if a.pending != nil {
		ps := &PendingStatus{
			DecisionID: a.pending.id,
			TargetMode: a.pending.decision.TargetMode,
			Message:    a.pending.decision.Message,
			Urgency:    a.pending.decision.Urgency,
		}
		if !a.pending.deadline.IsZero() {
			remaining := a.pending.deadline.Sub(now).Seconds()
			if remaining < 0 {
				remaining = 0
			}
			ps.ExpiresInSeconds = remaining
		}
		st.Pending = ps
	}

	return st
}

// Mode returns the committed control mode.
func (a *Arbiter) Mode() model.ControlMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}
