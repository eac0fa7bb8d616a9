package feed

import (
	"testing"

	"github.com/oceanbotics/helmsman/internal/model"
)

func f(v float64) *float64 { return &v }

func TestDefaultsBeforeFirstMessage(t *testing.T) {
	s := NewState()
	snap := s.Snapshot()

	if snap.HasRecommendation {
		t.Error("no recommendation should be present at startup")
	}
	if snap.Recommendation.HumanReliability != 0.85 {
		t.Errorf("human default = %v", snap.Recommendation.HumanReliability)
	}
	if snap.Recommendation.AutonomousReliability != 0.80 {
		t.Errorf("autonomous default = %v", snap.Recommendation.AutonomousReliability)
	}
	if snap.Recommendation.Confidence != 0.70 {
		t.Errorf("confidence default = %v", snap.Recommendation.Confidence)
	}
	if snap.Phase != "Transit" || snap.Criticality != "Routine" {
		t.Errorf("context defaults = %s/%s", snap.Phase, snap.Criticality)
	}
	if snap.Recommendation.DockingReliability != nil {
		t.Error("docking reliability should be absent until reported")
	}
}

func TestApplyRecommendation(t *testing.T) {
	s := NewState()

	if _, err := s.Apply(Message{Type: TypeRecommendation, Mode: "Human"}); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if !snap.HasRecommendation || snap.Recommendation.Mode != model.ModeHuman {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestApplyRejectsUnknownMode(t *testing.T) {
	s := NewState()

	if _, err := s.Apply(Message{Type: TypeRecommendation, Mode: "manual"}); err == nil {
		t.Error("unknown recommendation token must be rejected")
	}
	if _, err := s.Apply(Message{Type: TypeOverride, Mode: "pilot"}); err == nil {
		t.Error("unknown override token must be rejected")
	}
	if s.Snapshot().HasRecommendation {
		t.Error("rejected message must not change state")
	}
}

func TestApplyReliabilityChannels(t *testing.T) {
	s := NewState()

	for _, m := range []Message{
		{Type: TypeReliability, Channel: "human", Value: f(0.62)},
		{Type: TypeReliability, Channel: "autonomous", Value: f(0.55)},
		{Type: TypeReliability, Channel: "docking", Value: f(0.68)},
	} {
		if _, err := s.Apply(m); err != nil {
			t.Fatalf("%s: %v", m.Channel, err)
		}
	}

	snap := s.Snapshot()
	if snap.Recommendation.HumanReliability != 0.62 {
		t.Errorf("human = %v", snap.Recommendation.HumanReliability)
	}
	if snap.Recommendation.AutonomousReliability != 0.55 {
		t.Errorf("autonomous = %v", snap.Recommendation.AutonomousReliability)
	}
	if snap.Recommendation.DockingReliability == nil || *snap.Recommendation.DockingReliability != 0.68 {
		t.Errorf("docking = %v", snap.Recommendation.DockingReliability)
	}
}

func TestApplyRejectsOutOfRangeScores(t *testing.T) {
	s := NewState()

	cases := []Message{
		{Type: TypeReliability, Channel: "human", Value: f(1.5)},
		{Type: TypeReliability, Channel: "autonomous", Value: f(-0.1)},
		{Type: TypeConfidence, Value: f(2)},
		{Type: TypeReliability, Channel: "human"}, // missing value
		{Type: TypeReliability, Channel: "sonar", Value: f(0.5)},
	}
	for _, m := range cases {
		if _, err := s.Apply(m); err == nil {
			t.Errorf("message %+v must be rejected", m)
		}
	}

	// State untouched by rejected messages.
	snap := s.Snapshot()
	if snap.Recommendation.HumanReliability != 0.85 || snap.Recommendation.AutonomousReliability != 0.80 {
		t.Errorf("rejected scores leaked into state: %+v", snap.Recommendation)
	}
}

func TestApplyMissionContext(t *testing.T) {
	s := NewState()

	if _, err := s.Apply(Message{Type: TypePhase, Phase: "DockingApproach"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(Message{Type: TypeCriticality, Criticality: "Important"}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	if snap.Phase != "DockingApproach" || snap.Criticality != "Important" {
		t.Errorf("context = %s/%s", snap.Phase, snap.Criticality)
	}
}

func TestApplyCommands(t *testing.T) {
	s := NewState()

	cmd, err := s.Apply(Message{Type: TypeOverride, Mode: "shared"})
	if err != nil {
		t.Fatal(err)
	}
	if cmd == nil || cmd.Override == nil || *cmd.Override != model.ModeShared {
		t.Fatalf("override command = %+v", cmd)
	}

	accept := true
	cmd, err = s.Apply(Message{Type: TypeResponse, DecisionID: "d-1a2b3c4d", Accept: &accept})
	if err != nil {
		t.Fatal(err)
	}
	if cmd == nil || cmd.Response == nil || !cmd.Response.Accept || cmd.Response.DecisionID != "d-1a2b3c4d" {
		t.Fatalf("response command = %+v", cmd)
	}

	if _, err := s.Apply(Message{Type: TypeResponse, DecisionID: "d-x"}); err == nil {
		t.Error("response without accept field must be rejected")
	}
}

func TestApplyUnknownType(t *testing.T) {
	s := NewState()
	if _, err := s.Apply(Message{Type: "telemetry"}); err == nil {
		t.Error("unknown message type must be rejected")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewState()
	if _, err := s.Apply(Message{Type: TypeReliability, Channel: "docking", Value: f(0.9)}); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	*snap.Recommendation.DockingReliability = 0.1

	if v := *s.Snapshot().Recommendation.DockingReliability; v != 0.9 {
		t.Errorf("snapshot mutation leaked into state: %v", v)
	}
}
