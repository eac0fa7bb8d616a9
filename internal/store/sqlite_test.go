package store

import (
	"context"
	"testing"
	"time"

	"github.com/oceanbotics/helmsman/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	s := openTest(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate pass failed: %v", err)
	}
}

func TestRecordAndQueryModeChanges(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	changes := []ModeChange{
		{MissionID: "m-1", OldMode: "human", NewMode: "autonomous", Phase: "Transit", Reason: "operator accepted handoff", HumanReliability: 0.8, AutonomousReliability: 0.9, ChangedAt: base},
		{MissionID: "m-1", OldMode: "autonomous", NewMode: "human", Phase: "Undocking", Reason: "autonomous degraded", HumanReliability: 0.85, AutonomousReliability: 0.5, ChangedAt: base.Add(time.Minute)},
		{MissionID: "m-2", OldMode: "human", NewMode: "shared", Phase: "Docking", Reason: "shared assist", ChangedAt: base.Add(2 * time.Minute)},
	}
	for _, mc := range changes {
		if err := s.RecordModeChange(ctx, mc); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentModeChanges(ctx, "m-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d changes, want 2", len(got))
	}
	// Newest first.
	if got[0].NewMode != "human" || got[1].NewMode != "autonomous" {
		t.Errorf("order wrong: %+v", got)
	}
	if got[0].Phase != "Undocking" || got[0].AutonomousReliability != 0.5 {
		t.Errorf("row = %+v", got[0])
	}

	all, err := s.RecentModeChanges(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all missions: got %d, want 3", len(all))
	}
}

func TestRecordAndQueryDecisions(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	docking := 0.65
	d := Decision{
		MissionID:             "m-1",
		DecisionID:            "d-1a2b3c4d",
		Action:                "ask",
		CurrentMode:           "human",
		TargetMode:            "autonomous",
		Phase:                 "Undocking",
		Criticality:           "Routine",
		Urgency:               "medium",
		Rule:                  model.RuleHighAskAutonomous,
		HumanReliability:      0.85,
		AutonomousReliability: 0.9,
		DockingReliability:    &docking,
		Confidence:            0.8,
		Reasons: model.Reasons{
			Rule:  model.RuleHighAskAutonomous,
			Phase: "Undocking",
		},
	}
	if err := s.RecordDecision(ctx, d); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordDecision(ctx, Decision{
		MissionID: "m-1", Action: "none", CurrentMode: "human", TargetMode: "human",
		Rule: model.RuleModeStable, Reasons: model.Reasons{Rule: model.RuleModeStable},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentDecisions(ctx, "m-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d decisions, want 2", len(got))
	}

	var ask *Decision
	for i := range got {
		if got[i].Action == "ask" {
			ask = &got[i]
		}
	}
	if ask == nil {
		t.Fatal("ask decision not returned")
	}
	if ask.Rule != model.RuleHighAskAutonomous || ask.Reasons.Phase != "Undocking" {
		t.Errorf("round-trip lost fields: %+v", ask)
	}
	if ask.DockingReliability == nil || *ask.DockingReliability != 0.65 {
		t.Errorf("docking reliability = %v", ask.DockingReliability)
	}
}

func TestRecentDecisionsLimit(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := s.RecordDecision(ctx, Decision{
			MissionID: "m-1", Action: "none", CurrentMode: "human", TargetMode: "human",
			DecidedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentDecisions(ctx, "m-1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("limit ignored: got %d", len(got))
	}
}
