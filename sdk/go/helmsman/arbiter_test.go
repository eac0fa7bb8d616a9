package helmsman

import (
	"strings"
	"testing"
	"time"

	"github.com/oceanbotics/helmsman/internal/model"
)

func testClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestDefaultsEvaluateToStable(t *testing.T) {
	arb, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := arb.Evaluate(Situation{RecommendedMode: ModeHuman})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Action != ActionNone {
		t.Fatalf("expected no action for a stable recommendation, got %q", d.Action)
	}
	if arb.Mode() != ModeHuman {
		t.Fatalf("mode changed unexpectedly to %q", arb.Mode())
	}
}

func TestAutoSwitchCommits(t *testing.T) {
	clock, _ := testClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	arb, err := New(WithInitialMode(ModeAutonomous), WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := arb.Evaluate(Situation{
		RecommendedMode:       ModeHuman,
		HumanReliability:      Float(0.85),
		AutonomousReliability: Float(0.45),
		Phase:                 "Transit",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Action != ActionAutoSwitch {
		t.Fatalf("expected auto_switch on degraded autonomy, got %q", d.Action)
	}
	if arb.Mode() != ModeHuman {
		t.Fatalf("expected committed human mode, got %q", arb.Mode())
	}
}

func TestExplicitZeroScoreTriggersSafetyRule(t *testing.T) {
	// A reported 0.0 is the worst legal reading, not an absent one, and
	// must reach the safety rules even inside the hysteresis window.
	arb, err := New(WithInitialMode(ModeAutonomous))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := arb.Evaluate(Situation{
		RecommendedMode:       ModeHuman,
		AutonomousReliability: Float(0),
		Phase:                 "Transit",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Action != ActionAutoSwitch {
		t.Fatalf("expected auto_switch on zero autonomous reliability, got %q (rule %s)", d.Action, d.Reasons.Rule)
	}
	if d.TargetMode != ModeHuman {
		t.Fatalf("expected human target, got %q", d.TargetMode)
	}
	if d.Reasons.Rule != model.RuleSafetyAutoDegraded {
		t.Fatalf("expected degraded-autonomy safety rule, got %s", d.Reasons.Rule)
	}
	if arb.Mode() != ModeHuman {
		t.Fatalf("expected committed human mode, got %q", arb.Mode())
	}
}

func TestExplicitZeroConfidencePreserved(t *testing.T) {
	clock, advance := testClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	arb, err := New(WithInitialMode(ModeAutonomous), WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	advance(5 * time.Minute)

	d, err := arb.Evaluate(Situation{
		RecommendedMode:       ModeHuman,
		AutonomousReliability: Float(0.65),
		Confidence:            Float(0),
		Phase:                 "Inspection",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Action != ActionAsk {
		t.Fatalf("expected ask in a medium-risk phase, got %q", d.Action)
	}
	if !strings.Contains(d.Explanation, "(0%)") {
		t.Fatalf("expected the reported zero confidence in the explanation, got:\n%s", d.Explanation)
	}
}

func TestAskDoesNotCommitUntilApply(t *testing.T) {
	clock, advance := testClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	arb, err := New(WithInitialMode(ModeAutonomous), WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	advance(5 * time.Minute)

	d, err := arb.Evaluate(Situation{
		RecommendedMode:       ModeHuman,
		HumanReliability:      Float(0.85),
		AutonomousReliability: Float(0.65),
		Phase:                 "Inspection",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Action != ActionAsk {
		t.Fatalf("expected ask in a medium-risk phase, got %q", d.Action)
	}
	if arb.Mode() != ModeAutonomous {
		t.Fatalf("ask must not commit; mode is %q", arb.Mode())
	}

	if err := arb.Apply(d.TargetMode); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if arb.Mode() != ModeHuman {
		t.Fatalf("expected human after Apply, got %q", arb.Mode())
	}
}

func TestHysteresisHoldsAfterCommit(t *testing.T) {
	clock, advance := testClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	arb, err := New(WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := arb.Apply(ModeAutonomous); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	advance(30 * time.Second)

	d, err := arb.Evaluate(Situation{
		RecommendedMode: ModeHuman,
		Phase:           "Transit",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Action != ActionNone {
		t.Fatalf("expected hysteresis hold 30s after a commit, got %q", d.Action)
	}
	if !d.Reasons.Hysteresis {
		t.Fatal("expected hysteresis reason")
	}
}

func TestOverrideBlockedInCriticalPhase(t *testing.T) {
	arb, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := arb.Override(ModeAutonomous, Situation{
		RecommendedMode: ModeHuman,
		Phase:           "Docking",
	})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if d.Action != ActionBlock {
		t.Fatalf("expected blocked autonomous override while docking, got %q", d.Action)
	}
	if arb.Mode() != ModeHuman {
		t.Fatalf("blocked override must not change mode, got %q", arb.Mode())
	}
}

func TestOverrideCommits(t *testing.T) {
	arb, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := arb.Override(ModeShared, Situation{
		RecommendedMode: ModeHuman,
		Phase:           "Transit",
	})
	if err != nil {
		t.Fatalf("Override: %v", err)
	}
	if d.Action != ActionAutoSwitch {
		t.Fatalf("expected accepted override, got %q", d.Action)
	}
	if arb.Mode() != ModeShared {
		t.Fatalf("expected shared mode after override, got %q", arb.Mode())
	}
}

func TestRejectsBadInput(t *testing.T) {
	arb, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := arb.Evaluate(Situation{RecommendedMode: "manual"}); err == nil {
		t.Fatal("expected error for unknown recommended mode")
	}
	if _, err := arb.Evaluate(Situation{RecommendedMode: ModeHuman, HumanReliability: Float(1.5)}); err == nil {
		t.Fatal("expected error for score above one")
	}
	if _, err := arb.Override("manual", Situation{RecommendedMode: ModeHuman}); err == nil {
		t.Fatal("expected error for unknown override mode")
	}
	if err := arb.Apply("manual"); err == nil {
		t.Fatal("expected error for unknown target mode")
	}
}

func TestNewRejectsBadThresholds(t *testing.T) {
	if _, err := New(WithThresholds(0.7, 0.6, 0.8)); err == nil {
		t.Fatal("expected error for unordered thresholds")
	}
	if _, err := New(WithThresholds(0.5, 0.6, 1.2)); err == nil {
		t.Fatal("expected error for threshold above one")
	}
	if _, err := New(WithInitialMode("manual")); err == nil {
		t.Fatal("expected error for unknown initial mode")
	}
}
