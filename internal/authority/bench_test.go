package authority

import (
	"testing"
	"time"

	"github.com/oceanbotics/helmsman/internal/model"
)

func BenchmarkEvaluate_Stable(b *testing.B) {
	e := New(DefaultConfig())
	in := Input{
		CurrentMode:    model.ModeAutonomous,
		Recommendation: rec(model.ModeAutonomous, 0.85, 0.9, 0.8),
		Phase:          "Transit",
		Criticality:    "Routine",
		Elapsed:        300 * time.Second,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(in)
	}
}

func BenchmarkEvaluate_SafetySwitch(b *testing.B) {
	e := New(DefaultConfig())
	in := Input{
		CurrentMode:    model.ModeAutonomous,
		Recommendation: rec(model.ModeHuman, 0.9, 0.5, 0.8),
		Phase:          "Transit",
		Criticality:    "Routine",
		Elapsed:        10 * time.Second,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(in)
	}
}

func BenchmarkEvaluate_PhaseAskWithExplanation(b *testing.B) {
	e := New(DefaultConfig())
	in := Input{
		CurrentMode:    model.ModeHuman,
		Recommendation: rec(model.ModeAutonomous, 0.55, 0.9, 0.8),
		Phase:          "Undocking",
		Criticality:    "Routine",
		Elapsed:        300 * time.Second,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Evaluate(in)
	}
}
