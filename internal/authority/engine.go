// Package authority implements the control-authority arbitration engine.
//
// Evaluate applies a strict five-tier priority chain: operator override,
// hard safety rules, hysteresis, phase-dependent rules, default. The first
// matching tier returns immediately. The engine is a pure transform: it
// holds only configuration, performs no I/O, and never mutates its inputs.
// The caller owns the current mode and the last-change timestamp and must
// serialize calls against mutations of that state.
package authority

import (
	"fmt"
	"time"

	"github.com/oceanbotics/helmsman/internal/model"
	"github.com/oceanbotics/helmsman/internal/risk"
)

// Config holds the engine thresholds. All reliability comparisons in the
// rule chain use these three boundaries.
type Config struct {
	// CriticalLowThreshold triggers the human-fatigue safety rule.
	CriticalLowThreshold float64
	// LowThreshold triggers the autonomous-degradation safety rule and
	// the fatigue warning on high-risk handoff offers.
	LowThreshold float64
	// HighThreshold is the boundary for an excellent reliability label.
	HighThreshold float64
	// MinModeDuration is the anti-oscillation dwell time after a committed
	// mode change. Only the hard safety rules bypass it.
	MinModeDuration time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		CriticalLowThreshold: 0.5,
		LowThreshold:         0.6,
		HighThreshold:        0.8,
		MinModeDuration:      120 * time.Second,
	}
}

// Engine evaluates mode-change decisions. Safe for concurrent use: it has
// no mutable state.
type Engine struct {
	cfg Config
}

// New returns an engine with the given thresholds.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Input is one evaluation cycle's complete view of the world. Inputs are
// assumed validated at ingestion; see internal/feed.
type Input struct {
	CurrentMode    model.ControlMode
	Recommendation model.ModeRecommendation
	Phase          string
	Criticality    string
	// Elapsed is the time since the last committed mode change.
	Elapsed time.Duration
	// Override is an operator's explicit mode request, if one arrived
	// this cycle. Always evaluated with top priority.
	Override *model.ControlMode
}

// Evaluate runs the priority chain and returns a fully populated decision.
// Every reachable branch yields one; there is no error case.
func (e *Engine) Evaluate(in Input) model.AuthorityDecision {
	level := risk.Level(in.Phase, in.Criticality)

	// Tier 1: operator override.
	if in.Override != nil {
		return e.handleOverride(*in.Override, in, level)
	}

	// Tier 2: hard safety rules. These bypass hysteresis.
	if d, ok := e.applySafetyRules(in, level); ok {
		return d
	}

	// Tier 3: hysteresis.
	if in.Elapsed < e.cfg.MinModeDuration && in.Recommendation.Mode != in.CurrentMode {
		remaining := (e.cfg.MinModeDuration - in.Elapsed).Seconds()
		return model.AuthorityDecision{
			Action:      model.ActionNone,
			TargetMode:  in.CurrentMode,
			Message:     fmt.Sprintf("Mode stable for %ds", int(in.Elapsed.Seconds())),
			Explanation: "Minimum mode duration not reached; holding current mode to prevent rapid switching.",
			Urgency:     model.UrgencyLow,
			Reasons: model.Reasons{
				Rule:             model.RuleHysteresisHold,
				Hysteresis:       true,
				RemainingSeconds: model.Float(remaining),
			},
		}
	}

	// Tiers 4 and 5: phase-dependent rules with a maintain default.
	return e.applyPhaseRules(in, level)
}
