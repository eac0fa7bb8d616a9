package helmsman

import (
	"fmt"
	"sync"
	"time"

	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/model"
)

// Arbiter is an embedded arbitration engine holding the committed control
// mode. Safe for concurrent use.
type Arbiter struct {
	mu     sync.Mutex
	engine *authority.Engine
	clock  func() time.Time

	mode       Mode
	lastChange time.Time
}

// New creates an embedded arbiter.
func New(opts ...Option) (*Arbiter, error) {
	def := authority.DefaultConfig()
	cfg := arbiterConfig{
		criticalLow:     def.CriticalLowThreshold,
		low:             def.LowThreshold,
		high:            def.HighThreshold,
		minModeDuration: def.MinModeDuration,
		initialMode:     ModeHuman,
		clock:           time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}

	for name, v := range map[string]float64{
		"critical low": cfg.criticalLow,
		"low":          cfg.low,
		"high":         cfg.high,
	} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("helmsman: %s threshold %v outside [0,1]", name, v)
		}
	}
	if cfg.criticalLow > cfg.low || cfg.low > cfg.high {
		return nil, fmt.Errorf("helmsman: thresholds must be ordered critical low <= low <= high")
	}
	switch cfg.initialMode {
	case ModeAutonomous, ModeHuman, ModeShared:
	default:
		return nil, fmt.Errorf("helmsman: unknown initial mode %q", cfg.initialMode)
	}

	return &Arbiter{
		engine: authority.New(authority.Config{
			CriticalLowThreshold: cfg.criticalLow,
			LowThreshold:         cfg.low,
			HighThreshold:        cfg.high,
			MinModeDuration:      cfg.minModeDuration,
		}),
		clock:      cfg.clock,
		mode:       cfg.initialMode,
		lastChange: cfg.clock(),
	}, nil
}

// Mode returns the committed control mode.
func (a *Arbiter) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Evaluate runs one arbitration pass. Auto-switch decisions commit the
// mode change before returning; ask and suggest decisions leave the mode
// untouched until the caller confirms them with Apply.
func (a *Arbiter) Evaluate(s Situation) (Decision, error) {
	rec, err := buildRecommendation(s)
	if err != nil {
		return Decision{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	d := a.engine.Evaluate(authority.Input{
		CurrentMode:    a.mode,
		Recommendation: rec,
		Phase:          phaseOrDefault(s.Phase),
		Criticality:    criticalityOrDefault(s.Criticality),
		Elapsed:        a.clock().Sub(a.lastChange),
	})

	if d.Action == ActionAutoSwitch {
		a.commitLocked(d.TargetMode)
	}
	return d, nil
}

// Override evaluates an explicit operator mode request. Blocked requests
// do not change the mode; accepted ones commit immediately.
func (a *Arbiter) Override(mode Mode, s Situation) (Decision, error) {
	switch mode {
	case ModeAutonomous, ModeHuman, ModeShared:
	default:
		return Decision{}, fmt.Errorf("helmsman: unknown control mode %q", mode)
	}
	rec, err := buildRecommendation(s)
	if err != nil {
		return Decision{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	d := a.engine.Evaluate(authority.Input{
		CurrentMode:    a.mode,
		Recommendation: rec,
		Phase:          phaseOrDefault(s.Phase),
		Criticality:    criticalityOrDefault(s.Criticality),
		Elapsed:        a.clock().Sub(a.lastChange),
		Override:       &mode,
	})

	if d.Action == ActionAutoSwitch {
		a.commitLocked(d.TargetMode)
	}
	return d, nil
}

// Apply commits an operator-confirmed mode change, restarting the dwell
// clock. Use after the operator accepts an ask or suggest decision.
func (a *Arbiter) Apply(target Mode) error {
	switch target {
	case ModeAutonomous, ModeHuman, ModeShared:
	default:
		return fmt.Errorf("helmsman: unknown control mode %q", target)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitLocked(target)
	return nil
}

// commitLocked applies a transition. Caller holds mu.
func (a *Arbiter) commitLocked(target Mode) {
	if target == a.mode {
		return
	}
	a.mode = target
	a.lastChange = a.clock()
}

// Feed defaults applied to nil Situation scores. A non-nil score is used
// as reported; an explicit 0.0 is a legal, alarming reading and must reach
// the safety rules intact.
const (
	defaultHumanReliability      = 0.85
	defaultAutonomousReliability = 0.80
	defaultConfidence            = 0.70
)

func buildRecommendation(s Situation) (model.ModeRecommendation, error) {
	switch s.RecommendedMode {
	case ModeAutonomous, ModeHuman, ModeShared:
	default:
		return model.ModeRecommendation{}, fmt.Errorf("helmsman: unknown recommended mode %q", s.RecommendedMode)
	}

	human := defaultHumanReliability
	if s.HumanReliability != nil {
		human = *s.HumanReliability
	}
	auto := defaultAutonomousReliability
	if s.AutonomousReliability != nil {
		auto = *s.AutonomousReliability
	}
	confidence := defaultConfidence
	if s.Confidence != nil {
		confidence = *s.Confidence
	}

	for name, v := range map[string]float64{
		"human reliability":      human,
		"autonomous reliability": auto,
		"confidence":             confidence,
	} {
		if v < 0 || v > 1 {
			return model.ModeRecommendation{}, fmt.Errorf("helmsman: %s %v outside [0,1]", name, v)
		}
	}
	if s.DockingReliability != nil {
		if v := *s.DockingReliability; v < 0 || v > 1 {
			return model.ModeRecommendation{}, fmt.Errorf("helmsman: docking reliability %v outside [0,1]", v)
		}
	}

	return model.ModeRecommendation{
		Mode:                  s.RecommendedMode,
		Confidence:            confidence,
		HumanReliability:      human,
		AutonomousReliability: auto,
		DockingReliability:    s.DockingReliability,
	}, nil
}

func phaseOrDefault(phase string) string {
	if phase == "" {
		return "Transit"
	}
	return phase
}

func criticalityOrDefault(c string) string {
	if c == "" {
		return "Routine"
	}
	return c
}
