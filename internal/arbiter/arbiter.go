// Package arbiter owns the mutable arbitration state the engine refuses to
// hold: the committed control mode, the last-change timestamp and the one
// outstanding confirmation request. All methods serialize on an internal
// mutex; one cycle fully completes, including any mode mutation, before
// the next reads the state.
package arbiter

import (
	"fmt"
	"sync"
	"time"

	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/feed"
	"github.com/oceanbotics/helmsman/internal/model"
)

// Recorder receives every arbitration outcome for persistence. All calls
// happen under the arbiter lock; implementations should not block long.
type Recorder interface {
	Decision(rec DecisionRecord)
	ModeChange(rec ModeChangeRecord)
	PendingResolved(decisionID, outcome string)
}

// Notifier surfaces decisions that need operator attention.
type Notifier interface {
	Notify(decisionID string, d model.AuthorityDecision)
}

// DecisionRecord is one evaluated cycle, ready for audit and storage.
type DecisionRecord struct {
	MissionID   string
	DecisionID  string
	Decision    model.AuthorityDecision
	CurrentMode model.ControlMode
	Snapshot    feed.Snapshot
	At          time.Time
}

// ModeChangeRecord is one committed transition.
type ModeChangeRecord struct {
	MissionID             string
	OldMode               model.ControlMode
	NewMode               model.ControlMode
	Phase                 string
	Reason                string
	HumanReliability      float64
	AutonomousReliability float64
	At                    time.Time
}

// Pending outcomes passed to Recorder.PendingResolved.
const (
	OutcomeAccepted   = "accepted"
	OutcomeDeclined   = "declined"
	OutcomeTimeout    = "timeout"
	OutcomeSuperseded = "superseded"
)

// pending is the single outstanding confirmation request. While one is
// outstanding no new ask is issued: the arbitration loop still runs, but
// ask-producing evaluations are suppressed until the operator answers or
// the deadline passes.
type pending struct {
	id       string
	decision model.AuthorityDecision
	deadline time.Time // zero = no expiry
}

// Config wires an Arbiter.
type Config struct {
	Engine   *authority.Engine
	Feeds    *feed.State
	Recorder Recorder
	Notifier Notifier

	MissionID   string
	InitialMode model.ControlMode

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

// Arbiter runs the decision cycle against live feed state.
type Arbiter struct {
	mu sync.Mutex

	engine   *authority.Engine
	feeds    *feed.State
	recorder Recorder
	notifier Notifier
	clock    func() time.Time

	missionID  string
	mode       model.ControlMode
	lastChange time.Time
	pending    *pending
}

// New creates an arbiter holding the initial mode. The mode dwell clock
// starts at construction.
func New(cfg Config) (*Arbiter, error) {
	if cfg.Engine == nil || cfg.Feeds == nil {
		return nil, fmt.Errorf("arbiter: engine and feeds are required")
	}
	if cfg.InitialMode == "" {
		cfg.InitialMode = model.ModeHuman
	}
	if cfg.MissionID == "" {
		cfg.MissionID = model.NewMissionID()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Arbiter{
		engine:     cfg.Engine,
		feeds:      cfg.Feeds,
		recorder:   cfg.Recorder,
		notifier:   cfg.Notifier,
		clock:      cfg.Clock,
		missionID:  cfg.MissionID,
		mode:       cfg.InitialMode,
		lastChange: cfg.Clock(),
	}, nil
}

// MissionID returns the mission identifier for this run.
func (a *Arbiter) MissionID() string { return a.missionID }

// SetEngine swaps the rule engine, used by config hot-reload to apply new
// thresholds without restarting the mission.
func (a *Arbiter) SetEngine(e *authority.Engine) {
	a.mu.Lock()
	a.engine = e
	a.mu.Unlock()
}

// Cycle runs one arbitration pass. It returns the decision made, or nil
// when no evaluation happened (no recommendation yet, or an ask is
// outstanding).
func (a *Arbiter) Cycle() *model.AuthorityDecision {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.feeds.Snapshot()
	if !snap.HasRecommendation {
		return nil
	}
	// No new ask while one is outstanding. Overrides still cut through
	// via Override, which is why this lives here and not in the engine.
	if a.pending != nil {
		return nil
	}

	d := a.evaluateLocked(snap, nil)
	return &d
}

// Override evaluates an explicit operator mode request immediately. Any
// outstanding ask is superseded: the operator's direct command wins.
func (a *Arbiter) Override(mode model.ControlMode) model.AuthorityDecision {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		a.resolvePendingLocked(OutcomeSuperseded)
	}

	snap := a.feeds.Snapshot()
	return a.evaluateLocked(snap, &mode)
}

// Respond resolves the outstanding ask. An empty decisionID targets
// whichever ask is outstanding; a mismatched one is an error.
func (a *Arbiter) Respond(decisionID string, accept bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil {
		return fmt.Errorf("arbiter: no decision pending")
	}
	if decisionID != "" && decisionID != a.pending.id {
		return fmt.Errorf("arbiter: pending decision is %s, not %s", a.pending.id, decisionID)
	}

	p := a.pending
	if accept {
		a.resolvePendingLocked(OutcomeAccepted)
		a.commitModeLocked(p.decision.TargetMode, p.decision.Message, a.feeds.Snapshot())
	} else {
		a.resolvePendingLocked(OutcomeDeclined)
	}
	return nil
}

// CheckPending expires the outstanding ask once its deadline passes. The
// declining default applies: the current mode is maintained.
func (a *Arbiter) CheckPending() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil || a.pending.deadline.IsZero() {
		return
	}
	if a.clock().After(a.pending.deadline) {
		a.resolvePendingLocked(OutcomeTimeout)
	}
}

// evaluateLocked runs the engine and acts on the result. Caller holds mu.
func (a *Arbiter) evaluateLocked(snap feed.Snapshot, override *model.ControlMode) model.AuthorityDecision {
	now := a.clock()
	d := a.engine.Evaluate(authority.Input{
		CurrentMode:    a.mode,
		Recommendation: snap.Recommendation,
		Phase:          snap.Phase,
		Criticality:    snap.Criticality,
		Elapsed:        now.Sub(a.lastChange),
		Override:       override,
	})

	decisionID := model.NewDecisionID()
	if a.recorder != nil {
		a.recorder.Decision(DecisionRecord{
			MissionID:   a.missionID,
			DecisionID:  decisionID,
			Decision:    d,
			CurrentMode: a.mode,
			Snapshot:    snap,
			At:          now,
		})
	}

	switch d.Action {
	case model.ActionAutoSwitch:
		a.commitModeLocked(d.TargetMode, d.Message, snap)
		a.notifyLocked(decisionID, d)

	case model.ActionAsk:
		p := &pending{id: decisionID, decision: d}
		if d.TimeoutSeconds > 0 {
			p.deadline = now.Add(time.Duration(d.TimeoutSeconds) * time.Second)
		}
		a.pending = p
		a.notifyLocked(decisionID, d)

	case model.ActionSuggest, model.ActionNotify, model.ActionBlock:
		a.notifyLocked(decisionID, d)
	}

	return d
}

// commitModeLocked applies a mode transition and restarts the dwell clock.
// Caller holds mu.
func (a *Arbiter) commitModeLocked(target model.ControlMode, reason string, snap feed.Snapshot) {
	if target == a.mode {
		return
	}
	old := a.mode
	now := a.clock()
	a.mode = target
	a.lastChange = now

	if a.recorder != nil {
		a.recorder.ModeChange(ModeChangeRecord{
			MissionID:             a.missionID,
			OldMode:               old,
			NewMode:               target,
			Phase:                 snap.Phase,
			Reason:                reason,
			HumanReliability:      snap.Recommendation.HumanReliability,
			AutonomousReliability: snap.Recommendation.AutonomousReliability,
			At:                    now,
		})
	}
}

func (a *Arbiter) resolvePendingLocked(outcome string) {
	if a.pending == nil {
		return
	}
	if a.recorder != nil {
		a.recorder.PendingResolved(a.pending.id, outcome)
	}
	a.pending = nil
}

func (a *Arbiter) notifyLocked(decisionID string, d model.AuthorityDecision) {
	if a.notifier != nil {
		a.notifier.Notify(decisionID, d)
	}
}
