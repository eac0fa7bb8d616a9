package arbiter

import (
	"sync"
	"testing"
	"time"

	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/feed"
	"github.com/oceanbotics/helmsman/internal/model"
)

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recording collects everything the arbiter reports.
type recording struct {
	decisions   []DecisionRecord
	modeChanges []ModeChangeRecord
	resolved    map[string]string
	notified    []string
}

func newRecording() *recording {
	return &recording{resolved: map[string]string{}}
}

func (r *recording) Decision(rec DecisionRecord)     { r.decisions = append(r.decisions, rec) }
func (r *recording) ModeChange(rec ModeChangeRecord) { r.modeChanges = append(r.modeChanges, rec) }
func (r *recording) PendingResolved(id, outcome string) {
	r.resolved[id] = outcome
}
func (r *recording) Notify(id string, d model.AuthorityDecision) {
	r.notified = append(r.notified, id)
}

func setup(t *testing.T, initial model.ControlMode) (*Arbiter, *feed.State, *fakeClock, *recording) {
	t.Helper()
	clock := newFakeClock()
	feeds := feed.NewState()
	rec := newRecording()
	a, err := New(Config{
		Engine:      authority.New(authority.DefaultConfig()),
		Feeds:       feeds,
		Recorder:    rec,
		Notifier:    rec,
		MissionID:   "m-test",
		InitialMode: initial,
		Clock:       clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a, feeds, clock, rec
}

func apply(t *testing.T, feeds *feed.State, msgs ...feed.Message) {
	t.Helper()
	for _, m := range msgs {
		if _, err := feeds.Apply(m); err != nil {
			t.Fatal(err)
		}
	}
}

func f(v float64) *float64 { return &v }

func TestCycleWaitsForFirstRecommendation(t *testing.T) {
	a, _, _, rec := setup(t, model.ModeHuman)

	if d := a.Cycle(); d != nil {
		t.Fatalf("cycle before any recommendation produced %+v", d)
	}
	if len(rec.decisions) != 0 {
		t.Error("nothing should be recorded before the first recommendation")
	}
}

func TestCycleCommitsAutoSwitch(t *testing.T) {
	a, feeds, clock, rec := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Charging"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second) // past the dwell window

	d := a.Cycle()
	if d == nil || d.Action != model.ActionAutoSwitch {
		t.Fatalf("decision = %+v", d)
	}
	if a.Mode() != model.ModeAutonomous {
		t.Errorf("mode = %s, want autonomous", a.Mode())
	}
	if len(rec.modeChanges) != 1 || rec.modeChanges[0].OldMode != model.ModeHuman {
		t.Errorf("mode changes = %+v", rec.modeChanges)
	}
	if len(rec.notified) != 1 {
		t.Errorf("notified = %v", rec.notified)
	}
}

func TestAskCreatesPendingAndSuppressesCycles(t *testing.T) {
	a, feeds, clock, rec := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Undocking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)

	d := a.Cycle()
	if d == nil || d.Action != model.ActionAsk {
		t.Fatalf("decision = %+v", d)
	}
	st := a.Status()
	if st.Pending == nil || st.Pending.TargetMode != model.ModeAutonomous {
		t.Fatalf("status = %+v", st)
	}
	if st.Pending.ExpiresInSeconds != 45 {
		t.Errorf("expires in = %v, want 45", st.Pending.ExpiresInSeconds)
	}

	// No new ask while one is outstanding.
	if d := a.Cycle(); d != nil {
		t.Fatalf("cycle with pending ask produced %+v", d)
	}
	if len(rec.decisions) != 1 {
		t.Errorf("decisions recorded = %d, want 1", len(rec.decisions))
	}
}

func TestRespondAcceptCommitsMode(t *testing.T) {
	a, feeds, clock, rec := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Undocking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)
	a.Cycle()

	id := a.Status().Pending.DecisionID
	if err := a.Respond(id, true); err != nil {
		t.Fatal(err)
	}
	if a.Mode() != model.ModeAutonomous {
		t.Errorf("mode = %s, want autonomous", a.Mode())
	}
	if rec.resolved[id] != OutcomeAccepted {
		t.Errorf("outcome = %q", rec.resolved[id])
	}
	if a.Status().Pending != nil {
		t.Error("pending not cleared")
	}
}

func TestRespondDeclineMaintainsMode(t *testing.T) {
	a, feeds, clock, rec := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Undocking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)
	a.Cycle()

	id := a.Status().Pending.DecisionID
	if err := a.Respond("", false); err != nil {
		t.Fatal(err)
	}
	if a.Mode() != model.ModeHuman {
		t.Errorf("declined ask changed mode to %s", a.Mode())
	}
	if rec.resolved[id] != OutcomeDeclined {
		t.Errorf("outcome = %q", rec.resolved[id])
	}
}

func TestRespondErrors(t *testing.T) {
	a, feeds, clock, _ := setup(t, model.ModeHuman)

	if err := a.Respond("", true); err == nil {
		t.Error("respond with nothing pending must error")
	}

	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Undocking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)
	a.Cycle()

	if err := a.Respond("d-wrong", true); err == nil {
		t.Error("respond with mismatched decision id must error")
	}
	if a.Mode() != model.ModeHuman {
		t.Error("failed respond must not change mode")
	}
}

func TestCheckPendingTimesOut(t *testing.T) {
	a, feeds, clock, rec := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Undocking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)
	a.Cycle()
	id := a.Status().Pending.DecisionID

	// Before the deadline nothing happens.
	clock.Advance(30 * time.Second)
	a.CheckPending()
	if a.Status().Pending == nil {
		t.Fatal("pending expired early")
	}

	clock.Advance(20 * time.Second) // past the 45s deadline
	a.CheckPending()
	if a.Status().Pending != nil {
		t.Fatal("pending not expired")
	}
	if rec.resolved[id] != OutcomeTimeout {
		t.Errorf("outcome = %q", rec.resolved[id])
	}
	if a.Mode() != model.ModeHuman {
		t.Error("timeout must maintain current mode")
	}
}

func TestOverrideSupersedesPending(t *testing.T) {
	a, feeds, clock, rec := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Undocking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)
	a.Cycle()
	id := a.Status().Pending.DecisionID

	d := a.Override(model.ModeShared)
	if d.Action != model.ActionAutoSwitch || d.TargetMode != model.ModeShared {
		t.Fatalf("override decision = %+v", d)
	}
	if a.Mode() != model.ModeShared {
		t.Errorf("mode = %s", a.Mode())
	}
	if rec.resolved[id] != OutcomeSuperseded {
		t.Errorf("outcome = %q", rec.resolved[id])
	}
}

func TestOverrideBlockedKeepsMode(t *testing.T) {
	a, feeds, _, _ := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Docking"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "human"},
	)

	d := a.Override(model.ModeAutonomous)
	if d.Action != model.ActionBlock {
		t.Fatalf("decision = %+v", d)
	}
	if a.Mode() != model.ModeHuman {
		t.Errorf("blocked override changed mode to %s", a.Mode())
	}
}

func TestHysteresisRestartsOnCommit(t *testing.T) {
	a, feeds, clock, _ := setup(t, model.ModeHuman)
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Charging"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "autonomous"},
	)
	clock.Advance(150 * time.Second)
	if d := a.Cycle(); d.Action != model.ActionAutoSwitch {
		t.Fatalf("decision = %+v", d)
	}

	// Immediately after the commit a differing recommendation must be
	// held by hysteresis (Charging maintains, so move to Transit where a
	// shared recommendation would otherwise suggest).
	apply(t, feeds,
		feed.Message{Type: feed.TypePhase, Phase: "Transit"},
		feed.Message{Type: feed.TypeRecommendation, Mode: "shared"},
	)
	clock.Advance(10 * time.Second)
	d := a.Cycle()
	if d == nil || d.Action != model.ActionNone || !d.Reasons.Hysteresis {
		t.Fatalf("decision = %+v", d)
	}
}

func TestStatusFields(t *testing.T) {
	a, feeds, clock, _ := setup(t, model.ModeHuman)
	apply(t, feeds, feed.Message{Type: feed.TypePhase, Phase: "Inspection"})
	clock.Advance(42 * time.Second)

	st := a.Status()
	if st.MissionID != "m-test" || st.Mode != model.ModeHuman || st.Phase != "Inspection" {
		t.Errorf("status = %+v", st)
	}
	if st.SinceChangeSeconds != 42 {
		t.Errorf("since change = %v", st.SinceChangeSeconds)
	}
	if st.HasRecommendation {
		t.Error("no recommendation arrived yet")
	}
}
