package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/oceanbotics/helmsman/internal/alert"
	"github.com/oceanbotics/helmsman/internal/arbiter"
	"github.com/oceanbotics/helmsman/internal/audit"
	"github.com/oceanbotics/helmsman/internal/metrics"
	"github.com/oceanbotics/helmsman/internal/model"
	"github.com/oceanbotics/helmsman/internal/store"
)

const storeTimeout = 5 * time.Second

// sinks fans arbitration outcomes out to the audit log, history store,
// metrics, alert webhooks and the operator outbox. It implements both
// arbiter.Recorder and arbiter.Notifier.
type sinks struct {
	logger  *zap.Logger
	audit   *audit.Log
	history *store.Store
	outbox  string

	missionID string

	mu         sync.Mutex
	alerts     *alert.Dispatcher
	configHash string
}

func (s *sinks) setAlerts(d *alert.Dispatcher, configHash string) {
	s.mu.Lock()
	s.alerts = d
	s.configHash = configHash
	s.mu.Unlock()
}

func (s *sinks) currentAlerts() (*alert.Dispatcher, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts, s.configHash
}

// Decision records one evaluated cycle everywhere it needs to go.
func (s *sinks) Decision(rec arbiter.DecisionRecord) {
	d := rec.Decision
	dispatcher, configHash := s.currentAlerts()

	entry := audit.Entry{
		Timestamp:             rec.At.UTC().Format(audit.TimestampFormat),
		MissionID:             rec.MissionID,
		Type:                  audit.TypeDecision,
		DecisionID:            rec.DecisionID,
		Action:                string(d.Action),
		CurrentMode:           string(rec.CurrentMode),
		TargetMode:            string(d.TargetMode),
		Phase:                 rec.Snapshot.Phase,
		Criticality:           rec.Snapshot.Criticality,
		Urgency:               string(d.Urgency),
		Rule:                  d.Reasons.Rule,
		HumanReliability:      rec.Snapshot.Recommendation.HumanReliability,
		AutonomousReliability: rec.Snapshot.Recommendation.AutonomousReliability,
		DockingReliability:    rec.Snapshot.Recommendation.DockingReliability,
		Confidence:            rec.Snapshot.Recommendation.Confidence,
		Reasons:               &d.Reasons,
		ConfigHash:            configHash,
	}
	if err := s.audit.Record(entry); err != nil {
		s.logger.Error("audit record failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.history.RecordDecision(ctx, store.Decision{
		MissionID:             rec.MissionID,
		DecisionID:            rec.DecisionID,
		Action:                string(d.Action),
		CurrentMode:           string(rec.CurrentMode),
		TargetMode:            string(d.TargetMode),
		Phase:                 rec.Snapshot.Phase,
		Criticality:           rec.Snapshot.Criticality,
		Urgency:               string(d.Urgency),
		Rule:                  d.Reasons.Rule,
		HumanReliability:      rec.Snapshot.Recommendation.HumanReliability,
		AutonomousReliability: rec.Snapshot.Recommendation.AutonomousReliability,
		DockingReliability:    rec.Snapshot.Recommendation.DockingReliability,
		Confidence:            rec.Snapshot.Recommendation.Confidence,
		Reasons:               d.Reasons,
		DecidedAt:             rec.At,
	}); err != nil {
		s.logger.Error("history record failed", zap.Error(err))
	}

	metrics.DecisionsTotal.WithLabelValues(string(d.Action), d.Reasons.Rule).Inc()

	if dispatcher != nil {
		dispatcher.Dispatch(alert.Event{
			Timestamp:   rec.At.UTC().Format(audit.TimestampFormat),
			MissionID:   rec.MissionID,
			Action:      string(d.Action),
			CurrentMode: string(rec.CurrentMode),
			TargetMode:  string(d.TargetMode),
			Phase:       rec.Snapshot.Phase,
			Urgency:     string(d.Urgency),
			Message:     d.Message,
			Rule:        d.Reasons.Rule,
			ConfigHash:  configHash,
		})
	}

	if d.Action != model.ActionNone {
		s.logger.Info("decision",
			zap.String("action", string(d.Action)),
			zap.String("rule", d.Reasons.Rule),
			zap.String("target", string(d.TargetMode)),
			zap.String("urgency", string(d.Urgency)))
	}
}

// ModeChange records one committed transition.
func (s *sinks) ModeChange(rec arbiter.ModeChangeRecord) {
	_, configHash := s.currentAlerts()

	if err := s.audit.Record(audit.Entry{
		Timestamp:             rec.At.UTC().Format(audit.TimestampFormat),
		MissionID:             rec.MissionID,
		Type:                  audit.TypeModeChange,
		OldMode:               string(rec.OldMode),
		NewMode:               string(rec.NewMode),
		Phase:                 rec.Phase,
		Reason:                rec.Reason,
		HumanReliability:      rec.HumanReliability,
		AutonomousReliability: rec.AutonomousReliability,
		ConfigHash:            configHash,
	}); err != nil {
		s.logger.Error("audit record failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.history.RecordModeChange(ctx, store.ModeChange{
		MissionID:             rec.MissionID,
		OldMode:               string(rec.OldMode),
		NewMode:               string(rec.NewMode),
		Phase:                 rec.Phase,
		Reason:                rec.Reason,
		HumanReliability:      rec.HumanReliability,
		AutonomousReliability: rec.AutonomousReliability,
		ChangedAt:             rec.At,
	}); err != nil {
		s.logger.Error("history record failed", zap.Error(err))
	}

	metrics.ModeChangesTotal.WithLabelValues(string(rec.OldMode), string(rec.NewMode)).Inc()
	metrics.SetCurrentMode(rec.NewMode)

	s.logger.Info("mode change",
		zap.String("from", string(rec.OldMode)),
		zap.String("to", string(rec.NewMode)),
		zap.String("phase", rec.Phase),
		zap.String("reason", rec.Reason))
}

// PendingResolved records the outcome of a confirmation request.
func (s *sinks) PendingResolved(decisionID, outcome string) {
	if err := s.audit.Record(audit.Entry{
		MissionID:  s.missionID,
		Type:       audit.TypePending,
		DecisionID: decisionID,
		Outcome:    outcome,
	}); err != nil {
		s.logger.Error("audit record failed", zap.Error(err))
	}

	metrics.PendingResolvedTotal.WithLabelValues(outcome).Inc()
	s.logger.Info("pending resolved",
		zap.String("decision_id", decisionID),
		zap.String("outcome", outcome))
}

// notification is the operator-facing outbox payload.
type notification struct {
	DecisionID     string `json:"decision_id"`
	Action         string `json:"action_type"`
	TargetMode     string `json:"target_mode"`
	Message        string `json:"message"`
	Explanation    string `json:"explanation"`
	Urgency        string `json:"urgency"`
	AllowDecline   bool   `json:"allow_decline"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// Notify writes a decision to the outbox for the operator console. Files
// are written atomically so console pollers never see partial JSON.
func (s *sinks) Notify(decisionID string, d model.AuthorityDecision) {
	n := notification{
		DecisionID:     decisionID,
		Action:         string(d.Action),
		TargetMode:     string(d.TargetMode),
		Message:        d.Message,
		Explanation:    d.Explanation,
		Urgency:        string(d.Urgency),
		AllowDecline:   d.AllowDecline,
		TimeoutSeconds: d.TimeoutSeconds,
		Timestamp:      time.Now().UTC().Format(audit.TimestampFormat),
	}
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return
	}

	name := fmt.Sprintf("%d-%s.json", time.Now().UnixNano(), decisionID)
	path := filepath.Join(s.outbox, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Warn("write outbox", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Warn("publish outbox", zap.Error(err))
	}
}
