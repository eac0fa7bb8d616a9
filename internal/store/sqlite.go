// Package store persists arbitration history to SQLite: committed mode
// changes and per-cycle decisions, queryable from the CLI. The audit log
// (internal/audit) remains the tamper-evident record; this store exists
// for fast history queries, not integrity.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/oceanbotics/helmsman/internal/model"
)

var migrations = []struct {
	version int
	sql     string
}{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS mode_changes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    mission_id    TEXT NOT NULL,
    old_mode      TEXT NOT NULL,
    new_mode      TEXT NOT NULL,
    phase         TEXT NOT NULL DEFAULT '',
    reason        TEXT NOT NULL DEFAULT '',
    human_rel     REAL NOT NULL DEFAULT 0,
    auto_rel      REAL NOT NULL DEFAULT 0,
    changed_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mode_changes_mission ON mode_changes(mission_id, changed_at DESC);

CREATE TABLE IF NOT EXISTS decisions (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    mission_id    TEXT NOT NULL,
    decision_id   TEXT NOT NULL DEFAULT '',
    action_type   TEXT NOT NULL,
    current_mode  TEXT NOT NULL,
    target_mode   TEXT NOT NULL,
    phase         TEXT NOT NULL DEFAULT '',
    criticality   TEXT NOT NULL DEFAULT '',
    urgency       TEXT NOT NULL DEFAULT '',
    rule          TEXT NOT NULL DEFAULT '',
    human_rel     REAL NOT NULL DEFAULT 0,
    auto_rel      REAL NOT NULL DEFAULT 0,
    docking_rel   REAL,
    confidence    REAL NOT NULL DEFAULT 0,
    reasons       TEXT NOT NULL DEFAULT '{}',
    decided_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_mission ON decisions(mission_id, decided_at DESC);
CREATE INDEX IF NOT EXISTS idx_decisions_action  ON decisions(action_type);
`,
	},
}

// ModeChange is one committed control-mode transition.
type ModeChange struct {
	MissionID             string    `json:"mission_id"`
	OldMode               string    `json:"old_mode"`
	NewMode               string    `json:"new_mode"`
	Phase                 string    `json:"phase"`
	Reason                string    `json:"reason"`
	HumanReliability      float64   `json:"human_reliability"`
	AutonomousReliability float64   `json:"autonomous_reliability"`
	ChangedAt             time.Time `json:"changed_at"`
}

// Decision is one persisted arbitration outcome.
type Decision struct {
	MissionID             string    `json:"mission_id"`
	DecisionID            string    `json:"decision_id,omitempty"`
	Action                string    `json:"action_type"`
	CurrentMode           string    `json:"current_mode"`
	TargetMode            string    `json:"target_mode"`
	Phase                 string    `json:"phase"`
	Criticality           string    `json:"criticality"`
	Urgency               string    `json:"urgency"`
	Rule                  string    `json:"rule"`
	HumanReliability      float64   `json:"human_reliability"`
	AutonomousReliability float64   `json:"autonomous_reliability"`
	DockingReliability    *float64  `json:"docking_reliability,omitempty"`
	Confidence            float64   `json:"confidence"`
	Reasons               model.Reasons `json:"reasons"`
	DecidedAt             time.Time `json:"decided_at"`
}

// Store is the SQLite-backed arbitration history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies pending
// migrations. Pass ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_versions (
        version    INTEGER PRIMARY KEY,
        applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_versions WHERE version = ?`, m.version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_versions(version) VALUES(?)`, m.version); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// RecordModeChange persists one committed transition.
func (s *Store) RecordModeChange(ctx context.Context, mc ModeChange) error {
	if mc.ChangedAt.IsZero() {
		mc.ChangedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO mode_changes(mission_id, old_mode, new_mode, phase, reason, human_rel, auto_rel, changed_at)
        VALUES(?,?,?,?,?,?,?,?)`,
		mc.MissionID, mc.OldMode, mc.NewMode, mc.Phase, mc.Reason,
		mc.HumanReliability, mc.AutonomousReliability, mc.ChangedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert mode change: %w", err)
	}
	return nil
}

// RecordDecision persists one arbitration outcome.
func (s *Store) RecordDecision(ctx context.Context, d Decision) error {
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now()
	}
	reasons, err := json.Marshal(d.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO decisions(mission_id, decision_id, action_type, current_mode, target_mode,
            phase, criticality, urgency, rule, human_rel, auto_rel, docking_rel, confidence, reasons, decided_at)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.MissionID, d.DecisionID, d.Action, d.CurrentMode, d.TargetMode,
		d.Phase, d.Criticality, d.Urgency, d.Rule,
		d.HumanReliability, d.AutonomousReliability, d.DockingReliability,
		d.Confidence, string(reasons), d.DecidedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// RecentModeChanges returns up to limit transitions for a mission, newest
// first. An empty missionID returns transitions across all missions.
func (s *Store) RecentModeChanges(ctx context.Context, missionID string, limit int) ([]ModeChange, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT mission_id, old_mode, new_mode, phase, reason, human_rel, auto_rel, changed_at
        FROM mode_changes`
	args := []any{}
	if missionID != "" {
		query += ` WHERE mission_id = ?`
		args = append(args, missionID)
	}
	query += ` ORDER BY changed_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mode changes: %w", err)
	}
	defer rows.Close()

	var out []ModeChange
	for rows.Next() {
		var mc ModeChange
		if err := rows.Scan(&mc.MissionID, &mc.OldMode, &mc.NewMode, &mc.Phase, &mc.Reason,
			&mc.HumanReliability, &mc.AutonomousReliability, &mc.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan mode change: %w", err)
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// RecentDecisions returns up to limit decisions for a mission, newest
// first. An empty missionID returns decisions across all missions.
func (s *Store) RecentDecisions(ctx context.Context, missionID string, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT mission_id, decision_id, action_type, current_mode, target_mode,
        phase, criticality, urgency, rule, human_rel, auto_rel, docking_rel, confidence, reasons, decided_at
        FROM decisions`
	args := []any{}
	if missionID != "" {
		query += ` WHERE mission_id = ?`
		args = append(args, missionID)
	}
	query += ` ORDER BY decided_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		var reasons string
		if err := rows.Scan(&d.MissionID, &d.DecisionID, &d.Action, &d.CurrentMode, &d.TargetMode,
			&d.Phase, &d.Criticality, &d.Urgency, &d.Rule,
			&d.HumanReliability, &d.AutonomousReliability, &d.DockingReliability,
			&d.Confidence, &reasons, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if err := json.Unmarshal([]byte(reasons), &d.Reasons); err != nil {
			return nil, fmt.Errorf("unmarshal reasons: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
