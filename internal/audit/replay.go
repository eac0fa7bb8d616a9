package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ReplayFilter selects entries for mission replay.
type ReplayFilter struct {
	MissionID string
	From      time.Time // zero value = no lower bound
	To        time.Time // zero value = no upper bound
}

// ReplaySummary aggregates the replayed entries.
type ReplaySummary struct {
	Total          int    `json:"total"`
	AutoSwitches   int    `json:"auto_switches"`
	Asks           int    `json:"asks"`
	Suggests       int    `json:"suggests"`
	Notifies       int    `json:"notifies"`
	Blocks         int    `json:"blocks"`
	ModeChanges    int    `json:"mode_changes"`
	Timeouts       int    `json:"timeouts"`
	FirstTimestamp string `json:"first_timestamp"`
	LastTimestamp  string `json:"last_timestamp"`
	MaxUrgency     string `json:"max_urgency"`
}

// ReplayResult holds the filtered entries and their summary.
type ReplayResult struct {
	MissionID string        `json:"mission_id"`
	Entries   []Entry       `json:"entries"`
	Summary   ReplaySummary `json:"summary"`
}

// Replay reads the audit log and returns all entries for one mission,
// optionally bounded in time. Malformed lines are skipped: replay is a
// forensic tool and must work on partially damaged logs.
func Replay(path string, filter ReplayFilter) (*ReplayResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	result := &ReplayResult{MissionID: filter.MissionID}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.MissionID != filter.MissionID {
			continue
		}

		if !filter.From.IsZero() || !filter.To.IsZero() {
			ts, err := time.Parse(TimestampFormat, entry.Timestamp)
			if err != nil {
				continue
			}
			if !filter.From.IsZero() && ts.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && ts.After(filter.To) {
				continue
			}
		}

		result.Entries = append(result.Entries, entry)
		updateSummary(&result.Summary, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}

	return result, nil
}

var urgencyRank = map[string]int{
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

func updateSummary(s *ReplaySummary, e Entry) {
	s.Total++
	if s.FirstTimestamp == "" {
		s.FirstTimestamp = e.Timestamp
	}
	s.LastTimestamp = e.Timestamp

	switch e.Type {
	case TypeModeChange:
		s.ModeChanges++
	case TypePending:
		if e.Outcome == OutcomeTimeout {
			s.Timeouts++
		}
	}

	switch e.Action {
	case "auto_switch":
		s.AutoSwitches++
	case "ask":
		s.Asks++
	case "suggest":
		s.Suggests++
	case "notify":
		s.Notifies++
	case "block":
		s.Blocks++
	}

	if urgencyRank[e.Urgency] > urgencyRank[s.MaxUrgency] {
		s.MaxUrgency = e.Urgency
	}
}
