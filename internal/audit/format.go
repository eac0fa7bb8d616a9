package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const separator = "------------------------------------------------------------------"

// FormatTimeline renders a ReplayResult as a human-readable text timeline.
func FormatTimeline(result *ReplayResult) string {
	if len(result.Entries) == 0 {
		return fmt.Sprintf("Mission: %s | No entries found.\n", result.MissionID)
	}

	var b strings.Builder

	first := formatDateRange(result.Summary.FirstTimestamp)
	last := formatTimeOnly(result.Summary.LastTimestamp)
	fmt.Fprintf(&b, "Mission: %s | %s to %s UTC\n", result.MissionID, first, last)
	b.WriteString(separator + "\n")

	for _, e := range result.Entries {
		ts := formatTimeOnly(e.Timestamp)
		switch e.Type {
		case TypeModeChange:
			fmt.Fprintf(&b, "%-10s MODE CHANGE   %s -> %s  (%s)\n",
				ts, e.OldMode, e.NewMode, truncate(e.Reason, 40))
		case TypePending:
			fmt.Fprintf(&b, "%-10s PENDING       %s %s\n",
				ts, e.DecisionID, strings.ToUpper(e.Outcome))
		default:
			fmt.Fprintf(&b, "%-10s %-13s %-10s -> %-10s %-16s %s\n",
				ts, strings.ToUpper(e.Action), e.CurrentMode, e.TargetMode,
				e.Phase, truncate(e.Rule, 32))
		}
	}

	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))

	return b.String()
}

// FormatJSON renders a ReplayResult as indented JSON.
func FormatJSON(result *ReplayResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal replay result: %w", err)
	}
	return string(data), nil
}

func formatDateRange(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s ReplaySummary) string {
	var parts []string
	if s.AutoSwitches > 0 {
		parts = append(parts, fmt.Sprintf("%d auto-switch", s.AutoSwitches))
	}
	if s.Asks > 0 {
		parts = append(parts, fmt.Sprintf("%d ask", s.Asks))
	}
	if s.Suggests > 0 {
		parts = append(parts, fmt.Sprintf("%d suggest", s.Suggests))
	}
	if s.Notifies > 0 {
		parts = append(parts, fmt.Sprintf("%d notify", s.Notifies))
	}
	if s.Blocks > 0 {
		parts = append(parts, fmt.Sprintf("%d block", s.Blocks))
	}
	if s.ModeChanges > 0 {
		parts = append(parts, fmt.Sprintf("%d mode change", s.ModeChanges))
	}
	if s.Timeouts > 0 {
		parts = append(parts, fmt.Sprintf("%d timeout", s.Timeouts))
	}
	if len(parts) == 0 {
		parts = append(parts, "no activity")
	}

	urgency := s.MaxUrgency
	if urgency == "" {
		urgency = "none"
	}
	return fmt.Sprintf("Summary: %s | Max urgency: %s\n", strings.Join(parts, ", "), urgency)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
