package alert

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return json.Marshal(event)
	}
}

func formatSlack(event Event) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("helmsman: %s", event.Action),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Mode:* %s -> %s", event.CurrentMode, event.TargetMode)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Phase:* %s", event.Phase)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Urgency:* %s", event.Urgency)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Detail:* %s", event.Message)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	severity := "info"
	switch event.Urgency {
	case "critical":
		severity = "critical"
	case "high":
		severity = "error"
	case "medium":
		severity = "warning"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("helmsman %s during %s: %s", event.Action, event.Phase, event.Message),
			"severity": severity,
			"source":   "helmsman",
			"custom_details": map[string]any{
				"mission_id":   event.MissionID,
				"current_mode": event.CurrentMode,
				"target_mode":  event.TargetMode,
				"rule":         event.Rule,
				"urgency":      event.Urgency,
			},
		},
	}
	return json.Marshal(payload)
}
