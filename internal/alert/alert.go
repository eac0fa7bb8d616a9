// Package alert fans out arbitration events to webhook endpoints: a
// topside console, a Slack channel for the mission supervisor, or a
// PagerDuty rotation for safety-critical escalations.
package alert

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // action types or urgencies
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp   string `json:"timestamp"`
	MissionID   string `json:"mission_id"`
	Action      string `json:"action_type"`
	CurrentMode string `json:"current_mode"`
	TargetMode  string `json:"target_mode"`
	Phase       string `json:"phase"`
	Urgency     string `json:"urgency"`
	Message     string `json:"message"`
	Rule        string `json:"rule"`
	ConfigHash  string `json:"config_hash,omitempty"`
}

// Dispatcher fans out events to matching webhook configurations.
type Dispatcher struct {
	configs []Config
}

// NewDispatcher creates a Dispatcher. Returns nil when configs is empty;
// callers nil-check before dispatching.
func NewDispatcher(configs []Config) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	return &Dispatcher{configs: configs}
}

// Dispatch sends the event to all webhooks whose Events list matches the
// action type or urgency. Fires goroutines; does not block the caller.
func (d *Dispatcher) Dispatch(event Event) {
	for _, cfg := range d.configs {
		if matches(cfg.Events, event) {
			go func(c Config) { _ = Send(c, event) }(cfg)
		}
	}
}

func matches(events []string, event Event) bool {
	for _, e := range events {
		if e == event.Action || e == event.Urgency {
			return true
		}
	}
	return false
}
