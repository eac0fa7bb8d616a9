// Package metrics exposes arbitration counters and gauges for Prometheus
// scraping from the topside monitoring stack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oceanbotics/helmsman/internal/model"
)

var (
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helmsman_decisions_total",
			Help: "Arbitration decisions by action type and rule",
		},
		[]string{"action", "rule"},
	)

	ModeChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helmsman_mode_changes_total",
			Help: "Committed control mode transitions",
		},
		[]string{"from", "to"},
	)

	PendingResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helmsman_pending_resolved_total",
			Help: "Confirmation requests by resolution outcome",
		},
		[]string{"outcome"},
	)

	CurrentMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "helmsman_current_mode",
			Help: "Active control mode (1 for the active mode, 0 otherwise)",
		},
		[]string{"mode"},
	)

	FeedRejectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helmsman_feed_rejects_total",
			Help: "Inbox messages rejected at validation",
		},
		[]string{"type"},
	)
)

// SetCurrentMode flips the per-mode gauge so exactly one series reads 1.
func SetCurrentMode(mode model.ControlMode) {
	for _, m := range []model.ControlMode{model.ModeAutonomous, model.ModeHuman, model.ModeShared} {
		v := 0.0
		if m == mode {
			v = 1.0
		}
		CurrentMode.WithLabelValues(string(m)).Set(v)
	}
}
