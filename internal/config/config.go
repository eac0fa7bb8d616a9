// Package config loads helmsman configuration from YAML. The raw file
// bytes are hashed so every audit record can name the exact threshold set
// that was in force when a decision was made.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oceanbotics/helmsman/internal/alert"
)

// EngineConfig holds the arbitration thresholds.
type EngineConfig struct {
	CriticalLowThreshold   float64 `yaml:"critical_low_threshold"`
	LowThreshold           float64 `yaml:"low_threshold"`
	HighThreshold          float64 `yaml:"high_threshold"`
	MinModeDurationSeconds int     `yaml:"min_mode_duration_seconds"`
}

// MissionConfig seeds the arbitration state at daemon start.
type MissionConfig struct {
	InitialMode string `yaml:"initial_mode"`
	Phase       string `yaml:"phase"`
	Criticality string `yaml:"criticality"`
}

// DirConfig holds the file-transport directories.
type DirConfig struct {
	Inbox  string `yaml:"inbox"`
	Outbox string `yaml:"outbox"`
	State  string `yaml:"state"`
}

// DaemonConfig tunes the daemon loops.
type DaemonConfig struct {
	ArbitrateIntervalMS  int  `yaml:"arbitrate_interval_ms"`
	PendingIntervalMS    int  `yaml:"pending_interval_ms"`
	StatusIntervalMS     int  `yaml:"status_interval_ms"`
	PollMode             bool `yaml:"poll_mode"`
	PollIntervalSeconds  int  `yaml:"poll_interval_seconds"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Path       string `yaml:"path"`  // empty = stderr only
	Level      string `yaml:"level"` // debug, info, warn, error
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Config is the full helmsman configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Mission  MissionConfig  `yaml:"mission"`
	Dirs     DirConfig      `yaml:"dirs"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	AuditLog string         `yaml:"audit_log"`
	Store    string         `yaml:"store"`
	Alerts   []alert.Config `yaml:"alerts"`
	Metrics  string         `yaml:"metrics_addr"` // empty = metrics disabled
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration rooted at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		Engine: EngineConfig{
			CriticalLowThreshold:   0.5,
			LowThreshold:           0.6,
			HighThreshold:          0.8,
			MinModeDurationSeconds: 120,
		},
		Mission: MissionConfig{
			InitialMode: "human",
			Phase:       "Transit",
			Criticality: "Routine",
		},
		Dirs: DirConfig{
			Inbox:  filepath.Join(baseDir, "inbox"),
			Outbox: filepath.Join(baseDir, "outbox"),
			State:  filepath.Join(baseDir, "state"),
		},
		Daemon: DaemonConfig{
			ArbitrateIntervalMS: 500,
			PendingIntervalMS:   1000,
			StatusIntervalMS:    5000,
			PollIntervalSeconds: 2,
		},
		AuditLog: filepath.Join(baseDir, "audit.jsonl"),
		Store:    filepath.Join(baseDir, "history.db"),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// DefaultBaseDir is ~/.helmsman, falling back to the working directory
// when the home directory cannot be resolved.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".helmsman"
	}
	return filepath.Join(home, ".helmsman")
}

// Load reads configuration from path. An empty path falls back to
// ~/.helmsman/config.yaml; a missing file returns defaults.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 of the raw
// YAML bytes on disk. When defaults are used, the hash covers empty input.
func LoadWithHash(path string) (*Config, string, error) {
	base := DefaultBaseDir()
	if path == "" {
		path = filepath.Join(base, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return Default(base), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("read config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults; YAML overwrites only specified fields.
	cfg := Default(base)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, hash, nil
}

// Validate rejects configurations the engine cannot safely run with.
func (c *Config) Validate() error {
	e := c.Engine
	for name, v := range map[string]float64{
		"critical_low_threshold": e.CriticalLowThreshold,
		"low_threshold":          e.LowThreshold,
		"high_threshold":         e.HighThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: %s %v outside [0,1]", name, v)
		}
	}
	if e.CriticalLowThreshold > e.LowThreshold || e.LowThreshold > e.HighThreshold {
		return fmt.Errorf("config: thresholds must be ordered critical_low <= low <= high")
	}
	if e.MinModeDurationSeconds < 0 {
		return fmt.Errorf("config: min_mode_duration_seconds must be non-negative")
	}
	switch c.Mission.InitialMode {
	case "autonomous", "human", "shared":
	default:
		return fmt.Errorf("config: unknown initial_mode %q", c.Mission.InitialMode)
	}
	return nil
}

// MinModeDuration returns the engine dwell time as a Duration.
func (c *Config) MinModeDuration() time.Duration {
	return time.Duration(c.Engine.MinModeDurationSeconds) * time.Second
}

// DefaultYAML returns a commented config file for init-config.
func DefaultYAML() string {
	return `# helmsman configuration
# Generated by: helmsman init-config
#
# Arbitration thresholds. Ordering critical_low <= low <= high is enforced.
engine:
  critical_low_threshold: 0.5
  low_threshold: 0.6
  high_threshold: 0.8
  min_mode_duration_seconds: 120

# State at daemon start. The reliability estimator overrides phase and
# criticality as soon as the feeds arrive.
mission:
  initial_mode: human
  phase: Transit
  criticality: Routine

# File transport. Telemetry and commands arrive as JSON files in inbox;
# operator-facing notifications are written to outbox.
#dirs:
#  inbox: ~/.helmsman/inbox
#  outbox: ~/.helmsman/outbox
#  state: ~/.helmsman/state

daemon:
  arbitrate_interval_ms: 500
  pending_interval_ms: 1000
  status_interval_ms: 5000
  # poll_mode: true       # use polling instead of fsnotify (NFS inboxes)

#audit_log: ~/.helmsman/audit.jsonl
#store: ~/.helmsman/history.db

# Webhook alerts. Events match on action type or urgency.
#alerts:
#  - url: https://hooks.slack.com/services/XXX
#    format: slack
#    events: [auto_switch, block, critical]

# Prometheus metrics endpoint. Disabled when empty.
#metrics_addr: :9631

log:
  level: info
  max_size_mb: 50
  max_backups: 3
`
}
