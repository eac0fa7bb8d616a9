// Package daemon runs the helmsman arbitration service: it ingests
// telemetry and commands from the file inbox, runs the arbitration loop on
// fixed tickers, and fans decisions out to the audit log, history store,
// operator outbox, metrics and alert webhooks.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/oceanbotics/helmsman/internal/alert"
	"github.com/oceanbotics/helmsman/internal/arbiter"
	"github.com/oceanbotics/helmsman/internal/audit"
	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/feed"
	"github.com/oceanbotics/helmsman/internal/metrics"
	"github.com/oceanbotics/helmsman/internal/model"
	"github.com/oceanbotics/helmsman/internal/store"
)

const dirPerm = 0o750

// Daemon is the assembled arbitration service.
type Daemon struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger

	feeds   *feed.State
	arb     *arbiter.Arbiter
	sinks   *sinks
	auditLg *audit.Log
	history *store.Store
}

// New builds a daemon from configuration. configPath may be empty, which
// disables hot reload.
func New(cfg *config.Config, configHash, configPath string, logger *zap.Logger) (*Daemon, error) {
	if err := ensureDirs(cfg.Dirs); err != nil {
		return nil, err
	}

	auditLg, err := audit.Open(cfg.AuditLog)
	if err != nil {
		return nil, err
	}
	history, err := store.Open(cfg.Store)
	if err != nil {
		auditLg.Close()
		return nil, err
	}

	feeds := feed.NewState()
	seedFeeds(feeds, cfg.Mission)

	s := &sinks{
		logger:     logger,
		audit:      auditLg,
		history:    history,
		alerts:     alert.NewDispatcher(cfg.Alerts),
		outbox:     cfg.Dirs.Outbox,
		configHash: configHash,
	}

	initialMode, err := model.ParseMode(cfg.Mission.InitialMode)
	if err != nil {
		auditLg.Close()
		history.Close()
		return nil, err
	}

	arb, err := arbiter.New(arbiter.Config{
		Engine:      engineFromConfig(cfg),
		Feeds:       feeds,
		Recorder:    s,
		Notifier:    s,
		InitialMode: initialMode,
	})
	if err != nil {
		auditLg.Close()
		history.Close()
		return nil, err
	}
	s.missionID = arb.MissionID()
	metrics.SetCurrentMode(initialMode)

	return &Daemon{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		feeds:      feeds,
		arb:        arb,
		sinks:      s,
		auditLg:    auditLg,
		history:    history,
	}, nil
}

// Run blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	pidPath := filepath.Join(d.cfg.Dirs.State, "daemon.pid")
	if err := acquirePIDLock(pidPath); err != nil {
		return fmt.Errorf("acquire PID lock: %w", err)
	}
	defer func() { _ = os.Remove(pidPath) }()
	defer d.auditLg.Close()
	defer d.history.Close()

	d.logger.Info("helmsman daemon starting",
		zap.String("mission_id", d.arb.MissionID()),
		zap.String("inbox", d.cfg.Dirs.Inbox))

	// Messages that arrived while the daemon was down.
	if err := feed.ScanExisting(d.cfg.Dirs.Inbox, d.handleMessageFile); err != nil {
		return fmt.Errorf("scan existing inbox: %w", err)
	}

	if d.configPath != "" {
		if reloader, err := config.NewReloader(d.configPath, d.applyReload); err != nil {
			d.logger.Warn("config hot reload disabled", zap.String("config", d.configPath), zap.Error(err))
		} else {
			go func() { _ = reloader.Run(ctx) }()
		}
	}

	if d.cfg.Metrics != "" {
		go d.serveMetrics(ctx)
	}

	go d.runLoops(ctx)

	var watcher *feed.Watcher
	if d.cfg.Daemon.PollMode {
		watcher = feed.NewPollWatcher(d.cfg.Dirs.Inbox, d.handleMessageFile,
			time.Duration(d.cfg.Daemon.PollIntervalSeconds)*time.Second)
	} else {
		watcher = feed.NewWatcher(d.cfg.Dirs.Inbox, d.handleMessageFile)
	}
	return watcher.Run(ctx)
}

// runLoops drives the fixed-interval work: arbitration, pending expiry
// and status publication.
func (d *Daemon) runLoops(ctx context.Context) {
	arbitrate := time.NewTicker(time.Duration(d.cfg.Daemon.ArbitrateIntervalMS) * time.Millisecond)
	pendingT := time.NewTicker(time.Duration(d.cfg.Daemon.PendingIntervalMS) * time.Millisecond)
	status := time.NewTicker(time.Duration(d.cfg.Daemon.StatusIntervalMS) * time.Millisecond)
	defer arbitrate.Stop()
	defer pendingT.Stop()
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			d.writeStatus()
			return
		case <-arbitrate.C:
			d.arb.Cycle()
		case <-pendingT.C:
			d.arb.CheckPending()
		case <-status.C:
			d.writeStatus()
			st := d.arb.Status()
			d.logger.Debug("status",
				zap.String("mode", string(st.Mode)),
				zap.String("phase", st.Phase),
				zap.Bool("pending", st.Pending != nil))
		}
	}
}

// handleMessageFile ingests one inbox file and removes it.
func (d *Daemon) handleMessageFile(path string) {
	defer func() { _ = os.Remove(path) }()

	data, err := os.ReadFile(path)
	if err != nil {
		d.logger.Warn("read inbox file", zap.String("file", filepath.Base(path)), zap.Error(err))
		return
	}

	var msg feed.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		d.logger.Warn("malformed inbox message", zap.String("file", filepath.Base(path)), zap.Error(err))
		metrics.FeedRejectsTotal.WithLabelValues("malformed").Inc()
		return
	}

	cmd, err := d.feeds.Apply(msg)
	if err != nil {
		d.logger.Warn("rejected inbox message",
			zap.String("file", filepath.Base(path)),
			zap.String("type", msg.Type),
			zap.Error(err))
		metrics.FeedRejectsTotal.WithLabelValues(msg.Type).Inc()
		return
	}

	if cmd == nil {
		return
	}
	switch {
	case cmd.Override != nil:
		d.logger.Info("operator override", zap.String("mode", string(*cmd.Override)))
		d.arb.Override(*cmd.Override)
		d.writeStatus()
	case cmd.Response != nil:
		if err := d.arb.Respond(cmd.Response.DecisionID, cmd.Response.Accept); err != nil {
			d.logger.Warn("response rejected", zap.Error(err))
			return
		}
		d.writeStatus()
	}
}

// writeStatus publishes the current state atomically for the CLI and MCP
// surfaces.
func (d *Daemon) writeStatus() {
	st := d.arb.Status()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return
	}

	path := filepath.Join(d.cfg.Dirs.State, "status.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		d.logger.Warn("write status", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		d.logger.Warn("publish status", zap.Error(err))
	}
}

// applyReload swaps thresholds and alert destinations from a changed
// config file. Transport and directory settings need a restart.
func (d *Daemon) applyReload(cfg *config.Config, hash string) {
	d.arb.SetEngine(engineFromConfig(cfg))
	d.sinks.setAlerts(alert.NewDispatcher(cfg.Alerts), hash)
	d.logger.Info("config reloaded", zap.String("config_hash", hash))
}

func (d *Daemon) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: d.cfg.Metrics, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		d.logger.Warn("metrics server", zap.Error(err))
	}
}

func engineFromConfig(cfg *config.Config) *authority.Engine {
	return authority.New(authority.Config{
		CriticalLowThreshold: cfg.Engine.CriticalLowThreshold,
		LowThreshold:         cfg.Engine.LowThreshold,
		HighThreshold:        cfg.Engine.HighThreshold,
		MinModeDuration:      cfg.MinModeDuration(),
	})
}

// seedFeeds applies the configured mission context so arbitration starts
// from the right phase even before the first telemetry arrives.
func seedFeeds(feeds *feed.State, m config.MissionConfig) {
	if m.Phase != "" {
		_, _ = feeds.Apply(feed.Message{Type: feed.TypePhase, Phase: m.Phase})
	}
	if m.Criticality != "" {
		_, _ = feeds.Apply(feed.Message{Type: feed.TypeCriticality, Criticality: m.Criticality})
	}
}

func ensureDirs(dirs config.DirConfig) error {
	for _, dir := range []string{dirs.Inbox, dirs.Outbox, dirs.State} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// acquirePIDLock writes the current PID to the file and checks for stale
// locks.
func acquirePIDLock(path string) error {
	if data, err := os.ReadFile(path); err == nil {
		pid, err := strconv.Atoi(string(data))
		if err == nil {
			if process, err := os.FindProcess(pid); err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("another daemon is running (PID %d)", pid)
				}
			}
		}
		// Stale PID file.
		_ = os.Remove(path)
	}

	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}
