package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/daemon"
	"github.com/oceanbotics/helmsman/internal/logging"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitration daemon",
	Long: "Runs the arbitration loop against the file transport: telemetry and\n" +
		"commands arrive as JSON files in the inbox, operator notifications are\n" +
		"written to the outbox, and the current state is published for the\n" +
		"status and pending commands. Threshold and alert changes in the config\n" +
		"file are hot-reloaded.",
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, hash, err := config.LoadWithHash(cfgPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	d, err := daemon.New(cfg, hash, cfgPath, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	return d.Run(ctx)
}
