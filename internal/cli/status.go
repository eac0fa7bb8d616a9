package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oceanbotics/helmsman/internal/arbiter"
	"github.com/oceanbotics/helmsman/internal/config"
)

var statusFormat string

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pendingCmd)
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "Output format (text|json)")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current arbitration state",
	Long:  "Reads the state file published by the running daemon and prints the\ncontrol mode, mission phase and any pending confirmation request.",
	RunE:  runStatus,
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show the outstanding confirmation request",
	RunE:  runPending,
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := loadStatus()
	if err != nil {
		return err
	}

	if statusFormat == "json" {
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Mission:      %s\n", st.MissionID)
	fmt.Printf("Mode:         %s\n", st.Mode)
	fmt.Printf("Phase:        %s (%s)\n", st.Phase, st.Criticality)
	fmt.Printf("Mode held:    %.0fs\n", st.SinceChangeSeconds)
	if !st.HasRecommendation {
		fmt.Println("Telemetry:    waiting for first recommendation")
	}
	if st.Pending != nil {
		fmt.Printf("Pending:      %s -> %s (%s)\n", st.Pending.DecisionID, st.Pending.TargetMode, st.Pending.Urgency)
		if st.Pending.ExpiresInSeconds > 0 {
			fmt.Printf("Expires in:   %.0fs\n", st.Pending.ExpiresInSeconds)
		}
	}
	return nil
}

func runPending(cmd *cobra.Command, args []string) error {
	st, err := loadStatus()
	if err != nil {
		return err
	}
	if st.Pending == nil {
		fmt.Println("No decision pending.")
		return nil
	}

	p := st.Pending
	fmt.Printf("Decision:   %s\n", p.DecisionID)
	fmt.Printf("Target:     %s\n", p.TargetMode)
	fmt.Printf("Urgency:    %s\n", p.Urgency)
	if p.ExpiresInSeconds > 0 {
		fmt.Printf("Expires in: %.0fs\n", p.ExpiresInSeconds)
	}
	fmt.Printf("Message:    %s\n", p.Message)
	fmt.Println("\nAnswer with: helmsman respond accept | helmsman respond decline")
	return nil
}

func loadStatus() (*arbiter.Status, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cfg.Dirs.State, "status.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no status file at %s (is the daemon running?)", path)
		}
		return nil, fmt.Errorf("read status: %w", err)
	}

	var st arbiter.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse status: %w", err)
	}
	return &st, nil
}
