package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/store"
)

var (
	historyKind    string
	historyMission string
	historyLimit   int
	historyFormat  string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyKind, "kind", "mode_changes", "History kind (mode_changes|decisions)")
	historyCmd.Flags().StringVar(&historyMission, "mission", "", "Filter by mission ID")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format (text|json)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent arbitration history",
	Long:  "Queries the history store for committed mode changes or per-cycle\ndecisions, newest first.",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch historyKind {
	case "mode_changes":
		changes, err := db.RecentModeChanges(ctx, historyMission, historyLimit)
		if err != nil {
			return err
		}
		if historyFormat == "json" {
			return printJSON(changes)
		}
		if len(changes) == 0 {
			fmt.Println("No mode changes recorded.")
			return nil
		}
		for _, mc := range changes {
			fmt.Printf("%s  %s  %-10s -> %-10s  %-14s %s\n",
				mc.ChangedAt.UTC().Format(time.RFC3339), mc.MissionID,
				mc.OldMode, mc.NewMode, mc.Phase, mc.Reason)
		}
		return nil

	case "decisions":
		decisions, err := db.RecentDecisions(ctx, historyMission, historyLimit)
		if err != nil {
			return err
		}
		if historyFormat == "json" {
			return printJSON(decisions)
		}
		if len(decisions) == 0 {
			fmt.Println("No decisions recorded.")
			return nil
		}
		for _, d := range decisions {
			fmt.Printf("%s  %s  %-12s %-10s -> %-10s  %-14s %s\n",
				d.DecidedAt.UTC().Format(time.RFC3339), d.MissionID,
				d.Action, d.CurrentMode, d.TargetMode, d.Phase, d.Rule)
		}
		return nil

	default:
		return fmt.Errorf("unknown --kind %q (want mode_changes or decisions)", historyKind)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
