package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/feed"
	"github.com/oceanbotics/helmsman/internal/model"
)

var respondID string

func init() {
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(respondCmd)
	respondCmd.Flags().StringVar(&respondID, "id", "", "Pending decision ID (defaults to the outstanding request)")
}

var overrideCmd = &cobra.Command{
	Use:   "override <autonomous|human|shared>",
	Short: "Request an explicit control mode",
	Long: "Submits an operator override to the running daemon. Overrides are\n" +
		"arbitrated with top priority and supersede any pending request, but an\n" +
		"autonomous request in a critical-risk phase is blocked.",
	Args: cobra.ExactArgs(1),
	RunE: runOverride,
}

var respondCmd = &cobra.Command{
	Use:   "respond <accept|decline>",
	Short: "Answer the pending confirmation request",
	Args:  cobra.ExactArgs(1),
	RunE:  runRespond,
}

func runOverride(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseMode(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	name, err := feed.Submit(cfg.Dirs.Inbox, feed.Message{
		Type: feed.TypeOverride,
		Mode: string(mode),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Override submitted: %s (%s)\n", mode, name)
	return nil
}

func runRespond(cmd *cobra.Command, args []string) error {
	var accept bool
	switch args[0] {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		return fmt.Errorf("answer must be accept or decline, got %q", args[0])
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	name, err := feed.Submit(cfg.Dirs.Inbox, feed.Message{
		Type:       feed.TypeResponse,
		DecisionID: respondID,
		Accept:     &accept,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Response submitted: %s (%s)\n", args[0], name)
	return nil
}
