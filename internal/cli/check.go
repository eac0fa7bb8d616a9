package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/model"
)

var (
	checkCurrent     string
	checkRecommend   string
	checkHuman       float64
	checkAuto        float64
	checkDocking     float64
	checkConfidence  float64
	checkPhase       string
	checkCriticality string
	checkElapsed     float64
	checkFormat      string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkCurrent, "current", "human", "Active control mode (autonomous|human|shared)")
	checkCmd.Flags().StringVar(&checkRecommend, "recommend", "", "Recommended mode (required)")
	checkCmd.Flags().Float64Var(&checkHuman, "human", 0.85, "Operator reliability score in [0,1]")
	checkCmd.Flags().Float64Var(&checkAuto, "auto", 0.80, "Autonomy reliability score in [0,1]")
	checkCmd.Flags().Float64Var(&checkDocking, "docking", -1, "Docking subsystem reliability in [0,1], omit if unavailable")
	checkCmd.Flags().Float64Var(&checkConfidence, "confidence", 0.70, "Recommendation confidence in [0,1]")
	checkCmd.Flags().StringVar(&checkPhase, "phase", "Transit", "Mission phase")
	checkCmd.Flags().StringVar(&checkCriticality, "criticality", "Routine", "Task criticality (Routine|Important|Critical)")
	checkCmd.Flags().Float64Var(&checkElapsed, "elapsed", 600, "Seconds since the last mode change")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("recommend")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate one arbitration decision (dry-run)",
	Long: "Runs the priority chain once against the given situation and prints\n" +
		"the decision. Nothing is committed or recorded; use this to probe what\n" +
		"the engine would do before it happens on a live mission.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	current, err := model.ParseMode(checkCurrent)
	if err != nil {
		return fmt.Errorf("--current: %w", err)
	}
	recommended, err := model.ParseMode(checkRecommend)
	if err != nil {
		return fmt.Errorf("--recommend: %w", err)
	}
	for name, v := range map[string]float64{
		"--human":      checkHuman,
		"--auto":       checkAuto,
		"--confidence": checkConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s %v outside [0,1]", name, v)
		}
	}
	var docking *float64
	if checkDocking >= 0 {
		if checkDocking > 1 {
			return fmt.Errorf("--docking %v outside [0,1]", checkDocking)
		}
		docking = &checkDocking
	}

	engine := authority.New(authority.Config{
		CriticalLowThreshold: cfg.Engine.CriticalLowThreshold,
		LowThreshold:         cfg.Engine.LowThreshold,
		HighThreshold:        cfg.Engine.HighThreshold,
		MinModeDuration:      cfg.MinModeDuration(),
	})

	d := engine.Evaluate(authority.Input{
		CurrentMode: current,
		Recommendation: model.ModeRecommendation{
			Mode:                  recommended,
			Confidence:            checkConfidence,
			HumanReliability:      checkHuman,
			AutonomousReliability: checkAuto,
			DockingReliability:    docking,
		},
		Phase:       checkPhase,
		Criticality: checkCriticality,
		Elapsed:     time.Duration(checkElapsed * float64(time.Second)),
	})

	if checkFormat == "json" {
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Action:   %s\n", d.Action)
	fmt.Printf("Target:   %s\n", d.TargetMode)
	fmt.Printf("Urgency:  %s\n", d.Urgency)
	fmt.Printf("Rule:     %s\n", d.Reasons.Rule)
	if d.TimeoutSeconds > 0 {
		fmt.Printf("Timeout:  %ds\n", d.TimeoutSeconds)
	}
	fmt.Printf("Message:  %s\n", d.Message)
	if d.Explanation != "" {
		fmt.Printf("\n%s\n", d.Explanation)
	}
	return nil
}
