package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oceanbotics/helmsman/internal/arbiter"
	"github.com/oceanbotics/helmsman/internal/authority"
	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/feed"
	"github.com/oceanbotics/helmsman/internal/model"
	"github.com/oceanbotics/helmsman/internal/store"
)

// --- Input/Output types ---

// CheckInput defines parameters for the helmsman_check tool.
type CheckInput struct {
	CurrentMode           string   `json:"current_mode" jsonschema:"active control mode (autonomous/human/shared)"`
	RecommendedMode       string   `json:"recommended_mode" jsonschema:"mode recommended by the reliability estimator"`
	HumanReliability      float64  `json:"human_reliability" jsonschema:"operator reliability score in [0,1]"`
	AutonomousReliability float64  `json:"autonomous_reliability" jsonschema:"autonomy stack reliability score in [0,1]"`
	Confidence            *float64 `json:"confidence,omitempty" jsonschema:"recommendation confidence in [0,1]; omitted defaults to 0.7, an explicit 0 is kept"`
	DockingReliability    *float64 `json:"docking_reliability,omitempty" jsonschema:"docking subsystem reliability in [0,1]"`
	Phase                 string   `json:"phase,omitempty" jsonschema:"mission phase (Transit/Inspection/Docking/...), default Transit"`
	Criticality           string   `json:"criticality,omitempty" jsonschema:"task criticality (Routine/Important/Critical), default Routine"`
	ElapsedSeconds        float64  `json:"elapsed_seconds,omitempty" jsonschema:"seconds since the last mode change, default above the hysteresis window"`
}

// CheckOutput contains the evaluated decision.
type CheckOutput struct {
	Action         string `json:"action_type"`
	TargetMode     string `json:"target_mode"`
	Message        string `json:"message"`
	Explanation    string `json:"explanation"`
	Urgency        string `json:"urgency"`
	AllowDecline   bool   `json:"allow_decline"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Rule           string `json:"rule"`
}

// StatusInput is empty; the tool takes no parameters.
type StatusInput struct{}

// StatusOutput mirrors the daemon's published state file.
type StatusOutput struct {
	Status arbiter.Status `json:"status"`
}

// OverrideInput defines parameters for the helmsman_override tool.
type OverrideInput struct {
	Mode string `json:"mode" jsonschema:"requested control mode (autonomous/human/shared)"`
}

// OverrideOutput confirms the submitted request.
type OverrideOutput struct {
	Submitted bool   `json:"submitted"`
	Mode      string `json:"mode"`
}

// RespondInput defines parameters for the helmsman_respond tool.
type RespondInput struct {
	DecisionID string `json:"decision_id,omitempty" jsonschema:"pending decision ID, omit to target the outstanding request"`
	Accept     bool   `json:"accept" jsonschema:"true to accept the offered mode change"`
}

// RespondOutput confirms the submitted response.
type RespondOutput struct {
	Submitted  bool   `json:"submitted"`
	DecisionID string `json:"decision_id,omitempty"`
	Accept     bool   `json:"accept"`
}

// PendingInput is empty; the tool takes no parameters.
type PendingInput struct{}

// PendingOutput describes the outstanding confirmation request.
type PendingOutput struct {
	Pending *arbiter.PendingStatus `json:"pending,omitempty"`
}

// HistoryInput defines parameters for the helmsman_history tool.
type HistoryInput struct {
	Kind      string `json:"kind,omitempty" jsonschema:"history kind: decisions or mode_changes, default mode_changes"`
	MissionID string `json:"mission_id,omitempty" jsonschema:"filter by mission ID, omit for all missions"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum entries to return, default 50"`
}

// HistoryOutput lists history entries, newest first.
type HistoryOutput struct {
	ModeChanges []store.ModeChange `json:"mode_changes,omitempty"`
	Decisions   []store.Decision   `json:"decisions,omitempty"`
}

// --- Handlers ---

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	in, err := buildCheckInput(input)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, CheckOutput{}, err
	}

	d := s.engine.Evaluate(in)
	return nil, CheckOutput{
		Action:         string(d.Action),
		TargetMode:     string(d.TargetMode),
		Message:        d.Message,
		Explanation:    d.Explanation,
		Urgency:        string(d.Urgency),
		AllowDecline:   d.AllowDecline,
		TimeoutSeconds: d.TimeoutSeconds,
		Rule:           d.Reasons.Rule,
	}, nil
}

func (s *Server) handleStatus(ctx context.Context, req *mcpsdk.CallToolRequest, input StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := readStatus(s.statusPath)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: *st}, nil
}

func (s *Server) handleOverride(ctx context.Context, req *mcpsdk.CallToolRequest, input OverrideInput) (*mcpsdk.CallToolResult, OverrideOutput, error) {
	mode, err := model.ParseMode(input.Mode)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, OverrideOutput{}, err
	}

	if _, err := feed.Submit(s.inbox, feed.Message{
		Type: feed.TypeOverride,
		Mode: string(mode),
	}); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, OverrideOutput{}, err
	}
	return nil, OverrideOutput{Submitted: true, Mode: string(mode)}, nil
}

func (s *Server) handleRespond(ctx context.Context, req *mcpsdk.CallToolRequest, input RespondInput) (*mcpsdk.CallToolResult, RespondOutput, error) {
	accept := input.Accept
	if _, err := feed.Submit(s.inbox, feed.Message{
		Type:       feed.TypeResponse,
		DecisionID: input.DecisionID,
		Accept:     &accept,
	}); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, RespondOutput{}, err
	}
	return nil, RespondOutput{Submitted: true, DecisionID: input.DecisionID, Accept: accept}, nil
}

func (s *Server) handlePending(ctx context.Context, req *mcpsdk.CallToolRequest, input PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	st, err := readStatus(s.statusPath)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, PendingOutput{}, err
	}
	return nil, PendingOutput{Pending: st.Pending}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *mcpsdk.CallToolRequest, input HistoryInput) (*mcpsdk.CallToolResult, HistoryOutput, error) {
	db, err := store.Open(s.storePath)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, HistoryOutput{}, fmt.Errorf("open history store: %w", err)
	}
	defer db.Close()

	switch input.Kind {
	case "decisions":
		decisions, err := db.RecentDecisions(ctx, input.MissionID, input.Limit)
		if err != nil {
			return &mcpsdk.CallToolResult{IsError: true}, HistoryOutput{}, err
		}
		return nil, HistoryOutput{Decisions: decisions}, nil

	case "", "mode_changes":
		changes, err := db.RecentModeChanges(ctx, input.MissionID, input.Limit)
		if err != nil {
			return &mcpsdk.CallToolResult{IsError: true}, HistoryOutput{}, err
		}
		return nil, HistoryOutput{ModeChanges: changes}, nil

	default:
		return &mcpsdk.CallToolResult{IsError: true}, HistoryOutput{},
			fmt.Errorf("unknown history kind %q (want decisions or mode_changes)", input.Kind)
	}
}

// --- Helpers ---

// buildCheckInput validates the raw tool input into an engine input. The
// same rejection rules as the feed layer apply: bad scores and unknown
// tokens are errors, never clamped.
func buildCheckInput(input CheckInput) (authority.Input, error) {
	current, err := model.ParseMode(input.CurrentMode)
	if err != nil {
		return authority.Input{}, fmt.Errorf("current_mode: %w", err)
	}
	recommended, err := model.ParseMode(input.RecommendedMode)
	if err != nil {
		return authority.Input{}, fmt.Errorf("recommended_mode: %w", err)
	}

	for name, v := range map[string]float64{
		"human_reliability":      input.HumanReliability,
		"autonomous_reliability": input.AutonomousReliability,
	} {
		if v < 0 || v > 1 {
			return authority.Input{}, fmt.Errorf("%s %v outside [0,1]", name, v)
		}
	}

	// Default only when confidence is absent. A reported 0 stays 0.
	confidence := 0.7
	if input.Confidence != nil {
		confidence = *input.Confidence
	}
	if confidence < 0 || confidence > 1 {
		return authority.Input{}, fmt.Errorf("confidence %v outside [0,1]", confidence)
	}
	if input.DockingReliability != nil {
		if v := *input.DockingReliability; v < 0 || v > 1 {
			return authority.Input{}, fmt.Errorf("docking_reliability %v outside [0,1]", v)
		}
	}

	phase := input.Phase
	if phase == "" {
		phase = "Transit"
	}
	criticality := input.Criticality
	if criticality == "" {
		criticality = "Routine"
	}

	// Default to a settled mode so dry-runs see the phase rules, not the
	// hysteresis hold.
	elapsed := 10 * time.Minute
	if input.ElapsedSeconds > 0 {
		elapsed = time.Duration(input.ElapsedSeconds * float64(time.Second))
	}

	return authority.Input{
		CurrentMode: current,
		Recommendation: model.ModeRecommendation{
			Mode:                  recommended,
			Confidence:            confidence,
			HumanReliability:      input.HumanReliability,
			AutonomousReliability: input.AutonomousReliability,
			DockingReliability:    input.DockingReliability,
		},
		Phase:       phase,
		Criticality: criticality,
		Elapsed:     elapsed,
	}, nil
}

func readStatus(path string) (*arbiter.Status, error) {
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

func statusFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.Dirs.State, "status.json")
}
