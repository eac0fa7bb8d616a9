// Package feed ingests and validates the external telemetry feeds that
// drive arbitration: mode recommendations, reliability scores, confidence,
// mission context, operator overrides and responses.
//
// Validation happens here, before the engine ever sees a value: scores
// outside [0,1] and unknown mode tokens are rejected with an error, never
// clamped or guessed.
package feed

import (
	"fmt"
	"sync"

	"github.com/oceanbotics/helmsman/internal/model"
)

// Message is one telemetry or command message from the inbox.
type Message struct {
	Type string `json:"type"`

	// Mode carries the token for recommendation, override and response
	// messages.
	Mode string `json:"mode,omitempty"`

	// Channel selects the reliability feed: human, autonomous or docking.
	Channel string `json:"channel,omitempty"`

	// Value carries reliability and confidence scores.
	Value *float64 `json:"value,omitempty"`

	Phase       string `json:"phase,omitempty"`
	Criticality string `json:"criticality,omitempty"`

	// Response fields.
	DecisionID string `json:"decision_id,omitempty"`
	Accept     *bool  `json:"accept,omitempty"`
}

// Message types.
const (
	TypeRecommendation = "recommendation"
	TypeReliability    = "reliability"
	TypeConfidence     = "confidence"
	TypePhase          = "phase"
	TypeCriticality    = "criticality"
	TypeOverride       = "override"
	TypeResponse       = "response"
)

// Response is an operator's answer to a pending confirmation request.
type Response struct {
	DecisionID string
	Accept     bool
}

// Command is the non-state outcome of applying a message: an operator
// override or a response to a pending decision. State messages yield nil.
type Command struct {
	Override *model.ControlMode
	Response *Response
}

// Snapshot is one arbitration cycle's consistent view of all feeds.
type Snapshot struct {
	Recommendation model.ModeRecommendation
	// HasRecommendation is false until the first recommendation arrives;
	// the arbiter must not evaluate before then.
	HasRecommendation bool
	Phase             string
	Criticality       string
}

// State accumulates the latest value of each feed. Safe for concurrent
// use: the inbox watcher applies messages while the arbitration loop
// takes snapshots.
type State struct {
	mu sync.Mutex

	recommended model.ControlMode
	hasRec      bool
	human       float64
	autonomous  float64
	docking     *float64
	confidence  float64
	phase       string
	criticality string
}

// Feed defaults used until the first message on each channel arrives.
const (
	defaultHumanReliability      = 0.85
	defaultAutonomousReliability = 0.80
	defaultConfidence            = 0.70
	defaultPhase                 = "Transit"
	defaultCriticality           = "Routine"
)

// NewState returns a State preloaded with feed defaults.
func NewState() *State {
	return &State{
		human:       defaultHumanReliability,
		autonomous:  defaultAutonomousReliability,
		confidence:  defaultConfidence,
		phase:       defaultPhase,
		criticality: defaultCriticality,
	}
}

// Apply validates and applies one message. State messages update the
// snapshot and return a nil Command; override and response messages leave
// state untouched and return the command for the arbiter.
func (s *State) Apply(msg Message) (*Command, error) {
	switch msg.Type {
	case TypeRecommendation:
		mode, err := model.ParseMode(msg.Mode)
		if err != nil {
			return nil, fmt.Errorf("recommendation: %w", err)
		}
		s.mu.Lock()
		s.recommended = mode
		s.hasRec = true
		s.mu.Unlock()
		return nil, nil

	case TypeReliability:
		v, err := scoreValue(msg)
		if err != nil {
			return nil, fmt.Errorf("reliability: %w", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		switch msg.Channel {
		case "human":
			s.human = v
		case "autonomous":
			s.autonomous = v
		case "docking":
			s.docking = &v
		default:
			return nil, fmt.Errorf("reliability: unknown channel %q", msg.Channel)
		}
		return nil, nil

	case TypeConfidence:
		v, err := scoreValue(msg)
		if err != nil {
			return nil, fmt.Errorf("confidence: %w", err)
		}
		s.mu.Lock()
		s.confidence = v
		s.mu.Unlock()
		return nil, nil

	case TypePhase:
		if msg.Phase == "" {
			return nil, fmt.Errorf("phase message missing phase name")
		}
		s.mu.Lock()
		s.phase = msg.Phase
		s.mu.Unlock()
		return nil, nil

	case TypeCriticality:
		if msg.Criticality == "" {
			return nil, fmt.Errorf("criticality message missing value")
		}
		s.mu.Lock()
		s.criticality = msg.Criticality
		s.mu.Unlock()
		return nil, nil

	case TypeOverride:
		mode, err := model.ParseMode(msg.Mode)
		if err != nil {
			return nil, fmt.Errorf("override: %w", err)
		}
		return &Command{Override: &mode}, nil

	case TypeResponse:
		if msg.Accept == nil {
			return nil, fmt.Errorf("response message missing accept field")
		}
		return &Command{Response: &Response{
			DecisionID: msg.DecisionID,
			Accept:     *msg.Accept,
		}}, nil

	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Snapshot returns a consistent copy of the current feed values.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docking *float64
	if s.docking != nil {
		v := *s.docking
		docking = &v
	}

	return Snapshot{
		Recommendation: model.ModeRecommendation{
			Mode:                  s.recommended,
			Confidence:            s.confidence,
			HumanReliability:      s.human,
			AutonomousReliability: s.autonomous,
			DockingReliability:    docking,
		},
		HasRecommendation: s.hasRec,
		Phase:             s.phase,
		Criticality:       s.criticality,
	}
}

func scoreValue(msg Message) (float64, error) {
	if msg.Value == nil {
		return 0, fmt.Errorf("missing value")
	}
	v := *msg.Value
	if v != v || v < 0 || v > 1 {
		return 0, fmt.Errorf("value %v outside [0,1]", v)
	}
	return v, nil
}
