package helmsman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oceanbotics/helmsman/internal/arbiter"
	"github.com/oceanbotics/helmsman/internal/config"
	"github.com/oceanbotics/helmsman/internal/feed"
	"github.com/oceanbotics/helmsman/internal/model"
)

// Status is the daemon's published arbitration state.
type Status = arbiter.Status

// Client talks to a running helmsman daemon through its file transport:
// messages go into the inbox, state is read from the published status
// file. All methods are safe for concurrent use.
type Client struct {
	inbox      string
	statusPath string
}

// NewClient creates a client for the daemon configured at configPath.
// An empty path uses the default config search path.
func NewClient(configPath string) (*Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("helmsman: load config: %w", err)
	}
	return &Client{
		inbox:      cfg.Dirs.Inbox,
		statusPath: filepath.Join(cfg.Dirs.State, "status.json"),
	}, nil
}

// Status reads the daemon's published state.
func (c *Client) Status() (*Status, error) {
	data, err := os.ReadFile(c.statusPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("helmsman: no status file at %s (is the daemon running?)", c.statusPath)
		}
		return nil, fmt.Errorf("helmsman: read status: %w", err)
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("helmsman: parse status: %w", err)
	}
	return &st, nil
}

// SendRecommendation submits the estimator's mode recommendation.
func (c *Client) SendRecommendation(mode Mode) error {
	return c.submit(feed.Message{Type: feed.TypeRecommendation, Mode: string(mode)})
}

// SendReliability submits one reliability score. Channel is human,
// autonomous or docking; values outside [0,1] are rejected by the daemon.
func (c *Client) SendReliability(channel string, value float64) error {
	return c.submit(feed.Message{Type: feed.TypeReliability, Channel: channel, Value: &value})
}

// SendConfidence submits the recommendation confidence.
func (c *Client) SendConfidence(value float64) error {
	return c.submit(feed.Message{Type: feed.TypeConfidence, Value: &value})
}

// SendPhase submits the current mission phase.
func (c *Client) SendPhase(phase string) error {
	return c.submit(feed.Message{Type: feed.TypePhase, Phase: phase})
}

// SendCriticality submits the current task criticality.
func (c *Client) SendCriticality(criticality string) error {
	return c.submit(feed.Message{Type: feed.TypeCriticality, Criticality: criticality})
}

// Override requests an explicit control mode with top arbitration
// priority. Validation happens client-side so a typo fails here, not
// silently in the daemon's reject log.
func (c *Client) Override(mode Mode) error {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return fmt.Errorf("helmsman: %w", err)
	}
	return c.submit(feed.Message{Type: feed.TypeOverride, Mode: string(mode)})
}

// Respond answers the pending confirmation request. An empty decisionID
// targets whichever request is outstanding.
func (c *Client) Respond(decisionID string, accept bool) error {
	return c.submit(feed.Message{Type: feed.TypeResponse, DecisionID: decisionID, Accept: &accept})
}

func (c *Client) submit(msg feed.Message) error {
	if _, err := feed.Submit(c.inbox, msg); err != nil {
		return fmt.Errorf("helmsman: %w", err)
	}
	return nil
}
