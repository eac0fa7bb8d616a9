package helmsman

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/oceanbotics/helmsman/internal/arbiter"
	"github.com/oceanbotics/helmsman/internal/feed"
)

func newTestClient(t *testing.T) (*Client, string, string) {
	t.Helper()
	dir := t.TempDir()
	inbox := filepath.Join(dir, "inbox")
	state := filepath.Join(dir, "state")
	for _, d := range []string{inbox, state} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("dirs:\n  inbox: %s\n  outbox: %s\n  state: %s\n",
		inbox, filepath.Join(dir, "outbox"), state)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := NewClient(cfgPath)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, inbox, state
}

func readOnlyMessage(t *testing.T, inbox string) feed.Message {
	t.Helper()
	entries, err := os.ReadDir(inbox)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 inbox file, got %d", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(inbox, entries[0].Name()))
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var msg feed.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("parse message: %v", err)
	}
	return msg
}

func TestClientSendRecommendation(t *testing.T) {
	c, inbox, _ := newTestClient(t)

	if err := c.SendRecommendation(ModeShared); err != nil {
		t.Fatalf("SendRecommendation: %v", err)
	}
	msg := readOnlyMessage(t, inbox)
	if msg.Type != feed.TypeRecommendation || msg.Mode != "shared" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestClientSendReliability(t *testing.T) {
	c, inbox, _ := newTestClient(t)

	if err := c.SendReliability("autonomous", 0.72); err != nil {
		t.Fatalf("SendReliability: %v", err)
	}
	msg := readOnlyMessage(t, inbox)
	if msg.Type != feed.TypeReliability || msg.Channel != "autonomous" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Value == nil || *msg.Value != 0.72 {
		t.Fatalf("unexpected value: %+v", msg.Value)
	}
}

func TestClientOverrideValidatesMode(t *testing.T) {
	c, inbox, _ := newTestClient(t)

	if err := c.Override("manual"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	entries, err := os.ReadDir(inbox)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected override must not write a message, found %d", len(entries))
	}

	if err := c.Override(ModeHuman); err != nil {
		t.Fatalf("Override: %v", err)
	}
	msg := readOnlyMessage(t, inbox)
	if msg.Type != feed.TypeOverride || msg.Mode != "human" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestClientRespond(t *testing.T) {
	c, inbox, _ := newTestClient(t)

	if err := c.Respond("d-cafef00d", false); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	msg := readOnlyMessage(t, inbox)
	if msg.Type != feed.TypeResponse || msg.DecisionID != "d-cafef00d" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Accept == nil || *msg.Accept {
		t.Fatalf("expected accept=false, got %+v", msg.Accept)
	}
}

func TestClientStatus(t *testing.T) {
	c, _, state := newTestClient(t)

	if _, err := c.Status(); err == nil {
		t.Fatal("expected error with no status file")
	}

	st := arbiter.Status{MissionID: "m-feedbead", Mode: ModeShared, Phase: "Inspection"}
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal status: %v", err)
	}
	if err := os.WriteFile(filepath.Join(state, "status.json"), data, 0o644); err != nil {
		t.Fatalf("write status: %v", err)
	}

	got, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got.MissionID != "m-feedbead" || got.Mode != ModeShared {
		t.Fatalf("unexpected status: %+v", got)
	}
}
