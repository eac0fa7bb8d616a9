package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchMatchesActionType(t *testing.T) {
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Config{
		{URL: srv.URL, Format: "generic", Events: []string{"auto_switch"}},
	})

	d.Dispatch(Event{Action: "auto_switch", CurrentMode: "autonomous", TargetMode: "human"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 1 {
		t.Errorf("expected 1 call, got %d", called.Load())
	}
}

func TestDispatchMatchesUrgency(t *testing.T) {
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Config{
		{URL: srv.URL, Format: "generic", Events: []string{"critical"}},
	})

	d.Dispatch(Event{Action: "notify", Urgency: "critical", Phase: "Docking"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 1 {
		t.Errorf("expected 1 call for urgency match, got %d", called.Load())
	}
}

func TestDispatchSkipsNonMatching(t *testing.T) {
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher([]Config{
		{URL: srv.URL, Format: "generic", Events: []string{"block", "critical"}},
	})

	d.Dispatch(Event{Action: "suggest", Urgency: "low"})
	time.Sleep(200 * time.Millisecond)

	if called.Load() != 0 {
		t.Errorf("expected 0 calls, got %d", called.Load())
	}
}

func TestNewDispatcherEmpty(t *testing.T) {
	if d := NewDispatcher(nil); d != nil {
		t.Error("empty config must yield nil dispatcher")
	}
}

func TestSendRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := Send(Config{URL: srv.URL, Format: "generic"}, Event{Action: "block"})
	if err != nil {
		t.Fatalf("send should succeed on third attempt: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestSendDoesNotRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := Send(Config{URL: srv.URL}, Event{}); err == nil {
		t.Fatal("4xx must be an error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on client error)", calls.Load())
	}
}

func TestFormatPayloads(t *testing.T) {
	event := Event{
		MissionID: "m-1", Action: "auto_switch", CurrentMode: "autonomous",
		TargetMode: "human", Phase: "Undocking", Urgency: "high",
		Message: "Autonomous performance degraded, switching to Human",
	}

	generic, err := FormatPayload("generic", event)
	if err != nil {
		t.Fatal(err)
	}
	var round Event
	if err := json.Unmarshal(generic, &round); err != nil {
		t.Fatal(err)
	}
	if round.MissionID != "m-1" || round.Action != "auto_switch" {
		t.Errorf("generic round trip = %+v", round)
	}

	slack, err := FormatPayload("slack", event)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(slack), "helmsman: auto_switch") {
		t.Errorf("slack payload = %s", slack)
	}

	pd, err := FormatPayload("pagerduty", event)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pd), `"severity":"error"`) {
		t.Errorf("pagerduty payload = %s", pd)
	}
}
