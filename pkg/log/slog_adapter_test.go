package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/powerpolicy/powermgr-go/pkg/model"
)

func captureSlog(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	entry := captureSlog(t, Event{
		Timestamp: time.Now(),
		SessionID: "session-1",
		Component: ComponentStateMachine,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: model.PowerStateAwake,
			NewState: model.PowerStateInactive,
			Reason:   model.ReasonTimeout,
		},
	})

	want := map[string]string{
		"msg":        "power",
		"component":  "STATE_MACHINE",
		"category":   "STATE",
		"session_id": "session-1",
		"old_state":  "AWAKE",
		"new_state":  "INACTIVE",
		"reason":     "TIMEOUT",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %q", k, entry[k], v)
		}
	}
}

func TestSlogAdapterLogsLockEvent(t *testing.T) {
	entry := captureSlog(t, Event{
		Timestamp: time.Now(),
		Component: ComponentRunningLock,
		Category:  CategoryLock,
		Lock: &LockEvent{
			Op:         LockOpRemove,
			LockID:     7,
			Name:       "nav",
			Type:       model.LockBackgroundNavigation,
			Pid:        10,
			Uid:        20,
			BundleName: "org.example.maps",
		},
	})

	if entry["op"] != "REMOVE" {
		t.Errorf("op: got %v, want %q", entry["op"], "REMOVE")
	}
	if entry["type"] != "BACKGROUND_NAVIGATION" {
		t.Errorf("type: got %v, want %q", entry["type"], "BACKGROUND_NAVIGATION")
	}
	if entry["lock_id"] != float64(7) {
		t.Errorf("lock_id: got %v, want 7", entry["lock_id"])
	}
	if entry["bundle"] != "org.example.maps" {
		t.Errorf("bundle: got %v, want %q", entry["bundle"], "org.example.maps")
	}
	if _, ok := entry["session_id"]; ok {
		t.Error("session_id should be omitted when empty")
	}
}

func TestSlogAdapterLogsTransitFailure(t *testing.T) {
	entry := captureSlog(t, Event{
		Timestamp: time.Now(),
		Component: ComponentStateMachine,
		Category:  CategoryTransit,
		TransitFailure: &TransitFailureEvent{
			From:    model.PowerStateInactive,
			To:      model.PowerStateSleep,
			Reason:  model.ReasonTimeout,
			Result:  model.TransitLocking,
			Message: "locked",
		},
	})

	if entry["result"] != "LOCKING" {
		t.Errorf("result: got %v, want %q", entry["result"], "LOCKING")
	}
	if entry["to"] != "SLEEP" {
		t.Errorf("to: got %v, want %q", entry["to"], "SLEEP")
	}
	if entry["detail"] != "locked" {
		t.Errorf("detail: got %v, want %q", entry["detail"], "locked")
	}
}
