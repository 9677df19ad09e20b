package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/voicestart/voicestart/internal/backend"
	"github.com/voicestart/voicestart/internal/reconcile"
)

func testProfile(totalSessions int) *backend.ClientProfile {
	return &backend.ClientProfile{
		ID:            7,
		Name:          "test client",
		TotalSessions: totalSessions,
	}
}

func TestStore_WritesDeriveSlots(t *testing.T) {
	var s Store

	s.SetClient(testProfile(3))
	s.SetUploads([]backend.UploadJob{{
		ID:            1,
		SessionNumber: backend.NewSessionNumber(1),
		Status:        backend.ParseJobStatus("queued"),
		CreatedAt:     "2025-01-01T10:00:00",
	}})
	s.SetRecords([]backend.VoiceRecord{{
		ID:            10,
		Title:         "second session",
		SessionNumber: backend.NewSessionNumber(2),
	}})

	snap := s.Snapshot()
	if !snap.HasClient || snap.Client.ID != 7 {
		t.Fatalf("snapshot client = %#v, want id=7", snap.Client)
	}
	want := []reconcile.SlotState{reconcile.SlotUploading, reconcile.SlotFilled, reconcile.SlotEmpty}
	if len(snap.Slots) != len(want) {
		t.Fatalf("slots = %d, want %d", len(snap.Slots), len(want))
	}
	for i, st := range want {
		if snap.Slots[i].State != st {
			t.Errorf("slot %d state = %v, want %v", i+1, snap.Slots[i].State, st)
		}
	}
	if snap.PendingCount() != 1 || snap.FilledCount() != 1 {
		t.Fatalf("pending=%d filled=%d, want 1/1", snap.PendingCount(), snap.FilledCount())
	}
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	var s Store
	s.SetClient(testProfile(1))
	s.SetRecords([]backend.VoiceRecord{{ID: 1, Title: "a", SessionNumber: backend.NewSessionNumber(1)}})

	snap := s.Snapshot()
	snap.Records[0].Title = "mutated"

	snap2 := s.Snapshot()
	if snap2.Records[0].Title != "a" {
		t.Fatalf("Snapshot must clone records; got title %q", snap2.Records[0].Title)
	}
	if snap2.Slots[0].Record == nil || snap2.Slots[0].Record.Title != "a" {
		t.Fatalf("slot record = %+v, want pointer into the cloned snapshot", snap2.Slots[0].Record)
	}
}

func TestStore_FailKeepsPreviousData(t *testing.T) {
	var s Store
	s.SetClient(testProfile(2))
	s.SetUploads([]backend.UploadJob{{ID: 1, SessionNumber: backend.NewSessionNumber(1), Status: backend.ParseJobStatus("processing")}})
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Fail(origErr)

	snap := s.Snapshot()
	if !reflect.DeepEqual(statesOf(snap), statesOf(prev)) {
		t.Fatalf("slot states changed on failure: %v -> %v", statesOf(prev), statesOf(snap))
	}
	if len(snap.Uploads) != 1 {
		t.Fatalf("uploads dropped on failure: %#v", snap.Uploads)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatal("Snapshot should clone the error instance")
	}
}

func TestStore_ConsecutiveFailuresAndRecovery(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store reports failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Fail(errors.New("one"))
	if s.Snapshot().IsOffline() {
		t.Fatal("offline after a single failure, want >= 2")
	}

	s.Fail(errors.New("two"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("failures=%d offline=%v, want 2/true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// A successful write clears the streak.
	s.SetUploads(nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("failures=%d err=%v after recovery, want 0/nil", snap.ConsecutiveFailures, snap.LastError)
	}
}

func statesOf(snap Snapshot) []reconcile.SlotState {
	out := make([]reconcile.SlotState, len(snap.Slots))
	for i, slot := range snap.Slots {
		out[i] = slot.State
	}
	return out
}
