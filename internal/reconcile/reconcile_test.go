package reconcile

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/voicestart/voicestart/internal/backend"
)

func job(id int64, session int, status, createdAt string) backend.UploadJob {
	j := backend.UploadJob{
		ID:        id,
		Status:    backend.ParseJobStatus(status),
		CreatedAt: createdAt,
	}
	if session > 0 {
		j.SessionNumber = backend.NewSessionNumber(session)
	}
	return j
}

func record(id int64, session int, title string) backend.VoiceRecord {
	r := backend.VoiceRecord{ID: id, Title: title}
	if session > 0 {
		r.SessionNumber = backend.NewSessionNumber(session)
	}
	return r
}

func states(slots []Slot) []SlotState {
	out := make([]SlotState, len(slots))
	for i, s := range slots {
		out[i] = s.State
	}
	return out
}

func TestComputeSlots_EmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  int
	}{
		{"zero sessions", 0, 0},
		{"negative sessions", -3, 0},
		{"five sessions", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := ComputeSlots(tt.total, nil, nil)
			if len(slots) != tt.want {
				t.Fatalf("ComputeSlots(%d) returned %d slots, want %d", tt.total, len(slots), tt.want)
			}
			for _, slot := range slots {
				if slot.State != SlotEmpty {
					t.Errorf("slot %d state = %v, want empty", slot.Number, slot.State)
				}
				if slot.Record != nil || slot.Job != nil {
					t.Errorf("slot %d carries record/job with empty inputs", slot.Number)
				}
			}
		})
	}
}

func TestComputeSlots_StateDerivation(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		jobs    []backend.UploadJob
		records []backend.VoiceRecord
		want    []SlotState
	}{
		{
			name:    "queued job then record then empty",
			total:   3,
			jobs:    []backend.UploadJob{job(1, 1, "queued", "2025-01-01T10:00:00")},
			records: []backend.VoiceRecord{record(10, 2, "second session")},
			want:    []SlotState{SlotUploading, SlotFilled, SlotEmpty},
		},
		{
			name:  "failed job with no record",
			total: 2,
			jobs:  []backend.UploadJob{job(1, 1, "failed", "2025-01-01T10:00:00")},
			want:  []SlotState{SlotFailed, SlotEmpty},
		},
		{
			name:    "record wins over stale failed job",
			total:   1,
			jobs:    []backend.UploadJob{job(1, 1, "failed", "2025-01-01T10:00:00")},
			records: []backend.VoiceRecord{record(10, 1, "first session")},
			want:    []SlotState{SlotFilled},
		},
		{
			name:    "pending job wins over record",
			total:   1,
			jobs:    []backend.UploadJob{job(1, 1, "processing", "2025-01-01T10:00:00")},
			records: []backend.VoiceRecord{record(10, 1, "first session")},
			want:    []SlotState{SlotUploading},
		},
		{
			name:  "unknown status renders empty",
			total: 1,
			jobs:  []backend.UploadJob{job(1, 1, "expired", "2025-01-01T10:00:00")},
			want:  []SlotState{SlotEmpty},
		},
		{
			name:  "session number outside slot range ignored",
			total: 2,
			jobs:  []backend.UploadJob{job(1, 7, "queued", "2025-01-01T10:00:00")},
			want:  []SlotState{SlotEmpty, SlotEmpty},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := states(ComputeSlots(tt.total, tt.jobs, tt.records))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("states = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeSlots_LatestJobWinsPerSession(t *testing.T) {
	jobs := []backend.UploadJob{
		job(1, 1, "failed", "2025-01-01T10:00:00"),
		job(2, 1, "processing", "2025-01-01T10:05:00"),
	}

	slots := ComputeSlots(1, jobs, nil)
	if slots[0].State != SlotUploading {
		t.Fatalf("slot state = %v, want uploading (newer job must win)", slots[0].State)
	}
	if slots[0].Job == nil || slots[0].Job.ID != 2 {
		t.Fatalf("slot job = %+v, want id=2", slots[0].Job)
	}

	// Same set in reverse order must resolve identically.
	reversed := []backend.UploadJob{jobs[1], jobs[0]}
	slots = ComputeSlots(1, reversed, nil)
	if slots[0].Job == nil || slots[0].Job.ID != 2 {
		t.Fatalf("slot job after reorder = %+v, want id=2", slots[0].Job)
	}
}

func TestComputeSlots_JobsWithoutSessionExcluded(t *testing.T) {
	var unset backend.UploadJob
	if err := json.Unmarshal([]byte(`{"id":9,"session_number":null,"status":"queued","created_at":"2025-01-01T10:00:00"}`), &unset); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}

	slots := ComputeSlots(2, []backend.UploadJob{unset}, nil)
	for _, slot := range slots {
		if slot.Job != nil || slot.State != SlotEmpty {
			t.Fatalf("slot %d = %+v, want empty with no job", slot.Number, slot)
		}
	}
}

func TestComputeSlots_StringSessionNumbersMatch(t *testing.T) {
	var rec backend.VoiceRecord
	if err := json.Unmarshal([]byte(`{"id":4,"title":"s2","session_number":"2","created_at":"2025-01-01T10:00:00"}`), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}

	slots := ComputeSlots(2, nil, []backend.VoiceRecord{rec})
	if slots[1].State != SlotFilled {
		t.Fatalf("slot 2 state = %v, want filled for string session number", slots[1].State)
	}
	if slots[0].State != SlotEmpty {
		t.Fatalf("slot 1 state = %v, want empty", slots[0].State)
	}
}

func TestComputeSlots_Idempotent(t *testing.T) {
	jobs := []backend.UploadJob{
		job(1, 1, "queued", "2025-01-01T10:00:00"),
		job(2, 3, "failed", "2025-01-01T11:00:00"),
	}
	records := []backend.VoiceRecord{record(10, 2, "second")}

	first := ComputeSlots(3, jobs, records)
	second := ComputeSlots(3, jobs, records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated ComputeSlots differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestHasPending(t *testing.T) {
	tests := []struct {
		name string
		jobs []backend.UploadJob
		want bool
	}{
		{"no jobs", nil, false},
		{"queued", []backend.UploadJob{job(1, 1, "queued", "")}, true},
		{"processing", []backend.UploadJob{job(1, 1, "processing", "")}, true},
		{"failed only", []backend.UploadJob{job(1, 1, "failed", "")}, false},
		{"unknown only", []backend.UploadJob{job(1, 1, "archived", "")}, false},
		{"mixed", []backend.UploadJob{job(1, 1, "failed", ""), job(2, 2, "queued", "")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPending(tt.jobs); got != tt.want {
				t.Errorf("HasPending = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolutionTracker_FallingEdgeFiresOnce(t *testing.T) {
	var tracker ResolutionTracker

	pending := []backend.UploadJob{job(1, 3, "processing", "2025-01-01T10:00:00")}
	settled := []backend.UploadJob{job(1, 3, "failed", "2025-01-01T10:00:00")}

	if tracker.Observe(nil) {
		t.Fatal("Observe(nil) on fresh tracker = true, want false")
	}
	if tracker.Observe(pending) {
		t.Fatal("Observe(pending) = true, want false while still pending")
	}
	if tracker.Observe(pending) {
		t.Fatal("Observe(pending) repeated = true, want false")
	}
	if !tracker.Observe(settled) {
		t.Fatal("Observe(settled) = false, want true on falling edge")
	}
	if tracker.Observe(settled) {
		t.Fatal("Observe(settled) repeated = true, want exactly one trigger")
	}
	if tracker.Observe(nil) {
		t.Fatal("Observe(nil) after resolution = true, want false")
	}

	// A new pending job re-arms the tracker.
	if tracker.Observe(pending) {
		t.Fatal("Observe(pending) after re-arm = true, want false")
	}
	if !tracker.Observe(nil) {
		t.Fatal("second falling edge not detected")
	}
}
