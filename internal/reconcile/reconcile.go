package reconcile

import (
	"github.com/voicestart/voicestart/internal/backend"
)

// SlotState is the display state of one session slot.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotUploading
	SlotFilled
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotUploading:
		return "uploading"
	case SlotFilled:
		return "filled"
	case SlotFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Slot is the resolved display state of one planned counseling session.
// Record and Job point into the snapshots passed to ComputeSlots.
type Slot struct {
	Number int
	State  SlotState
	Record *backend.VoiceRecord
	Job    *backend.UploadJob
}

// ComputeSlots derives the display state of every session slot from the
// latest snapshots of upload jobs and voice records. The two snapshots
// are fetched independently and may disagree for a short window; the
// precedence uploading > filled > failed > empty resolves that: a record,
// once present, always wins over a stale failed job, and a newer pending
// job wins over everything.
//
// Slots are returned densely numbered 1..totalSessions; totalSessions <= 0
// yields no slots. Pure function over its inputs.
func ComputeSlots(totalSessions int, jobs []backend.UploadJob, records []backend.VoiceRecord) []Slot {
	if totalSessions <= 0 {
		return nil
	}

	best := bestJobBySession(jobs)

	slots := make([]Slot, 0, totalSessions)
	for i := 1; i <= totalSessions; i++ {
		slot := Slot{Number: i, State: SlotEmpty}
		slot.Job = best[i]
		for idx := range records {
			if n, ok := records[idx].SessionNumber.Value(); ok && n == i {
				slot.Record = &records[idx]
				break
			}
		}

		switch {
		case slot.Job != nil && slot.Job.Status.Pending():
			slot.State = SlotUploading
		case slot.Record != nil:
			slot.State = SlotFilled
		case slot.Job != nil && slot.Job.Status.Failed():
			slot.State = SlotFailed
		}
		slots = append(slots, slot)
	}
	return slots
}

// bestJobBySession keeps, per session number, the job with the latest
// created_at. Jobs with no resolvable session number (null, garbage, or
// below 1) are excluded entirely. On a created_at tie the job seen later
// in the input wins.
func bestJobBySession(jobs []backend.UploadJob) map[int]*backend.UploadJob {
	best := make(map[int]*backend.UploadJob, len(jobs))
	for idx := range jobs {
		job := &jobs[idx]
		n, ok := job.SessionNumber.Value()
		if !ok || n < 1 {
			continue
		}
		existing := best[n]
		if existing == nil || !job.ParsedCreatedAt().Before(existing.ParsedCreatedAt()) {
			best[n] = job
		}
	}
	return best
}

// HasPending reports whether any job in the snapshot is still queued or
// processing.
func HasPending(jobs []backend.UploadJob) bool {
	for _, job := range jobs {
		if job.Status.Pending() {
			return true
		}
	}
	return false
}

// ResolutionTracker watches successive job snapshots for the moment the
// set transitions from "at least one pending" to "none pending". That
// falling edge is the only trigger, outside initial load and explicit
// user actions, for re-fetching voice records: a job finishing and its
// record becoming queryable are not atomic from this side.
type ResolutionTracker struct {
	hadPending bool
}

// Observe records the latest snapshot and reports true exactly once per
// falling edge. Callers re-fetch voice records when it returns true.
func (t *ResolutionTracker) Observe(jobs []backend.UploadJob) bool {
	pending := HasPending(jobs)
	resolved := t.hadPending && !pending
	t.hadPending = pending
	return resolved
}
