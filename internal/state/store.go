package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/voicestart/voicestart/internal/backend"
	"github.com/voicestart/voicestart/internal/reconcile"
)

// Snapshot is the latest data available to the watch UI: the counseling
// client, the two resource snapshots, and the slots derived from them.
type Snapshot struct {
	Client    backend.ClientProfile
	HasClient bool

	Records []backend.VoiceRecord
	Uploads []backend.UploadJob
	Slots   []reconcile.Slot

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when fetches have failed for multiple polls in
// a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// PendingCount returns how many slots are currently uploading.
func (s Snapshot) PendingCount() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.State == reconcile.SlotUploading {
			n++
		}
	}
	return n
}

// FilledCount returns how many slots carry a finalized record.
func (s Snapshot) FilledCount() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.State == reconcile.SlotFilled {
			n++
		}
	}
	return n
}

// Store coordinates concurrent updates to the snapshot. The poller
// writes upload snapshots, the app writes client and record data, and
// the UI reads copies. Slots are recomputed on every write so readers
// never see a stale derivation.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetClient replaces the counseling-client profile.
func (s *Store) SetClient(profile *backend.ClientProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile != nil {
		s.snapshot.Client = *profile
		s.snapshot.HasClient = true
	} else {
		s.snapshot.HasClient = false
	}
	s.commitLocked()
}

// SetRecords replaces the voice-record snapshot.
func (s *Store) SetRecords(records []backend.VoiceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Records = cloneRecords(records)
	s.commitLocked()
}

// SetUploads replaces the upload-job snapshot.
func (s *Store) SetUploads(jobs []backend.UploadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Uploads = cloneUploads(jobs)
	s.commitLocked()
}

// Fail records a fetch failure. The previous data is kept; only the
// error and the failure streak change.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

func (s *Store) commitLocked() {
	s.snapshot.Slots = reconcile.ComputeSlots(slotTotal(s.snapshot), s.snapshot.Uploads, s.snapshot.Records)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot. Slices are cloned so
// the caller can hold the result across UI frames; Slots are recomputed
// over the clones so their pointers stay internal to the copy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Records = cloneRecords(s.snapshot.Records)
	snap.Uploads = cloneUploads(s.snapshot.Uploads)
	snap.Slots = reconcile.ComputeSlots(slotTotal(s.snapshot), snap.Uploads, snap.Records)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func slotTotal(snap Snapshot) int {
	if !snap.HasClient {
		return 0
	}
	return snap.Client.TotalSessions
}

func cloneRecords(records []backend.VoiceRecord) []backend.VoiceRecord {
	if len(records) == 0 {
		return nil
	}
	dup := make([]backend.VoiceRecord, len(records))
	copy(dup, records)
	return dup
}

func cloneUploads(jobs []backend.UploadJob) []backend.UploadJob {
	if len(jobs) == 0 {
		return nil
	}
	dup := make([]backend.UploadJob, len(jobs))
	copy(dup, jobs)
	return dup
}
