// Package reconcile turns asynchronous upload-processing state into
// per-session display state.
//
// # Overview
//
// A counseling client has a fixed number of planned sessions
// (1..total_sessions). Audio for a session is uploaded, queued, and
// processed by the external backend; once processing finishes, a voice
// record appears. The two facts, "a job is in flight" and "a record
// exists", come from two independently fetched snapshots that are only
// eventually consistent with each other. This package reconciles them.
//
// # Slot computation
//
// ComputeSlots is a pure function over the two snapshots. Per session
// number it considers the newest upload job (retries produce several
// jobs for one session; only the latest created_at counts) and any
// matching record, then resolves one display state with fixed
// precedence:
//
//	uploading > filled > failed > empty
//
// A pending job beats a record because the user just started a re-upload;
// a record beats a failed job because a failure that was later retried
// successfully is stale. Jobs whose session_number is null or
// unparseable never influence any slot.
//
// # Resolution detection
//
// Processing completion and record visibility are not atomic: the poll
// that sees the last pending job disappear may still be ahead of the
// record becoming queryable. ResolutionTracker detects exactly that
// falling edge ("some pending" -> "none pending") exactly once, and the
// caller re-fetches voice records on it. Without this, a finished upload
// would render as an empty slot until the next full page load.
//
// # Polling
//
// Poller is the loop driving the above: a fixed-interval (5s), strictly
// sequential fetch of upload status that continues while any job is
// pending. The invariants the ad-hoc timer version enforced by
// convention are enforced here by construction:
//
//   - single flight: the next poll is scheduled only after the previous
//     fetch returned and its outcome was applied
//   - discard on teardown: an outcome arriving after Stop is dropped
//     without touching state
//   - swallow and continue: a failed fetch is logged, the previous
//     snapshot is kept, and the cadence is unchanged: no backoff,
//     no retry limit; the loop is bounded only by the backend
//     eventually reporting a terminal status
//
// The poller does not know about stores or HTTP; the PollFunc closes
// over whatever it needs and hands back an Outcome whose Apply commits
// the snapshot.
package reconcile
