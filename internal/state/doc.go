// Package state provides the shared snapshot store for the watch app.
//
// The poller and the app write resource snapshots (counseling client,
// voice records, upload jobs) into a Store; the UI reads copies at its
// own refresh rate. Session slots are derived with internal/reconcile on
// every write, so a snapshot always carries a slot list consistent with
// the data it holds.
//
// Writes on fetch failure go through Fail, which keeps the previous data
// and only records the error and the consecutive-failure streak; the UI
// uses the streak to show an offline indicator instead of blanking the
// grid. Each Store belongs to exactly one watch instance; there is no
// cross-view cache.
package state
