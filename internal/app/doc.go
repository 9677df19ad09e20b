// Package app is the composition root for the voicewatch client.
//
// # Overview
//
// Run wires configuration, credentials, the backend client, the state
// store, the background poller, and the TUI into the complete session
// watch. Business logic lives in the domain packages (backend,
// reconcile, state, uploader, ui); this package only connects them.
//
// # Startup Sequence
//
//  1. Load the watch configuration from ~/.config/voicestart/config.toml
//  2. Resolve the bearer token: -token flag, then VOICESTART_TOKEN,
//     then the saved credentials file
//  3. Build the backend HTTP client
//  4. Optionally perform a headless upload before watching
//  5. Fetch the initial snapshot (client, records, upload status)
//  6. Start the background poller feeding the shared state.Store
//  7. Run the TUI and block until exit or context cancellation
//
// # Polling Behavior
//
// The poller fetches the upload-status snapshot at a fixed interval
// (default 5 seconds) with no overlap. When the job set transitions
// from pending to fully resolved, the voice-record list is refetched
// inside the same poll so a finished upload appears as a filled slot in
// one update. The loop ends on its own once nothing is pending; a
// manual reload starts a fresh one.
//
// # Error Handling
//
// Fetch failures during polling are committed to the store as failures:
// the previous data stays visible, the failure streak drives the
// offline indicator, and polling continues. A 401 is the exception:
// the credential cannot recover on its own, so the watch exits with a
// login hint.
package app
