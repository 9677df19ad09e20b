// Package backend provides an HTTP client for the counseling backend API.
//
// # Overview
//
// Every piece of business logic in this system lives in an external
// backend service: authentication, client and appointment persistence,
// voice-record storage, and the speech pipeline (diarization and
// transcription). This package is the single place that knows how to
// talk to it. It handles HTTP communication, JSON serialization, and
// type-safe representation of the API schema.
//
// # Architecture
//
// The package is split into two files:
//
//   - client.go: HTTP client implementation and request/response handling
//   - types.go: Data structures mirroring the backend API schema
//
// # Credentials
//
// The client holds no credential state. The bearer token is an argument
// to every authenticated call, so a token's lifetime is owned by the
// caller (the watch app resolves it from flag, environment, or the creds
// file; the gateway forwards whatever the browser sent). Passing an
// empty token sends the request unauthenticated.
//
// # Upload job status
//
// The backend reports upload-job status as an open string. JobStatus
// closes it into {queued, processing, failed, unknown} while preserving
// the raw wire value, so the reconciliation switch in internal/reconcile
// is exhaustive and a new backend status shows up loudly in tests rather
// than silently rendering as an empty slot.
//
// session_number arrives as a number, a numeric string, or null
// depending on the backend build; SessionNumber accepts all three and
// reports unset for null or garbage.
//
// # Error Handling
//
// A non-2xx response becomes a *StatusError carrying the status code and
// the raw body. The gateway relays both verbatim; views use Message()
// to surface the backend-provided text. Transport and decode failures
// are wrapped with fmt.Errorf("%w") and carry no status code.
package backend
