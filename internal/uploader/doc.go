// Package uploader pushes a session recording through the backend's
// asynchronous processing pipeline: request a pre-signed object-storage
// URL, PUT the bytes directly to storage, then submit the object key for
// diarization and transcription. The backend acknowledges with a queued
// job; progress is observed afterwards through upload status polling,
// not here.
package uploader
