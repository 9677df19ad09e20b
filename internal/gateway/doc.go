// Package gateway is the HTTP proxy between the browser front and the
// counseling backend.
//
// Every route does the same four things: check for a bearer token (or
// attach the static service key), forward the request to the configured
// backend URL, relay the status code and JSON body back verbatim, and
// wrap transport failures in a generic 500. That repetition is collapsed
// into one forwarding function parameterized by backend path template
// and auth mode, plus a route table.
//
// Guarantees the rest of the system leans on:
//
//   - Bearer-gated routes fail closed: a missing or malformed
//     Authorization header yields 401 with a fixed message and the
//     backend is never contacted.
//   - A backend non-2xx is relayed with status and body unchanged, with
//     no re-encoding, so clients see exactly what the backend said.
//   - A successful DELETE collapses to 204 with no body.
//   - The gateway never retries; it is a single-attempt forward.
//
// The gateway keeps no session state and no cache; the bearer token
// lives with the browser and is forwarded per request.
package gateway
