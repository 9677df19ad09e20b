// Package ui renders the session watch as a Bubble Tea program: a
// status bar, a grid of session slots colored by state, and a key-hint
// footer. The UI never fetches from the backend itself; it reads
// snapshots from the state store on a fixed tick and re-renders.
package ui
