// Package coord implements the file-based coordination protocol between
// pipeline stages.
//
// Stages never talk to each other directly. A downstream stage polls the
// shared area for its upstream stage's completion marker and starts work once
// the marker exists. The wait is bounded: when the marker does not appear
// within the configured timeout the wait fails with ErrStalled instead of
// blocking forever. A zero timeout waits until the context is cancelled.
//
// Each stage also records its lifecycle state (pending, running, done,
// stalled, failed) in a small JSON file next to its marker so that operators
// and the status command can see where a pipeline is stuck.
package coord
