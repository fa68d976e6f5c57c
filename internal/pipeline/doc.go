// Package pipeline runs pipeline stages under the file-based coordination
// protocol.
//
// A Stage only knows how to do its work. The Runner wraps it with the
// protocol: it records the stage as pending, waits (bounded) for the stage's
// input file, records it as running, runs it, and finally records done,
// stalled or failed. Every finished invocation can be reported to a Recorder,
// such as the run history database.
//
// Stages normally run as separate processes, one Runner each. Pipeline runs
// all stages in order within one process for the run command; each stage
// still waits for its upstream marker exactly as it would standalone.
package pipeline
