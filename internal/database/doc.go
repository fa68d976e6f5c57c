// Package database provides the SQLite run history for docpipe.
//
// The history is an operator-side audit log. It stores:
//   - one row per finished stage invocation (state, timing, error detail)
//   - the per-URL outcome of each fetch run
//   - an archived copy of every analysis report
//
// No stage reads the history to make progress; pipeline data lives only in
// the shared file area. The database uses modernc.org/sqlite, a CGO-free
// driver, so the binary stays statically linkable.
package database
