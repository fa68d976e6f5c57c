// Package model defines the records exchanged between pipeline stages.
//
// This package contains the following main types:
//   - Document: one extracted page with clean text, links, images and statistics
//   - FetchMarker, ProcessMarker, AnalyzeMarker: per-stage completion records
//   - Report: the corpus-level analysis report
//   - SimilarityPair: Jaccard similarity between two documents
//   - StageState: the persisted state of a stage (pending, running, done, ...)
//
// Constructors (NewDocument, NewSimilarityPair, NewFetchMarker, ...) validate
// the invariants of each record so that a malformed record is rejected before
// it is written to the shared file area.
//
// All records serialize to JSON with snake_case keys; these keys are the wire
// format other stages (and external collaborators) read.
package model
