// Package storage implements the shared file area the pipeline stages use to
// exchange data.
//
// The area is a single root directory with fixed subdirectories:
//
//	<root>/input/urls.txt          URL list read by the fetch stage
//	<root>/raw/page_<n>.html       raw pages written by the fetch stage
//	<root>/processed/<base>.json   documents written by the extraction stage
//	<root>/analysis/               final report written by the analysis stage
//	<root>/status/                 completion markers and stage state records
//
// Every artifact is written create-or-truncate through a temporary file in the
// same directory followed by a rename, so readers never observe a partially
// written marker or document.
package storage
