// Package report renders the corpus analysis report.
//
// Three formats are supported:
//   - JSON: the report record itself, for tools
//   - Markdown: tables and a mermaid chart, for sharing
//   - Simple: plain text for terminals
//
// All writers implement the Writer interface so that callers can select a
// format at runtime with New or combine several with MultiWriter.
package report
