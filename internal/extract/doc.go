// Package extract implements the second pipeline stage: turning raw page
// artifacts into clean-text documents with structural facts and statistics.
//
// Raw bytes are first decoded to UTF-8. The encoding is sniffed from a byte
// order mark or a <meta charset> declaration, and any byte sequences that are
// still invalid afterwards are dropped. Markup is then stripped with the
// golang.org/x/net/html tokenizer, which tolerates arbitrarily malformed input:
// script and style elements are removed with their contents, every other tag
// becomes a single space, entities are decoded, and whitespace is collapsed.
// In the same pass every href and src attribute value is collected in
// document order.
//
// The Stage processes every raw/*.html file present once the fetch marker
// exists, writes processed/<base>.json per file, and finishes with
// status/process_complete.json.
package extract
