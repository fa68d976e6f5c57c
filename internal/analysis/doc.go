// Package analysis implements the third pipeline stage: corpus-level
// analytics over the extracted documents.
//
// Every run recomputes everything from the documents present in processed/:
// global word frequencies, pairwise Jaccard similarity of each document's
// distinct token set, global bigram and trigram counts, and readability
// metrics. Ranked tables are ordered by descending count with ties broken by
// ascending term, so a report is a pure function of its inputs apart from its
// processing timestamp.
//
// Tokenization is configured explicitly through a Tokenizer (pattern and
// stopword set) rather than package-level constants.
package analysis
