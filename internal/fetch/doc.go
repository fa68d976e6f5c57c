// Package fetch implements the first pipeline stage: downloading every URL of
// the input list into a raw page artifact.
//
// A Fetcher performs single-URL GET requests with a bounded timeout, a fixed
// number of attempts and a fixed delay between attempts. Responses with a
// status of 400 or above count as failed attempts. Requests can optionally be
// paced with a token-bucket rate limit and routed through a SOCKS5 proxy.
//
// The Stage reads input/urls.txt, fetches each URL (optionally several at a
// time), writes successful bodies to raw/page_<n>.html where n is the 1-based
// position in the input list, and finally writes status/fetch_complete.json.
// A URL that fails every attempt is recorded in the marker and in
// status/fetch_errors.log; it never aborts the stage.
package fetch
