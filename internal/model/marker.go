package model

import (
	"fmt"
	"time"
)

// FetchStatus is the outcome of fetching one URL.
type FetchStatus string

const (
	// FetchSuccess means the page was written to a raw artifact.
	FetchSuccess FetchStatus = "success"
	// FetchFailed means every attempt failed.
	FetchFailed FetchStatus = "failed"
)

// FetchResult is the per-URL entry in the fetch completion record.
// File, Size and Error are pointers so that absent values serialize as null.
type FetchResult struct {
	URL    string      `json:"url"`
	File   *string     `json:"file"`
	Size   *int64      `json:"size"`
	Status FetchStatus `json:"status"`
	Error  *string     `json:"error"`

	// StatusCode is the HTTP status of the last response, 0 if none was received.
	StatusCode int `json:"status_code,omitempty"`

	// ElapsedMS is the wall time spent on this URL across all attempts.
	ElapsedMS float64 `json:"elapsed_ms"`

	// Attempts is the number of attempts made.
	Attempts int `json:"attempts"`
}

// NewSuccessResult builds a FetchResult for a page written to file.
func NewSuccessResult(url, file string, size int64, statusCode, attempts int, elapsed time.Duration) FetchResult {
	return FetchResult{
		URL:        url,
		File:       &file,
		Size:       &size,
		Status:     FetchSuccess,
		StatusCode: statusCode,
		ElapsedMS:  Round(float64(elapsed.Microseconds())/1000, 3),
		Attempts:   attempts,
	}
}

// NewFailedResult builds a FetchResult for a URL whose attempts were exhausted.
func NewFailedResult(url string, lastErr error, statusCode, attempts int, elapsed time.Duration) FetchResult {
	msg := "unknown error"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	return FetchResult{
		URL:        url,
		Status:     FetchFailed,
		Error:      &msg,
		StatusCode: statusCode,
		ElapsedMS:  Round(float64(elapsed.Microseconds())/1000, 3),
		Attempts:   attempts,
	}
}

// FetchMarker is the fetch stage's completion record (status/fetch_complete.json).
type FetchMarker struct {
	Stage         Stage         `json:"stage"`
	Timestamp     time.Time     `json:"timestamp"`
	URLsProcessed int           `json:"urls_processed"`
	Successful    int           `json:"successful"`
	Failed        int           `json:"failed"`
	Results       []FetchResult `json:"results"`
}

// NewFetchMarker summarizes results into a fetch completion record.
func NewFetchMarker(results []FetchResult, now time.Time) *FetchMarker {
	if results == nil {
		results = []FetchResult{}
	}
	m := &FetchMarker{
		Stage:         StageFetch,
		Timestamp:     now.UTC(),
		URLsProcessed: len(results),
		Results:       results,
	}
	for _, r := range results {
		if r.Status == FetchSuccess {
			m.Successful++
		} else {
			m.Failed++
		}
	}
	return m
}

// Validate checks that the aggregate counts agree with the results.
func (m *FetchMarker) Validate() error {
	if m.Successful+m.Failed != m.URLsProcessed || m.URLsProcessed != len(m.Results) {
		return fmt.Errorf("%w: %d successful + %d failed != %d processed (%d results)",
			ErrInconsistentCounts, m.Successful, m.Failed, m.URLsProcessed, len(m.Results))
	}
	for i, r := range m.Results {
		if (r.Status == FetchSuccess) != (r.File != nil) {
			return fmt.Errorf("%w: result %d (%s) status %s disagrees with file", ErrInconsistentCounts, i, r.URL, r.Status)
		}
	}
	return nil
}

// ProcessMarker is the extraction stage's completion record (status/process_complete.json).
type ProcessMarker struct {
	Stage     Stage     `json:"stage"`
	Timestamp time.Time `json:"timestamp"`

	// Files lists the raw artifact base names that were processed.
	Files []string `json:"files"`
}

// NewProcessMarker builds an extraction completion record.
func NewProcessMarker(files []string, now time.Time) *ProcessMarker {
	if files == nil {
		files = []string{}
	}
	return &ProcessMarker{Stage: StageProcess, Timestamp: now.UTC(), Files: files}
}

// AnalyzeMarker is the analysis stage's completion record (status/analyze_complete.json).
type AnalyzeMarker struct {
	Stage     Stage     `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAnalyzeMarker builds an analysis completion record.
func NewAnalyzeMarker(now time.Time) *AnalyzeMarker {
	return &AnalyzeMarker{Stage: StageAnalyze, Timestamp: now.UTC()}
}
