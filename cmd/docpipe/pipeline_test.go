package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/iidollbunny/docpipe/internal/coord"
	"github.com/iidollbunny/docpipe/internal/model"
	"github.com/iidollbunny/docpipe/internal/storage"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig writes a config that keeps the history database inside t's temp dir.
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	historyDir := filepath.Join(dir, "history")
	path := filepath.Join(dir, "docpipe.yaml")
	content := fmt.Sprintf("poll_interval: 10ms\nwait_timeout: 5s\nhistory:\n  dir: %s\n", historyDir)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path, historyDir
}

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/cats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Cats</title></head><body><p>Cats run fast. Cats sleep.</p></body></html>`)
	})
	mux.HandleFunc("/dogs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><p>Dogs run fast. Dogs bark!</p><a href="/cats">cats</a></body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRunCommandEndToEnd(t *testing.T) {
	t.Parallel()

	server := newTestSite(t)
	root := t.TempDir()
	cfgPath, _ := writeTestConfig(t)

	urls := strings.Join([]string{
		server.URL + "/cats",
		server.URL + "/missing",
		"",
		server.URL + "/dogs",
	}, "\n")
	layout := storage.NewLayout(root)
	if err := storage.WriteFile(layout.InputFile(), []byte(urls)); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "run", "--root", root, "--config", cfgPath,
		"--max-attempts", "2", "--retry-delay", "1ms", "--concurrency", "2", "--markdown")
	if err != nil {
		t.Fatalf("run error = %v\nlogs:\n%s", err, stderr)
	}

	t.Run("every marker written", func(t *testing.T) {
		for _, stage := range model.Stages {
			if !storage.Exists(layout.MarkerPath(stage)) {
				t.Errorf("missing %s marker", stage)
			}
		}
	})

	t.Run("fetch results keep list positions", func(t *testing.T) {
		var marker model.FetchMarker
		if err := storage.ReadJSON(layout.MarkerPath(model.StageFetch), &marker); err != nil {
			t.Fatal(err)
		}
		if marker.URLsProcessed != 3 || marker.Successful != 2 || marker.Failed != 1 {
			t.Errorf("marker counts = %d/%d/%d", marker.URLsProcessed, marker.Successful, marker.Failed)
		}
		if !storage.Exists(layout.RawPage("page_1.html")) || !storage.Exists(layout.RawPage("page_3.html")) {
			t.Error("expected raw/page_1.html and raw/page_3.html")
		}
		if storage.Exists(layout.RawPage("page_2.html")) {
			t.Error("failed URL must not produce a raw page")
		}

		data, err := os.ReadFile(layout.FetchErrorsPath())
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "/missing]") {
			t.Errorf("fetch_errors.log = %q", data)
		}
	})

	t.Run("report covers the fetched documents", func(t *testing.T) {
		var rep model.Report
		if err := storage.ReadJSON(layout.ReportPath(), &rep); err != nil {
			t.Fatal(err)
		}
		if rep.DocumentsProcessed != 2 {
			t.Errorf("DocumentsProcessed = %d, want 2", rep.DocumentsProcessed)
		}
		if len(rep.DocumentSimilarity) != 1 {
			t.Fatalf("len(DocumentSimilarity) = %d, want 1", len(rep.DocumentSimilarity))
		}
		pair := rep.DocumentSimilarity[0]
		if pair.Doc1 != "page_1.json" || pair.Doc2 != "page_3.json" {
			t.Errorf("pair = %+v", pair)
		}
		if !storage.Exists(layout.ReportMarkdownPath()) {
			t.Error("expected final_report.md with --markdown")
		}
	})

	t.Run("status reports done", func(t *testing.T) {
		out, _, err := execute(t, "status", "--root", root, "--config", cfgPath, "--json")
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		var snapshot []coord.StageStatus
		if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
			t.Fatalf("invalid status JSON: %v\n%s", err, out)
		}
		if len(snapshot) != 3 {
			t.Fatalf("len(snapshot) = %d, want 3", len(snapshot))
		}
		for _, s := range snapshot {
			if s.State != model.StateDone || !s.MarkerPresent {
				t.Errorf("%s: state %s marker %v", s.Stage, s.State, s.MarkerPresent)
			}
		}
	})

	t.Run("report command renders text", func(t *testing.T) {
		out, _, err := execute(t, "report", "--root", root, "--config", cfgPath)
		if err != nil {
			t.Fatalf("report error = %v", err)
		}
		if !strings.Contains(out, "CORPUS ANALYSIS REPORT") {
			t.Errorf("unexpected report output:\n%s", out)
		}
	})

	t.Run("history lists runs, fetches and reports", func(t *testing.T) {
		out, _, err := execute(t, "history", "--config", cfgPath)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		for _, want := range []string{"fetch", "process", "analyze", "done"} {
			if !strings.Contains(out, want) {
				t.Errorf("history output missing %q:\n%s", want, out)
			}
		}

		out, _, err = execute(t, "history", "--config", cfgPath, "--url", server.URL+"/missing")
		if err != nil {
			t.Fatalf("history --url error = %v", err)
		}
		if !strings.Contains(out, "failed") {
			t.Errorf("fetch history missing failure:\n%s", out)
		}

		out, _, err = execute(t, "history", "--config", cfgPath, "--reports")
		if err != nil {
			t.Fatalf("history --reports error = %v", err)
		}
		if !strings.Contains(out, "DOCUMENTS") {
			t.Errorf("report list missing header:\n%s", out)
		}

		out, _, err = execute(t, "report", "--config", cfgPath, "--id", "1", "--format", "json")
		if err != nil {
			t.Fatalf("report --id error = %v", err)
		}
		var archived model.Report
		if err := json.Unmarshal([]byte(out), &archived); err != nil {
			t.Fatalf("invalid archived report JSON: %v", err)
		}
		if archived.DocumentsProcessed != 2 {
			t.Errorf("archived DocumentsProcessed = %d, want 2", archived.DocumentsProcessed)
		}
	})
}

// reportWithoutTimestamp reads final_report.json with processing_timestamp removed.
func reportWithoutTimestamp(t *testing.T, layout *storage.Layout) map[string]any {
	t.Helper()

	data, err := os.ReadFile(layout.ReportPath())
	if err != nil {
		t.Fatal(err)
	}
	var rep map[string]any
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatal(err)
	}
	if _, ok := rep["processing_timestamp"]; !ok {
		t.Fatal("report has no processing_timestamp")
	}
	delete(rep, "processing_timestamp")
	return rep
}

// assertArtifactsMatchMarkers checks raw/ and processed/ hold exactly what the
// fetch and process markers of the last run name.
func assertArtifactsMatchMarkers(t *testing.T, layout *storage.Layout) {
	t.Helper()

	var fetched model.FetchMarker
	if err := storage.ReadJSON(layout.MarkerPath(model.StageFetch), &fetched); err != nil {
		t.Fatal(err)
	}
	wantRaw := []string{}
	for _, r := range fetched.Results {
		if r.Status == model.FetchSuccess {
			wantRaw = append(wantRaw, *r.File)
		}
	}
	raw, err := layout.ListRawPages()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(raw, wantRaw) {
		t.Errorf("raw pages = %v, fetch marker successes = %v", raw, wantRaw)
	}

	var processed model.ProcessMarker
	if err := storage.ReadJSON(layout.MarkerPath(model.StageProcess), &processed); err != nil {
		t.Fatal(err)
	}
	wantDocs := make([]string, len(processed.Files))
	for i, f := range processed.Files {
		wantDocs[i] = storage.ProcessedName(f)
	}
	docs, err := layout.ListProcessed()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(docs, wantDocs) {
		t.Errorf("processed documents = %v, process marker files = %v", docs, processed.Files)
	}
}

func TestRunCommandRerun(t *testing.T) {
	t.Parallel()

	server := newTestSite(t)
	root := t.TempDir()
	cfgPath, _ := writeTestConfig(t)
	layout := storage.NewLayout(root)

	run := func(urls ...string) {
		t.Helper()

		if err := storage.WriteFile(layout.InputFile(), []byte(strings.Join(urls, "\n"))); err != nil {
			t.Fatal(err)
		}
		_, stderr, err := execute(t, "run", "--root", root, "--config", cfgPath,
			"--no-history", "--max-attempts", "1", "--retry-delay", "1ms")
		if err != nil {
			t.Fatalf("run error = %v\nlogs:\n%s", err, stderr)
		}
		assertArtifactsMatchMarkers(t, layout)
	}

	run(server.URL+"/cats", server.URL+"/dogs")
	first := reportWithoutTimestamp(t, layout)

	run(server.URL+"/cats", server.URL+"/dogs")
	if second := reportWithoutTimestamp(t, layout); !reflect.DeepEqual(first, second) {
		t.Errorf("unchanged input changed the report:\nfirst:  %v\nsecond: %v", first, second)
	}

	run(server.URL+"/dogs", server.URL+"/missing")

	var rep model.Report
	if err := storage.ReadJSON(layout.ReportPath(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.DocumentsProcessed != 1 {
		t.Errorf("DocumentsProcessed = %d, want 1", rep.DocumentsProcessed)
	}
	if len(rep.DocumentSimilarity) != 0 {
		t.Errorf("DocumentSimilarity = %+v, want none for one document", rep.DocumentSimilarity)
	}
	for _, w := range rep.TopWords {
		if w.Word == "cats" && w.Count > 1 {
			t.Errorf("top words still count the dropped page: %+v", w)
		}
	}

	var doc model.Document
	if err := storage.ReadJSON(layout.ProcessedDocument("page_1.json"), &doc); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.Text, "Dogs run fast") {
		t.Errorf("page_1.json text = %q, want the dogs page", doc.Text)
	}
}

func TestStageStallsWithoutUpstream(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfgPath, _ := writeTestConfig(t)

	_, _, err := execute(t, "process", "--root", root, "--config", cfgPath,
		"--no-history", "--poll-interval", "5ms", "--wait-timeout", "50ms")
	if !errors.Is(err, coord.ErrStalled) {
		t.Fatalf("process error = %v, want ErrStalled", err)
	}

	state, err := coord.NewStateStore(storage.NewLayout(root)).Get(model.StageProcess)
	if err != nil {
		t.Fatal(err)
	}
	if state.State != model.StateStalled {
		t.Errorf("state = %s, want stalled", state.State)
	}
	if storage.Exists(storage.NewLayout(root).MarkerPath(model.StageProcess)) {
		t.Error("stalled stage must not write its marker")
	}
}

func TestInvalidConfiguration(t *testing.T) {
	t.Parallel()

	cfgPath, _ := writeTestConfig(t)
	_, _, err := execute(t, "fetch", "--root", t.TempDir(), "--config", cfgPath, "--no-history", "--concurrency", "0")
	if err == nil || !strings.Contains(err.Error(), "configuration error") {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestReportWithoutAnalysis(t *testing.T) {
	t.Parallel()

	cfgPath, _ := writeTestConfig(t)
	_, _, err := execute(t, "report", "--root", t.TempDir(), "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "run the analyze stage first") {
		t.Errorf("error = %v, want missing report error", err)
	}
}
