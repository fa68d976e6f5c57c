package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/iidollbunny/docpipe/internal/model"
)

// Subdirectory and file names of the shared area.
const (
	InputDir     = "input"
	RawDir       = "raw"
	ProcessedDir = "processed"
	AnalysisDir  = "analysis"
	StatusDir    = "status"

	URLListFile      = "urls.txt"
	ReportFile       = "final_report.json"
	ReportMarkdown   = "final_report.md"
	FetchErrorsFile  = "fetch_errors.log"
	rawPagePrefix    = "page_"
	rawPageExtension = ".html"
)

// Layout resolves artifact paths under a shared root directory.
type Layout struct {
	root string
}

// NewLayout returns a Layout rooted at root.
func NewLayout(root string) *Layout {
	return &Layout{root: filepath.Clean(root)}
}

// Root returns the shared root directory.
func (l *Layout) Root() string {
	return l.root
}

// Dir returns the path of a subdirectory of the root.
func (l *Layout) Dir(name string) string {
	return filepath.Join(l.root, name)
}

// InputFile returns the path of the URL list.
func (l *Layout) InputFile() string {
	return filepath.Join(l.root, InputDir, URLListFile)
}

// RawPageName returns the raw artifact base name for the 1-based input position.
func RawPageName(index int) string {
	return rawPagePrefix + strconv.Itoa(index) + rawPageExtension
}

// RawPage returns the path of a raw artifact by base name.
func (l *Layout) RawPage(name string) string {
	return filepath.Join(l.root, RawDir, name)
}

// ProcessedName returns the document base name for a raw artifact base name.
func ProcessedName(rawName string) string {
	return strings.TrimSuffix(rawName, filepath.Ext(rawName)) + ".json"
}

// ProcessedDocument returns the path of an extracted document by base name.
func (l *Layout) ProcessedDocument(name string) string {
	return filepath.Join(l.root, ProcessedDir, name)
}

// ReportPath returns the path of the final JSON report.
func (l *Layout) ReportPath() string {
	return filepath.Join(l.root, AnalysisDir, ReportFile)
}

// ReportMarkdownPath returns the path of the Markdown rendition of the report.
func (l *Layout) ReportMarkdownPath() string {
	return filepath.Join(l.root, AnalysisDir, ReportMarkdown)
}

// FetchErrorsPath returns the path of the fetch error log.
func (l *Layout) FetchErrorsPath() string {
	return filepath.Join(l.root, StatusDir, FetchErrorsFile)
}

// MarkerPath returns the path of a stage's completion marker.
func (l *Layout) MarkerPath(stage model.Stage) string {
	return filepath.Join(l.root, StatusDir, stage.MarkerFile())
}

// StatePath returns the path of a stage's state record.
func (l *Layout) StatePath(stage model.Stage) string {
	return filepath.Join(l.root, StatusDir, stage.StateFile())
}

// EnsureDirs creates the given subdirectories of the root.
func (l *Layout) EnsureDirs(names ...string) error {
	for _, name := range names {
		if err := os.MkdirAll(l.Dir(name), 0o750); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", name, err)
		}
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadURLList reads the URL list, trimming lines and skipping blank ones.
func (l *Layout) ReadURLList() ([]string, error) {
	f, err := os.Open(l.InputFile())
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	urls := make([]string, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}

// ListRawPages returns the base names of raw artifacts, sorted by name.
func (l *Layout) ListRawPages() ([]string, error) {
	return l.list(RawDir, "*"+rawPageExtension)
}

// ListProcessed returns the base names of extracted documents, sorted by name.
func (l *Layout) ListProcessed() ([]string, error) {
	return l.list(ProcessedDir, "*.json")
}

// PruneRawPages removes raw artifacts whose names are not in keep and
// returns the removed names.
func (l *Layout) PruneRawPages(keep []string) ([]string, error) {
	return l.prune(RawDir, "*"+rawPageExtension, keep)
}

// PruneProcessed removes extracted documents whose names are not in keep and
// returns the removed names.
func (l *Layout) PruneProcessed(keep []string) ([]string, error) {
	return l.prune(ProcessedDir, "*.json", keep)
}

// prune deletes listed files of dir that are not in keep.
func (l *Layout) prune(dir, pattern string, keep []string) ([]string, error) {
	names, err := l.list(dir, pattern)
	if err != nil {
		return nil, err
	}
	kept := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		kept[k] = struct{}{}
	}

	removed := []string{}
	for _, name := range names {
		if _, ok := kept[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(l.Dir(dir), name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove stale %s/%s: %w", dir, name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// list returns sorted base names in a subdirectory matching pattern.
// A missing directory is an empty listing.
func (l *Layout) list(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(l.Dir(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok { //nolint:errcheck // pattern is constant
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// WriteFile writes data to path create-or-truncate through a temporary file
// and rename. Parent directories are created as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) } //nolint:errcheck // best effort cleanup

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to commit %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON to path with WriteFile semantics.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, buf.Bytes())
}

// ReadJSON decodes the JSON file at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from the layout
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
