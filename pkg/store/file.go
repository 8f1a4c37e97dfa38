package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/store/internal/record"
)

// File layout below the data directory.
const (
	DashboardsFile = "dashboards.json"
	ReportsDir     = "reports"
	TrashDir       = "trash"
)

// File stores the collection and the reports as JSON files under a
// directory:
//
//	dir/dashboards.json
//	dir/reports/<link>.json
//	dir/trash/<link>.json
//
// Writes go to a temporary file that is renamed into place, so readers never
// observe a partial document. File serializes its own writes but does not
// lock against other processes.
type File struct {
	dir    string
	logger *log.Logger

	mu sync.Mutex
}

// FileOption configures a [File] backend.
type FileOption func(*File)

// WithFileLogger sets the logger used by [File.Watch].
func WithFileLogger(l *log.Logger) FileOption {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFile creates a file backend rooted at dir, creating the directory
// layout if needed. An empty dir means the working directory.
func NewFile(dir string, opts ...FileOption) (*File, error) {
	if dir == "" {
		dir = "."
	}
	f := &File{dir: dir, logger: log.Default()}
	for _, opt := range opts {
		opt(f)
	}
	for _, sub := range []string{ReportsDir, TrashDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", sub, err)
		}
	}
	return f, nil
}

// Dir returns the data directory.
func (f *File) Dir() string { return f.dir }

// Dashboards implements [Backend]. A missing dashboards file is an empty
// collection.
func (f *File) Dashboards(context.Context) ([]dashboard.Entry, error) {
	data, err := os.ReadFile(f.dashboardsPath())
	if os.IsNotExist(err) {
		return []dashboard.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dashboards: %w", err)
	}
	return record.DecodeEntries(data)
}

// ReplaceDashboards implements [Backend].
func (f *File) ReplaceDashboards(_ context.Context, entries []dashboard.Entry) error {
	data, err := record.EncodeEntries(entries)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	return writeFile(f.dashboardsPath(), pretty.Bytes())
}

// Report implements [Backend].
func (f *File) Report(_ context.Context, link string) ([]byte, error) {
	if err := record.CheckKey(link); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.reportPath(ReportsDir, link))
	if os.IsNotExist(err) {
		return nil, record.NotFound(link)
	}
	return data, err
}

// ScaffoldReport implements [Backend].
func (f *File) ScaffoldReport(_ context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := f.reportPath(ReportsDir, link)
	if exists(path) {
		return record.Exists(link)
	}
	return writeFile(path, record.Scaffold(link))
}

// RenameReport implements [Backend].
func (f *File) RenameReport(_ context.Context, oldLink, newLink string) error {
	for _, l := range []string{oldLink, newLink} {
		if err := record.CheckKey(l); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	from := f.reportPath(ReportsDir, oldLink)
	doc, err := os.ReadFile(from)
	if os.IsNotExist(err) {
		return record.NotFound(oldLink)
	}
	if err != nil {
		return err
	}
	if oldLink == newLink {
		return nil
	}
	to := f.reportPath(ReportsDir, newLink)
	if exists(to) {
		return record.Exists(newLink)
	}
	relinked, err := record.Relink(doc, newLink)
	if err != nil {
		return err
	}
	if err := writeFile(to, relinked); err != nil {
		return err
	}
	return os.Remove(from)
}

// DeleteReport implements [Backend]. The report file is moved to the trash
// directory, replacing any earlier report trashed under the same link.
func (f *File) DeleteReport(_ context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Rename(f.reportPath(ReportsDir, link), f.reportPath(TrashDir, link))
	if os.IsNotExist(err) {
		return record.NotFound(link)
	}
	return err
}

// Close implements [Backend].
func (f *File) Close() error { return nil }

func (f *File) dashboardsPath() string { return filepath.Join(f.dir, DashboardsFile) }

func (f *File) reportPath(sub, link string) string {
	return filepath.Join(f.dir, sub, link+".json")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeFile atomically replaces path with data.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".navtree-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0644); err != nil {
		return err
	}
	return os.Rename(name, path)
}
