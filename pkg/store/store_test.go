package store_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store"
	"github.com/matzehuels/navtree/pkg/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Backend { return store.NewMemory() })
}

func TestFile(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		f, err := store.NewFile(t.TempDir())
		if err != nil {
			t.Fatalf("NewFile: %v", err)
		}
		return f
	})
}

func TestSentinels(t *testing.T) {
	file, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	backends := map[string]store.Backend{"memory": store.NewMemory(), "file": file}
	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := b.Report(ctx, "nope"); !stderrors.Is(err, store.ErrNotFound) {
				t.Errorf("Report err = %v, want ErrNotFound", err)
			}
			if err := b.ScaffoldReport(ctx, "sales"); err != nil {
				t.Fatalf("ScaffoldReport: %v", err)
			}
			if err := b.ScaffoldReport(ctx, "sales"); !stderrors.Is(err, store.ErrExists) {
				t.Errorf("ScaffoldReport err = %v, want ErrExists", err)
			}
		})
	}
}

func TestMemoryTrash(t *testing.T) {
	m := store.NewMemory(dashboard.Entry{Link: "sales", Title: "Sales", IsMain: true})
	if err := m.DeleteReport(context.Background(), "sales"); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	doc, ok := m.Trashed("sales")
	if !ok || !strings.Contains(string(doc), `"sales"`) {
		t.Errorf("Trashed = %s, %v", doc, ok)
	}
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	f, err := store.NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	entries := []dashboard.Entry{{Link: "sales", Title: "Sales", IsMain: true}}
	if err := f.ReplaceDashboards(ctx, entries); err != nil {
		t.Fatal(err)
	}
	if err := f.ScaffoldReport(ctx, "sales"); err != nil {
		t.Fatal(err)
	}
	if err := f.DeleteReport(ctx, "sales"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, store.DashboardsFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"level": "Parent"`) {
		t.Errorf("dashboards.json = %s", data)
	}
	info, err := os.Stat(filepath.Join(dir, store.DashboardsFile))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0644 {
		t.Errorf("dashboards.json mode = %v", perm)
	}
	if _, err := os.Stat(filepath.Join(dir, store.TrashDir, "sales.json")); err != nil {
		t.Errorf("trashed report: %v", err)
	}

	if err := f.ScaffoldReport(ctx, "../escape"); !errors.Is(err, errors.ErrCodeInvalidLink) {
		t.Errorf("path escape err = %v", err)
	}
}

func TestFileWatch(t *testing.T) {
	dir := t.TempDir()
	f, err := store.NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan []dashboard.Entry, 8)
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, func(e []dashboard.Entry) { updates <- e }) }()

	// A second writer stands in for an external process.
	other, err := store.NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []dashboard.Entry{{Link: "ops", Title: "Ops", IsMain: true}}

	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-updates:
			if len(got) != 1 || got[0] != want[0] {
				t.Fatalf("update = %v", got)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch: %v", err)
			}
			return
		case <-tick.C:
			// Rewrite until the watcher is registered and sees a change.
			if err := other.ReplaceDashboards(context.Background(), want); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no update observed")
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  store.Config
		want string
	}{
		{"default", store.Config{Dir: dir}, "*store.File"},
		{"memory", store.Config{Backend: "memory"}, "*store.Memory"},
		{"file", store.Config{Backend: "FILE", Dir: dir}, "*store.File"},
		{"sqlite", store.Config{Backend: "sqlite", Dir: dir}, "*sqlitestore.Store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := store.Open(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer b.Close()
			if got := fmt.Sprintf("%T", b); got != tt.want {
				t.Errorf("Open = %s, want %s", got, tt.want)
			}
		})
	}

	_, err := store.Open(ctx, store.Config{Backend: "etcd"})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unknown backend err = %v", err)
	}
	_, err = store.Open(ctx, store.Config{Backend: "postgres"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("postgres without dsn err = %v", err)
	}
}
