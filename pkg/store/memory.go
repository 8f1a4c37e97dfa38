package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/store/internal/record"
)

// Memory is an in-process backend. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []dashboard.Entry
	reports map[string][]byte
	trash   map[string][]byte
}

// NewMemory creates a memory backend holding entries. A scaffolded report is
// created for each entry.
func NewMemory(entries ...dashboard.Entry) *Memory {
	m := &Memory{
		entries: dashboard.Clone(entries),
		reports: make(map[string][]byte),
		trash:   make(map[string][]byte),
	}
	for _, e := range entries {
		m.reports[e.Link] = record.Scaffold(e.Link)
	}
	return m
}

// Dashboards implements [Backend].
func (m *Memory) Dashboards(context.Context) ([]dashboard.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return dashboard.Clone(m.entries), nil
}

// ReplaceDashboards implements [Backend].
func (m *Memory) ReplaceDashboards(_ context.Context, entries []dashboard.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = dashboard.Clone(entries)
	return nil
}

// Report implements [Backend].
func (m *Memory) Report(_ context.Context, link string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.reports[link]
	if !ok {
		return nil, record.NotFound(link)
	}
	return slices.Clone(doc), nil
}

// ScaffoldReport implements [Backend].
func (m *Memory) ScaffoldReport(_ context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[link]; ok {
		return record.Exists(link)
	}
	m.reports[link] = record.Scaffold(link)
	return nil
}

// RenameReport implements [Backend].
func (m *Memory) RenameReport(_ context.Context, oldLink, newLink string) error {
	if err := record.CheckKey(newLink); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.reports[oldLink]
	if !ok {
		return record.NotFound(oldLink)
	}
	if oldLink == newLink {
		return nil
	}
	if _, ok := m.reports[newLink]; ok {
		return record.Exists(newLink)
	}
	relinked, err := record.Relink(doc, newLink)
	if err != nil {
		return err
	}
	delete(m.reports, oldLink)
	m.reports[newLink] = relinked
	return nil
}

// DeleteReport implements [Backend]. The report is kept in the trash.
func (m *Memory) DeleteReport(_ context.Context, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.reports[link]
	if !ok {
		return record.NotFound(link)
	}
	delete(m.reports, link)
	m.trash[link] = doc
	return nil
}

// Trashed returns the last deleted report stored under link.
func (m *Memory) Trashed(link string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.trash[link]
	return slices.Clone(doc), ok
}

// Close implements [Backend].
func (m *Memory) Close() error { return nil }
