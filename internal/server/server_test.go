package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navtree/internal/server"
	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/httputil"
	"github.com/matzehuels/navtree/pkg/remote"
	"github.com/matzehuels/navtree/pkg/store"
	"github.com/matzehuels/navtree/pkg/store/storetest"
)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newTestServer(t *testing.T, backend store.Backend, opts ...server.Option) (*server.Server, *httptest.Server) {
	t.Helper()
	opts = append([]server.Option{server.WithLogger(quietLogger())}, opts...)
	s, err := server.New(backend, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func newClient(t *testing.T, url string) *remote.Client {
	t.Helper()
	c, err := remote.New(url, remote.WithRetries(1, 0), remote.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("remote.New: %v", err)
	}
	return c
}

func TestRemoteConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		_, srv := newTestServer(t, store.NewMemory())
		return newClient(t, srv.URL)
	})
}

func do(t *testing.T, method, url, body string) (int, httputil.ErrorBody) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var eb httputil.ErrorBody
	if resp.StatusCode >= 400 {
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
			t.Fatalf("%s %s: error body is not JSON: %v", method, url, err)
		}
	}
	return resp.StatusCode, eb
}

func TestReplaceValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"bare list", `[{"link":"ops","title":"Ops","isMain":true,"level":"Parent"}]`, http.StatusOK, ""},
		{"document", `{"id":"x","dashboards":[{"link":"ops","title":"Ops","isMain":true,"level":"Parent"}]}`, http.StatusOK, ""},
		{"empty", `[]`, http.StatusOK, ""},
		{"not json", `{`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", `[{"link":"ops","title":"Ops","level":"Parent","colour":"red"}]`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad level", `[{"link":"ops","title":"Ops","level":"Boss"}]`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"missing title", `[{"link":"ops","level":"Parent"}]`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{
			"duplicate title",
			`[{"link":"a","title":"Ops","isMain":true,"level":"Parent"},{"link":"b","title":"ops","level":"Parent"}]`,
			http.StatusBadRequest, errors.ErrCodeInvalidTitle,
		},
		{
			"orphan",
			`[{"link":"ops","title":"Ops","isMain":true,"level":"Parent"},{"link":"x","title":"X","level":"Child","parent":"gone"}]`,
			http.StatusUnprocessableEntity, errors.ErrCodeOrphanEntry,
		},
		{"no favorite", `[{"link":"ops","title":"Ops","level":"Parent"}]`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidFormat},
		{
			"two favorites",
			`[{"link":"a","title":"A","isMain":true,"level":"Parent"},{"link":"b","title":"B","isMain":true,"level":"Parent"}]`,
			http.StatusUnprocessableEntity, errors.ErrCodeInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := []dashboard.Entry{{Link: "keep", Title: "Keep", IsMain: true}}
			backend := store.NewMemory(before...)
			_, srv := newTestServer(t, backend)

			status, eb := do(t, http.MethodPut, srv.URL+"/dashboards", tt.body)
			if status != tt.status || eb.Code != tt.code {
				t.Fatalf("status = %d %s (%s), want %d %s", status, eb.Code, eb.Message, tt.status, tt.code)
			}
			got, _ := backend.Dashboards(context.Background())
			if tt.status != http.StatusOK && (len(got) != 1 || got[0].Link != "keep") {
				t.Errorf("rejected payload changed the collection: %v", got)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	_, srv := newTestServer(t, store.NewMemory(), server.WithBackendName("memory"), server.WithMaxBodyBytes(64))

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var health struct {
		Status  string `json:"status"`
		Backend string `json:"backend"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health.Status != "ok" || health.Backend != "memory" {
		t.Errorf("healthz = %+v", health)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"missing report", http.MethodGet, "/nope", "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"deep path", http.MethodGet, "/a/b", "", http.StatusNotFound, errors.ErrCodeNotFound},
		{"method", http.MethodPost, "/dashboards", "", http.StatusMethodNotAllowed, errors.ErrCodeInvalidInput},
		{"bad rename body", http.MethodPut, "/sales", "{", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"too large", http.MethodPut, "/empty", `{"link":"` + strings.Repeat("x", 100) + `"}`, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput},
		{"invalid key", http.MethodPut, "/empty", `{"link":".."}`, http.StatusBadRequest, errors.ErrCodeInvalidLink},
		{"scaffold", http.MethodPut, "/empty", `{"link":"sales"}`, http.StatusCreated, ""},
		{"scaffold again", http.MethodPut, "/empty", `{"link":"sales"}`, http.StatusConflict, errors.ErrCodeAlreadyExists},
		{"rename", http.MethodPut, "/sales", `{"link":"revenue"}`, http.StatusOK, ""},
		{"delete", http.MethodDelete, "/revenue", "", http.StatusNoContent, ""},
		{"delete again", http.MethodDelete, "/revenue", "", http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		status, eb := do(t, tt.method, srv.URL+tt.path, tt.body)
		if status != tt.status || eb.Code != tt.code {
			t.Errorf("%s: status = %d %s, want %d %s", tt.name, status, eb.Code, tt.status, tt.code)
		}
	}
}

func TestEscapedLink(t *testing.T) {
	_, srv := newTestServer(t, store.NewMemory())
	c := newClient(t, srv.URL)
	ctx := context.Background()

	if err := c.ScaffoldReport(ctx, "q1 plan"); err != nil {
		t.Fatalf("ScaffoldReport: %v", err)
	}
	doc, err := c.Report(ctx, "q1 plan")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(string(doc), `"q1 plan"`) {
		t.Errorf("Report = %s", doc)
	}
}

type collector struct {
	mu   sync.Mutex
	seen [][]dashboard.Entry
	ch   chan struct{}
}

func newCollector() *collector { return &collector{ch: make(chan struct{}, 16)} }

func (c *collector) add(entries []dashboard.Entry) {
	c.mu.Lock()
	c.seen = append(c.seen, entries)
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *collector) wait(t *testing.T, n int) [][]dashboard.Entry {
	t.Helper()
	for {
		c.mu.Lock()
		got := len(c.seen)
		c.mu.Unlock()
		if got >= n {
			break
		}
		select {
		case <-c.ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d collections, want %d", got, n)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]dashboard.Entry(nil), c.seen...)
}

func TestWatch(t *testing.T) {
	backend := store.NewMemory(dashboard.Entry{Link: "ops", Title: "Ops", IsMain: true})
	s, srv := newTestServer(t, backend)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := newCollector()
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, got.add) }()

	first := got.wait(t, 1)[0]
	if len(first) != 1 || first[0].Link != "ops" {
		t.Fatalf("initial collection = %v", first)
	}

	// The handler subscribes before sending the initial collection.
	next := []dashboard.Entry{
		{Link: "ops", Title: "Ops"},
		{Link: "sales", Title: "Sales", IsMain: true},
	}
	if err := c.ReplaceDashboards(ctx, next); err != nil {
		t.Fatalf("ReplaceDashboards: %v", err)
	}
	second := got.wait(t, 2)[1]
	if len(second) != 2 || !second[1].IsMain {
		t.Errorf("update = %v", second)
	}

	s.Hub().Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch after shutdown = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after hub close")
	}
}

func TestServeFileBackend(t *testing.T) {
	dir := t.TempDir()
	backend, err := store.NewFile(dir, store.WithFileLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	s, err := server.New(backend, server.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	updates, unsubscribe := s.Hub().Subscribe()
	defer unsubscribe()

	c := newClient(t, "http://"+ln.Addr().String())
	deadline := time.Now().Add(5 * time.Second)
	for c.Health(ctx) != nil {
		if time.Now().After(deadline) {
			t.Fatal("server did not come up")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// An edit made by another process reaches subscribers. The write is
	// repeated until the watcher, started concurrently with Serve, sees it.
	external := `[{"link":"ops","title":"Ops","isMain":true,"level":"Parent"}]`
	path := filepath.Join(dir, store.DashboardsFile)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(5 * time.Second)
wait:
	for {
		select {
		case entries := <-updates:
			if len(entries) != 1 || entries[0].Link != "ops" {
				t.Errorf("update = %v", entries)
			}
			break wait
		case <-ticker.C:
			tmp := filepath.Join(dir, "edit.tmp")
			if err := os.WriteFile(tmp, []byte(external), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := os.Rename(tmp, path); err != nil {
				t.Fatal(err)
			}
		case <-timeout:
			t.Fatal("external edit not published")
		}
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
