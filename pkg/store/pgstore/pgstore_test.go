package pgstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/matzehuels/navtree/pkg/errors"
)

func TestNewRequiresDSN(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		if _, err := New(dsn); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("New(%q) err = %v", dsn, err)
		}
	}
}

func TestTableNames(t *testing.T) {
	s, err := New("postgres://localhost/navtree")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.table("reports"); got != `"navtree_reports"` {
		t.Errorf("table = %s", got)
	}

	s, _ = New("postgres://localhost/navtree", WithTablePrefix(`tenant"a`))
	if got := s.table("trash"); got != `"tenant""a_trash"` {
		t.Errorf("quoted table = %s", got)
	}
}

func TestLazyInitError(t *testing.T) {
	s, err := New("postgres://localhost/navtree")
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	boom := stderrors.New("dial failed")
	s.openDB = func(driver, dsn string) (*sql.DB, error) {
		calls++
		if driver != "postgres" || dsn != "postgres://localhost/navtree" {
			t.Errorf("openDB(%q, %q)", driver, dsn)
		}
		return nil, boom
	}

	ctx := context.Background()
	if _, err := s.Dashboards(ctx); !errors.Is(err, errors.ErrCodeNetwork) || !stderrors.Is(err, boom) {
		t.Errorf("Dashboards err = %v", err)
	}
	if err := s.ScaffoldReport(ctx, "a"); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("ScaffoldReport err = %v", err)
	}
	if calls != 1 {
		t.Errorf("openDB called %d times, want 1", calls)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
