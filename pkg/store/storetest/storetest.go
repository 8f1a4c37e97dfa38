// Package storetest provides a conformance suite for store backends.
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store"
)

// Run checks the behaviour every [store.Backend] must share. open must return
// an empty backend; Run closes it. Failures are checked by error code only,
// so remote clients can run the suite too.
func Run(t *testing.T, open func(t *testing.T) store.Backend) {
	t.Helper()

	t.Run("EmptyCollection", func(t *testing.T) {
		b := openEmpty(t, open)
		got, err := b.Dashboards(context.Background())
		if err != nil {
			t.Fatalf("Dashboards: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Dashboards = %v, want empty", got)
		}
	})

	t.Run("ReplaceDashboards", func(t *testing.T) {
		b := openEmpty(t, open)
		ctx := context.Background()
		want := []dashboard.Entry{
			{Link: "ops", Title: "Ops"},
			{Link: "costs", Title: "Costs", Level: dashboard.Child, Parent: "ops"},
			{Link: "cloud", Title: "Cloud", Level: dashboard.Grandchild, Parent: "costs"},
			{Link: "sales", Title: "Sales", IsMain: true},
		}
		for range 2 {
			if err := b.ReplaceDashboards(ctx, want); err != nil {
				t.Fatalf("ReplaceDashboards: %v", err)
			}
		}
		got, err := b.Dashboards(ctx)
		if err != nil {
			t.Fatalf("Dashboards: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("Dashboards = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
			}
		}

		if err := b.ReplaceDashboards(ctx, want[3:]); err != nil {
			t.Fatalf("ReplaceDashboards: %v", err)
		}
		if got, _ := b.Dashboards(ctx); len(got) != 1 || got[0].Link != "sales" {
			t.Errorf("after shrinking replace = %v", got)
		}
	})

	t.Run("ScaffoldReport", func(t *testing.T) {
		b := openEmpty(t, open)
		ctx := context.Background()
		if err := b.ScaffoldReport(ctx, "sales"); err != nil {
			t.Fatalf("ScaffoldReport: %v", err)
		}
		assertLink(t, b, "sales")

		err := b.ScaffoldReport(ctx, "sales")
		if !errors.Is(err, errors.ErrCodeAlreadyExists) {
			t.Errorf("second ScaffoldReport err = %v", err)
		}
	})

	t.Run("MissingReport", func(t *testing.T) {
		b := openEmpty(t, open)
		ctx := context.Background()
		checks := map[string]error{}
		_, checks["Report"] = b.Report(ctx, "nope")
		checks["RenameReport"] = b.RenameReport(ctx, "nope", "other")
		checks["DeleteReport"] = b.DeleteReport(ctx, "nope")
		for op, err := range checks {
			if !errors.Is(err, errors.ErrCodeNotFound) {
				t.Errorf("%s err = %v, want NOT_FOUND", op, err)
			}
		}
	})

	t.Run("RenameReport", func(t *testing.T) {
		b := openEmpty(t, open)
		ctx := context.Background()
		mustScaffold(t, b, "sales", "costs")

		if err := b.RenameReport(ctx, "sales", "revenue"); err != nil {
			t.Fatalf("RenameReport: %v", err)
		}
		assertLink(t, b, "revenue")
		if _, err := b.Report(ctx, "sales"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("old report still readable: %v", err)
		}

		if err := b.RenameReport(ctx, "revenue", "costs"); !errors.Is(err, errors.ErrCodeAlreadyExists) {
			t.Errorf("rename onto existing err = %v", err)
		}
		if err := b.RenameReport(ctx, "revenue", "revenue"); err != nil {
			t.Errorf("rename onto itself err = %v", err)
		}
	})

	t.Run("DeleteReport", func(t *testing.T) {
		b := openEmpty(t, open)
		ctx := context.Background()
		mustScaffold(t, b, "sales")

		if err := b.DeleteReport(ctx, "sales"); err != nil {
			t.Fatalf("DeleteReport: %v", err)
		}
		if _, err := b.Report(ctx, "sales"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("deleted report still readable: %v", err)
		}
		// The link is free again.
		mustScaffold(t, b, "sales")
		if err := b.DeleteReport(ctx, "sales"); err != nil {
			t.Errorf("second DeleteReport: %v", err)
		}
	})
}

func openEmpty(t *testing.T, open func(t *testing.T) store.Backend) store.Backend {
	t.Helper()
	b := open(t)
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return b
}

func mustScaffold(t *testing.T, b store.Backend, links ...string) {
	t.Helper()
	for _, l := range links {
		if err := b.ScaffoldReport(context.Background(), l); err != nil {
			t.Fatalf("ScaffoldReport(%s): %v", l, err)
		}
	}
}

func assertLink(t *testing.T, b store.Backend, link string) {
	t.Helper()
	doc, err := b.Report(context.Background(), link)
	if err != nil {
		t.Fatalf("Report(%s): %v", link, err)
	}
	var report struct {
		Link    string            `json:"link"`
		Widgets []json.RawMessage `json:"widgets"`
	}
	if err := json.Unmarshal(doc, &report); err != nil {
		t.Fatalf("Report(%s) is not JSON: %v", link, err)
	}
	if report.Link != link || report.Widgets == nil {
		t.Errorf("Report(%s) = %s", link, doc)
	}
}
