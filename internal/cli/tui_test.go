package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/navigation"
	"github.com/matzehuels/navtree/pkg/store"
)

func newTestModel(t *testing.T, entries ...dashboard.Entry) (*navModel, *navigation.Service) {
	t.Helper()
	svc := navigation.New(store.NewMemory(entries...),
		navigation.WithDispatcher(navigation.InlineDispatcher{}),
		navigation.WithSettleDelay(0),
	)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	m := newNavModel(context.Background(), svc, make(chan string))
	t.Cleanup(m.unsubscribe)
	return m, svc
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press feeds msg to the model and runs the resulting command once, feeding
// back an appliedMsg if it produced one.
func press(m *navModel, msg tea.Msg) {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if applied, ok := cmd().(appliedMsg); ok {
		m.Update(applied)
	}
}

func sampleEntries() []dashboard.Entry {
	return []dashboard.Entry{
		{Link: "sales", Title: "Sales", IsMain: true, Level: dashboard.Parent},
		{Link: "north", Title: "North", Level: dashboard.Child, Parent: "sales"},
		{Link: "ops", Title: "Ops", Level: dashboard.Parent},
	}
}

func TestNavModelRows(t *testing.T) {
	m, _ := newTestModel(t, sampleEntries()...)

	var links []string
	for _, r := range m.rows {
		links = append(links, strings.Repeat(">", r.depth)+r.node.Link)
	}
	if got := strings.Join(links, " "); got != "sales >north ops" {
		t.Errorf("rows = %q", got)
	}
	if m.selected() != "sales" {
		t.Errorf("cursor starts on %q, want the favorite", m.selected())
	}

	press(m, runes("j"))
	press(m, runes("j"))
	press(m, runes("j"))
	if m.selected() != "ops" {
		t.Errorf("cursor = %q after moving past the end, want ops", m.selected())
	}
}

func TestNavModelAdd(t *testing.T) {
	m, svc := newTestModel(t)

	press(m, runes("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want add", m.mode)
	}
	press(m, runes("Sales Q1"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	entries := svc.Collection()
	if len(entries) != 1 || entries[0].Link != "sales-q1" || !entries[0].IsMain {
		t.Fatalf("collection = %+v", entries)
	}
	if m.failed || !strings.Contains(m.status, "Sales Q1") {
		t.Errorf("status = %q (failed %v)", m.status, m.failed)
	}
}

func TestNavModelRejectsDuplicateTitle(t *testing.T) {
	m, svc := newTestModel(t, sampleEntries()...)

	press(m, runes("a"))
	press(m, runes("Ops"))
	if !strings.Contains(m.View(), "already exists") {
		t.Errorf("view does not show the duplicate title:\n%s", m.View())
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeAdd {
		t.Errorf("mode = %v, want input kept open", m.mode)
	}
	if len(svc.Collection()) != 3 {
		t.Errorf("duplicate was added: %+v", svc.Collection())
	}
}

func TestNavModelRename(t *testing.T) {
	m, svc := newTestModel(t, sampleEntries()...)

	press(m, runes("r"))
	m.input.SetValue("Revenue")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := dashboard.Find(svc.Collection(), "revenue"); !ok {
		t.Fatalf("rename not applied: %+v", svc.Collection())
	}
	if m.selected() != "revenue" {
		t.Errorf("cursor = %q, want it to follow the renamed entry", m.selected())
	}
}

func TestNavModelDelete(t *testing.T) {
	m, svc := newTestModel(t, sampleEntries()...)

	press(m, runes("d"))
	press(m, runes("n"))
	if len(svc.Collection()) != 3 {
		t.Fatal("delete ran without confirmation")
	}

	press(m, runes("d"))
	if !strings.Contains(m.View(), "1 descendant") {
		t.Errorf("confirm prompt does not count descendants:\n%s", m.View())
	}
	press(m, runes("y"))
	entries := svc.Collection()
	if len(entries) != 1 || entries[0].Link != "ops" || !entries[0].IsMain {
		t.Errorf("collection = %+v, want ops promoted to favorite", entries)
	}
}

func TestNavModelMove(t *testing.T) {
	m, svc := newTestModel(t, sampleEntries()...)

	m.moveTo("ops")
	press(m, runes("m"))
	if m.mode != modeMove || m.marked != "ops" {
		t.Fatalf("mode = %v marked = %q", m.mode, m.marked)
	}
	m.moveTo("north")
	press(m, runes("i"))

	ops, _ := dashboard.Find(svc.Collection(), "ops")
	if ops.Level != dashboard.Grandchild || ops.Parent != "north" {
		t.Errorf("ops = %+v, want Grandchild of north", ops)
	}

	m.moveTo("sales")
	press(m, runes("m"))
	m.moveTo("ops")
	press(m, runes("i"))
	if !m.failed {
		t.Errorf("illegal drop accepted, status %q", m.status)
	}
}

func TestNavModelFavoriteAndOpen(t *testing.T) {
	m, svc := newTestModel(t, sampleEntries()...)

	m.moveTo("ops")
	press(m, runes("f"))
	if fav, _ := svc.Favorite(); fav.Link != "ops" {
		t.Errorf("favorite = %q, want ops", fav.Link)
	}

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !svc.IsActive("ops") || m.route != "/report/ops" {
		t.Errorf("active = %q route = %q", svc.Active(), m.route)
	}
}

func TestNavModelSearch(t *testing.T) {
	m, _ := newTestModel(t, sampleEntries()...)

	press(m, runes("/"))
	press(m, runes("nrth"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selected() != "north" {
		t.Errorf("cursor = %q, want north", m.selected())
	}
}
