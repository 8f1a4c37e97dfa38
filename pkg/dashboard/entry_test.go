package dashboard

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLevelText(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{Parent, "Parent"},
		{Child, "Child"},
		{Grandchild, "Grandchild"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			b, err := tt.level.MarshalText()
			if err != nil {
				t.Fatalf("MarshalText: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("MarshalText = %q, want %q", b, tt.want)
			}
			var got Level
			if err := got.UnmarshalText(b); err != nil {
				t.Fatalf("UnmarshalText: %v", err)
			}
			if got != tt.level {
				t.Errorf("UnmarshalText = %v, want %v", got, tt.level)
			}
		})
	}

	if _, err := Level(7).MarshalText(); err == nil {
		t.Error("MarshalText(7) should fail")
	}
	if _, err := ParseLevel("parent"); err == nil {
		t.Error("ParseLevel is case sensitive")
	}
}

func TestLevelDeeper(t *testing.T) {
	if l, ok := Parent.Deeper(); !ok || l != Child {
		t.Errorf("Parent.Deeper() = %v, %v", l, ok)
	}
	if l, ok := Child.Deeper(); !ok || l != Grandchild {
		t.Errorf("Child.Deeper() = %v, %v", l, ok)
	}
	if _, ok := Grandchild.Deeper(); ok {
		t.Error("Grandchild.Deeper() should report false")
	}
	if _, ok := LevelAt(3); ok {
		t.Error("LevelAt(3) should report false")
	}
	if l, ok := LevelAt(MaxDepth); !ok || l != Grandchild {
		t.Errorf("LevelAt(MaxDepth) = %v, %v", l, ok)
	}
}

func TestEntryJSON(t *testing.T) {
	e := Entry{Link: "sales-q1", Title: "Sales Q1", Level: Child, Parent: "sales", Moved: true}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"link":"sales-q1","title":"Sales Q1","isMain":false,"level":"Child","parent":"sales"}`
	if string(b) != want {
		t.Errorf("Marshal = %s\nwant %s", b, want)
	}

	var got Entry
	if err := json.Unmarshal([]byte(`{"link":"home","title":"Home","isMain":true,"level":"Parent"}`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Link != "home" || !got.IsMain || got.Level != Parent || got.Parent != "" {
		t.Errorf("Unmarshal = %+v", got)
	}

	if err := json.Unmarshal([]byte(`{"link":"x","level":"Uncle"}`), &got); err == nil {
		t.Error("Unmarshal should reject unknown level")
	}
}

func TestEntryYAML(t *testing.T) {
	e := Entry{Link: "ops", Title: "Ops", Level: Grandchild, Parent: "infra", Moved: true}
	b, err := yaml.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(b), "moved") || strings.Contains(string(b), "Moved") {
		t.Errorf("transient marker leaked into YAML:\n%s", b)
	}
	var got Entry
	if err := yaml.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != e.Flat() {
		t.Errorf("round trip = %+v, want %+v", got, e.Flat())
	}
}

func TestEntryFlat(t *testing.T) {
	e := Entry{Link: "a", Level: Parent, Parent: "stale", Moved: true}
	f := e.Flat()
	if f.Moved || f.Parent != "" {
		t.Errorf("Flat() = %+v", f)
	}
	if !e.Moved {
		t.Error("Flat must not modify the receiver")
	}
	c := Entry{Link: "b", Level: Child, Parent: "a"}.Flat()
	if c.Parent != "a" {
		t.Errorf("Flat() dropped parent of child: %+v", c)
	}
}

func TestHelpers(t *testing.T) {
	entries := []Entry{
		{Link: "a", Title: "A"},
		{Link: "b", Title: "B", IsMain: true},
		{Link: "c", Title: "C", Level: Child, Parent: "a", Moved: true},
	}

	if i := Index(entries, "c"); i != 2 {
		t.Errorf("Index(c) = %d", i)
	}
	if i := Index(entries, "zz"); i != -1 {
		t.Errorf("Index(zz) = %d", i)
	}
	if e, ok := Find(entries, "b"); !ok || e.Title != "B" {
		t.Errorf("Find(b) = %+v, %v", e, ok)
	}
	if f, ok := Favorite(entries); !ok || f.Link != "b" {
		t.Errorf("Favorite = %+v, %v", f, ok)
	}
	if _, ok := Favorite(entries[:1]); ok {
		t.Error("Favorite of collection without main should report false")
	}
	if n := CountFavorites(entries); n != 1 {
		t.Errorf("CountFavorites = %d", n)
	}

	cloned := Clone(entries)
	cloned[0].Title = "changed"
	if entries[0].Title != "A" {
		t.Error("Clone shares storage with its input")
	}
	if cloned[2].Moved {
		t.Error("Clone kept the transient marker")
	}
	if got := entries[1].ReportPath(); got != "/report/b" {
		t.Errorf("ReportPath = %q", got)
	}
}

func TestZoneAndKind(t *testing.T) {
	for _, s := range []string{"above", "CENTER", "Below"} {
		if _, err := ParseZone(s); err != nil {
			t.Errorf("ParseZone(%q): %v", s, err)
		}
	}
	if _, err := ParseZone("inside"); err == nil {
		t.Error("ParseZone(inside) should fail")
	}

	var k ChangeKind
	if err := k.UnmarshalText([]byte("Deleted")); err != nil || k != Deleted {
		t.Errorf("UnmarshalText(Deleted) = %v, %v", k, err)
	}
	if Rearranged.String() != "Rearranged" {
		t.Errorf("Rearranged.String() = %q", Rearranged.String())
	}
	if ChangeKind(42).String() != "ChangeKind(42)" {
		t.Errorf("unknown kind String() = %q", ChangeKind(42).String())
	}
}
