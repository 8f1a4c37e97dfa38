package record

import (
	stderrors "errors"
	"testing"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

func TestScaffoldAndRelink(t *testing.T) {
	doc := Scaffold("sales")
	if string(doc) != `{"link":"sales","widgets":[]}` {
		t.Fatalf("Scaffold = %s", doc)
	}

	got, err := Relink([]byte(`{"link":"sales","widgets":[{"kind":"chart"}],"owner":"ops"}`), "revenue")
	if err != nil {
		t.Fatalf("Relink: %v", err)
	}
	want := `{"link":"revenue","owner":"ops","widgets":[{"kind":"chart"}]}`
	if string(got) != want {
		t.Errorf("Relink = %s, want %s", got, want)
	}

	if _, err := Relink([]byte(`[1,2]`), "x"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Relink(array) err = %v", err)
	}
}

func TestErrors(t *testing.T) {
	if err := NotFound("a"); !errors.Is(err, errors.ErrCodeNotFound) || !stderrors.Is(err, ErrNotFound) {
		t.Errorf("NotFound = %v", err)
	}
	if err := Exists("a"); !errors.Is(err, errors.ErrCodeAlreadyExists) || !stderrors.Is(err, ErrExists) {
		t.Errorf("Exists = %v", err)
	}
}

func TestCheckKey(t *testing.T) {
	tests := []struct {
		link string
		ok   bool
	}{
		{"sales", true},
		{"sales-q1", true},
		{"", false},
		{"..", false},
		{"a/b", false},
		{`a\b`, false},
	}
	for _, tt := range tests {
		if err := CheckKey(tt.link); (err == nil) != tt.ok {
			t.Errorf("CheckKey(%q) = %v", tt.link, err)
		}
	}
}

func TestEntries(t *testing.T) {
	b, err := EncodeEntries(nil)
	if err != nil || string(b) != "[]" {
		t.Fatalf("EncodeEntries(nil) = %s, %v", b, err)
	}

	in := []dashboard.Entry{
		{Link: "a", Title: "A", IsMain: true},
		{Link: "b", Title: "B", Level: dashboard.Child, Parent: "a", Moved: true},
	}
	b, err = EncodeEntries(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeEntries(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[1].Moved || out[1].Parent != "a" || out[1].Level != dashboard.Child {
		t.Errorf("round trip = %+v", out)
	}

	if out, err := DecodeEntries(nil); err != nil || len(out) != 0 || out == nil {
		t.Errorf("DecodeEntries(nil) = %v, %v", out, err)
	}
	if _, err := DecodeEntries([]byte("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("DecodeEntries(bad) err = %v", err)
	}
}
