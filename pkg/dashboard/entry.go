package dashboard

import (
	"fmt"
	"slices"
)

// Level is the fixed depth tier of an entry in the hierarchy.
// The zero value is Parent.
type Level int

const (
	// Parent entries sit at the root of the hierarchy and have no parent link.
	Parent Level = iota
	// Child entries hang below a Parent and can hold Grandchildren.
	Child
	// Grandchild entries are leaves; they can never hold children.
	Grandchild
)

// MaxDepth is the deepest depth any node may occupy (Grandchild).
const MaxDepth = int(Grandchild)

var levelNames = [...]string{"Parent", "Child", "Grandchild"}

// String returns the persisted name of the level.
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Valid reports whether l is one of Parent, Child or Grandchild.
func (l Level) Valid() bool { return l >= Parent && l <= Grandchild }

// Depth returns the tree depth matching the level (0, 1 or 2).
func (l Level) Depth() int { return int(l) }

// Deeper returns the level one tier below l.
// It returns false for Grandchild, which cannot have children.
func (l Level) Deeper() (Level, bool) {
	if l >= Grandchild || !l.Valid() {
		return l, false
	}
	return l + 1, true
}

// LevelAt returns the level for a tree depth.
// Depths outside 0..MaxDepth report false.
func LevelAt(depth int) (Level, bool) {
	l := Level(depth)
	return l, l.Valid()
}

// ParseLevel parses "Parent", "Child" or "Grandchild".
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return Parent, fmt.Errorf("unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Entry is the persisted unit of the navigation hierarchy.
//
// Link is the unique identifier and routable slug. Parent is empty for
// Parent-level entries and names the link of an entry one level shallower
// otherwise. Moved is the transient "has been moved" marker used while a
// relocation is in progress; it is never persisted.
type Entry struct {
	Link   string `json:"link" yaml:"link"`
	Title  string `json:"title" yaml:"title"`
	IsMain bool   `json:"isMain" yaml:"isMain"`
	Level  Level  `json:"level" yaml:"level"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Moved  bool   `json:"-" yaml:"-"`
}

// Flat returns a copy of e with transient fields cleared.
// Parent-level entries never carry a parent link.
func (e Entry) Flat() Entry {
	e.Moved = false
	if e.Level == Parent {
		e.Parent = ""
	}
	return e
}

// ReportPath returns the route that opens the entry's report.
func (e Entry) ReportPath() string { return ReportPath(e.Link) }

// ReportPath returns the route that opens the report with the given link.
func ReportPath(link string) string { return "/report/" + link }

// Clone returns a flat copy of entries.
func Clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Flat()
	}
	return out
}

// Index returns the position of the entry with the given link, or -1.
func Index(entries []Entry, link string) int {
	return slices.IndexFunc(entries, func(e Entry) bool { return e.Link == link })
}

// Find returns the entry with the given link.
func Find(entries []Entry, link string) (Entry, bool) {
	if i := Index(entries, link); i >= 0 {
		return entries[i], true
	}
	return Entry{}, false
}

// Favorite returns the first entry marked as main.
func Favorite(entries []Entry) (Entry, bool) {
	for _, e := range entries {
		if e.IsMain {
			return e, true
		}
	}
	return Entry{}, false
}

// CountFavorites returns how many entries are marked as main.
func CountFavorites(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.IsMain {
			n++
		}
	}
	return n
}
