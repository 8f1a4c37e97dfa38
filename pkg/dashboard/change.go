package dashboard

import (
	"fmt"
	"strings"
)

// ChangeKind names the user intent carried by a change record.
type ChangeKind int

const (
	// FavoriteSelected marks one entry as the default landing page.
	FavoriteSelected ChangeKind = iota
	// Renamed changes an entry's title and, derived from it, its link.
	Renamed
	// Added appends a new Parent-level entry.
	Added
	// Deleted removes an entry together with its descendants.
	Deleted
	// Rearranged replaces the whole hierarchy after a drag and drop.
	Rearranged
)

var kindNames = [...]string{"FavoriteSelected", "Renamed", "Added", "Deleted", "Rearranged"}

func (k ChangeKind) String() string {
	if k >= FavoriteSelected && k <= Rearranged {
		return kindNames[k]
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ChangeKind) MarshalText() ([]byte, error) {
	if k < FavoriteSelected || k > Rearranged {
		return nil, fmt.Errorf("invalid change kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ChangeKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if string(b) == name {
			*k = ChangeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown change kind %q", b)
}

// Zone is the drop position relative to the node under the pointer.
type Zone int

const (
	// Above inserts the dragged node as the previous sibling of the target.
	Above Zone = iota
	// Center inserts the dragged node as the last child of the target.
	Center
	// Below inserts the dragged node as the next sibling of the target.
	Below
)

var zoneNames = [...]string{"Above", "Center", "Below"}

func (z Zone) String() string {
	if z >= Above && z <= Below {
		return zoneNames[z]
	}
	return fmt.Sprintf("Zone(%d)", int(z))
}

// ParseZone parses a zone name case-insensitively ("above", "Center", ...).
func ParseZone(s string) (Zone, error) {
	for i, name := range zoneNames {
		if strings.EqualFold(s, name) {
			return Zone(i), nil
		}
	}
	return Above, fmt.Errorf("unknown drop zone %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) { return []byte(z.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(b []byte) error {
	parsed, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}
