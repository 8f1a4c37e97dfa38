// Package record holds the encoding and error helpers shared by the store
// backends.
package record

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

// Sentinel errors wrapped by every backend.
var (
	ErrNotFound = stderrors.New("not found")
	ErrExists   = stderrors.New("already exists")
)

// NotFound reports a missing report.
func NotFound(link string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "report %q", link)
}

// Exists reports a report that is already present.
func Exists(link string) error {
	return errors.Wrap(errors.ErrCodeAlreadyExists, ErrExists, "report %q", link)
}

// CheckKey rejects links that cannot be used as a storage key.
func CheckKey(link string) error {
	switch {
	case link == "", link == ".", link == "..":
		return errors.New(errors.ErrCodeInvalidLink, "invalid report link %q", link)
	case strings.ContainsAny(link, `/\`):
		return errors.New(errors.ErrCodeInvalidLink, "report link %q contains a path separator", link)
	}
	return nil
}

type scaffold struct {
	Link    string            `json:"link"`
	Widgets []json.RawMessage `json:"widgets"`
}

// Scaffold returns the empty report document for link.
func Scaffold(link string) []byte {
	b, _ := json.Marshal(scaffold{Link: link, Widgets: []json.RawMessage{}})
	return b
}

// Relink rewrites the "link" field of a report document. Other fields are
// kept as they are.
func Relink(doc []byte, link string) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &fields); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "report is not a JSON object")
		}
	}
	v, _ := json.Marshal(link)
	fields["link"] = v
	return json.Marshal(fields)
}

// EncodeEntries serializes a flat collection. A nil collection encodes as
// an empty JSON array.
func EncodeEntries(entries []dashboard.Entry) ([]byte, error) {
	return json.Marshal(dashboard.Clone(entries))
}

// DecodeEntries parses a flat collection. Empty input is an empty collection.
func DecodeEntries(b []byte) ([]dashboard.Entry, error) {
	entries := []dashboard.Entry{}
	if len(b) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode dashboards")
	}
	return entries, nil
}
