package io

import (
	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/hierarchy"
	"github.com/matzehuels/navtree/pkg/validate"
)

// Validate checks that entries form a well-formed collection:
//
//   - every title and link passes the validator, and none repeats
//   - every entry attaches to the hierarchy (ORPHAN_ENTRY otherwise)
//   - a non-empty collection has exactly one favorite
//
// The first problem found is returned.
func Validate(entries []dashboard.Entry) error {
	for i, e := range entries {
		seen := entries[:i]
		if res := validate.CheckTitle(e.Title, seen); !res.Valid {
			return errors.New(res.Code, "entry %d (%q): title: %s", i, e.Link, res.Message)
		}
		if res := validate.CheckLink(e.Link, seen); !res.Valid {
			return errors.New(res.Code, "entry %d (%q): link: %s", i, e.Link, res.Message)
		}
		if !e.Level.Valid() {
			return errors.New(errors.ErrCodeInvalidFormat, "entry %d (%q): invalid level %d", i, e.Link, int(e.Level))
		}
	}

	if err := hierarchy.NewForest(entries).Err(); err != nil {
		return err
	}

	if n := dashboard.CountFavorites(entries); len(entries) > 0 && n != 1 {
		return errors.New(errors.ErrCodeInvalidFormat, "collection has %d favorites, want exactly one", n)
	}
	return nil
}
