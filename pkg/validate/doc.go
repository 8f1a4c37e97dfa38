// Package validate checks candidate titles and links before they enter a
// dashboard collection.
//
// The checks are pure: they never panic and never modify the collection they
// are compared against. A failing check yields a [Result] with a human
// readable message and a machine readable code from package errors:
//
//	res := validate.CheckTitle("Sales  Q1 ", entries)
//	if !res.Valid {
//	    return res.Err()
//	}
//
// Rules are evaluated in a fixed order and the first failure wins:
//
//  1. duplicate title (or link) within the collection
//  2. empty value
//  3. characters outside letters, digits, spaces and hyphens
//  4. more than [MaxLength] characters
//  5. leading or trailing whitespace
//
// Links additionally must not contain whitespace at all. [Slug] derives the
// canonical link for a title.
package validate
