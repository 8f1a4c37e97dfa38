package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

// MaxLength is the longest title or link accepted, in characters.
const MaxLength = 20

// Messages reported by failing checks.
const (
	MsgTitleExists       = "title already exists"
	MsgLinkExists        = "link already exists"
	MsgEmpty             = "value must not be empty"
	MsgInvalidCharacters = "only letters, digits, spaces and hyphens are allowed"
	MsgTooLong           = "value must be at most 20 characters"
	MsgUntrimmed         = "value must not start or end with whitespace"
	MsgLinkWhitespace    = "link must not contain whitespace"
)

var (
	allowedChars = regexp.MustCompile(`^[A-Za-z0-9\s-]*$`)
	trimmed      = regexp.MustCompile(`^\S+(\s+\S+)*$`)
)

// Result is the outcome of a single check.
type Result struct {
	Valid   bool
	Message string
	Code    errors.Code
}

// OK is the passing result.
var OK = Result{Valid: true}

// Err converts a failing result into a coded error. It returns nil for a
// passing result.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return errors.New(r.Code, "%s", r.Message)
}

func fail(code errors.Code, msg string) Result {
	return Result{Message: msg, Code: code}
}

// CheckTitle validates a title against the format rules and against the
// titles already present in existing.
func CheckTitle(title string, existing []dashboard.Entry) Result {
	for _, e := range existing {
		if e.Title == title {
			return fail(errors.ErrCodeInvalidTitle, MsgTitleExists)
		}
	}
	return checkValue(title, errors.ErrCodeInvalidTitle)
}

// CheckLink validates a link against the format rules and against the links
// already present in existing. Unlike titles, links must not contain any
// whitespace.
func CheckLink(link string, existing []dashboard.Entry) Result {
	if dashboard.Index(existing, link) >= 0 {
		return fail(errors.ErrCodeInvalidLink, MsgLinkExists)
	}
	if res := checkValue(link, errors.ErrCodeInvalidLink); !res.Valid {
		return res
	}
	if strings.IndexFunc(link, unicode.IsSpace) >= 0 {
		return fail(errors.ErrCodeInvalidLink, MsgLinkWhitespace)
	}
	return OK
}

func checkValue(v string, code errors.Code) Result {
	switch {
	case v == "":
		return fail(code, MsgEmpty)
	case !allowedChars.MatchString(v):
		return fail(code, MsgInvalidCharacters)
	case utf8.RuneCountInString(v) > MaxLength:
		return fail(code, MsgTooLong)
	case !trimmed.MatchString(v):
		return fail(code, MsgUntrimmed)
	}
	return OK
}

// Without excludes the entry with the given link, so that an entry can be
// re-validated against the rest of its collection.
func Without(entries []dashboard.Entry, link string) []dashboard.Entry {
	out := make([]dashboard.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Link != link {
			out = append(out, e)
		}
	}
	return out
}

// Slug derives the canonical link for a title. Accents are folded to their
// base letters, the result is lower-cased and every run of characters other
// than letters and digits becomes a single hyphen. Leading and trailing
// separators are dropped rather than kept as hyphens, so a link never starts
// or ends with one and titles that differ only there share a link.
//
//	Slug("Sales Q1")       // "sales-q1"
//	Slug("Überblick 2024") // "uberblick-2024"
//	Slug("-Ops-")          // "ops"
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
