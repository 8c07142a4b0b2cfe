package policy

import (
	"regexp"
	"strings"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
)

// EntryKind tags the variant held by an Entry.
type EntryKind int

const (
	// KindAll matches every host.
	KindAll EntryKind = iota + 1
	// KindLiteral matches hosts containing the literal as a substring.
	KindLiteral
	// KindPattern matches hosts accepted by a regular expression.
	KindPattern
)

func (k EntryKind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindLiteral:
		return "literal"
	case KindPattern:
		return "pattern"
	default:
		return "unknown"
	}
}

// Entry is one allow-list entry. The zero value is invalid; build entries
// with All, Literal, Regexp, CompileRegexp or ParseEntry.
type Entry struct {
	kind    EntryKind
	literal string
	re      *regexp.Regexp
}

// All returns the entry that matches every host.
func All() Entry {
	return Entry{kind: KindAll}
}

// Literal returns a substring entry. Hostnames are lowercase, so the literal
// is lowercased too.
func Literal(host string) (Entry, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return Entry{}, errx.With(api.ErrInvalidPattern, ": empty host")
	}
	return Entry{kind: KindLiteral, literal: host}, nil
}

// Regexp wraps an already compiled expression.
func Regexp(re *regexp.Regexp) (Entry, error) {
	if re == nil {
		return Entry{}, errx.With(api.ErrInvalidPattern, ": nil regexp")
	}
	return Entry{kind: KindPattern, re: re}, nil
}

// CompileRegexp compiles expr and wraps it.
func CompileRegexp(expr string) (Entry, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Entry{}, errx.With(api.ErrInvalidPattern, " %q: %w", expr, err)
	}
	return Entry{kind: KindPattern, re: re}, nil
}

// ParseEntry reads the textual form used in config files and flags:
// "all" or "*" for everything, "/expr/" for a regular expression and a bare
// hostname for a substring match.
func ParseEntry(s string) (Entry, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "all" || s == "*":
		return All(), nil
	case len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/"):
		return CompileRegexp(s[1 : len(s)-1])
	default:
		return Literal(s)
	}
}

// MustParseEntry is ParseEntry for static test fixtures. It panics on error.
func MustParseEntry(s string) Entry {
	e, err := ParseEntry(s)
	if err != nil {
		panic(err)
	}
	return e
}

// Kind returns the entry variant.
func (e Entry) Kind() EntryKind {
	return e.kind
}

// IsValid reports whether the entry was built by a constructor.
func (e Entry) IsValid() bool {
	switch e.kind {
	case KindAll:
		return true
	case KindLiteral:
		return e.literal != ""
	case KindPattern:
		return e.re != nil
	default:
		return false
	}
}

// Matches reports whether host is allowed by this entry. host is expected to
// be a normalized lowercase hostname without port.
func (e Entry) Matches(host string) bool {
	switch e.kind {
	case KindAll:
		return true
	case KindLiteral:
		return e.literal != "" && strings.Contains(host, e.literal)
	case KindPattern:
		return e.re != nil && e.re.MatchString(host)
	default:
		return false
	}
}

// String renders the entry in ParseEntry syntax.
func (e Entry) String() string {
	switch e.kind {
	case KindAll:
		return "all"
	case KindLiteral:
		return e.literal
	case KindPattern:
		if e.re == nil {
			return ""
		}
		return "/" + e.re.String() + "/"
	default:
		return ""
	}
}
