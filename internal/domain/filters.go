package domain

import (
	"fmt"
	"strings"
)

// Read filter constants.
const (
	ReadFilterRead   = "read"
	ReadFilterUnread = "unread"
)

// Filter holds filter criteria for a snapshot. The zero value matches
// everything.
type Filter struct {
	Kind       Kind
	ReadFilter string // "read", "unread", or "" (no filter)
	Query      string // case-insensitive substring of title or message
}

// ParseFilter builds a filter from loose terms such as "unread", "error" or
// "refill": read states and kinds are recognized, anything else is joined
// into the search query.
func ParseFilter(terms []string) (Filter, error) {
	var (
		f     Filter
		query []string
	)
	for _, term := range terms {
		lower := strings.ToLower(strings.TrimSpace(term))
		switch {
		case lower == "":
		case lower == ReadFilterRead || lower == ReadFilterUnread:
			if f.ReadFilter != "" && f.ReadFilter != lower {
				return Filter{}, fmt.Errorf("conflicting read filters: %s and %s", f.ReadFilter, lower)
			}
			f.ReadFilter = lower
		case Kind(lower).IsValid():
			if f.Kind != "" && f.Kind != Kind(lower) {
				return Filter{}, fmt.Errorf("conflicting kinds: %s and %s", f.Kind, lower)
			}
			f.Kind = Kind(lower)
		default:
			query = append(query, term)
		}
	}
	f.Query = strings.Join(query, " ")
	return f, nil
}

// IsEmpty returns true if the filter has no criteria set.
func (f Filter) IsEmpty() bool {
	return f.Kind == "" && f.ReadFilter == "" && f.Query == ""
}

// Matches reports whether n satisfies every criterion of f.
func (f Filter) Matches(n Notification) bool {
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	switch f.ReadFilter {
	case ReadFilterRead:
		if !n.Read {
			return false
		}
	case ReadFilterUnread:
		if n.Read {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Message), q) {
			return false
		}
	}
	return true
}

// Filter returns the notifications matching f, keeping snapshot order.
func (s Snapshot) Filter(f Filter) Snapshot {
	if f.IsEmpty() {
		return s
	}
	out := make(Snapshot, 0, len(s))
	for _, n := range s {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}
