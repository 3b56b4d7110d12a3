package tree

import (
	"strings"

	"github.com/roach88/treeq/internal/qerr"
)

// SearchMode selects which relationships to a reference entity match.
// Flags combine with bitwise OR.
type SearchMode uint8

const (
	// SearchSelf matches the reference row itself.
	SearchSelf SearchMode = 1 << iota

	// SearchAncestors matches rows for which the reference is an ancestor.
	SearchAncestors

	// SearchDescendants matches rows for which the reference is a descendant.
	SearchDescendants

	// searchReserved is unused; kept so SearchEverywhere stays 15.
	searchReserved
)

// SearchEverywhere sets every flag, including the reserved bit.
const SearchEverywhere = SearchSelf | SearchAncestors | SearchDescendants | searchReserved

// knownFlags are the flags that produce predicates, in emission order.
var knownFlags = []SearchMode{SearchSelf, SearchAncestors, SearchDescendants}

var modeNames = map[SearchMode]string{
	SearchSelf:        "self",
	SearchAncestors:   "ancestors",
	SearchDescendants: "descendants",
}

// Has reports whether every bit of flag is set in m.
func (m SearchMode) Has(flag SearchMode) bool {
	return m&flag == flag
}

// String renders the set flags as a comma-separated list.
func (m SearchMode) String() string {
	if m == SearchEverywhere {
		return "everywhere"
	}
	var parts []string
	for _, f := range knownFlags {
		if m.Has(f) {
			parts = append(parts, modeNames[f])
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ParseSearchMode parses a comma- or pipe-separated list of flag names
// ("self", "ancestors", "descendants", "everywhere"). An empty string is
// SearchEverywhere.
func ParseSearchMode(s string) (SearchMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SearchEverywhere, nil
	}

	var m SearchMode
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "self", "same":
			m |= SearchSelf
		case "ancestors", "parents":
			m |= SearchAncestors
		case "descendants", "children":
			m |= SearchDescendants
		case "everywhere", "all":
			m |= SearchEverywhere
		default:
			return 0, qerr.InvalidArgument("unknown search mode %q", part)
		}
	}
	return m, nil
}

// Combine is the operator used to fold per-entity predicates.
type Combine string

const (
	CombineOr  Combine = "or"
	CombineAnd Combine = "and"
)

// Validate returns INVALID_ARGUMENT unless c is CombineAnd or CombineOr.
func (c Combine) Validate() error {
	switch c {
	case CombineAnd, CombineOr:
		return nil
	default:
		return qerr.InvalidArgument("unknown condition type %q", string(c))
	}
}

// ParseCombine parses "and" or "or" case-insensitively; "" means CombineOr.
func ParseCombine(s string) (Combine, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CombineOr, nil
	}
	c := Combine(s)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
