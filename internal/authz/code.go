package authz

import "strings"

// Code is a permission code gating a menu entry, button or API call.
//
// Two textual dialects coexist in stored data and call sites: the
// hierarchical colon form ("system:user:edit:button") and the legacy dot
// form ("button.user.edit"). Both denote the same permission when their
// canonical forms are equal, so equality is always decided on Canonical.
type Code string

// Canonical returns the colon-form spelling of the code. Dots are
// transliterated to colons and a leading separator produced by the
// transliteration is dropped.
func (c Code) Canonical() string {
	s := strings.ReplaceAll(string(c), ".", ":")
	return strings.TrimPrefix(s, ":")
}

// Equivalent reports whether two codes denote the same permission in either
// dialect.
func (c Code) Equivalent(other Code) bool {
	return c == other || c.Canonical() == other.Canonical()
}

// Set is a collection of granted permission codes indexed by canonical form.
type Set struct {
	raw       map[Code]struct{}
	canonical map[string]struct{}
}

// NewSet builds a Set from the codes granted to a session. Empty strings are
// skipped.
func NewSet(codes ...string) Set {
	s := Set{
		raw:       make(map[Code]struct{}, len(codes)),
		canonical: make(map[string]struct{}, len(codes)),
	}
	for _, raw := range codes {
		code := Code(strings.TrimSpace(raw))
		if code == "" {
			continue
		}
		s.raw[code] = struct{}{}
		s.canonical[code.Canonical()] = struct{}{}
	}
	return s
}

// Contains reports whether the set grants the code, verbatim or through its
// dialect equivalent. Safe on the zero Set.
func (s Set) Contains(code Code) bool {
	if len(s.raw) == 0 {
		return false
	}
	if _, ok := s.raw[code]; ok {
		return true
	}
	_, ok := s.canonical[code.Canonical()]
	return ok
}

// Len returns the number of granted codes.
func (s Set) Len() int {
	return len(s.raw)
}

// Codes returns the granted codes as raw strings, for serialization.
func (s Set) Codes() []string {
	out := make([]string, 0, len(s.raw))
	for code := range s.raw {
		out = append(out, string(code))
	}
	return out
}
