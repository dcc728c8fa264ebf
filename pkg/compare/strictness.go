package compare

import (
	"fmt"
	"strings"
)

// Strictness names an equality policy.
type Strictness string

const (
	None                         Strictness = "none"
	IsEqual                      Strictness = "isEqual"
	IsEqualRemoveUndefined       Strictness = "isEqualRemoveUndefined"
	IsEqualRemoveUndefinedSorted Strictness = "isEqualRemoveUndefinedSorted"
	Strict                       Strictness = "strict"
)

var builtin = []Strictness{None, IsEqual, IsEqualRemoveUndefined, IsEqualRemoveUndefinedSorted, Strict}

// Builtin lists the built-in policies from loosest to strictest.
func Builtin() []Strictness {
	out := make([]Strictness, len(builtin))
	copy(out, builtin)
	return out
}

// IsBuiltin reports whether s is one of the built-in policies.
func (s Strictness) IsBuiltin() bool {
	return s.Rank() >= 0
}

// Rank returns the position of s in the permissiveness order, or -1 for
// custom tags.
func (s Strictness) Rank() int {
	for i, candidate := range builtin {
		if candidate == s {
			return i
		}
	}
	return -1
}

func (s Strictness) String() string {
	return string(s)
}

// ParseStrictness matches raw against the built-in names case-insensitively.
// Unknown non-empty names are returned as custom tags.
func ParseStrictness(raw string) (Strictness, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("compare: strictness must not be empty")
	}
	for _, candidate := range builtin {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return Strictness(trimmed), nil
}
