package store

import (
	"fmt"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// Split parses ptr into its unescaped reference tokens. The empty pointer
// addresses the whole document and yields no tokens.
func Split(ptr string) ([]string, error) {
	parsed, err := jsonpointer.New(ptr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPointer, err)
	}
	return parsed.DecodedTokens(), nil
}

// Join escapes tokens and assembles them into a pointer.
func Join(tokens ...string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, token := range tokens {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(token))
	}
	return b.String()
}

// Overlaps reports whether one pointer is an ancestor of, a descendant of,
// or equal to the other. Invalid pointers never overlap.
func Overlaps(a, b string) bool {
	ta, err := Split(a)
	if err != nil {
		return false
	}
	tb, err := Split(b)
	if err != nil {
		return false
	}
	return overlaps(ta, tb)
}

func overlaps(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
