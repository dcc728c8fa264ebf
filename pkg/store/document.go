package store

import (
	"fmt"
	"strconv"
)

const (
	// appendToken addresses the slot past the end of an array.
	appendToken = "-"
	// maxArrayGap bounds how far past the end an index write may pad.
	maxArrayGap = 1 << 16
)

// lookup resolves tokens against node. Missing members, out of range
// indexes and traversal through scalars all report absent.
func lookup(node any, tokens []string) (any, bool) {
	current := node
	for _, token := range tokens {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[token]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := index(token)
			if !ok || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setIn returns a copy of node with value stored at tokens. Containers along
// the path are copied and everything else is shared, so untouched siblings
// keep their identity. Missing intermediate members become objects.
func setIn(node any, tokens []string, value any) (any, error) {
	if len(tokens) == 0 {
		return value, nil
	}
	token, rest := tokens[0], tokens[1:]
	switch typed := node.(type) {
	case nil:
		child, err := setIn(nil, rest, value)
		if err != nil {
			return nil, err
		}
		return map[string]any{token: child}, nil
	case map[string]any:
		child, err := setIn(typed[token], rest, value)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(typed)+1)
		for key, existing := range typed {
			out[key] = existing
		}
		out[token] = child
		return out, nil
	case []any:
		idx := len(typed)
		if token != appendToken {
			parsed, ok := index(token)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not an array index", ErrConflict, token)
			}
			idx = parsed
		}
		if idx-len(typed) > maxArrayGap {
			return nil, fmt.Errorf("%w: index %d is too far past the end of the array", ErrConflict, idx)
		}
		size := len(typed)
		if idx >= size {
			size = idx + 1
		}
		out := make([]any, size)
		copy(out, typed)
		var existing any
		if idx < len(typed) {
			existing = typed[idx]
		}
		child, err := setIn(existing, rest, value)
		if err != nil {
			return nil, err
		}
		out[idx] = child
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot set %q inside %T", ErrConflict, token, node)
	}
}

// deleteIn returns a copy of node without the member at tokens and whether
// anything was removed. Array members are spliced out.
func deleteIn(node any, tokens []string) (any, bool) {
	if len(tokens) == 0 {
		return nil, node != nil
	}
	token, rest := tokens[0], tokens[1:]
	switch typed := node.(type) {
	case map[string]any:
		existing, ok := typed[token]
		if !ok {
			return node, false
		}
		var child any
		if len(rest) > 0 {
			var changed bool
			child, changed = deleteIn(existing, rest)
			if !changed {
				return node, false
			}
		}
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = value
		}
		if len(rest) == 0 {
			delete(out, token)
		} else {
			out[token] = child
		}
		return out, true
	case []any:
		idx, ok := index(token)
		if !ok || idx >= len(typed) {
			return node, false
		}
		if len(rest) == 0 {
			out := make([]any, 0, len(typed)-1)
			out = append(out, typed[:idx]...)
			out = append(out, typed[idx+1:]...)
			return out, true
		}
		child, changed := deleteIn(typed[idx], rest)
		if !changed {
			return node, false
		}
		out := make([]any, len(typed))
		copy(out, typed)
		out[idx] = child
		return out, true
	default:
		return node, false
	}
}

// index parses an RFC 6901 array index: digits only, no leading zeros.
func index(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return idx, true
}
