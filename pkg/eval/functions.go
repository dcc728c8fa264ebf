package eval

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrFunctionExists is returned when a name is registered twice.
	ErrFunctionExists = errors.New("eval: function already registered")
	// ErrFunctionUnknown is returned when calling a name nobody registered.
	ErrFunctionUnknown = errors.New("eval: function not registered")
)

// Function is a helper expressions can call by name.
type Function func(args ...any) (any, error)

// FunctionRegistry maps case-insensitive names to helpers. The zero value is
// ready to use.
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{}
}

// Register adds fn under name. Names are trimmed and lower-cased, so "Upper"
// and "upper" collide.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := functionKey(name)
	switch {
	case key == "":
		return fmt.Errorf("eval: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("eval: function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.funcs[key]; dup {
		return fmt.Errorf("%w: %q", ErrFunctionExists, name)
	}
	if r.funcs == nil {
		r.funcs = map[string]Function{}
	}
	r.funcs[key] = fn
	return nil
}

// Clone snapshots the registry so evaluators are unaffected by later
// registrations.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{funcs: maps.Clone(r.funcs)}
}

// Call runs the helper registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFunctionUnknown, name)
	}
	return fn(args...)
}

// Names lists the registered keys in order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

func (r *FunctionRegistry) lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[functionKey(name)]
	return fn, ok
}

func functionKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
