package runtime

import (
	"math/big"
	"sort"
)

// Environment holds the variable bindings of one calculator session.
// It is not safe for concurrent use.
type Environment struct {
	values map[string]*big.Int
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		values: make(map[string]*big.Int),
	}
}

// Get returns a copy of the value bound to name. Lookup is exact and case-sensitive.
func (e *Environment) Get(name string) (*big.Int, bool) {
	v, ok := e.values[name]
	if !ok {
		return nil, false
	}
	return CloneBigInt(v), true
}

// Set binds name to a copy of value, replacing any previous binding.
// A nil value removes the binding.
func (e *Environment) Set(name string, value *big.Int) {
	if value == nil {
		e.Unset(name)
		return
	}
	e.values[name] = CloneBigInt(value)
}

// Unset removes the binding for name, if any.
func (e *Environment) Unset(name string) {
	delete(e.values, name)
}

// Keys returns the bound names in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bindings returns every binding ordered by name.
func (e *Environment) Bindings() []Binding {
	keys := e.Keys()
	out := make([]Binding, 0, len(keys))
	for _, k := range keys {
		out = append(out, Binding{Name: k, Value: CloneBigInt(e.values[k])})
	}
	return out
}
