package scope

import (
	"fmt"

	"github.com/2b3o4o/kaleidoscope/internal/compiler/ir"
)

// Scope maps in-scope variable names to their IR value handles. One
// scope lives for exactly one function body's lowering: it is built
// fresh from the function's parameters and discarded afterwards, so no
// binding leaks between functions.
type Scope struct {
	Values map[string]ir.Value
	Name   string
}

func NewScope(name string) *Scope {
	return &Scope{
		Values: make(map[string]ir.Value),
		Name:   name,
	}
}

// Define binds a name in this scope. It returns an error if the name
// is already bound.
func (s *Scope) Define(name string, val ir.Value) error {
	if _, exists := s.Values[name]; exists {
		return fmt.Errorf("symbol '%s' already declared in this scope", name)
	}
	s.Values[name] = val
	return nil
}

func (s *Scope) Lookup(name string) (ir.Value, bool) {
	val, ok := s.Values[name]
	return val, ok
}
