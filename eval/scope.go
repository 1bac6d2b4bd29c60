package eval

import "maps"

// Scope is an immutable set of variable bindings. A Scope may extend
// a parent Scope, in which case its bindings shadow the parent's.
//
// The nil *Scope is empty.
type Scope struct {
	vars   map[string]string
	parent *Scope
}

func NewScope(vars map[string]string) *Scope {
	return &Scope{vars: maps.Clone(vars)}
}

// With returns a Scope which binds vars on top of s. s is unchanged.
func (s *Scope) With(vars map[string]string) *Scope {
	if len(vars) == 0 {
		return s
	}
	return &Scope{vars: maps.Clone(vars), parent: s}
}

func (s *Scope) Lookup(name string) (string, bool) {
	for x := s; x != nil; x = x.parent {
		if v, ok := x.vars[name]; ok {
			return v, true
		}
	}
	return "", false
}
