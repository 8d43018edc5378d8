// Package environment implements Aether's lexically-scoped variable
// binding: a mapping keyed by name with a parent link. Scopes are shared
// by multiple holders (a function closure and the currently-executing
// block both refer to the same outer scope), so interior mutability is
// required; a child always points at a pre-existing parent, so the chain
// is never cyclic.
package environment

import "github.com/aetherscript/aether/objects"

// Environment is one link in the scope chain.
type Environment struct {
	vars   map[string]objects.Value
	Parent *Environment
}

// New creates a scope with the given parent, or a root scope if parent
// is nil.
func New(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]objects.Value), Parent: parent}
}

// Set binds name in the current scope, shadowing any outer binding of
// the same name. This implements `Set NAME expr` when NAME is not
// already owned by an enclosing scope.
func (e *Environment) Set(name string, value objects.Value) {
	e.vars[name] = value
}

// Get walks the parent chain looking for name, returning the value and
// whether it was found.
func (e *Environment) Get(name string) (objects.Value, bool) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Update finds the scope that owns name and overwrites its binding,
// returning whether a binding was found anywhere in the chain. This
// implements `Set NAME expr` when NAME already exists in an enclosing
// scope.
func (e *Environment) Update(name string, value objects.Value) bool {
	for env := e; env != nil; env = env.Parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return true
		}
	}
	return false
}

// SetOrUpdate implements the full `Set NAME expr` rule in one call:
// update the owning scope if one exists, otherwise bind fresh in the
// current scope.
func (e *Environment) SetOrUpdate(name string, value objects.Value) {
	if !e.Update(name, value) {
		e.Set(name, value)
	}
}

// Keys returns the names bound directly in this scope, not its parents.
func (e *Environment) Keys() []string {
	out := make([]string, 0, len(e.vars))
	for k := range e.vars {
		out = append(out, k)
	}
	return out
}

// Child creates a fresh scope nested under e, used on block, loop
// iteration, and function-call entry.
func (e *Environment) Child() *Environment {
	return New(e)
}
