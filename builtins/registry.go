// Package builtins implements the name-indexed built-in registry: math,
// string, array, dict, type, I/O, and trace operations, each reachable
// from script code through a BuiltinRef. I/O entries are wrapped by the
// permission gate so a gated call fails with PermissionDenied before any
// side effect is attempted.
package builtins

import (
	"io"

	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

// Category tags which permission bit (if any) gates a built-in.
type Category string

const (
	CategoryNone       Category = ""
	CategoryFilesystem Category = "filesystem"
	CategoryNetwork    Category = "network"
	CategoryConsole    Category = "console"
)

// Permissions mirrors the engine's permission record: independent
// booleans, all false by default.
type Permissions struct {
	Filesystem bool
	Network    bool
	Console    bool
}

// Allows reports whether c is granted under p. CategoryNone is always
// allowed.
func (p Permissions) Allows(c Category) bool {
	switch c {
	case CategoryFilesystem:
		return p.Filesystem
	case CategoryNetwork:
		return p.Network
	case CategoryConsole:
		return p.Console
	default:
		return true
	}
}

// Runtime is implemented by the evaluator so built-ins can call back
// into user functions (MAP/FILTER/REDUCE), append trace entries, read
// permissions, and reach the host's input stream.
type Runtime interface {
	CallFunction(fn objects.Value, args []objects.Value) (objects.Value, *errs.AetherError)
	Permissions() Permissions
	Trace(level, category, label string, values []objects.Value)
	Stdout() io.Writer
	Stdin() io.Reader
}

// Func is the shape of every built-in implementation.
type Func func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError)

// Builtin pairs a name with its implementation and optional permission
// category.
type Builtin struct {
	Name     string
	Category Category
	Fn       Func
}

// Registry is the global name -> Builtin table, populated by each
// category file's init().
var Registry = make(map[string]*Builtin)

func register(b *Builtin) {
	Registry[b.Name] = b
}

// Lookup returns the named builtin, or ok=false if no such built-in
// exists.
func Lookup(name string) (*Builtin, bool) {
	b, ok := Registry[name]
	return b, ok
}

// Invoke runs a builtin by name, enforcing the permission gate before
// any side effect. This is the single call path the evaluator uses for
// BuiltinRef invocation.
func Invoke(rt Runtime, name string, args []objects.Value) (objects.Value, *errs.AetherError) {
	b, ok := Lookup(name)
	if !ok {
		return nil, errs.Newf(errs.UndefinedFunction, errs.PhaseRuntime, "undefined built-in %q", name)
	}
	if !rt.Permissions().Allows(b.Category) {
		return nil, errs.Newf(errs.PermissionDenied, errs.PhaseRuntime,
			"%s is disabled: %s permission not granted", name, b.Category)
	}
	return b.Fn(rt, args)
}

func argError(name string, want, got int) *errs.AetherError {
	return errs.Newf(errs.ArityMismatch, errs.PhaseRuntime, "%s expects %d argument(s), got %d", name, want, got)
}

func typeError(name, expected string, got objects.Value) *errs.AetherError {
	return errs.Newf(errs.TypeError, errs.PhaseRuntime, "%s expects %s, got %s", name, expected, objects.TypeName(got))
}
