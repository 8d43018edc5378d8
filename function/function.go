// Package function holds the user-defined Function value. It is its own
// package, separate from objects, so that objects does not need to
// depend on environment (which would otherwise create an import cycle
// once environment starts holding Function values).
package function

import (
	"fmt"
	"strings"

	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/parser"
)

// Function is a user-defined function: its parameter names, its body
// statements, and the environment active at the point of definition.
// Capturing Env directly (not a copy) is what makes closures close over
// the enclosing scope "by handle," per the data model's closure rule.
type Function struct {
	Name   string
	Params []string
	Body   *parser.BlockStatement
	Env    *environment.Environment
}

func (f *Function) Type() objects.Type { return objects.FunctionType }

func (f *Function) String() string {
	return fmt.Sprintf("<function %s(%s)>", f.Name, strings.Join(f.Params, ", "))
}

func (f *Function) Truthy() bool { return true }

// Signature renders the call-frame form used in error reports and call
// stacks: "NAME(P1, P2)".
func (f *Function) Signature() string {
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(f.Params, ", "))
}
