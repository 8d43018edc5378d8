package evaluator

import (
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/parser"
)

// evalIfStatement evaluates the condition and recurses into exactly one
// branch, each in a fresh child scope so bindings made inside don't leak
// into the enclosing block.
func (e *Evaluator) evalIfStatement(s *parser.IfStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	cond, err := e.evalExpression(s.Condition, env)
	if err != nil {
		return nil, signalNone, err
	}
	if cond.Truthy() {
		return e.evalStatements(s.Then.Statements, env.Child())
	}
	switch elseBranch := s.Else.(type) {
	case nil:
		return objects.NullValue, signalNone, nil
	case *parser.BlockStatement:
		return e.evalStatements(elseBranch.Statements, env.Child())
	case *parser.IfStatement:
		return e.evalIfStatement(elseBranch, env)
	}
	return objects.NullValue, signalNone, nil
}
