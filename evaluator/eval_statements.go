package evaluator

import (
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/function"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/parser"
)

// evalStatements runs stmts in order against env, stopping at the first
// error or the first Break/Continue/Return signal. It is the one entry
// point every block (program top-level, If/Else branch, loop body,
// function body) funnels through, so the step counter and loop-control
// propagation stay consistent everywhere.
func (e *Evaluator) evalStatements(stmts []parser.Statement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	var result objects.Value = objects.NullValue
	for _, stmt := range stmts {
		e.steps++
		v, sig, err := e.evalStatement(stmt, env)
		if err != nil {
			return nil, signalNone, err
		}
		if sig != signalNone {
			return v, sig, nil
		}
		result = v
	}
	return result, signalNone, nil
}

func (e *Evaluator) evalStatement(stmt parser.Statement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	switch s := stmt.(type) {
	case *parser.SetStatement:
		return e.evalSetStatement(s, env)
	case *parser.FuncStatement:
		return e.evalFuncStatement(s, env)
	case *parser.IfStatement:
		return e.evalIfStatement(s, env)
	case *parser.ForStatement:
		return e.evalForStatement(s, env)
	case *parser.WhileStatement:
		return e.evalWhileStatement(s, env)
	case *parser.ReturnStatement:
		return e.evalReturnStatement(s, env)
	case *parser.BreakStatement:
		return objects.NullValue, signalBreak, nil
	case *parser.ContinueStatement:
		return objects.NullValue, signalContinue, nil
	case *parser.ImportStatement:
		return e.evalImportStatement(s, env)
	case *parser.ExportStatement:
		// Export only matters when this environment is itself the root
		// of an imported module (see evalImportStatement); as a bare
		// top-level statement it is a no-op recorded by nothing.
		return objects.NullValue, signalNone, nil
	case *parser.ExpressionStatement:
		v, err := e.evalExpression(s.Expression, env)
		if err != nil {
			return nil, signalNone, err
		}
		return v, signalNone, nil
	case *parser.BlockStatement:
		// Bare blocks come from the optimizer's If pruning; they keep the
		// pruned If's child scope.
		return e.evalStatements(s.Statements, env.Child())
	}
	return nil, signalNone, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unhandled statement type %T", stmt)
}

func (e *Evaluator) evalSetStatement(s *parser.SetStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	if s.Index == nil {
		value, err := e.evalExpression(s.Value, env)
		if err != nil {
			return nil, signalNone, err
		}
		env.SetOrUpdate(s.Name, value)
		return value, signalNone, nil
	}

	target, ok := env.Get(s.Name)
	if !ok {
		return nil, signalNone, errs.Newf(errs.UndefinedVariable, errs.PhaseRuntime, "undefined variable %q", s.Name).At(s.Pos())
	}
	index, err := e.evalExpression(s.Index, env)
	if err != nil {
		return nil, signalNone, err
	}
	value, err := e.evalExpression(s.Value, env)
	if err != nil {
		return nil, signalNone, err
	}
	if err := assignIndexed(target, index, value); err != nil {
		line, col := s.Pos()
		return nil, signalNone, err.At(line, col)
	}
	return value, signalNone, nil
}

func (e *Evaluator) evalFuncStatement(s *parser.FuncStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	fn := &function.Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
	env.Set(s.Name, fn)
	return fn, signalNone, nil
}

func (e *Evaluator) evalReturnStatement(s *parser.ReturnStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	if s.Value == nil {
		return objects.NullValue, signalReturn, nil
	}
	v, err := e.evalExpression(s.Value, env)
	if err != nil {
		return nil, signalNone, err
	}
	return v, signalReturn, nil
}

// assignIndexed mutates an Array element or Dict entry in place, per
// `Set TARGET[IDX] expr`'s requirement that TARGET resolve to a
// mutable cell.
func assignIndexed(target, index, value objects.Value) *errs.AetherError {
	switch t := target.(type) {
	case *objects.Array:
		n, ok := index.(*objects.Number)
		if !ok || !n.IsExactInteger() {
			return errs.Newf(errs.TypeError, errs.PhaseRuntime, "array index must be an integer, got %s", objects.TypeName(index))
		}
		i := int(n.Value)
		if i < 0 || i >= len(t.Elements) {
			return errs.Newf(errs.IndexOutOfBounds, errs.PhaseRuntime, "array index %d out of bounds (length %d)", i, len(t.Elements))
		}
		t.Elements[i] = value
		return nil
	case *objects.Dict:
		s, ok := index.(*objects.AetherString)
		if !ok {
			return errs.Newf(errs.TypeError, errs.PhaseRuntime, "dict key must be a string, got %s", objects.TypeName(index))
		}
		t.Set(s.Value, value)
		return nil
	}
	return errs.Newf(errs.TypeError, errs.PhaseRuntime, "cannot index-assign into %s", objects.TypeName(target))
}
