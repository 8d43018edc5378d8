package evaluator

import (
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/parser"
)

// evalForStatement iterates an Array in index order or a Dict in its
// insertion-order view, rebinding Name in a fresh child scope each
// iteration and honoring Break/Continue.
func (e *Evaluator) evalForStatement(s *parser.ForStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	iterable, err := e.evalExpression(s.Iterable, env)
	if err != nil {
		return nil, signalNone, err
	}

	var items []objects.Value
	switch v := iterable.(type) {
	case *objects.Array:
		items = v.Elements
	case *objects.Dict:
		for _, k := range v.Keys() {
			items = append(items, objects.NewString(k))
		}
	default:
		line, col := s.Pos()
		return nil, signalNone, errs.Newf(errs.TypeError, errs.PhaseRuntime,
			"For ... In requires an array or dict, got %s", objects.TypeName(iterable)).At(line, col)
	}

	var result objects.Value = objects.NullValue
	for _, item := range items {
		iterEnv := env.Child()
		iterEnv.Set(s.Name, item)
		v, sig, err := e.evalStatements(s.Body.Statements, iterEnv)
		if err != nil {
			return nil, signalNone, err
		}
		switch sig {
		case signalBreak:
			return result, signalNone, nil
		case signalContinue:
			continue
		case signalReturn:
			return v, signalReturn, nil
		}
		result = v
	}
	return result, signalNone, nil
}

// evalWhileStatement re-evaluates Condition before each iteration, each
// iteration running in a fresh child scope, same loop-control semantics
// as For.
func (e *Evaluator) evalWhileStatement(s *parser.WhileStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	var result objects.Value = objects.NullValue
	for {
		cond, err := e.evalExpression(s.Condition, env)
		if err != nil {
			return nil, signalNone, err
		}
		if !cond.Truthy() {
			return result, signalNone, nil
		}

		iterEnv := env.Child()
		v, sig, err := e.evalStatements(s.Body.Statements, iterEnv)
		if err != nil {
			return nil, signalNone, err
		}
		switch sig {
		case signalBreak:
			return result, signalNone, nil
		case signalContinue:
			continue
		case signalReturn:
			return v, signalReturn, nil
		}
		result = v
	}
}
