package evaluator

import (
	"math/big"

	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/function"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/ops"
	"github.com/aetherscript/aether/parser"
)

// builtinLookup is a thin wrapper so this file only names the builtins
// package once for both identifier-resolution call sites below.
func builtinLookup(name string) (*builtins.Builtin, bool) { return builtins.Lookup(name) }

// evalExpression is the single dispatch point for every expression node;
// operand evaluation is strictly left-to-right wherever an expression
// has more than one operand, per the concurrency model's ordering rule.
func (e *Evaluator) evalExpression(expr parser.Expression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	switch ex := expr.(type) {
	case *parser.IntegerLiteral:
		v, parseErr := objects.ParseIntegerLiteral(ex.Digits)
		if parseErr != nil {
			line, col := ex.Pos()
			return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "%v", parseErr).At(line, col)
		}
		return v, nil
	case *parser.FloatLiteral:
		return objects.NewNumber(ex.Value), nil
	case *parser.FractionLiteral:
		num, ok1 := new(big.Int).SetString(ex.Numerator, 10)
		den, ok2 := new(big.Int).SetString(ex.Denominator, 10)
		if !ok1 || !ok2 {
			line, col := ex.Pos()
			return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "invalid folded fraction literal %s/%s", ex.Numerator, ex.Denominator).At(line, col)
		}
		return objects.NewFraction(new(big.Rat).SetFrac(num, den)), nil
	case *parser.StringLiteral:
		return objects.NewString(ex.Value), nil
	case *parser.BooleanLiteral:
		return objects.NewBoolean(ex.Value), nil
	case *parser.NullLiteral:
		return objects.NullValue, nil
	case *parser.ArrayLiteral:
		return e.evalArrayLiteral(ex, env)
	case *parser.DictLiteral:
		return e.evalDictLiteral(ex, env)
	case *parser.Identifier:
		return e.evalIdentifier(ex, env)
	case *parser.IndexExpression:
		return e.evalIndexExpression(ex, env)
	case *parser.FieldExpression:
		return e.evalFieldExpression(ex, env)
	case *parser.CallExpression:
		return e.evalCallExpression(ex, env)
	case *parser.UnaryExpression:
		return e.evalUnaryExpression(ex, env)
	case *parser.BinaryExpression:
		return e.evalBinaryExpression(ex, env)
	case *parser.TernaryExpression:
		return e.evalTernaryExpression(ex, env)
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unhandled expression type %T", expr)
}

func (e *Evaluator) evalArrayLiteral(ex *parser.ArrayLiteral, env *environment.Environment) (objects.Value, *errs.AetherError) {
	elems := make([]objects.Value, len(ex.Elements))
	for i, elemExpr := range ex.Elements {
		v, err := e.evalExpression(elemExpr, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return objects.NewArray(elems), nil
}

func (e *Evaluator) evalDictLiteral(ex *parser.DictLiteral, env *environment.Environment) (objects.Value, *errs.AetherError) {
	d := objects.NewDict()
	for i, keyExpr := range ex.Keys {
		keyVal, err := e.evalExpression(keyExpr, env)
		if err != nil {
			return nil, err
		}
		key, ok := keyVal.(*objects.AetherString)
		if !ok {
			line, col := keyExpr.Pos()
			return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "dict key must be a string, got %s", objects.TypeName(keyVal)).At(line, col)
		}
		val, err := e.evalExpression(ex.Values[i], env)
		if err != nil {
			return nil, err
		}
		d.Set(key.Value, val)
	}
	return d, nil
}

func (e *Evaluator) evalIdentifier(ex *parser.Identifier, env *environment.Environment) (objects.Value, *errs.AetherError) {
	if v, ok := env.Get(ex.Name); ok {
		return v, nil
	}
	if _, ok := builtinLookup(ex.Name); ok {
		return objects.NewBuiltinRef(ex.Name), nil
	}
	line, col := ex.Pos()
	return nil, errs.Newf(errs.UndefinedVariable, errs.PhaseRuntime, "undefined variable %q", ex.Name).At(line, col)
}

func (e *Evaluator) evalIndexExpression(ex *parser.IndexExpression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	left, err := e.evalExpression(ex.Left, env)
	if err != nil {
		return nil, err
	}
	index, err := e.evalExpression(ex.Index, env)
	if err != nil {
		return nil, err
	}
	line, col := ex.Pos()
	switch target := left.(type) {
	case *objects.Array:
		n, ok := index.(*objects.Number)
		if !ok || !n.IsExactInteger() {
			return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "array index must be an integer, got %s", objects.TypeName(index)).At(line, col)
		}
		i := int(n.Value)
		if i < 0 || i >= len(target.Elements) {
			return nil, errs.Newf(errs.IndexOutOfBounds, errs.PhaseRuntime, "array index %d out of bounds (length %d)", i, len(target.Elements)).At(line, col)
		}
		return target.Elements[i], nil
	case *objects.Dict:
		s, ok := index.(*objects.AetherString)
		if !ok {
			return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "dict key must be a string, got %s", objects.TypeName(index)).At(line, col)
		}
		v, found := target.Get(s.Value)
		if !found {
			return nil, errs.Newf(errs.KeyNotFound, errs.PhaseRuntime, "key %q not found", s.Value).At(line, col)
		}
		return v, nil
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "cannot index into %s", objects.TypeName(left)).At(line, col)
}

// evalFieldExpression is sugar for left["name"] over a Dict.
func (e *Evaluator) evalFieldExpression(ex *parser.FieldExpression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	left, err := e.evalExpression(ex.Left, env)
	if err != nil {
		return nil, err
	}
	line, col := ex.Pos()
	dict, ok := left.(*objects.Dict)
	if !ok {
		return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "cannot access field %q on %s", ex.Name, objects.TypeName(left)).At(line, col)
	}
	v, found := dict.Get(ex.Name)
	if !found {
		return nil, errs.Newf(errs.KeyNotFound, errs.PhaseRuntime, "key %q not found", ex.Name).At(line, col)
	}
	return v, nil
}

// evalCallExpression evaluates the callee and arguments left-to-right,
// then dispatches through the unified call protocol shared with
// higher-order built-ins.
func (e *Evaluator) evalCallExpression(ex *parser.CallExpression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	line, col := ex.Pos()

	// An identifier callee is looked up in the environment first; a name
	// bound nowhere but registered as a built-in (e.g. `LEN(x)`) becomes
	// a built-in reference instead of an UndefinedVariable error.
	var callee objects.Value
	if ident, ok := ex.Callee.(*parser.Identifier); ok {
		if v, found := env.Get(ident.Name); found {
			callee = v
		} else if _, found := builtinLookup(ident.Name); found {
			callee = objects.NewBuiltinRef(ident.Name)
		} else {
			return nil, errs.Newf(errs.UndefinedVariable, errs.PhaseRuntime, "undefined variable %q", ident.Name).At(line, col)
		}
	} else {
		v, err := e.evalExpression(ex.Callee, env)
		if err != nil {
			return nil, err
		}
		callee = v
	}

	args := make([]objects.Value, len(ex.Args))
	for i, argExpr := range ex.Args {
		v, err := e.evalExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch callee := callee.(type) {
	case *objects.BuiltinRef:
		return e.callBuiltin(callee.Name, args, line, col)
	case *function.Function:
		return e.callUserFunction(callee, args, line, col)
	}
	return nil, errs.Newf(errs.UndefinedFunction, errs.PhaseRuntime, "%s is not callable", objects.TypeName(callee)).At(line, col)
}

func (e *Evaluator) evalUnaryExpression(ex *parser.UnaryExpression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	right, err := e.evalExpression(ex.Right, env)
	if err != nil {
		return nil, err
	}
	v, opErr := ops.Unary(ex.Operator, right)
	if opErr != nil {
		line, col := ex.Pos()
		return nil, opErr.At(line, col)
	}
	return v, nil
}

// evalBinaryExpression evaluates Left first, then Right, except for
// && and || which short-circuit without evaluating Right when the
// first operand already determines the result.
func (e *Evaluator) evalBinaryExpression(ex *parser.BinaryExpression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	left, err := e.evalExpression(ex.Left, env)
	if err != nil {
		return nil, err
	}

	switch ex.Operator {
	case "&&":
		if !left.Truthy() {
			return left, nil
		}
		return e.evalExpression(ex.Right, env)
	case "||":
		if left.Truthy() {
			return left, nil
		}
		return e.evalExpression(ex.Right, env)
	}

	right, err := e.evalExpression(ex.Right, env)
	if err != nil {
		return nil, err
	}
	v, opErr := ops.Binary(ex.Operator, left, right)
	if opErr != nil {
		line, col := ex.Pos()
		return nil, opErr.At(line, col)
	}
	return v, nil
}

func (e *Evaluator) evalTernaryExpression(ex *parser.TernaryExpression, env *environment.Environment) (objects.Value, *errs.AetherError) {
	cond, err := e.evalExpression(ex.Condition, env)
	if err != nil {
		return nil, err
	}
	if cond.Truthy() {
		return e.evalExpression(ex.Then, env)
	}
	return e.evalExpression(ex.Else, env)
}
