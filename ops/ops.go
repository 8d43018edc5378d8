// Package ops implements the arithmetic, comparison, and concatenation
// dispatch shared verbatim by the optimizer's constant folder and the
// evaluator's runtime binary/unary evaluation, so that folding a
// constant expression and evaluating it at runtime produce bit-for-bit
// identical results.
package ops

import (
	"math"
	"math/big"

	"github.com/spf13/cast"

	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

// Binary evaluates `left OP right` for one of the language's binary
// operators: + - * / % == != < <= > >= && ||. && and || are expected to
// have already short-circuited by the caller (evaluator/optimizer):
// Binary is only called once both operands are known, and for &&/||
// simply returns right (the last-evaluated operand), matching the
// language-level "return last operand, not a coerced boolean" rule.
func Binary(op string, left, right objects.Value) (objects.Value, *errs.AetherError) {
	switch op {
	case "+":
		return add(left, right)
	case "-", "*", "/", "%":
		return arith(op, left, right)
	case "==":
		return objects.NewBoolean(objects.Equal(left, right)), nil
	case "!=":
		return objects.NewBoolean(!objects.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return compare(op, left, right)
	case "&&", "||":
		return right, nil
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unknown binary operator %q", op)
}

// Unary evaluates prefix `-` and `!`.
func Unary(op string, right objects.Value) (objects.Value, *errs.AetherError) {
	switch op {
	case "-":
		switch v := right.(type) {
		case *objects.Number:
			return objects.NewNumber(-v.Value), nil
		case *objects.Fraction:
			return objects.NewFraction(new(big.Rat).Neg(v.Value)), nil
		}
		return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "cannot negate %s", objects.TypeName(right))
	case "!":
		return objects.NewBoolean(!right.Truthy()), nil
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unknown unary operator %q", op)
}

// add implements `+`: numeric addition, or string concatenation when
// either operand is a String. The non-string operand is coerced via its
// own String() form, the same routine TO_STRING uses, so non-integer
// floats concatenate exactly as they print.
func add(left, right objects.Value) (objects.Value, *errs.AetherError) {
	if ls, ok := left.(*objects.AetherString); ok {
		return objects.NewString(ls.Value + right.String()), nil
	}
	if rs, ok := right.(*objects.AetherString); ok {
		return objects.NewString(left.String() + rs.Value), nil
	}
	return arith("+", left, right)
}

// arith dispatches +, -, *, /, % over the Number/Fraction numeric tower.
// Two Numbers use float arithmetic (arithFloat), which promotes integral
// products of magnitude 1e15 or more to Fraction. Any pair involving a
// Fraction is computed exactly as big.Rat values (toFraction) and the
// result passed through demote, which returns a Number whenever the
// result fits one exactly and compactly.
func arith(op string, left, right objects.Value) (objects.Value, *errs.AetherError) {
	lNum, lOK := left.(*objects.Number)
	rNum, rOK := right.(*objects.Number)
	if lOK && rOK {
		return arithFloat(op, lNum.Value, rNum.Value)
	}

	lFrac, lIsFrac := toFraction(left)
	rFrac, rIsFrac := toFraction(right)
	if !lIsFrac || !rIsFrac {
		return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime,
			"operator %q requires numeric operands, got %s and %s", op, objects.TypeName(left), objects.TypeName(right))
	}
	return arithFraction(op, lFrac, rFrac)
}

// toFraction promotes a Number to a Fraction (exact only when the Number
// is itself an exact integer; non-integer Numbers promote via their
// exact binary value, which big.Rat.SetFloat64 already does precisely).
func toFraction(v objects.Value) (*big.Rat, bool) {
	switch n := v.(type) {
	case *objects.Fraction:
		return n.Value, true
	case *objects.Number:
		r := new(big.Rat).SetFloat64(n.Value)
		if r == nil {
			return nil, false
		}
		return r, true
	}
	return nil, false
}

func arithFloat(op string, a, b float64) (objects.Value, *errs.AetherError) {
	switch op {
	case "+":
		return objects.NewNumber(a + b), nil
	case "-":
		return objects.NewNumber(a - b), nil
	case "*":
		result := a * b
		// Promote to Fraction if the float multiply loses integer
		// precision beyond what a 64-bit float can represent exactly.
		if isIntegral(a) && isIntegral(b) && math.Abs(result) >= 1e15 {
			bi := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(b)))
			return objects.NewFractionFromInt(bi), nil
		}
		return objects.NewNumber(result), nil
	case "/":
		if b == 0 {
			return nil, errs.New(errs.DivisionByZero, errs.PhaseRuntime, "division by zero")
		}
		ra := new(big.Rat).SetFloat64(a)
		rb := new(big.Rat).SetFloat64(b)
		if ra != nil && rb != nil {
			q := new(big.Rat).Quo(ra, rb)
			if q.IsInt() && isIntegral(a) && isIntegral(b) {
				return objects.NewNumber(a / b), nil
			}
		}
		return objects.NewNumber(a / b), nil
	case "%":
		if b == 0 {
			return nil, errs.New(errs.DivisionByZero, errs.PhaseRuntime, "division by zero")
		}
		return objects.NewNumber(math.Mod(a, b)), nil
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unknown arithmetic operator %q", op)
}

func arithFraction(op string, a, b *big.Rat) (objects.Value, *errs.AetherError) {
	switch op {
	case "+":
		return demote(new(big.Rat).Add(a, b)), nil
	case "-":
		return demote(new(big.Rat).Sub(a, b)), nil
	case "*":
		return demote(new(big.Rat).Mul(a, b)), nil
	case "/":
		if b.Sign() == 0 {
			return nil, errs.New(errs.DivisionByZero, errs.PhaseRuntime, "division by zero")
		}
		return demote(new(big.Rat).Quo(a, b)), nil
	case "%":
		if b.Sign() == 0 {
			return nil, errs.New(errs.DivisionByZero, errs.PhaseRuntime, "division by zero")
		}
		if !a.IsInt() || !b.IsInt() {
			return nil, errs.New(errs.TypeError, errs.PhaseRuntime, "%% requires integer operands")
		}
		m := new(big.Int).Mod(a.Num(), b.Num())
		return demote(new(big.Rat).SetInt(m)), nil
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unknown arithmetic operator %q", op)
}

// demote returns a Fraction unless the value fits exactly and compactly
// in a float64, in which case it returns a Number: mixed arithmetic
// whose result no longer needs arbitrary precision demotes back down.
func demote(r *big.Rat) objects.Value {
	if r.IsInt() && len(r.Num().String()) < 16 {
		f, _ := r.Float64()
		return objects.NewNumber(f)
	}
	if !r.IsInt() {
		f, exact := r.Float64()
		if exact {
			return objects.NewNumber(f)
		}
	}
	return objects.NewFraction(r)
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0)
}

func compare(op string, left, right objects.Value) (objects.Value, *errs.AetherError) {
	c, ok := objects.Compare(left, right)
	if !ok {
		return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime,
			"cannot compare %s and %s", objects.TypeName(left), objects.TypeName(right))
	}
	switch op {
	case "<":
		return objects.NewBoolean(c < 0), nil
	case "<=":
		return objects.NewBoolean(c <= 0), nil
	case ">":
		return objects.NewBoolean(c > 0), nil
	case ">=":
		return objects.NewBoolean(c >= 0), nil
	}
	return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "unknown comparison operator %q", op)
}

// FormatFraction renders a Fraction the way TO_STRING and string
// concatenation expect (delegates to objects.Fraction.String, kept here
// so callers needing only formatting needn't import big directly).
func FormatFraction(f *objects.Fraction) string { return f.String() }

// ToNumberValue parses a string into a Number or Fraction per the
// numeric-tower rule, used by TO_NUMBER.
func ToNumberValue(s string) (objects.Value, *errs.AetherError) {
	if isIntegerLiteral(s) {
		v, err := objects.ParseIntegerLiteral(s)
		if err == nil {
			return v, nil
		}
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return nil, errs.Newf(errs.TypeError, errs.PhaseRuntime, "cannot convert %q to a number", s)
	}
	return objects.NewNumber(f), nil
}

// isIntegerLiteral reports whether s is an optionally-signed run of
// decimal digits with no fractional part.
func isIntegerLiteral(s string) bool {
	start := 0
	if len(s) > 0 && s[0] == '-' {
		start = 1
	}
	if start >= len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
