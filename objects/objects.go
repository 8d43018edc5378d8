// Package objects defines the tagged-variant value model shared by every
// stage of the Aether pipeline: the optimizer folds literals of these
// types, the evaluator produces and consumes them, and the built-in
// registry accepts and returns them. A Value is immutable by construction
// except that Array and Dict cells permit in-place element update through
// indexed assignment.
package objects

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Type identifies which case of Value a concrete instance implements.
type Type string

const (
	NumberType   Type = "number"
	FractionType Type = "fraction"
	StringType   Type = "string"
	BooleanType  Type = "boolean"
	NullType     Type = "null"
	ArrayType    Type = "array"
	DictType     Type = "dict"
	FunctionType Type = "function"
	BuiltinType  Type = "builtin"
)

// Value is implemented by every case of the Aether data model.
type Value interface {
	Type() Type
	// String returns the value's display form, used by TO_STRING, string
	// concatenation, and PRINT/PRINTLN.
	String() string
	// Truthy reports whether the value is considered true in a boolean
	// context (If/While conditions, unary !, short-circuit operators).
	Truthy() bool
}

// maxExactDigits is the decimal-digit threshold from the numeric-tower
// rule: integer literals at or above this many digits evaluate in the
// Fraction domain rather than Number.
const maxExactDigits = 16

// Number is a 64-bit IEEE-754 float, used for operands whose magnitude and
// integrality stay below the Fraction promotion threshold.
type Number struct {
	Value float64
}

func NewNumber(v float64) *Number { return &Number{Value: v} }

func (n *Number) Type() Type { return NumberType }

func (n *Number) String() string {
	if n.Value == math.Trunc(n.Value) && !math.IsInf(n.Value, 0) && math.Abs(n.Value) < 1e15 {
		return strconv.FormatInt(int64(n.Value), 10)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Number) Truthy() bool { return n.Value != 0 }

// IsExactInteger reports whether the Number holds a mathematically exact
// integer value (used when deciding whether to promote a Number to a
// Fraction for mixed arithmetic).
func (n *Number) IsExactInteger() bool {
	return n.Value == math.Trunc(n.Value) && !math.IsInf(n.Value, 0)
}

// Fraction is an arbitrary-precision rational, always stored reduced with
// a positive denominator (math/big.Rat guarantees both).
type Fraction struct {
	Value *big.Rat
}

func NewFraction(r *big.Rat) *Fraction { return &Fraction{Value: r} }

// NewFractionFromInt builds an integral Fraction, e.g. for literals with
// at least maxExactDigits decimal digits.
func NewFractionFromInt(i *big.Int) *Fraction {
	return &Fraction{Value: new(big.Rat).SetInt(i)}
}

// ParseIntegerLiteral decides, per the numeric-tower rule, whether an
// integer literal's digit string should become a Number or a Fraction.
func ParseIntegerLiteral(digits string) (Value, error) {
	if len(strings.TrimLeft(digits, "-")) >= maxExactDigits {
		bi, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer literal %q", digits)
		}
		return NewFractionFromInt(bi), nil
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer literal %q: %w", digits, err)
	}
	return NewNumber(f), nil
}

func (f *Fraction) Type() Type { return FractionType }

func (f *Fraction) String() string {
	if f.Value.IsInt() {
		return f.Value.Num().String()
	}
	// Non-integer fractions render as the reduced a/b pair that
	// RatString gives.
	return f.Value.RatString()
}

func (f *Fraction) Truthy() bool { return f.Value.Sign() != 0 }

// AsFloat64 demotes a Fraction to a Number's underlying representation,
// used when promotion/demotion rules call for it.
func (f *Fraction) AsFloat64() float64 {
	v, _ := f.Value.Float64()
	return v
}

// String is immutable UTF-8 text.
type AetherString struct {
	Value string
}

func NewString(v string) *AetherString { return &AetherString{Value: v} }

func (s *AetherString) Type() Type     { return StringType }
func (s *AetherString) String() string { return s.Value }
func (s *AetherString) Truthy() bool   { return s.Value != "" }

// Boolean is a true/false value.
type Boolean struct {
	Value bool
}

func NewBoolean(v bool) *Boolean { return &Boolean{Value: v} }

func (b *Boolean) Type() Type { return BooleanType }
func (b *Boolean) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *Boolean) Truthy() bool { return b.Value }

// Null is the single absent-value case.
type Null struct{}

var NullValue = &Null{}

func (n *Null) Type() Type     { return NullType }
func (n *Null) String() string { return "null" }
func (n *Null) Truthy() bool   { return false }

// Array is an ordered, mutable-by-index sequence of Values.
type Array struct {
	Elements []Value
}

func NewArray(elems []Value) *Array { return &Array{Elements: elems} }

func (a *Array) Type() Type   { return ArrayType }
func (a *Array) Truthy() bool { return len(a.Elements) > 0 }
func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if s, ok := e.(*AetherString); ok {
			parts[i] = strconv.Quote(s.Value)
		} else {
			parts[i] = e.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dict is an unordered mapping from string keys to Values that preserves
// insertion order for iteration (For NAME In dict).
type Dict struct {
	keys   []string
	values map[string]Value
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

func (d *Dict) Type() Type   { return DictType }
func (d *Dict) Truthy() bool { return len(d.keys) > 0 }

func (d *Dict) String() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", strconv.Quote(k), d.values[k].String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set binds key to value, preserving the original insertion position if
// the key already exists.
func (d *Dict) Set(key string, value Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns the bound value and whether the key was present.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the dict's keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// SortedKeys returns a defensively copied, lexicographically sorted key
// list, for callers that want an order independent of insertion order.
func (d *Dict) SortedKeys() []string {
	out := d.Keys()
	sort.Strings(out)
	return out
}

// BuiltinRef is a first-class reference to a name in the built-in
// registry; it can be passed as an argument to MAP/FILTER/REDUCE.
type BuiltinRef struct {
	Name string
}

func NewBuiltinRef(name string) *BuiltinRef { return &BuiltinRef{Name: name} }

func (b *BuiltinRef) Type() Type     { return BuiltinType }
func (b *BuiltinRef) String() string { return "<builtin " + b.Name + ">" }
func (b *BuiltinRef) Truthy() bool   { return true }

// Equal implements same-case structural equality, with the one
// cross-case exception between Number and Fraction (compared by exact
// value).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Number:
		switch bv := b.(type) {
		case *Number:
			return av.Value == bv.Value
		case *Fraction:
			return new(big.Rat).SetFloat64(av.Value) != nil && bv.Value.Cmp(ratFromFloat(av.Value)) == 0
		}
		return false
	case *Fraction:
		switch bv := b.(type) {
		case *Fraction:
			return av.Value.Cmp(bv.Value) == 0
		case *Number:
			return av.Value.Cmp(ratFromFloat(bv.Value)) == 0
		}
		return false
	case *AetherString:
		bv, ok := b.(*AetherString)
		return ok && av.Value == bv.Value
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || len(av.keys) != len(bv.keys) {
			return false
		}
		for _, k := range av.keys {
			bval, present := bv.Get(k)
			if !present || !Equal(av.values[k], bval) {
				return false
			}
		}
		return true
	case *BuiltinRef:
		bv, ok := b.(*BuiltinRef)
		return ok && av.Name == bv.Name
	}
	return a == b
}

func ratFromFloat(f float64) *big.Rat {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		return new(big.Rat)
	}
	return r
}

// Compare orders a and b: defined within Number/Fraction (cross-case by
// exact value), String (lexicographic by code point), and Boolean
// (false < true). It returns (-1|0|1, true) when an ordering is
// defined, or (0, false) otherwise.
func Compare(a, b Value) (int, bool) {
	switch av := a.(type) {
	case *Number:
		switch bv := b.(type) {
		case *Number:
			return cmpFloat(av.Value, bv.Value), true
		case *Fraction:
			return ratFromFloat(av.Value).Cmp(bv.Value), true
		}
	case *Fraction:
		switch bv := b.(type) {
		case *Fraction:
			return av.Value.Cmp(bv.Value), true
		case *Number:
			return av.Value.Cmp(ratFromFloat(bv.Value)), true
		}
	case *AetherString:
		if bv, ok := b.(*AetherString); ok {
			return strings.Compare(av.Value, bv.Value), true
		}
	case *Boolean:
		if bv, ok := b.(*Boolean); ok {
			return cmpBool(av.Value, bv.Value), true
		}
	}
	return 0, false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// TypeName returns the lowercase type tag reported by the TYPE_OF
// built-in.
func TypeName(v Value) string {
	return string(v.Type())
}
