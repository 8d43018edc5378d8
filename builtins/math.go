package builtins

import (
	"math"

	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

func init() {
	register(&Builtin{Name: "ABS", Fn: unaryMath("ABS", math.Abs)})
	register(&Builtin{Name: "SQRT", Fn: unaryMath("SQRT", math.Sqrt)})
	register(&Builtin{Name: "SIN", Fn: unaryMath("SIN", math.Sin)})
	register(&Builtin{Name: "COS", Fn: unaryMath("COS", math.Cos)})
	register(&Builtin{Name: "TAN", Fn: unaryMath("TAN", math.Tan)})
	register(&Builtin{Name: "FLOOR", Fn: unaryMath("FLOOR", math.Floor)})
	register(&Builtin{Name: "CEIL", Fn: unaryMath("CEIL", math.Ceil)})
	register(&Builtin{Name: "POW", Fn: binaryMath("POW", math.Pow)})

	register(&Builtin{Name: "MIN", Fn: statBuiltin("MIN", func(vs []float64) float64 {
		m := vs[0]
		for _, v := range vs[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})})
	register(&Builtin{Name: "MAX", Fn: statBuiltin("MAX", func(vs []float64) float64 {
		m := vs[0]
		for _, v := range vs[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})})
	register(&Builtin{Name: "MEAN", Fn: statBuiltin("MEAN", func(vs []float64) float64 {
		sum := 0.0
		for _, v := range vs {
			sum += v
		}
		return sum / float64(len(vs))
	})})
}

func asFloat(v objects.Value) (float64, bool) {
	switch n := v.(type) {
	case *objects.Number:
		return n.Value, true
	case *objects.Fraction:
		return n.AsFloat64(), true
	}
	return 0, false
}

func unaryMath(name string, fn func(float64) float64) Func {
	return func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
		if len(args) != 1 {
			return nil, argError(name, 1, len(args))
		}
		f, ok := asFloat(args[0])
		if !ok {
			return nil, typeError(name, "a number", args[0])
		}
		return objects.NewNumber(fn(f)), nil
	}
}

func binaryMath(name string, fn func(float64, float64) float64) Func {
	return func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
		if len(args) != 2 {
			return nil, argError(name, 2, len(args))
		}
		a, ok1 := asFloat(args[0])
		b, ok2 := asFloat(args[1])
		if !ok1 || !ok2 {
			return nil, typeError(name, "two numbers", args[0])
		}
		return objects.NewNumber(fn(a, b)), nil
	}
}

func statBuiltin(name string, fn func([]float64) float64) Func {
	return func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
		if len(args) == 0 {
			return nil, argError(name, 1, 0)
		}
		vs := make([]float64, len(args))
		for i, a := range args {
			f, ok := asFloat(a)
			if !ok {
				return nil, typeError(name, "numbers", a)
			}
			vs[i] = f
		}
		return objects.NewNumber(fn(vs)), nil
	}
}
