package builtins

import (
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

func init() {
	register(&Builtin{Name: "PUSH", Fn: pushBuiltin})
	register(&Builtin{Name: "POP", Fn: popBuiltin})
	register(&Builtin{Name: "MAP", Fn: mapBuiltin})
	register(&Builtin{Name: "FILTER", Fn: filterBuiltin})
	register(&Builtin{Name: "REDUCE", Fn: reduceBuiltin})
}

func requireArray(name string, v objects.Value) (*objects.Array, *errs.AetherError) {
	a, ok := v.(*objects.Array)
	if !ok {
		return nil, typeError(name, "an array", v)
	}
	return a, nil
}

// pushBuiltin appends an element, returning a new Array value (Aether
// arrays permit in-place index assignment but PUSH grows the sequence,
// so it returns the extended array rather than mutating the caller's
// handle out from under other holders).
func pushBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("PUSH", 2, len(args))
	}
	arr, err := requireArray("PUSH", args[0])
	if err != nil {
		return nil, err
	}
	elems := append(append([]objects.Value{}, arr.Elements...), args[1])
	return objects.NewArray(elems), nil
}

func popBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("POP", 1, len(args))
	}
	arr, err := requireArray("POP", args[0])
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return nil, errs.New(errs.IndexOutOfBounds, errs.PhaseRuntime, "POP on empty array")
	}
	elems := append([]objects.Value{}, arr.Elements[:len(arr.Elements)-1]...)
	return objects.NewArray(elems), nil
}

func callable(v objects.Value) bool {
	return v.Type() == objects.BuiltinType || v.Type() == objects.FunctionType
}

func mapBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("MAP", 2, len(args))
	}
	arr, err := requireArray("MAP", args[0])
	if err != nil {
		return nil, err
	}
	if !callable(args[1]) {
		return nil, typeError("MAP", "a callable", args[1])
	}
	out := make([]objects.Value, len(arr.Elements))
	for i, e := range arr.Elements {
		v, cerr := rt.CallFunction(args[1], []objects.Value{e})
		if cerr != nil {
			return nil, cerr
		}
		out[i] = v
	}
	return objects.NewArray(out), nil
}

func filterBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("FILTER", 2, len(args))
	}
	arr, err := requireArray("FILTER", args[0])
	if err != nil {
		return nil, err
	}
	if !callable(args[1]) {
		return nil, typeError("FILTER", "a callable", args[1])
	}
	var out []objects.Value
	for _, e := range arr.Elements {
		v, cerr := rt.CallFunction(args[1], []objects.Value{e})
		if cerr != nil {
			return nil, cerr
		}
		if v.Truthy() {
			out = append(out, e)
		}
	}
	return objects.NewArray(out), nil
}

func reduceBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 3 {
		return nil, argError("REDUCE", 3, len(args))
	}
	arr, err := requireArray("REDUCE", args[0])
	if err != nil {
		return nil, err
	}
	if !callable(args[1]) {
		return nil, typeError("REDUCE", "a callable", args[1])
	}
	acc := args[2]
	for _, e := range arr.Elements {
		v, cerr := rt.CallFunction(args[1], []objects.Value{acc, e})
		if cerr != nil {
			return nil, cerr
		}
		acc = v
	}
	return acc, nil
}
