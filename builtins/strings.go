package builtins

import (
	"strings"

	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

func init() {
	register(&Builtin{Name: "LEN", Fn: lenBuiltin})
	register(&Builtin{Name: "UPPER", Fn: stringUnary("UPPER", strings.ToUpper)})
	register(&Builtin{Name: "LOWER", Fn: stringUnary("LOWER", strings.ToLower)})
	register(&Builtin{Name: "SPLIT", Fn: splitBuiltin})
	register(&Builtin{Name: "JOIN", Fn: joinBuiltin})
	register(&Builtin{Name: "TO_STRING", Fn: toStringBuiltin})
}

func requireString(name string, v objects.Value) (string, *errs.AetherError) {
	s, ok := v.(*objects.AetherString)
	if !ok {
		return "", typeError(name, "a string", v)
	}
	return s.Value, nil
}

func stringUnary(name string, fn func(string) string) Func {
	return func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
		if len(args) != 1 {
			return nil, argError(name, 1, len(args))
		}
		s, err := requireString(name, args[0])
		if err != nil {
			return nil, err
		}
		return objects.NewString(fn(s)), nil
	}
}

// lenBuiltin implements LEN over String (rune count), Array, and Dict.
func lenBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("LEN", 1, len(args))
	}
	switch v := args[0].(type) {
	case *objects.AetherString:
		return objects.NewNumber(float64(len([]rune(v.Value)))), nil
	case *objects.Array:
		return objects.NewNumber(float64(len(v.Elements))), nil
	case *objects.Dict:
		return objects.NewNumber(float64(len(v.Keys()))), nil
	default:
		return nil, typeError("LEN", "a string, array, or dict", args[0])
	}
}

func splitBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("SPLIT", 2, len(args))
	}
	s, err := requireString("SPLIT", args[0])
	if err != nil {
		return nil, err
	}
	sep, err := requireString("SPLIT", args[1])
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	elems := make([]objects.Value, len(parts))
	for i, p := range parts {
		elems[i] = objects.NewString(p)
	}
	return objects.NewArray(elems), nil
}

func joinBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("JOIN", 2, len(args))
	}
	arr, ok := args[0].(*objects.Array)
	if !ok {
		return nil, typeError("JOIN", "an array", args[0])
	}
	sep, err := requireString("JOIN", args[1])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		s, ok := e.(*objects.AetherString)
		if !ok {
			return nil, typeError("JOIN", "an array of strings", e)
		}
		parts[i] = s.Value
	}
	return objects.NewString(strings.Join(parts, sep)), nil
}

func toStringBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("TO_STRING", 1, len(args))
	}
	return objects.NewString(args[0].String()), nil
}
