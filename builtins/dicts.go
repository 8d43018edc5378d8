package builtins

import (
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

func init() {
	register(&Builtin{Name: "KEYS", Fn: keysBuiltin})
	register(&Builtin{Name: "VALUES", Fn: valuesBuiltin})
	register(&Builtin{Name: "HAS_KEY", Fn: hasKeyBuiltin})
}

func requireDict(name string, v objects.Value) (*objects.Dict, *errs.AetherError) {
	d, ok := v.(*objects.Dict)
	if !ok {
		return nil, typeError(name, "a dict", v)
	}
	return d, nil
}

func keysBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("KEYS", 1, len(args))
	}
	d, err := requireDict("KEYS", args[0])
	if err != nil {
		return nil, err
	}
	keys := d.Keys()
	out := make([]objects.Value, len(keys))
	for i, k := range keys {
		out[i] = objects.NewString(k)
	}
	return objects.NewArray(out), nil
}

func valuesBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("VALUES", 1, len(args))
	}
	d, err := requireDict("VALUES", args[0])
	if err != nil {
		return nil, err
	}
	keys := d.Keys()
	out := make([]objects.Value, len(keys))
	for i, k := range keys {
		v, _ := d.Get(k)
		out[i] = v
	}
	return objects.NewArray(out), nil
}

func hasKeyBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 2 {
		return nil, argError("HAS_KEY", 2, len(args))
	}
	d, err := requireDict("HAS_KEY", args[0])
	if err != nil {
		return nil, err
	}
	key, err := requireString("HAS_KEY", args[1])
	if err != nil {
		return nil, err
	}
	_, ok := d.Get(key)
	return objects.NewBoolean(ok), nil
}
