package builtins

import (
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/ops"
)

func init() {
	register(&Builtin{Name: "TYPE_OF", Fn: typeOfBuiltin})
	register(&Builtin{Name: "TO_NUMBER", Fn: toNumberBuiltin})
}

func typeOfBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("TYPE_OF", 1, len(args))
	}
	return objects.NewString(objects.TypeName(args[0])), nil
}

func toNumberBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	if len(args) != 1 {
		return nil, argError("TO_NUMBER", 1, len(args))
	}
	s, err := requireString("TO_NUMBER", args[0])
	if err != nil {
		return nil, err
	}
	return ops.ToNumberValue(s)
}
