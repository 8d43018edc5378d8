package builtins

import (
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

func init() {
	register(&Builtin{Name: "TRACE", Fn: plainTraceBuiltin})
	register(&Builtin{Name: "TRACE_DEBUG", Fn: leveledTraceBuiltin("TRACE_DEBUG", "debug")})
	register(&Builtin{Name: "TRACE_INFO", Fn: leveledTraceBuiltin("TRACE_INFO", "info")})
	register(&Builtin{Name: "TRACE_WARN", Fn: leveledTraceBuiltin("TRACE_WARN", "warn")})
	register(&Builtin{Name: "TRACE_ERROR", Fn: leveledTraceBuiltin("TRACE_ERROR", "error")})
}

// plainTraceBuiltin implements bare TRACE(args…): level "info", no
// category, and an optional label. The first argument is treated as
// the label only when it is a string and more than one argument was
// given, otherwise every argument is a traced value.
func plainTraceBuiltin(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
	label := ""
	values := args
	if len(args) > 1 {
		if s, ok := args[0].(*objects.AetherString); ok {
			label = s.Value
			values = args[1:]
		}
	}
	rt.Trace("info", "", label, values)
	return objects.NullValue, nil
}

// leveledTraceBuiltin implements TRACE_DEBUG/INFO/WARN/ERROR(category,
// label, value…), where category and label are always explicit strings.
func leveledTraceBuiltin(name, level string) Func {
	return func(rt Runtime, args []objects.Value) (objects.Value, *errs.AetherError) {
		if len(args) < 2 {
			return nil, argError(name, 2, len(args))
		}
		category, err := requireString(name, args[0])
		if err != nil {
			return nil, err
		}
		label, err := requireString(name, args[1])
		if err != nil {
			return nil, err
		}
		rt.Trace(level, category, label, args[2:])
		return objects.NullValue, nil
	}
}
