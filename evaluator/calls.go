package evaluator

import (
	"fmt"

	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/function"
	"github.com/aetherscript/aether/objects"
)

func (e *Evaluator) pushFrame(f errs.Frame) { e.callStack = append(e.callStack, f) }

func (e *Evaluator) popFrame() { e.callStack = e.callStack[:len(e.callStack)-1] }

// stackSnapshot copies the current call stack for attachment to an
// outgoing error; callers must copy because the live slice keeps
// mutating as frames unwind.
func (e *Evaluator) stackSnapshot() []errs.Frame {
	out := make([]errs.Frame, len(e.callStack))
	copy(out, e.callStack)
	return out
}

// CallFunction implements builtins.Runtime: it dispatches to either a
// user Function or a BuiltinRef, used both for direct script calls and
// for higher-order built-ins (MAP/FILTER/REDUCE) invoking a callback.
func (e *Evaluator) CallFunction(fn objects.Value, args []objects.Value) (objects.Value, *errs.AetherError) {
	switch callee := fn.(type) {
	case *function.Function:
		return e.callUserFunction(callee, args, 0, 0)
	case *objects.BuiltinRef:
		return e.callBuiltin(callee.Name, args, 0, 0)
	default:
		return nil, errs.New(errs.UndefinedFunction, errs.PhaseRuntime, fmt.Sprintf("%s is not callable", objects.TypeName(fn)))
	}
}

func (e *Evaluator) callBuiltin(name string, args []objects.Value, line, column int) (objects.Value, *errs.AetherError) {
	frame := errs.Frame{Signature: name + "(", Line: line, HasLine: line > 0}
	e.pushFrame(frame)
	defer e.popFrame()

	result, err := builtins.Invoke(e, name, args)
	if err != nil {
		return nil, e.attachStack(err, line, column)
	}
	return result, nil
}

func (e *Evaluator) callUserFunction(fn *function.Function, args []objects.Value, line, column int) (objects.Value, *errs.AetherError) {
	frame := errs.Frame{Signature: fn.Signature(), Line: line, HasLine: line > 0}
	e.pushFrame(frame)
	defer e.popFrame()

	if len(args) != len(fn.Params) {
		err := errs.Newf(errs.ArityMismatch, errs.PhaseRuntime, "%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
		return nil, e.attachStack(err, line, column)
	}

	callEnv := environment.New(fn.Env)
	for i, param := range fn.Params {
		callEnv.Set(param, args[i])
	}

	result, sig, err := e.evalStatements(fn.Body.Statements, callEnv)
	if err != nil {
		return nil, e.attachStack(err, line, column)
	}
	switch sig {
	case signalBreak:
		err := errs.New(errs.BreakOutsideLoop, errs.PhaseRuntime, "Break outside a loop")
		return nil, e.attachStack(err, line, column)
	case signalContinue:
		err := errs.New(errs.ContinueOutsideLoop, errs.PhaseRuntime, "Continue outside a loop")
		return nil, e.attachStack(err, line, column)
	case signalReturn:
		return result, nil
	}
	return result, nil
}

// attachStack snapshots the call stack onto err if it hasn't already
// been captured, and attaches a position if err doesn't have one yet.
func (e *Evaluator) attachStack(err *errs.AetherError, line, column int) *errs.AetherError {
	if len(err.CallStack) == 0 {
		err.WithStack(e.stackSnapshot())
	}
	if !err.HasPos && line > 0 {
		err.At(line, column)
	}
	return err
}
