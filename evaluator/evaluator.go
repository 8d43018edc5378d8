// Package evaluator implements Aether's tree-walking interpreter: the
// statement/expression semantics, the call stack used for error
// enrichment, the step counter, and the trace ring buffer. It is the
// one package that implements the builtins.Runtime contract, letting
// the built-in registry call back into user functions for MAP/FILTER/
// REDUCE without importing the evaluator itself.
package evaluator

import (
	"io"
	"os"

	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/parser"
	"github.com/aetherscript/aether/resolver"
)

// Evaluator holds all state for one engine instance: the global scope,
// the permission record, I/O streams, the call stack, the step
// counter, and the trace buffer.
type Evaluator struct {
	Global *environment.Environment

	permissions builtins.Permissions
	stdout      io.Writer
	stdin       io.Reader

	callStack []errs.Frame
	steps     int

	trace *traceRing

	resolver resolver.Resolver
	baseDir  string
	tracker  *resolver.ImportTracker
}

// New creates an evaluator with a fresh global scope, all permissions
// denied, stdout/stdin wired to the process streams, and a
// default-sized trace buffer.
func New() *Evaluator {
	return &Evaluator{
		Global:  environment.New(nil),
		stdout:  os.Stdout,
		stdin:   os.Stdin,
		trace:   newTraceRing(DefaultTraceBufferSize),
		tracker: resolver.NewImportTracker(),
	}
}

// SetPermissions replaces the permission record wholesale.
func (e *Evaluator) SetPermissions(p builtins.Permissions) { e.permissions = p }

// Permissions implements builtins.Runtime.
func (e *Evaluator) Permissions() builtins.Permissions { return e.permissions }

// SetStdout redirects built-in output (PRINT/PRINTLN).
func (e *Evaluator) SetStdout(w io.Writer) { e.stdout = w }

// SetStdin redirects built-in input (INPUT).
func (e *Evaluator) SetStdin(r io.Reader) { e.stdin = r }

// Stdout implements builtins.Runtime.
func (e *Evaluator) Stdout() io.Writer { return e.stdout }

// Stdin implements builtins.Runtime.
func (e *Evaluator) Stdin() io.Reader { return e.stdin }

// SetModuleResolver installs the host's module resolver; nil disables
// imports again.
func (e *Evaluator) SetModuleResolver(r resolver.Resolver) { e.resolver = r }

// SetBaseDir sets the directory relative imports resolve against,
// scoped to the duration of one eval_file call by the host facade.
func (e *Evaluator) SetBaseDir(dir string) { e.baseDir = dir }

// SetTraceBufferSize replaces the trace ring's capacity, keeping the
// most recent entries that still fit.
func (e *Evaluator) SetTraceBufferSize(capacity int) { e.trace.Resize(capacity) }

// TraceRecords returns the trace buffer's currently retained entries.
func (e *Evaluator) TraceRecords() []TraceEntry { return e.trace.Records() }

// TakeTrace drains the trace buffer, returning the retained entries and
// leaving the sequence counter running.
func (e *Evaluator) TakeTrace() []TraceEntry { return e.trace.Take() }

// ClearTrace empties the trace buffer and resets its sequence counter.
func (e *Evaluator) ClearTrace() { e.trace.Clear() }

// TraceStats mirrors the buffer's size/total-emitted counters.
type TraceStats struct {
	Size          int
	Capacity      int
	TotalEmitted  uint64
	FirstSequence uint64
}

// TraceStats returns a snapshot of the trace buffer's bookkeeping.
func (e *Evaluator) TraceStats() TraceStats {
	records := e.trace.Records()
	var first uint64
	if len(records) > 0 {
		first = records[0].Sequence
	}
	return TraceStats{
		Size:          len(records),
		Capacity:      e.trace.capacity,
		TotalEmitted:  e.trace.TotalEmitted(),
		FirstSequence: first,
	}
}

// Trace implements builtins.Runtime: it appends one entry to the ring
// buffer. Level defaults to "info" when empty, matching plain TRACE's
// fixed level.
func (e *Evaluator) Trace(level, category, label string, values []objects.Value) {
	if level == "" {
		level = "info"
	}
	e.trace.Append(level, category, label, values)
}

// Steps returns the number of statements executed by the most recent
// top-level Eval call.
func (e *Evaluator) Steps() int { return e.steps }

// SetGlobal injects a host value into the global scope without a
// script statement.
func (e *Evaluator) SetGlobal(name string, value objects.Value) {
	e.Global.Set(name, value)
}

// Eval resets the step counter and runs program against the global
// environment, returning the value of the last expression statement
// (or Null if the program has none).
func (e *Evaluator) Eval(program *parser.Program) (objects.Value, *errs.AetherError) {
	e.steps = 0
	e.callStack = e.callStack[:0]
	result, sig, err := e.evalStatements(program.Statements, e.Global)
	if err != nil {
		return nil, err
	}
	switch sig {
	case signalBreak:
		return nil, errs.New(errs.BreakOutsideLoop, errs.PhaseRuntime, "Break outside a loop")
	case signalContinue:
		return nil, errs.New(errs.ContinueOutsideLoop, errs.PhaseRuntime, "Continue outside a loop")
	case signalReturn:
		return nil, errs.New(errs.ReturnOutsideFunction, errs.PhaseRuntime, "Return outside a function")
	}
	return result, nil
}

// WithIsolatedScope runs fn against a fresh root environment seeded
// with the global environment's current bindings; any Set/Func
// bindings it makes (including via SetGlobal redirected at the
// returned evaluator) land in that copy and are discarded when it
// returns. Array and Dict values are shared with the global
// environment, so indexed assignment into them stays visible, and
// functions defined before the call still close over the global
// environment itself.
func (e *Evaluator) WithIsolatedScope(fn func(scoped *Evaluator) (objects.Value, *errs.AetherError)) (objects.Value, *errs.AetherError) {
	scope := environment.New(nil)
	for _, name := range e.Global.Keys() {
		if v, ok := e.Global.Get(name); ok {
			scope.Set(name, v)
		}
	}
	child := &Evaluator{
		Global:      scope,
		permissions: e.permissions,
		stdout:      e.stdout,
		stdin:       e.stdin,
		trace:       e.trace,
		resolver:    e.resolver,
		baseDir:     e.baseDir,
		tracker:     e.tracker,
	}
	return fn(child)
}

var _ builtins.Runtime = (*Evaluator)(nil)
