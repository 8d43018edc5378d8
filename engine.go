// Package aether is the host-facing facade over the interpretation
// pipeline: lex/parse/optimize (memoized by the AST cache), evaluation
// against a persistent global environment, and the trace/cache
// accessors a host uses to observe engine behavior. It mirrors the
// upstream Rust `Aether` struct's public surface (`eval`, `eval_file`,
// `eval_report`, `with_isolated_scope`, `set_global`,
// `set_module_resolver`, `set_permissions`, `set_trace_buffer_size`).
package aether

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/aetherscript/aether/astcache"
	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/evaluator"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/optimizer"
	"github.com/aetherscript/aether/parser"
	"github.com/aetherscript/aether/resolver"
)

// Engine is one embeddable Aether instance: its own global environment,
// permission record, AST cache, and trace buffer. Engines share no
// state with one another, so independent goroutines may each own one
// without synchronization, per the concurrency model.
type Engine struct {
	id     string
	logger *slog.Logger
	eval   *evaluator.Evaluator
	cache  *astcache.Cache
}

// New creates an Engine with a fresh global environment, all
// permissions denied, a default-capacity AST cache, and a default-sized
// trace buffer. Every log line the engine emits is correlated to this
// instance via a generated UUID, mirroring the logging strategy
// described for the ambient stack.
func New() *Engine {
	id := uuid.NewString()
	logger := slog.Default().With("engine_id", id)
	return &Engine{
		id:     id,
		logger: logger,
		eval:   evaluator.New(),
		cache:  astcache.New(astcache.DefaultCapacity),
	}
}

// ID returns the engine's instance identifier, used for log correlation
// and as the FFI handle registry's lookup key.
func (e *Engine) ID() string { return e.id }

// SetStdout redirects PRINT/PRINTLN output.
func (e *Engine) SetStdout(w io.Writer) { e.eval.SetStdout(w) }

// SetStdin redirects INPUT's source.
func (e *Engine) SetStdin(r io.Reader) { e.eval.SetStdin(r) }

// SetPermissions replaces the engine's permission record wholesale.
func (e *Engine) SetPermissions(p builtins.Permissions) { e.eval.SetPermissions(p) }

// SetModuleResolver installs (or, with nil, removes) the host's module
// resolver; Import statements fail with ImportDisabled until one is set.
func (e *Engine) SetModuleResolver(r resolver.Resolver) { e.eval.SetModuleResolver(r) }

// SetTraceBufferSize resizes the trace ring buffer, keeping the most
// recent entries that still fit.
func (e *Engine) SetTraceBufferSize(capacity int) { e.eval.SetTraceBufferSize(capacity) }

// SetGlobal injects a host value into the global environment without a
// script statement.
func (e *Engine) SetGlobal(name string, value objects.Value) { e.eval.SetGlobal(name, value) }

// TraceRecords returns the trace buffer's currently retained entries.
func (e *Engine) TraceRecords() []evaluator.TraceEntry { return e.eval.TraceRecords() }

// TakeTrace drains the trace buffer: it returns the retained entries
// and empties the ring, so a host reading traces out-of-band sees each
// entry exactly once. The sequence counter keeps running across drains.
func (e *Engine) TakeTrace() []evaluator.TraceEntry { return e.eval.TakeTrace() }

// ClearTrace discards the trace buffer's entries without returning them
// and resets the sequence counter, so the next trace starts over at #1.
func (e *Engine) ClearTrace() { e.eval.ClearTrace() }

// TraceStats returns the trace buffer's size/capacity/emitted counters.
func (e *Engine) TraceStats() evaluator.TraceStats { return e.eval.TraceStats() }

// CacheStats returns the AST cache's size/capacity/hit/miss counters.
func (e *Engine) CacheStats() astcache.Stats { return e.cache.Stats() }

// ClearCache empties the AST cache and resets its hit/miss counters.
func (e *Engine) ClearCache() { e.cache.Clear() }

// Steps returns the number of statements executed by the most recent
// top-level Eval/EvalFile call, used by the CLI's --metrics flag.
func (e *Engine) Steps() int { return e.eval.Steps() }

// parseAndOptimize runs the cache-backed lex/parse/optimize pipeline
// for source, inserting a miss's optimized program before returning it.
func (e *Engine) parseAndOptimize(source string) (*parser.Program, *errs.AetherError) {
	if program, hit := e.cache.Get(source); hit {
		return program, nil
	}
	program, err := parser.Parse(source)
	if err != nil {
		if pe, ok := err.(*parser.ParseError); ok {
			return nil, errs.FromParseError(pe)
		}
		return nil, errs.New(errs.ParseError, errs.PhaseParse, err.Error())
	}
	optimized := optimizer.Optimize(program)
	e.cache.Insert(source, optimized)
	return optimized, nil
}

// Eval parses source (through the AST cache), and evaluates it against
// the persistent global environment, returning the value of the last
// expression statement.
func (e *Engine) Eval(source string) (objects.Value, *errs.AetherError) {
	e.logger.Debug("evaluating source", "bytes", len(source))
	program, err := e.parseAndOptimize(source)
	if err != nil {
		return nil, err
	}
	result, runErr := e.eval.Eval(program)
	if runErr != nil {
		errs.Log(e.logger, "script evaluation failed", runErr)
		return nil, runErr
	}
	return result, nil
}

// EvalFile reads path, sets the module resolver's base directory to
// path's containing directory for the duration of the call (so
// relative Import statements resolve against it), and evaluates its
// contents.
func (e *Engine) EvalFile(path string) (objects.Value, *errs.AetherError) {
	data, ioErr := os.ReadFile(path)
	if ioErr != nil {
		return nil, errs.Newf(errs.IOError, errs.PhaseRuntime, "cannot read %q: %v", path, ioErr)
	}
	e.logger.Debug("evaluating file", "path", path)
	e.eval.SetBaseDir(filepath.Dir(path))
	defer e.eval.SetBaseDir("")
	return e.Eval(string(data))
}

// FrameReport is one call-stack entry in an ErrorReport's JSON
// rendering.
type FrameReport struct {
	Signature string `json:"signature"`
	Line      int    `json:"line,omitempty"`
}

// ErrorReport is the structured error shape EvalReport returns instead
// of a plain AetherError:
// `{phase, kind, message, line?, column?, call_stack}`.
type ErrorReport struct {
	Phase     string        `json:"phase"`
	Kind      string        `json:"kind"`
	Message   string        `json:"message"`
	Line      int           `json:"line,omitempty"`
	Column    int           `json:"column,omitempty"`
	CallStack []FrameReport `json:"call_stack"`
}

// NewErrorReport projects an AetherError into its plain JSON-ready
// shape, keeping oops's own structure from leaking into the schema.
func NewErrorReport(err *errs.AetherError) *ErrorReport {
	frames := make([]FrameReport, len(err.CallStack))
	for i, f := range err.CallStack {
		frames[i] = FrameReport{Signature: f.Signature}
		if f.HasLine {
			frames[i].Line = f.Line
		}
	}
	report := &ErrorReport{
		Phase:     string(err.Phase),
		Kind:      string(err.Kind),
		Message:   err.Message,
		CallStack: frames,
	}
	if err.HasPos {
		report.Line = err.Line
		report.Column = err.Column
	}
	return report
}

// EvalReport behaves like Eval, but on failure returns the full
// structured ErrorReport instead of a bare AetherError.
func (e *Engine) EvalReport(source string) (objects.Value, *ErrorReport) {
	v, err := e.Eval(source)
	if err != nil {
		return nil, NewErrorReport(err)
	}
	return v, nil
}

// WithIsolatedScope runs fn against a copy of the global scope's
// bindings; any bindings fn makes (via script Set/Func statements or
// SetGlobal on the scoped engine) are discarded when fn returns,
// leaving the global scope's bindings as they were.
func (e *Engine) WithIsolatedScope(fn func(scoped *Engine) (objects.Value, *errs.AetherError)) (objects.Value, *errs.AetherError) {
	return e.eval.WithIsolatedScope(func(scopedEval *evaluator.Evaluator) (objects.Value, *errs.AetherError) {
		scoped := &Engine{id: e.id, logger: e.logger, eval: scopedEval, cache: e.cache}
		return fn(scoped)
	})
}
