// Package errs defines the error kind taxonomy shared by the optimizer,
// evaluator, built-in registry, and module resolver, plus the
// AetherError type that carries the phase/kind/position/call-stack
// enrichment every error leaving the evaluator must have.
package errs

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Kind tags the category of an Aether error, per the error handling
// design's kind table.
type Kind string

const (
	LexError              Kind = "LexError"
	ParseError            Kind = "ParseError"
	UndefinedVariable     Kind = "UndefinedVariable"
	UndefinedFunction     Kind = "UndefinedFunction"
	ArityMismatch         Kind = "ArityMismatch"
	TypeError             Kind = "TypeError"
	DivisionByZero        Kind = "DivisionByZero"
	IndexOutOfBounds      Kind = "IndexOutOfBounds"
	KeyNotFound           Kind = "KeyNotFound"
	BreakOutsideLoop      Kind = "BreakOutsideLoop"
	ContinueOutsideLoop   Kind = "ContinueOutsideLoop"
	ReturnOutsideFunction Kind = "ReturnOutsideFunction"
	PermissionDenied      Kind = "PermissionDenied"
	ImportDisabled        Kind = "ImportDisabled"
	ModuleNotFound        Kind = "ModuleNotFound"
	NoBaseDirectory       Kind = "NoBaseDirectory"
	CircularImport        Kind = "CircularImport"
	IOError               Kind = "IOError"
)

// Phase identifies which pipeline stage raised the error.
type Phase string

const (
	PhaseParse    Phase = "parse"
	PhaseOptimize Phase = "optimize"
	PhaseRuntime  Phase = "runtime"
)

// Frame is one entry in a captured call stack: a built-in invocation
// ("NAME(") or a user-function invocation ("NAME(P1, P2)").
type Frame struct {
	Signature string
	Line      int
	HasLine   bool
}

// AetherError is the structured error type returned by every pipeline
// stage. It implements the standard error interface so it composes with
// ordinary Go error handling, while still carrying the full report shape
// the host facade exposes via EvalReport.
type AetherError struct {
	Kind      Kind
	Phase     Phase
	Message   string
	Line      int
	Column    int
	HasPos    bool
	CallStack []Frame

	// cause is an oops-wrapped error carrying the kind/phase as
	// structured context, used for host-side structured logging
	// (errs.Log) without leaking oops's own shape into the JSON report.
	cause error
}

func (e *AetherError) Error() string {
	if e.HasPos {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the oops-wrapped cause so errors.Is/As and oops.AsOops
// keep working on an AetherError.
func (e *AetherError) Unwrap() error { return e.cause }

// New builds a positionless AetherError.
func New(kind Kind, phase Phase, message string) *AetherError {
	cause := oops.Code(string(kind)).With("phase", string(phase)).Wrap(errors.New(message))
	return &AetherError{Kind: kind, Phase: phase, Message: message, cause: cause}
}

// Newf builds a positionless AetherError with a formatted message.
func Newf(kind Kind, phase Phase, format string, args ...any) *AetherError {
	return New(kind, phase, fmt.Sprintf(format, args...))
}

// ParseFailure is the minimal shape a parser.ParseError satisfies,
// named here (rather than importing package parser, which would create
// an import cycle) so FromParseError can translate it into an
// AetherError without either package depending on the other.
type ParseFailure interface {
	error
	Position() (line, column int)
	IsLexError() bool
}

// FromParseError builds the LexError- or ParseError-kind AetherError a
// failed parse reports to the host, per the error-kind table's split
// between "illegal character" and "unexpected token" triggers.
func FromParseError(pf ParseFailure) *AetherError {
	kind := ParseError
	if pf.IsLexError() {
		kind = LexError
	}
	line, col := pf.Position()
	return New(kind, PhaseParse, pf.Error()).At(line, col)
}

// At attaches source coordinates, returning e for chaining.
func (e *AetherError) At(line, column int) *AetherError {
	e.Line, e.Column = line, column
	e.HasPos = true
	e.cause = oops.Code(string(e.Kind)).
		With("phase", string(e.Phase)).
		With("line", line).
		With("column", column).
		Wrap(errors.New(e.Message))
	return e
}

// WithStack attaches a snapshot of the call stack, returning e for
// chaining. Callers must pass a copy; the evaluator's own stack keeps
// mutating after the error is constructed.
func (e *AetherError) WithStack(frames []Frame) *AetherError {
	e.CallStack = frames
	return e
}
