// Package ffi implements the foreign-function bridge's contract: an
// opaque engine handle and a string-in/string-out Eval operation,
// ready to be wrapped by a real cgo shim. No cgo usage (no `import
// "C"`) appears anywhere in the retrieved corpus, so handles are
// plain github.com/google/uuid-derived tokens stored in a process-wide
// registry rather than raw pointers exported across a language
// boundary: the same contract a cgo wrapper would expose, implemented
// one layer up.
package ffi

import (
	"encoding/json"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aetherscript/aether"
	"github.com/aetherscript/aether/errs"
)

// Status mirrors the bridge's fixed status code set.
type Status string

const (
	Success      Status = "Success"
	ParseError   Status = "ParseError"
	RuntimeError Status = "RuntimeError"
	InvalidUtf8  Status = "InvalidUtf8"
	NullHandle   Status = "NullHandle"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*aether.Engine)
)

// NewEngine creates an Engine and registers it under a fresh handle,
// returning the handle string the host stores and passes back into
// Eval/FreeEngine.
func NewEngine() string {
	handle := uuid.NewString()
	registryMu.Lock()
	registry[handle] = aether.New()
	registryMu.Unlock()
	return handle
}

// FreeEngine releases the engine registered under handle. Freeing an
// unknown or already-freed handle is a no-op, matching the bridge's
// "caller frees both strings" discipline of tolerating double-free of
// an already-inert resource.
func FreeEngine(handle string) {
	registryMu.Lock()
	delete(registry, handle)
	registryMu.Unlock()
}

func lookup(handle string) (*aether.Engine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := registry[handle]
	return e, ok
}

// Eval implements the bridge's `eval(handle, source) -> (status,
// result_string | error_string)` contract.
func Eval(handle, source string) (Status, string) {
	if handle == "" {
		return NullHandle, "no engine handle provided"
	}
	if !utf8.ValidString(source) {
		return InvalidUtf8, "source is not valid UTF-8"
	}
	engine, ok := lookup(handle)
	if !ok {
		return NullHandle, "unknown or freed engine handle"
	}

	value, err := engine.Eval(source)
	if err != nil {
		if err.Phase == errs.PhaseParse {
			return ParseError, err.Error()
		}
		return RuntimeError, err.Error()
	}
	return Success, value.String()
}

// EvalReportJSON runs Eval but returns the structured JSON error report
// on failure (still string-in/string-out), for hosts that want the full
// phase/kind/call-stack detail instead of a flattened message.
func EvalReportJSON(handle, source string) (Status, string) {
	if handle == "" {
		return NullHandle, "no engine handle provided"
	}
	if !utf8.ValidString(source) {
		return InvalidUtf8, "source is not valid UTF-8"
	}
	engine, ok := lookup(handle)
	if !ok {
		return NullHandle, "unknown or freed engine handle"
	}

	value, report := engine.EvalReport(source)
	if report != nil {
		data, _ := json.Marshal(report)
		status := RuntimeError
		if report.Phase == "parse" {
			status = ParseError
		}
		return status, string(data)
	}
	return Success, value.String()
}
