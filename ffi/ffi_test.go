package ffi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalSuccess(t *testing.T) {
	handle := NewEngine()
	defer FreeEngine(handle)

	status, result := Eval(handle, "(1 + 2)")
	require.Equal(t, Success, status)
	require.Equal(t, "3", result)
}

func TestEvalStatePersistsAcrossCalls(t *testing.T) {
	handle := NewEngine()
	defer FreeEngine(handle)

	status, _ := Eval(handle, "Set X 40")
	require.Equal(t, Success, status)
	status, result := Eval(handle, "(X + 2)")
	require.Equal(t, Success, status)
	require.Equal(t, "42", result)
}

func TestEvalParseErrorStatus(t *testing.T) {
	handle := NewEngine()
	defer FreeEngine(handle)

	status, msg := Eval(handle, "Set X (10 +")
	require.Equal(t, ParseError, status)
	require.NotEmpty(t, msg)
}

func TestEvalRuntimeErrorStatus(t *testing.T) {
	handle := NewEngine()
	defer FreeEngine(handle)

	status, msg := Eval(handle, "UNDEFINED")
	require.Equal(t, RuntimeError, status)
	require.NotEmpty(t, msg)
}

func TestEvalNullHandle(t *testing.T) {
	status, _ := Eval("", "1")
	require.Equal(t, NullHandle, status)

	status, _ = Eval("never-registered", "1")
	require.Equal(t, NullHandle, status)
}

func TestEvalInvalidUtf8(t *testing.T) {
	handle := NewEngine()
	defer FreeEngine(handle)

	status, _ := Eval(handle, string([]byte{0xff, 0xfe}))
	require.Equal(t, InvalidUtf8, status)
}

func TestFreeEngineIsIdempotent(t *testing.T) {
	handle := NewEngine()
	FreeEngine(handle)
	FreeEngine(handle)

	status, _ := Eval(handle, "1")
	require.Equal(t, NullHandle, status)
}

func TestEvalReportJSONCarriesStructuredError(t *testing.T) {
	handle := NewEngine()
	defer FreeEngine(handle)

	status, payload := EvalReportJSON(handle, "UNDEFINED")
	require.Equal(t, RuntimeError, status)

	var report struct {
		Phase string `json:"phase"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload), &report))
	require.Equal(t, "runtime", report.Phase)
	require.Equal(t, "UndefinedVariable", report.Kind)
}
