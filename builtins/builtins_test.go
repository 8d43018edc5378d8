package builtins

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
)

// fakeRuntime is a minimal Runtime for exercising built-ins without the
// evaluator: callbacks are dispatched through fn, traces collected into
// traced, and I/O wired to in-memory buffers.
type fakeRuntime struct {
	perms  Permissions
	out    bytes.Buffer
	in     io.Reader
	traced []string
	fn     func(args []objects.Value) (objects.Value, *errs.AetherError)
}

func (f *fakeRuntime) CallFunction(fn objects.Value, args []objects.Value) (objects.Value, *errs.AetherError) {
	if f.fn == nil {
		return objects.NullValue, nil
	}
	return f.fn(args)
}

func (f *fakeRuntime) Permissions() Permissions { return f.perms }

func (f *fakeRuntime) Trace(level, category, label string, values []objects.Value) {
	f.traced = append(f.traced, level+"/"+category+"/"+label)
}

func (f *fakeRuntime) Stdout() io.Writer { return &f.out }
func (f *fakeRuntime) Stdin() io.Reader  { return f.in }

func TestToStringToNumberRoundTrip(t *testing.T) {
	rt := &fakeRuntime{}
	num, err := Invoke(rt, "TO_NUMBER", []objects.Value{objects.NewString("42")})
	require.Nil(t, err)
	s, err := Invoke(rt, "TO_STRING", []objects.Value{num})
	require.Nil(t, err)
	require.Equal(t, "42", s.(*objects.AetherString).Value)
}

func TestSplitJoinRoundTrip(t *testing.T) {
	rt := &fakeRuntime{}
	for _, s := range []string{"a,b,c", "one", "x,y"} {
		parts, err := Invoke(rt, "SPLIT", []objects.Value{objects.NewString(s), objects.NewString(",")})
		require.Nil(t, err)
		joined, err := Invoke(rt, "JOIN", []objects.Value{parts, objects.NewString(",")})
		require.Nil(t, err)
		require.Equal(t, s, joined.(*objects.AetherString).Value)
	}
}

func TestPermissionGateBlocksBeforeSideEffect(t *testing.T) {
	rt := &fakeRuntime{} // all permissions false
	_, err := Invoke(rt, "WRITE_FILE", []objects.Value{objects.NewString("x"), objects.NewString("y")})
	require.NotNil(t, err)
	require.Equal(t, errs.PermissionDenied, err.Kind)

	_, err = Invoke(rt, "PRINTLN", []objects.Value{objects.NewString("hi")})
	require.NotNil(t, err)
	require.Equal(t, errs.PermissionDenied, err.Kind)
	require.Zero(t, rt.out.Len(), "gated PRINTLN must not write")
}

func TestPrintlnJoinsArgsWithSpaces(t *testing.T) {
	rt := &fakeRuntime{perms: Permissions{Console: true}}
	_, err := Invoke(rt, "PRINTLN", []objects.Value{objects.NewString("a"), objects.NewNumber(1)})
	require.Nil(t, err)
	require.Equal(t, "a 1\n", rt.out.String())
}

func TestInputReadsOneLine(t *testing.T) {
	rt := &fakeRuntime{perms: Permissions{Console: true}, in: strings.NewReader("hello\nrest")}
	v, err := Invoke(rt, "INPUT", nil)
	require.Nil(t, err)
	require.Equal(t, "hello", v.(*objects.AetherString).Value)
}

func TestMapInvokesCallbackPerElement(t *testing.T) {
	rt := &fakeRuntime{fn: func(args []objects.Value) (objects.Value, *errs.AetherError) {
		n := args[0].(*objects.Number)
		return objects.NewNumber(n.Value * 2), nil
	}}
	arr := objects.NewArray([]objects.Value{objects.NewNumber(1), objects.NewNumber(2)})
	v, err := Invoke(rt, "MAP", []objects.Value{arr, objects.NewBuiltinRef("ABS")})
	require.Nil(t, err)
	out := v.(*objects.Array)
	require.Len(t, out.Elements, 2)
	require.Equal(t, float64(2), out.Elements[0].(*objects.Number).Value)
	require.Equal(t, float64(4), out.Elements[1].(*objects.Number).Value)
}

func TestReduceThreadsAccumulator(t *testing.T) {
	rt := &fakeRuntime{fn: func(args []objects.Value) (objects.Value, *errs.AetherError) {
		acc := args[0].(*objects.Number)
		e := args[1].(*objects.Number)
		return objects.NewNumber(acc.Value + e.Value), nil
	}}
	arr := objects.NewArray([]objects.Value{objects.NewNumber(1), objects.NewNumber(2), objects.NewNumber(3)})
	v, err := Invoke(rt, "REDUCE", []objects.Value{arr, objects.NewBuiltinRef("ABS"), objects.NewNumber(0)})
	require.Nil(t, err)
	require.Equal(t, float64(6), v.(*objects.Number).Value)
}

func TestFilterKeepsTruthyResults(t *testing.T) {
	rt := &fakeRuntime{fn: func(args []objects.Value) (objects.Value, *errs.AetherError) {
		n := args[0].(*objects.Number)
		return objects.NewBoolean(n.Value > 1), nil
	}}
	arr := objects.NewArray([]objects.Value{objects.NewNumber(1), objects.NewNumber(2), objects.NewNumber(3)})
	v, err := Invoke(rt, "FILTER", []objects.Value{arr, objects.NewBuiltinRef("ABS")})
	require.Nil(t, err)
	out := v.(*objects.Array)
	require.Len(t, out.Elements, 2)
}

func TestDictBuiltinsPreserveInsertionOrder(t *testing.T) {
	rt := &fakeRuntime{}
	d := objects.NewDict()
	d.Set("b", objects.NewNumber(2))
	d.Set("a", objects.NewNumber(1))

	keys, err := Invoke(rt, "KEYS", []objects.Value{d})
	require.Nil(t, err)
	arr := keys.(*objects.Array)
	require.Equal(t, "b", arr.Elements[0].(*objects.AetherString).Value)
	require.Equal(t, "a", arr.Elements[1].(*objects.AetherString).Value)

	has, err := Invoke(rt, "HAS_KEY", []objects.Value{d, objects.NewString("a")})
	require.Nil(t, err)
	require.True(t, has.Truthy())
}

func TestUndefinedBuiltinReportsUndefinedFunction(t *testing.T) {
	rt := &fakeRuntime{}
	_, err := Invoke(rt, "NO_SUCH_BUILTIN", nil)
	require.NotNil(t, err)
	require.Equal(t, errs.UndefinedFunction, err.Kind)
}
