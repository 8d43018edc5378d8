package evaluator

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/parser"
	"github.com/aetherscript/aether/resolver"
)

func mustEval(t *testing.T, src string) (objects.Value, *Evaluator) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	e := New()
	result, evalErr := e.Eval(prog)
	require.Nil(t, evalErr, "unexpected error: %v", evalErr)
	return result, e
}

func TestSetAndArithmetic(t *testing.T) {
	result, _ := mustEval(t, "Set X 10\nSet Y 20\n(X + Y)")
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(30), n.Value)
}

func TestSetUpdatesEnclosingScope(t *testing.T) {
	result, _ := mustEval(t, `
Set X 1
Func BUMP() { Set X (X + 1) }
BUMP()
X
`)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(2), n.Value)
}

func TestFunctionClosureCapturesDefiningEnv(t *testing.T) {
	result, _ := mustEval(t, `
Func MAKE_ADDER(N) {
  Func ADDER(X) { Return (X + N) }
  Return ADDER
}
Set ADD5 MAKE_ADDER(5)
ADD5(10)
`)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(15), n.Value)
}

func TestArityMismatchReportsCallStack(t *testing.T) {
	prog, err := parser.Parse(`
Func ADD(A, B) { Return (A + B) }
ADD(1)
`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.ArityMismatch, evalErr.Kind)
	require.Len(t, evalErr.CallStack, 1)
	require.Equal(t, "ADD(A, B)", evalErr.CallStack[0].Signature)
}

func TestMapCallbackErrorCarriesBothFrames(t *testing.T) {
	prog, err := parser.Parse(`
Func BAD(X) { Return (X + Y) }
MAP([1, 2], BAD)
`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.UndefinedVariable, evalErr.Kind)
	require.Len(t, evalErr.CallStack, 2)
	require.Equal(t, "MAP(", evalErr.CallStack[0].Signature)
	require.Equal(t, "BAD(X)", evalErr.CallStack[1].Signature)
}

func TestForLoopOverArrayHonorsBreakAndContinue(t *testing.T) {
	result, _ := mustEval(t, `
Set TOTAL 0
For I In [1, 2, 3, 4, 5] {
  If (I == 4) { Break }
  If ((I % 2) == 0) { Continue }
  Set TOTAL (TOTAL + I)
}
TOTAL
`)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(4), n.Value) // 1 + 3, stops before 4
}

func TestForLoopOverDictIteratesKeys(t *testing.T) {
	result, _ := mustEval(t, `
Set D {"A": 1, "B": 2}
Set KEY_LIST []
For K In D { Set KEY_LIST (PUSH(KEY_LIST, K)) }
KEY_LIST
`)
	arr, ok := result.(*objects.Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 2)
}

func TestWhileLoopAccumulates(t *testing.T) {
	result, _ := mustEval(t, `
Set I 0
Set SUM 0
While ((I < 5)) {
  Set SUM (SUM + I)
  Set I (I + 1)
}
SUM
`)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(10), n.Value)
}

func TestShortCircuitAndReturnsLastOperand(t *testing.T) {
	result, _ := mustEval(t, `(False && (1 / 0))`)
	b, ok := result.(*objects.Boolean)
	require.True(t, ok)
	require.False(t, b.Value)
}

func TestShortCircuitOrReturnsLastOperandUncoerced(t *testing.T) {
	result, _ := mustEval(t, `(0 || "fallback")`)
	s, ok := result.(*objects.AetherString)
	require.True(t, ok)
	require.Equal(t, "fallback", s.Value)
}

func TestIndexOutOfBoundsReportsPosition(t *testing.T) {
	prog, err := parser.Parse("Set A [1, 2]\nA[5]")
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.IndexOutOfBounds, evalErr.Kind)
	require.True(t, evalErr.HasPos)
}

func TestPermissionDeniedBeforeSideEffect(t *testing.T) {
	prog, err := parser.Parse(`WRITE_FILE("should-not-exist.tmp", "x")`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.PermissionDenied, evalErr.Kind)
	_, statErr := os.Stat("should-not-exist.tmp")
	require.True(t, os.IsNotExist(statErr))
}

func TestPermissionGrantedAllowsFilesystemWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	prog, err := parser.Parse(`WRITE_FILE("` + filepath.ToSlash(path) + `", "hi")`)
	require.NoError(t, err)
	e := New()
	e.SetPermissions(builtins.Permissions{Filesystem: true})
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, "hi", string(data))
}

func TestPlainTraceOptionalLabel(t *testing.T) {
	prog, err := parser.Parse(`
TRACE("hello")
TRACE(123)
TRACE("dbg", 1, 2)
`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)

	records := e.TraceRecords()
	require.Len(t, records, 3)
	require.Equal(t, "#1 hello", records[0].Format())
	require.Equal(t, "#2 123", records[1].Format())
	require.Equal(t, "#3 [dbg] 1 2", records[2].Format())
}

func TestStepsCounterResetsPerTopLevelEval(t *testing.T) {
	prog, err := parser.Parse("Set X 1\nSet Y 2\nSet Z 3")
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)
	require.Equal(t, 3, e.Steps())

	prog2, err := parser.Parse("Set X 1")
	require.NoError(t, err)
	_, evalErr = e.Eval(prog2)
	require.Nil(t, evalErr)
	require.Equal(t, 1, e.Steps())
}

func TestImportExportAcrossModule(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "mathx.aether")
	require.NoError(t, os.WriteFile(modPath, []byte("Func ADD(A, B) { Return (A + B) }\nExport ADD\n"), 0o644))

	prog, err := parser.Parse(`
Import ADD From "./mathx"
ADD(2, 3)
`)
	require.NoError(t, err)

	e := New()
	e.SetModuleResolver(resolver.NewFileSystemModuleResolver())
	e.SetBaseDir(dir)
	result, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(5), n.Value)
}

func TestImportWithoutResolverFailsWithImportDisabled(t *testing.T) {
	prog, err := parser.Parse(`Import ADD From "./mathx"`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.ImportDisabled, evalErr.Kind)
}

func TestRecursiveFactorial(t *testing.T) {
	result, _ := mustEval(t, `
Func F(N) { If (N <= 1) { Return 1 } Else { Return (N * F((N - 1))) } }
F(5)
`)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(120), n.Value)
}

func TestForLoopSum(t *testing.T) {
	result, _ := mustEval(t, "Set S 0\nFor I In [1,2,3,4,5] { Set S (S + I) }\nS")
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(15), n.Value)
}

func TestLargeIntegerLiteralEvaluatesToFraction(t *testing.T) {
	result, _ := mustEval(t, "Set A 3284628396498263948629734587234583548273548253487325\nA")
	require.Equal(t, objects.FractionType, result.Type())
	require.Equal(t, "3284628396498263948629734587234583548273548253487325", result.String())
}

func TestLargeIntegerMultiplicationStaysExact(t *testing.T) {
	result, _ := mustEval(t, `
Set A 3284628396498263948629734587234583548273548253487325
Set B 4728364875283754872534781253784527635487235478923587423
(A * B)
`)
	require.Equal(t, objects.FractionType, result.Type())
	require.Equal(t, "15530921538361993565152129229913877304236184424817572492058487603003384389356972658598499493820859259913475", result.String())
}

func TestTraceRecordsSurviveRuntimeError(t *testing.T) {
	prog, err := parser.Parse(`
TRACE("first")
TRACE("second")
MISSING_NAME
`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.UndefinedVariable, evalErr.Kind)

	records := e.TraceRecords()
	require.Len(t, records, 2)
	require.Equal(t, "#1 first", records[0].Format())
	require.Equal(t, "#2 second", records[1].Format())
}

func TestTraceRingOverflowKeepsLastEntriesWithMonotonicSequence(t *testing.T) {
	prog, err := parser.Parse(`
Set I 0
While ((I < 10)) {
  TRACE(I)
  Set I (I + 1)
}
`)
	require.NoError(t, err)
	e := New()
	e.SetTraceBufferSize(4)
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)

	stats := e.TraceStats()
	require.Equal(t, 4, stats.Size)
	require.Equal(t, uint64(10), stats.TotalEmitted)
	require.Equal(t, uint64(7), stats.FirstSequence) // total - capacity + 1

	records := e.TraceRecords()
	require.Len(t, records, 4)
	for i, r := range records {
		require.Equal(t, uint64(7+i), r.Sequence)
	}
}

func TestTakeTraceDrainsBufferButKeepsSequenceRunning(t *testing.T) {
	prog, err := parser.Parse(`TRACE(1)` + "\n" + `TRACE(2)`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)

	taken := e.TakeTrace()
	require.Len(t, taken, 2)
	require.Equal(t, "#1 1", taken[0].Format())
	require.Equal(t, "#2 2", taken[1].Format())
	require.Empty(t, e.TakeTrace(), "a second drain must return nothing")

	prog2, err := parser.Parse(`TRACE(3)`)
	require.NoError(t, err)
	_, evalErr = e.Eval(prog2)
	require.Nil(t, evalErr)

	taken = e.TakeTrace()
	require.Len(t, taken, 1)
	require.Equal(t, "#3 3", taken[0].Format(), "sequence keeps counting across drains")
}

func TestClearTraceResetsSequence(t *testing.T) {
	prog, err := parser.Parse(`TRACE(1)`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)

	e.ClearTrace()
	require.Empty(t, e.TraceRecords())
	require.Equal(t, uint64(0), e.TraceStats().TotalEmitted)

	prog2, err := parser.Parse(`TRACE(2)`)
	require.NoError(t, err)
	_, evalErr = e.Eval(prog2)
	require.Nil(t, evalErr)

	records := e.TraceRecords()
	require.Len(t, records, 1)
	require.Equal(t, "#1 2", records[0].Format())
}

func TestLeveledTraceCarriesCategoryAndLabel(t *testing.T) {
	prog, err := parser.Parse(`TRACE_WARN("cat", "lbl", 1, 2)`)
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)

	records := e.TraceRecords()
	require.Len(t, records, 1)
	require.Equal(t, "warn", records[0].Level)
	require.Equal(t, "cat", records[0].Category)
	require.Equal(t, "lbl", records[0].Label)
	require.Equal(t, "#1 [lbl] 1 2", records[0].Format())
}

func TestBreakOutsideLoopIsFatal(t *testing.T) {
	prog, err := parser.Parse("Break")
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.BreakOutsideLoop, evalErr.Kind)
}

func TestReturnOutsideFunctionIsFatal(t *testing.T) {
	prog, err := parser.Parse("Return 1")
	require.NoError(t, err)
	e := New()
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.ReturnOutsideFunction, evalErr.Kind)
}

func TestIndexedAssignmentMutatesInPlace(t *testing.T) {
	result, _ := mustEval(t, "Set A [1, 2, 3]\nSet A[1] 99\nA[1]")
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(99), n.Value)
}

func TestDictKeyedAssignmentAndFieldAccess(t *testing.T) {
	result, _ := mustEval(t, `
Set D {"a": 1}
Set D["b"] 2
D.b
`)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(2), n.Value)
}

func TestCircularImportDetected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.aether"),
		[]byte("Import B From \"./b\"\nExport A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.aether"),
		[]byte("Import A From \"./a\"\nExport B"), 0o644))

	prog, err := parser.Parse(`Import A From "./a"`)
	require.NoError(t, err)

	e := New()
	e.SetModuleResolver(resolver.NewFileSystemModuleResolver())
	e.SetBaseDir(dir)
	_, evalErr := e.Eval(prog)
	require.NotNil(t, evalErr)
	require.Equal(t, errs.CircularImport, evalErr.Kind)
}

func TestPrintWritesToConfiguredStdout(t *testing.T) {
	prog, err := parser.Parse(`PRINTLN("hi")`)
	require.NoError(t, err)
	e := New()
	e.SetPermissions(builtins.Permissions{Console: true})
	var buf bytes.Buffer
	e.SetStdout(&buf)
	_, evalErr := e.Eval(prog)
	require.Nil(t, evalErr)
	require.Equal(t, "hi\n", buf.String())
}
