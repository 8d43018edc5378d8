package aether

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/resolver"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func testResolver() resolver.Resolver { return resolver.NewFileSystemModuleResolver() }

func permissionsWithConsole() builtins.Permissions { return builtins.Permissions{Console: true} }

func TestEvalReturnsLastStatementValue(t *testing.T) {
	e := New()
	result, err := e.Eval("Set X 10\n(X * 2)")
	require.Nil(t, err)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(20), n.Value)
}

func TestEvalPersistsGlobalsAcrossCalls(t *testing.T) {
	e := New()
	_, err := e.Eval("Set COUNTER 0")
	require.Nil(t, err)
	_, err = e.Eval("Set COUNTER (COUNTER + 1)")
	require.Nil(t, err)
	result, err := e.Eval("COUNTER")
	require.Nil(t, err)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(1), n.Value)
}

func TestEvalUsesASTCacheOnRepeatedSource(t *testing.T) {
	e := New()
	src := "Set X 1\nX"

	_, err := e.Eval(src)
	require.Nil(t, err)
	stats := e.CacheStats()
	require.Equal(t, uint64(0), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)

	_, err = e.Eval(src)
	require.Nil(t, err)
	stats = e.CacheStats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
}

func TestClearCacheResetsCounters(t *testing.T) {
	e := New()
	_, err := e.Eval("Set X 1")
	require.Nil(t, err)
	e.ClearCache()
	stats := e.CacheStats()
	require.Equal(t, 0, stats.Size)
	require.Equal(t, uint64(0), stats.Hits)
	require.Equal(t, uint64(0), stats.Misses)
}

func TestEvalFileResolvesRelativeImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/util.aether", "Func DOUBLE(N) { Return (N * 2) }\nExport DOUBLE\n")
	writeFile(t, dir+"/main.aether", "Import DOUBLE From \"./util\"\nDOUBLE(21)\n")

	e := New()
	e.SetModuleResolver(testResolver())
	result, err := e.EvalFile(dir + "/main.aether")
	require.Nil(t, err)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(42), n.Value)
}

func TestEvalFileMissingPathReportsIOError(t *testing.T) {
	e := New()
	_, err := e.EvalFile("/nonexistent/path/does-not-exist.aether")
	require.NotNil(t, err)
	require.Equal(t, errs.IOError, err.Kind)
}

func TestEvalReportProjectsUndefinedVariableError(t *testing.T) {
	e := New()
	_, report := e.EvalReport("UNDEFINED_NAME")
	require.NotNil(t, report)
	require.Equal(t, string(errs.UndefinedVariable), report.Kind)
	require.Equal(t, string(errs.PhaseRuntime), report.Phase)
}

func TestEvalReportSucceedsReturnsValueAndNilReport(t *testing.T) {
	e := New()
	result, report := e.EvalReport("(1 + 1)")
	require.Nil(t, report)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(2), n.Value)
}

func TestWithIsolatedScopeDiscardsBindings(t *testing.T) {
	e := New()
	_, err := e.Eval("Set X 1")
	require.Nil(t, err)

	_, scopedErr := e.WithIsolatedScope(func(scoped *Engine) (objects.Value, *errs.AetherError) {
		return scoped.Eval("Set X 99\nX")
	})
	require.Nil(t, scopedErr)

	result, err := e.Eval("X")
	require.Nil(t, err)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(1), n.Value, "isolated scope must not leak into the enclosing global environment")
}

func TestWithIsolatedScopeDiscardsSetGlobalAndFunctions(t *testing.T) {
	e := New()
	_, scopedErr := e.WithIsolatedScope(func(scoped *Engine) (objects.Value, *errs.AetherError) {
		scoped.SetGlobal("INJECTED", objects.NewNumber(1))
		return scoped.Eval("Func HIDDEN() { Return 1 }\nHIDDEN()")
	})
	require.Nil(t, scopedErr)

	_, err := e.Eval("INJECTED")
	require.NotNil(t, err)
	require.Equal(t, errs.UndefinedVariable, err.Kind)

	_, err = e.Eval("HIDDEN()")
	require.NotNil(t, err)
	require.Equal(t, errs.UndefinedVariable, err.Kind)
}

func TestSetGlobalInjectsHostValue(t *testing.T) {
	e := New()
	e.SetGlobal("HOST_VALUE", objects.NewNumber(7))
	result, err := e.Eval("HOST_VALUE")
	require.Nil(t, err)
	n, ok := result.(*objects.Number)
	require.True(t, ok)
	require.Equal(t, float64(7), n.Value)
}

func TestSetStdoutRedirectsPrint(t *testing.T) {
	e := New()
	e.SetPermissions(permissionsWithConsole())
	var buf bytes.Buffer
	e.SetStdout(&buf)
	_, err := e.Eval(`PRINTLN("hello")`)
	require.Nil(t, err)
	require.Equal(t, "hello\n", buf.String())
}

func TestEngineTakeAndClearTrace(t *testing.T) {
	e := New()
	_, err := e.Eval(`TRACE("hello")`)
	require.Nil(t, err)

	taken := e.TakeTrace()
	require.Len(t, taken, 1)
	require.Equal(t, "#1 hello", taken[0].Format())
	require.Empty(t, e.TakeTrace())

	_, err = e.Eval(`TRACE("again")`)
	require.Nil(t, err)
	e.ClearTrace()
	require.Empty(t, e.TraceRecords())

	_, err = e.Eval(`TRACE("fresh")`)
	require.Nil(t, err)
	records := e.TraceRecords()
	require.Len(t, records, 1)
	require.Equal(t, "#1 fresh", records[0].Format(), "clear resets the sequence counter")
}

func TestIDIsStableAcrossCalls(t *testing.T) {
	e := New()
	require.NotEmpty(t, e.ID())
	require.Equal(t, e.ID(), e.ID())
}

// TestConstantFoldedExactFractionDivisionMatchesUnfoldedEval checks
// folding/runtime parity for a division whose exact result is a
// non-integer Fraction: the optimizer folds "(A / B)" into a literal
// before caching it, and that folded literal must evaluate to the same
// value a non-constant division of the same operands would.
func TestConstantFoldedExactFractionDivisionMatchesUnfoldedEval(t *testing.T) {
	e := New()
	folded, err := e.Eval("(10000000000000000001 / 3)")
	require.Nil(t, err)

	unfolded, err := e.Eval("Set A 10000000000000000001\nSet B 3\n(A / B)")
	require.Nil(t, err)

	require.Equal(t, unfolded.String(), folded.String())
	require.Equal(t, "10000000000000000001/3", folded.String())
}
