package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aetherscript/aether/errs"
	"github.com/stretchr/testify/require"
)

func TestResolveNoBaseDirectory(t *testing.T) {
	r := NewFileSystemModuleResolver()
	_, _, err := r.Resolve("", "./math")
	require.NotNil(t, err)
	require.Equal(t, errs.NoBaseDirectory, err.Kind)
}

func TestResolveReadsFileAppendingExtension(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "math.aether")
	require.NoError(t, os.WriteFile(modPath, []byte("Func ADD(A, B) { Return (A + B) }\nExport ADD\n"), 0o644))

	r := NewFileSystemModuleResolver()
	source, canonical, err := r.Resolve(dir, "./math")
	require.Nil(t, err)
	require.Contains(t, source, "Func ADD")
	require.Equal(t, filepath.ToSlash(modPath), canonical)
}

func TestResolveModuleNotFound(t *testing.T) {
	dir := t.TempDir()
	r := NewFileSystemModuleResolver()
	_, _, err := r.Resolve(dir, "./missing")
	require.NotNil(t, err)
	require.Equal(t, errs.ModuleNotFound, err.Kind)
}

func TestResolveRejectsPathOutsideAllowGlobs(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "secret.aether")
	require.NoError(t, os.WriteFile(modPath, []byte("Export X"), 0o644))

	r := &FileSystemModuleResolver{AllowGlobs: []string{filepath.ToSlash(dir) + "/allowed/**"}}
	_, _, err := r.Resolve(dir, "./secret")
	require.NotNil(t, err)
	require.Equal(t, errs.ModuleNotFound, err.Kind)
}

func TestImportTrackerDetectsCycle(t *testing.T) {
	tr := NewImportTracker()
	require.Nil(t, tr.Enter("/a.aether"))
	err := tr.Enter("/a.aether")
	require.NotNil(t, err)
	require.Equal(t, errs.CircularImport, err.Kind)

	tr.Leave("/a.aether")
	require.Nil(t, tr.Enter("/a.aether"))
}
