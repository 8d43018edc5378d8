package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEvaluatesEveryJobInInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 3)
	for i, src := range []string{"(1 + 1)", "(2 + 2)", "(3 + 3)"} {
		p := filepath.Join(dir, filepath.Base(dir)+string(rune('a'+i))+".aether")
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
		paths[i] = p
	}

	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{Path: p}
	}

	results, err := Run(jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "2", results[0].Value)
	require.Equal(t, "4", results[1].Value)
	require.Equal(t, "6", results[2].Value)
	for i, r := range results {
		require.Equal(t, paths[i], r.Path)
	}
}

func TestRunReportsPerFileErrorsWithoutAbortingBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.aether")
	bad := filepath.Join(dir, "bad.aether")
	require.NoError(t, os.WriteFile(good, []byte("(1 + 1)"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("UNDEFINED"), 0o644))

	results, err := Run([]Job{{Path: good}, {Path: bad}}, 4)
	require.NoError(t, err)
	require.Nil(t, results[0].Err)
	require.Equal(t, "2", results[0].Value)
	require.NotNil(t, results[1].Err)
}

func TestRunClampsWorkersToAtLeastOne(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "one.aether")
	require.NoError(t, os.WriteFile(p, []byte("7"), 0o644))

	results, err := Run([]Job{{Path: p}}, 0)
	require.NoError(t, err)
	require.Equal(t, "7", results[0].Value)
}
