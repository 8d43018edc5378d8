package resolver

import "github.com/aetherscript/aether/errs"

// ImportTracker records canonical paths currently being resolved, so
// the evaluator can detect circular imports: a path that tries to
// re-enter while still in progress is a cycle, not a cache hit.
type ImportTracker struct {
	inProgress map[string]bool
}

// NewImportTracker returns an empty tracker.
func NewImportTracker() *ImportTracker {
	return &ImportTracker{inProgress: make(map[string]bool)}
}

// Enter marks canonicalPath as in progress, returning a CircularImport
// error if it already is. Callers must pair a successful Enter with a
// deferred Leave.
func (t *ImportTracker) Enter(canonicalPath string) *errs.AetherError {
	if t.inProgress[canonicalPath] {
		return errs.Newf(errs.CircularImport, errs.PhaseRuntime, "circular import detected for %q", canonicalPath)
	}
	t.inProgress[canonicalPath] = true
	return nil
}

// Leave clears canonicalPath's in-progress mark.
func (t *ImportTracker) Leave(canonicalPath string) {
	delete(t.inProgress, canonicalPath)
}
