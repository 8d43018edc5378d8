// Package runner implements the CLI's batch mode: evaluating many
// .aether files concurrently, one Engine per file so no state is
// shared across script runs, per the concurrency model's "independent
// engine instances share no state" rule. Concurrency is bounded by a
// github.com/panjf2000/ants/v2 goroutine pool rather than one goroutine
// per file, so a --jobs flag on a thousand-file batch doesn't spawn a
// thousand goroutines at once.
package runner

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/aetherscript/aether"
	"github.com/aetherscript/aether/errs"
)

// Job is one file to evaluate and the engine-construction/permission
// setup to run before evaluating it.
type Job struct {
	Path    string
	Prepare func(e *aether.Engine)
}

// Result pairs a Job's path with its outcome.
type Result struct {
	Path   string
	Value  string
	Err    *errs.AetherError
	Engine *aether.Engine
}

// Run evaluates every job concurrently across a pool of size workers
// (at least 1), returning results in the same order as jobs regardless
// of completion order.
func Run(jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]Result, len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))

	for i, job := range jobs {
		i, job := i, job
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = runOne(job)
		})
		if submitErr != nil {
			results[i] = Result{Path: job.Path, Err: errs.Newf(errs.IOError, errs.PhaseRuntime, "scheduling %q: %v", job.Path, submitErr)}
			wg.Done()
		}
	}
	wg.Wait()
	return results, nil
}

func runOne(job Job) Result {
	engine := aether.New()
	if job.Prepare != nil {
		job.Prepare(engine)
	}
	value, err := engine.EvalFile(job.Path)
	if err != nil {
		return Result{Path: job.Path, Err: err, Engine: engine}
	}
	return Result{Path: job.Path, Value: value.String(), Engine: engine}
}
