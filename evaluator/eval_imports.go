package evaluator

import (
	"github.com/aetherscript/aether/environment"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/optimizer"
	"github.com/aetherscript/aether/parser"
)

// loadModuleProgram lexes, parses, and optimizes an imported module's
// source. Modules bypass the host-level AST cache: the cache's
// contract is keyed on the top-level eval() call, and module source is
// identified by resolved path rather than by source text the host ever
// submits directly.
func (e *Evaluator) loadModuleProgram(source string) (*parser.Program, *errs.AetherError) {
	program, err := parser.Parse(source)
	if err != nil {
		if pe, ok := err.(*parser.ParseError); ok {
			return nil, errs.FromParseError(pe)
		}
		return nil, errs.New(errs.ParseError, errs.PhaseParse, err.Error())
	}
	return optimizer.Optimize(program), nil
}

// evalImportStatement resolves s.Path via the installed resolver,
// lexes/parses/optimizes its source, evaluates it in a fresh child of
// the global environment, and re-exports only the names that module
// marked with Export, bound into env under the names s asked for.
func (e *Evaluator) evalImportStatement(s *parser.ImportStatement, env *environment.Environment) (objects.Value, signal, *errs.AetherError) {
	line, col := s.Pos()
	if e.resolver == nil {
		return nil, signalNone, errs.New(errs.ImportDisabled, errs.PhaseRuntime,
			"Import requires a module resolver; none is installed").At(line, col)
	}

	source, canonical, err := e.resolver.Resolve(e.baseDir, s.Path)
	if err != nil {
		if !err.HasPos {
			err.At(line, col)
		}
		return nil, signalNone, err
	}

	if err := e.tracker.Enter(canonical); err != nil {
		err.At(line, col)
		return nil, signalNone, err
	}
	defer e.tracker.Leave(canonical)

	program, lexParseErr := e.loadModuleProgram(source)
	if lexParseErr != nil {
		if !lexParseErr.HasPos {
			lexParseErr.At(line, col)
		}
		return nil, signalNone, lexParseErr
	}

	moduleEnv := environment.New(e.Global)
	exported := make(map[string]bool)
	if _, _, runErr := e.evalModuleStatements(program.Statements, moduleEnv, exported); runErr != nil {
		return nil, signalNone, runErr
	}

	for _, name := range s.Names {
		if !exported[name] {
			return nil, signalNone, errs.Newf(errs.ModuleNotFound, errs.PhaseRuntime,
				"module %q does not export %q", s.Path, name).At(line, col)
		}
		v, _ := moduleEnv.Get(name)
		env.Set(name, v)
	}
	return objects.NullValue, signalNone, nil
}

// evalModuleStatements runs a module's top-level statements the same
// way evalStatements does, additionally recording every Export name
// into exported so the importer can check requested names against it.
func (e *Evaluator) evalModuleStatements(stmts []parser.Statement, env *environment.Environment, exported map[string]bool) (objects.Value, signal, *errs.AetherError) {
	var result objects.Value = objects.NullValue
	for _, stmt := range stmts {
		e.steps++
		if exp, ok := stmt.(*parser.ExportStatement); ok {
			exported[exp.Name] = true
			continue
		}
		v, sig, err := e.evalStatement(stmt, env)
		if err != nil {
			return nil, signalNone, err
		}
		if sig != signalNone {
			return v, sig, nil
		}
		result = v
	}
	return result, signalNone, nil
}
