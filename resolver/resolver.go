// Package resolver implements the host-installed module resolver
// contract: given a base directory and a path string written in an
// Import statement, produce source text or a resolution error. No
// resolver is installed by default, so Import fails fast with
// ImportDisabled until the host opts in.
package resolver

import (
	"os"
	"path/filepath"

	"github.com/aetherscript/aether/errs"
	"github.com/gobwas/glob"
)

// Resolver resolves an import path relative to a base directory into
// module source text.
type Resolver interface {
	Resolve(baseDir, path string) (source string, canonicalPath string, err *errs.AetherError)
}

// FileSystemModuleResolver resolves "./" and "../" relative paths
// against the filesystem, appending a ".aether" extension when the
// path carries none. AllowGlobs, when non-empty, restricts resolution
// to canonical paths matching at least one of the compiled patterns,
// the host's sandboxing knob for untrusted import graphs.
type FileSystemModuleResolver struct {
	AllowGlobs []string

	compiled    []glob.Glob
	compileOnce bool
}

// NewFileSystemModuleResolver builds a resolver with no path
// restriction; use AllowGlobs to add one.
func NewFileSystemModuleResolver() *FileSystemModuleResolver {
	return &FileSystemModuleResolver{}
}

func (r *FileSystemModuleResolver) ensureCompiled() *errs.AetherError {
	if r.compileOnce {
		return nil
	}
	r.compileOnce = true
	for _, pattern := range r.AllowGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return errs.Newf(errs.ModuleNotFound, errs.PhaseRuntime, "invalid module allow-glob %q: %v", pattern, err)
		}
		r.compiled = append(r.compiled, g)
	}
	return nil
}

func (r *FileSystemModuleResolver) allowed(canonical string) bool {
	if len(r.compiled) == 0 {
		return true
	}
	for _, g := range r.compiled {
		if g.Match(canonical) {
			return true
		}
	}
	return false
}

// Resolve implements Resolver.
func (r *FileSystemModuleResolver) Resolve(baseDir, path string) (string, string, *errs.AetherError) {
	if baseDir == "" && !filepath.IsAbs(path) {
		return "", "", errs.New(errs.NoBaseDirectory, errs.PhaseRuntime,
			"relative import has no base directory; use eval_file or set an absolute path")
	}
	if cerr := r.ensureCompiled(); cerr != nil {
		return "", "", cerr
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, path)
	}
	if filepath.Ext(full) == "" {
		full += ".aether"
	}

	canonical, err := filepath.Abs(full)
	if err != nil {
		return "", "", errs.Newf(errs.ModuleNotFound, errs.PhaseRuntime, "cannot resolve %q: %v", path, err)
	}
	canonical = filepath.ToSlash(canonical)

	if !r.allowed(canonical) {
		return "", "", errs.Newf(errs.ModuleNotFound, errs.PhaseRuntime, "module %q is outside the allowed import paths", path)
	}

	data, ioerr := os.ReadFile(canonical)
	if ioerr != nil {
		return "", "", errs.Newf(errs.ModuleNotFound, errs.PhaseRuntime, "module %q not found: %v", path, ioerr)
	}
	return string(data), canonical, nil
}
