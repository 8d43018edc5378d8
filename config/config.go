// Package config loads the CLI's optional TOML configuration file:
// engine defaults (trace buffer size, permissions, stdlib path) that
// would otherwise have to be repeated as flags on every invocation.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/aetherscript/aether/builtins"
	"github.com/aetherscript/aether/evaluator"
)

// Permissions mirrors builtins.Permissions in TOML's table form, e.g.:
//
//	[permissions]
//	filesystem = true
//	network = false
//	console = true
type Permissions struct {
	Filesystem bool `toml:"filesystem"`
	Network    bool `toml:"network"`
	Console    bool `toml:"console"`
}

// ToBuiltins converts the TOML-shaped record into the engine's own
// Permissions type.
func (p Permissions) ToBuiltins() builtins.Permissions {
	return builtins.Permissions{Filesystem: p.Filesystem, Network: p.Network, Console: p.Console}
}

// Config is the top-level shape of an Aether CLI config file.
type Config struct {
	TraceBufferSize int         `toml:"trace_buffer_size"`
	NoStdlib        bool        `toml:"no_stdlib"`
	StdlibPath      string      `toml:"stdlib_path"`
	Permissions     Permissions `toml:"permissions"`
}

// Default returns a Config with the engine's own zero-value defaults:
// trace buffer at evaluator.DefaultTraceBufferSize, NoStdlib false,
// permissions all denied. No stdlib bundle is loaded whatever NoStdlib
// says.
func Default() Config {
	return Config{TraceBufferSize: evaluator.DefaultTraceBufferSize}
}

// Load reads and parses a TOML config file at path, starting from
// Default() so any field the file omits keeps its default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %q: %w", path, err)
	}
	if cfg.TraceBufferSize <= 0 {
		cfg.TraceBufferSize = evaluator.DefaultTraceBufferSize
	}
	return cfg, nil
}
