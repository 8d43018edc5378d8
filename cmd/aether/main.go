// Command aether is the CLI driver: evaluate one or more .aether files,
// dump their parsed AST, parse-check without evaluating, or fall into
// an interactive REPL when no file is given.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aetherscript/aether"
	"github.com/aetherscript/aether/astdump"
	"github.com/aetherscript/aether/config"
	"github.com/aetherscript/aether/errs"
	"github.com/aetherscript/aether/metrics"
	"github.com/aetherscript/aether/parser"
	"github.com/aetherscript/aether/repl"
	"github.com/aetherscript/aether/resolver"
	"github.com/aetherscript/aether/runner"
)

const (
	version = "v0.1.0"
	author  = "Aether Contributors"
	license = "MIT"
	line    = "----------------------------------------------------------------"
	prompt  = "aether >>> "
)

var banner = `
   _             _   _
  /_\   ___ ___ | |_ | |__    ___  _ __
 //_\\ / _ \_  / | __|| '_ \  / _ \| '__|
/  _  \  __// /  | |_ | | | ||  __/| |
\_/ \_/\___/___|  \__||_| |_| \___||_|
`

var (
	redColor    = color.New(color.FgRed)
	yellowColor = color.New(color.FgYellow)
	cyanColor   = color.New(color.FgCyan)
	greenColor  = color.New(color.FgGreen)
)

// traceBufferSizeFlag is a pflag.Value implementation for
// --trace-buffer-size: it validates the capacity at flag-parse time
// (rejecting anything negative) instead of deferring the check into
// run(), so a bad value fails before cobra ever reaches RunE.
type traceBufferSizeFlag struct {
	value int
}

func (f *traceBufferSizeFlag) String() string {
	return strconv.Itoa(f.value)
}

func (f *traceBufferSizeFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("trace-buffer-size must be an integer: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("trace-buffer-size must be >= 0, got %d", n)
	}
	f.value = n
	return nil
}

func (f *traceBufferSizeFlag) Type() string { return "int" }

var _ pflag.Value = (*traceBufferSizeFlag)(nil)

// flags holds every registered flag's parsed value, mirroring the
// external interface's flag table one field per row.
type flags struct {
	check             bool
	ast               bool
	debug             bool
	showMetrics       bool
	metricsJSON       bool
	metricsJSONPretty bool
	showTrace         bool
	showTraceStats    bool
	traceBufferSize   traceBufferSizeFlag
	noStdlib          bool
	jsonError         bool
	configPath        string
	jobs              int
}

func main() {
	f := &flags{}

	root := &cobra.Command{
		Use:           "aether [file...]",
		Short:         "Aether, an embeddable scripting language engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	root.Flags().BoolVar(&f.check, "check", false, "parse only, do not evaluate")
	root.Flags().BoolVar(&f.ast, "ast", false, "dump the parsed program instead of evaluating")
	root.Flags().BoolVar(&f.debug, "debug", false, "log verbose evaluator diagnostics")
	root.Flags().BoolVar(&f.showMetrics, "metrics", false, "print timing, cache, and trace stats")
	root.Flags().BoolVar(&f.metricsJSON, "metrics-json", false, "print metrics as JSON")
	root.Flags().BoolVar(&f.metricsJSONPretty, "metrics-json-pretty", false, "print metrics as indented JSON")
	root.Flags().BoolVar(&f.showTrace, "trace", false, "dump the trace buffer's retained entries")
	root.Flags().BoolVar(&f.showTraceStats, "trace-stats", false, "dump the trace buffer's size/capacity counters")
	root.Flags().Var(&f.traceBufferSize, "trace-buffer-size", "trace ring buffer capacity (0 keeps the default)")
	root.Flags().BoolVar(&f.noStdlib, "no-stdlib", false, "record no_stdlib in the config (no stdlib bundle is loaded either way)")
	root.Flags().BoolVar(&f.jsonError, "json-error", false, "emit structured JSON errors on stderr")
	root.Flags().StringVar(&f.configPath, "config", "", "path to a TOML engine config file")
	root.Flags().IntVar(&f.jobs, "jobs", 1, "number of files to evaluate concurrently in batch mode")

	if err := root.Execute(); err != nil {
		redColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string, f *flags) error {
	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if f.traceBufferSize.value > 0 {
		cfg.TraceBufferSize = f.traceBufferSize.value
	}
	if f.noStdlib {
		cfg.NoStdlib = true
	}

	if len(args) == 0 {
		r := repl.NewRepl(banner, version, author, line, license, prompt)
		r.Engine = buildEngine(cfg)
		r.Start(os.Stdin, os.Stdout)
		return nil
	}

	if len(args) == 1 {
		return runFile(cmd, args[0], f, cfg)
	}
	return runBatch(cmd, args, f, cfg)
}

// buildEngine constructs an Engine wired with cfg's permissions, trace
// buffer size, and a filesystem module resolver rooted at the script's
// own directory (set per-call by EvalFile).
func buildEngine(cfg config.Config) *aether.Engine {
	e := aether.New()
	e.SetPermissions(cfg.Permissions.ToBuiltins())
	e.SetTraceBufferSize(cfg.TraceBufferSize)
	e.SetModuleResolver(resolver.NewFileSystemModuleResolver())
	return e
}

// runFile evaluates (or --check/--ast inspects) a single file, printing
// its result and any requested diagnostics.
func runFile(cmd *cobra.Command, path string, f *flags, cfg config.Config) error {
	if f.ast || f.check {
		return inspectFile(cmd, path, f.ast)
	}

	engine := buildEngine(cfg)
	value, err := engine.EvalFile(path)

	if f.showTrace {
		for _, entry := range engine.TraceRecords() {
			cyanColor.Fprintln(cmd.OutOrStdout(), entry.Format())
		}
	}
	if f.showTraceStats {
		printTraceStats(cmd, engine)
	}
	if f.showMetrics || f.metricsJSON || f.metricsJSONPretty {
		printMetrics(cmd, engine, f)
	}

	if err != nil {
		reportError(cmd, err, f.jsonError)
		return fmt.Errorf("evaluation failed")
	}
	if value != nil {
		greenColor.Fprintln(cmd.OutOrStdout(), value.String())
	}
	return nil
}

// runBatch evaluates every file concurrently across f.jobs workers via
// the runner package, reporting each result in input order and
// returning a non-zero exit status if any file failed.
func runBatch(cmd *cobra.Command, paths []string, f *flags, cfg config.Config) error {
	jobs := make([]runner.Job, len(paths))
	for i, p := range paths {
		p := p
		jobs[i] = runner.Job{Path: p, Prepare: func(e *aether.Engine) {
			e.SetPermissions(cfg.Permissions.ToBuiltins())
			e.SetTraceBufferSize(cfg.TraceBufferSize)
			e.SetModuleResolver(resolver.NewFileSystemModuleResolver())
		}}
	}

	results, runErr := runner.Run(jobs, f.jobs)
	if runErr != nil {
		return runErr
	}

	failed := false
	for _, r := range results {
		if r.Err != nil {
			failed = true
			redColor.Fprintf(cmd.ErrOrStderr(), "%s: ", r.Path)
			reportError(cmd, r.Err, f.jsonError)
			continue
		}
		greenColor.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Path, r.Value)
	}
	if failed {
		return fmt.Errorf("one or more files failed")
	}
	return nil
}

// inspectFile implements --check (parse only) and --ast (dump the
// parsed program), never evaluating the file's statements.
func inspectFile(cmd *cobra.Command, path string, dumpAST bool) error {
	data, ioErr := os.ReadFile(path)
	if ioErr != nil {
		return fmt.Errorf("cannot read %q: %w", path, ioErr)
	}

	program, parseErr := parser.Parse(string(data))
	if parseErr != nil {
		if pe, ok := parseErr.(*parser.ParseError); ok {
			return fmt.Errorf("%s", errs.FromParseError(pe).Error())
		}
		return parseErr
	}

	if dumpAST {
		cyanColor.Fprintln(cmd.OutOrStdout(), astdump.Dump(program))
	}
	return nil
}

func printTraceStats(cmd *cobra.Command, engine *aether.Engine) {
	s := engine.TraceStats()
	yellowColor.Fprintf(cmd.OutOrStdout(), "trace: size=%d capacity=%d total_emitted=%d first_sequence=%d\n",
		s.Size, s.Capacity, s.TotalEmitted, s.FirstSequence)
}

func printMetrics(cmd *cobra.Command, engine *aether.Engine, f *flags) {
	collector := metrics.NewCollector()
	snapshot := collector.Observe(engine.CacheStats(), engine.TraceStats(), engine.Steps())

	if f.metricsJSON || f.metricsJSONPretty {
		var data []byte
		var err error
		if f.metricsJSONPretty {
			data, err = json.MarshalIndent(snapshot, "", "  ")
		} else {
			data, err = json.Marshal(snapshot)
		}
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}
		return
	}

	yellowColor.Fprintf(cmd.OutOrStdout(),
		"metrics: steps=%d cache_size=%d/%d cache_hits=%d cache_misses=%d hit_rate=%.2f trace_size=%d trace_total=%d\n",
		snapshot.Steps, snapshot.CacheSize, snapshot.CacheMaxSize, snapshot.CacheHits, snapshot.CacheMisses,
		snapshot.CacheHitRate, snapshot.TraceSize, snapshot.TraceTotal)
}

// reportError prints err either as the structured JSON schema
// (--json-error, on stderr) or as a human-readable line.
func reportError(cmd *cobra.Command, err *errs.AetherError, asJSON bool) {
	if asJSON {
		report := aether.NewErrorReport(err)
		data, marshalErr := json.Marshal(report)
		if marshalErr == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), string(data))
			return
		}
	}
	redColor.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", err.Kind, err.Error())
}
