// Package repl implements the Read-Eval-Print Loop for Aether scripts:
// readline-backed line editing, colored feedback, and a persistent
// aether.Engine underneath so bindings survive across entered lines.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/aetherscript/aether"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the REPL's visual configuration: banner, version/author
// strings, and prompt.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string

	// Engine, when non-nil, is reused across the session instead of a
	// fresh aether.New(); used by the CLI to pre-configure permissions
	// and a module resolver before entering the loop.
	Engine *aether.Engine
}

// NewRepl creates a REPL with the given visual configuration.
func NewRepl(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo writes the startup banner and usage hints to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to Aether!")
	cyanColor.Fprintf(writer, "%s\n", "Type your code and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the REPL's main loop: print banner, read a line, evaluate
// it against a persistent engine, print the result or error, repeat
// until '.exit' or EOF.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	engine := r.Engine
	if engine == nil {
		engine = aether.New()
	}
	engine.SetStdout(writer)

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		rl.SaveHistory(line)
		r.executeWithRecovery(writer, line, engine)
	}
}

// executeWithRecovery evaluates one line against engine, recovering
// from any panic so a single bad statement never kills the session.
func (r *Repl) executeWithRecovery(writer io.Writer, line string, engine *aether.Engine) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	result, err := engine.Eval(line)
	if err != nil {
		redColor.Fprintf(writer, "[%s] %s\n", err.Kind, err.Error())
		return
	}
	if result != nil {
		yellowColor.Fprintf(writer, "%s\n", result.String())
	}
}
