// Package astdump implements the CLI's --ast flag: a pretty-printer
// over a parsed program. printer implements parser.Visitor and
// statement() goes through parser.Walk rather than re-implementing its
// own statement type switch.
package astdump

import (
	"bytes"
	"fmt"

	"github.com/aetherscript/aether/parser"
)

const indentSize = 2

// printer walks a Program and renders one indented line per node: an
// indent counter plus a bytes.Buffer.
type printer struct {
	indent int
	buf    bytes.Buffer
}

var _ parser.Visitor = (*printer)(nil)

// Dump renders program as an indented tree, one line per statement and
// expression node, used by the CLI's --ast flag.
func Dump(program *parser.Program) string {
	p := &printer{}
	p.VisitProgram(program)
	return p.buf.String()
}

func (p *printer) line(format string, args ...any) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteByte(' ')
	}
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *printer) statement(stmt parser.Statement) {
	parser.Walk(p, stmt)
}

func (p *printer) block(b *parser.BlockStatement) {
	if b == nil {
		return
	}
	p.indent += indentSize
	for _, s := range b.Statements {
		p.statement(s)
	}
	p.indent -= indentSize
}

// VisitProgram implements parser.Visitor.
func (p *printer) VisitProgram(prog *parser.Program) {
	p.line("Program")
	p.indent += indentSize
	for _, stmt := range prog.Statements {
		p.statement(stmt)
	}
	p.indent -= indentSize
}

// VisitBlock implements parser.Visitor.
func (p *printer) VisitBlock(s *parser.BlockStatement) { p.block(s) }

// VisitSet implements parser.Visitor.
func (p *printer) VisitSet(s *parser.SetStatement) {
	if s.Index != nil {
		p.line("Set %s[...]", s.Name)
	} else {
		p.line("Set %s", s.Name)
	}
	p.indent += indentSize
	p.expression(s.Value)
	p.indent -= indentSize
}

// VisitFunc implements parser.Visitor.
func (p *printer) VisitFunc(s *parser.FuncStatement) {
	p.line("Func %s(%v)", s.Name, s.Params)
	p.block(s.Body)
}

// VisitIf implements parser.Visitor.
func (p *printer) VisitIf(s *parser.IfStatement) {
	p.line("If")
	p.indent += indentSize
	p.expression(s.Condition)
	p.indent -= indentSize
	p.block(s.Then)
	if s.Else != nil {
		p.line("Else")
		p.statement(s.Else)
	}
}

// VisitFor implements parser.Visitor.
func (p *printer) VisitFor(s *parser.ForStatement) {
	p.line("For %s In", s.Name)
	p.indent += indentSize
	p.expression(s.Iterable)
	p.indent -= indentSize
	p.block(s.Body)
}

// VisitWhile implements parser.Visitor.
func (p *printer) VisitWhile(s *parser.WhileStatement) {
	p.line("While")
	p.indent += indentSize
	p.expression(s.Condition)
	p.indent -= indentSize
	p.block(s.Body)
}

// VisitReturn implements parser.Visitor.
func (p *printer) VisitReturn(s *parser.ReturnStatement) {
	p.line("Return")
	if s.Value != nil {
		p.indent += indentSize
		p.expression(s.Value)
		p.indent -= indentSize
	}
}

// VisitBreak implements parser.Visitor.
func (p *printer) VisitBreak(*parser.BreakStatement) { p.line("Break") }

// VisitContinue implements parser.Visitor.
func (p *printer) VisitContinue(*parser.ContinueStatement) { p.line("Continue") }

// VisitImport implements parser.Visitor.
func (p *printer) VisitImport(s *parser.ImportStatement) {
	p.line("Import %v From %q", s.Names, s.Path)
}

// VisitExport implements parser.Visitor.
func (p *printer) VisitExport(s *parser.ExportStatement) { p.line("Export %s", s.Name) }

// VisitExpressionStatement implements parser.Visitor.
func (p *printer) VisitExpressionStatement(s *parser.ExpressionStatement) {
	p.line("ExpressionStatement")
	p.indent += indentSize
	p.expression(s.Expression)
	p.indent -= indentSize
}

// expression has no parser.Visitor counterpart (the interface only
// covers statements), so it keeps its own type switch.
func (p *printer) expression(expr parser.Expression) {
	switch ex := expr.(type) {
	case *parser.IntegerLiteral:
		p.line("Integer(%s)", ex.Digits)
	case *parser.FloatLiteral:
		p.line("Float(%v)", ex.Value)
	case *parser.FractionLiteral:
		p.line("Fraction(%s/%s)", ex.Numerator, ex.Denominator)
	case *parser.StringLiteral:
		p.line("String(%q)", ex.Value)
	case *parser.BooleanLiteral:
		p.line("Boolean(%v)", ex.Value)
	case *parser.NullLiteral:
		p.line("Null")
	case *parser.ArrayLiteral:
		p.line("Array")
		p.indent += indentSize
		for _, e := range ex.Elements {
			p.expression(e)
		}
		p.indent -= indentSize
	case *parser.DictLiteral:
		p.line("Dict")
		p.indent += indentSize
		for i, k := range ex.Keys {
			p.expression(k)
			p.expression(ex.Values[i])
		}
		p.indent -= indentSize
	case *parser.Identifier:
		p.line("Identifier(%s)", ex.Name)
	case *parser.IndexExpression:
		p.line("Index")
		p.indent += indentSize
		p.expression(ex.Left)
		p.expression(ex.Index)
		p.indent -= indentSize
	case *parser.FieldExpression:
		p.line("Field(.%s)", ex.Name)
		p.indent += indentSize
		p.expression(ex.Left)
		p.indent -= indentSize
	case *parser.CallExpression:
		p.line("Call")
		p.indent += indentSize
		p.expression(ex.Callee)
		for _, a := range ex.Args {
			p.expression(a)
		}
		p.indent -= indentSize
	case *parser.UnaryExpression:
		p.line("Unary(%s)", ex.Operator)
		p.indent += indentSize
		p.expression(ex.Right)
		p.indent -= indentSize
	case *parser.BinaryExpression:
		p.line("Binary(%s)", ex.Operator)
		p.indent += indentSize
		p.expression(ex.Left)
		p.expression(ex.Right)
		p.indent -= indentSize
	case *parser.TernaryExpression:
		p.line("Ternary")
		p.indent += indentSize
		p.expression(ex.Condition)
		p.expression(ex.Then)
		p.expression(ex.Else)
		p.indent -= indentSize
	default:
		p.line("<unknown expression %T>", ex)
	}
}
