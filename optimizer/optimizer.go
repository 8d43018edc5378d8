// Package optimizer implements the pure AST-to-AST pass that runs once
// after parse and before the optimized program is inserted into the AST
// cache: constant folding and dead-branch pruning. It shares the ops
// package's dispatch tables with the evaluator so a folded expression
// and its runtime evaluation always agree (the folding/runtime parity
// invariant).
package optimizer

import (
	"math/big"

	"github.com/aetherscript/aether/objects"
	"github.com/aetherscript/aether/ops"
	"github.com/aetherscript/aether/parser"
)

// Optimize returns a new Program with constant expressions folded and
// statically-dead If branches pruned. It never reorders or removes
// anything that could change observable side-effect order.
func Optimize(prog *parser.Program) *parser.Program {
	out := &parser.Program{}
	for _, s := range prog.Statements {
		out.Statements = append(out.Statements, optimizeStatement(s))
	}
	return out
}

func optimizeBlock(b *parser.BlockStatement) *parser.BlockStatement {
	if b == nil {
		return nil
	}
	out := &parser.BlockStatement{}
	for _, s := range b.Statements {
		out.Statements = append(out.Statements, optimizeStatement(s))
	}
	return out
}

func optimizeStatement(stmt parser.Statement) parser.Statement {
	switch s := stmt.(type) {
	case *parser.SetStatement:
		s.Value = optimizeExpression(s.Value)
		if s.Index != nil {
			s.Index = optimizeExpression(s.Index)
		}
		return s
	case *parser.FuncStatement:
		s.Body = optimizeBlock(s.Body)
		return s
	case *parser.IfStatement:
		return optimizeIf(s)
	case *parser.ForStatement:
		s.Iterable = optimizeExpression(s.Iterable)
		s.Body = optimizeBlock(s.Body)
		return s
	case *parser.WhileStatement:
		s.Condition = optimizeExpression(s.Condition)
		s.Body = optimizeBlock(s.Body)
		return s
	case *parser.ReturnStatement:
		if s.Value != nil {
			s.Value = optimizeExpression(s.Value)
		}
		return s
	case *parser.ExpressionStatement:
		s.Expression = optimizeExpression(s.Expression)
		return s
	case *parser.BlockStatement:
		return optimizeBlock(s)
	default:
		return stmt
	}
}

// optimizeIf prunes statically-determined branches: `If (True) {A}
// Else {B}` becomes A's block; `If (False) {A} Else {B}` becomes B's
// block (or an empty block with no Else). A non-constant condition is
// left as an IfStatement with both branches still optimized internally.
func optimizeIf(s *parser.IfStatement) parser.Statement {
	s.Condition = optimizeExpression(s.Condition)
	s.Then = optimizeBlock(s.Then)
	if elseBlock, ok := s.Else.(*parser.BlockStatement); ok {
		s.Else = optimizeBlock(elseBlock)
	} else if elseIf, ok := s.Else.(*parser.IfStatement); ok {
		s.Else = optimizeIf(elseIf)
	}

	lit, ok := literalValue(s.Condition)
	if !ok {
		return s
	}
	if lit.Truthy() {
		return s.Then
	}
	if s.Else != nil {
		return s.Else
	}
	return &parser.BlockStatement{}
}

func optimizeExpression(expr parser.Expression) parser.Expression {
	switch e := expr.(type) {
	case *parser.UnaryExpression:
		e.Right = optimizeExpression(e.Right)
		return foldUnary(e)
	case *parser.BinaryExpression:
		e.Left = optimizeExpression(e.Left)
		e.Right = optimizeExpression(e.Right)
		return foldBinary(e)
	case *parser.TernaryExpression:
		e.Condition = optimizeExpression(e.Condition)
		e.Then = optimizeExpression(e.Then)
		e.Else = optimizeExpression(e.Else)
		if lit, ok := literalValue(e.Condition); ok {
			if lit.Truthy() {
				return e.Then
			}
			return e.Else
		}
		return e
	case *parser.CallExpression:
		e.Callee = optimizeExpression(e.Callee)
		for i := range e.Args {
			e.Args[i] = optimizeExpression(e.Args[i])
		}
		return e
	case *parser.IndexExpression:
		e.Left = optimizeExpression(e.Left)
		e.Index = optimizeExpression(e.Index)
		return e
	case *parser.FieldExpression:
		e.Left = optimizeExpression(e.Left)
		return e
	case *parser.ArrayLiteral:
		for i := range e.Elements {
			e.Elements[i] = optimizeExpression(e.Elements[i])
		}
		return e
	case *parser.DictLiteral:
		for i := range e.Values {
			e.Values[i] = optimizeExpression(e.Values[i])
			e.Keys[i] = optimizeExpression(e.Keys[i])
		}
		return e
	default:
		return expr
	}
}

func foldUnary(e *parser.UnaryExpression) parser.Expression {
	lit, ok := literalValue(e.Right)
	if !ok {
		return e
	}
	v, err := ops.Unary(e.Operator, lit)
	if err != nil {
		return e
	}
	line, col := e.Pos()
	return literalFromValue(v, line, col)
}

func foldBinary(e *parser.BinaryExpression) parser.Expression {
	left, leftOK := literalValue(e.Left)
	right, rightOK := literalValue(e.Right)

	// && and || fold as soon as the left (determining) operand is a
	// literal, per short-circuit semantics, without requiring the right
	// operand to be constant too.
	if (e.Operator == "&&" || e.Operator == "||") && leftOK {
		if e.Operator == "&&" && !left.Truthy() {
			line, col := e.Pos()
			return literalFromValue(left, line, col)
		}
		if e.Operator == "||" && left.Truthy() {
			line, col := e.Pos()
			return literalFromValue(left, line, col)
		}
		if rightOK {
			line, col := e.Pos()
			return literalFromValue(right, line, col)
		}
		return e.Right
	}

	if !leftOK || !rightOK {
		return e
	}

	// Division/modulo by literal zero is left unfolded so the runtime
	// error surfaces with accurate coordinates at evaluation time.
	if (e.Operator == "/" || e.Operator == "%") && isLiteralZero(right) {
		return e
	}

	v, err := ops.Binary(e.Operator, left, right)
	if err != nil {
		return e
	}
	line, col := e.Pos()
	return literalFromValue(v, line, col)
}

func isLiteralZero(v objects.Value) bool {
	switch n := v.(type) {
	case *objects.Number:
		return n.Value == 0
	case *objects.Fraction:
		return n.Value.Sign() == 0
	}
	return false
}

// literalValue converts a literal AST node into its objects.Value, or
// reports ok=false for anything that isn't a compile-time constant.
func literalValue(expr parser.Expression) (objects.Value, bool) {
	switch e := expr.(type) {
	case *parser.IntegerLiteral:
		v, err := objects.ParseIntegerLiteral(e.Digits)
		if err != nil {
			return nil, false
		}
		return v, true
	case *parser.FloatLiteral:
		return objects.NewNumber(e.Value), true
	case *parser.FractionLiteral:
		num, ok1 := new(big.Int).SetString(e.Numerator, 10)
		den, ok2 := new(big.Int).SetString(e.Denominator, 10)
		if !ok1 || !ok2 {
			return nil, false
		}
		return objects.NewFraction(new(big.Rat).SetFrac(num, den)), true
	case *parser.StringLiteral:
		return objects.NewString(e.Value), true
	case *parser.BooleanLiteral:
		return objects.NewBoolean(e.Value), true
	case *parser.NullLiteral:
		return objects.NullValue, true
	default:
		return nil, false
	}
}

// literalFromValue converts a folded objects.Value back into an AST
// literal node, positioned at the folded expression's original
// coordinates.
func literalFromValue(v objects.Value, line, col int) parser.Expression {
	switch val := v.(type) {
	case *objects.Number:
		return parser.NewFloatLiteral(val.Value, line, col)
	case *objects.Fraction:
		if val.Value.IsInt() {
			return parser.NewIntegerLiteral(val.Value.Num().String(), line, col)
		}
		return parser.NewFractionLiteral(val.Value.Num().String(), val.Value.Denom().String(), line, col)
	case *objects.AetherString:
		return parser.NewStringLiteral(val.Value, line, col)
	case *objects.Boolean:
		return parser.NewBooleanLiteral(val.Value, line, col)
	default:
		return parser.NewNullLiteral(line, col)
	}
}
