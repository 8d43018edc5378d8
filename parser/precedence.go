package parser

import "github.com/aetherscript/aether/lexer"

// Operator precedence constants, low to high, per the grammar: `||`;
// `&&`; `== !=`; `< <= > >=`; `+ -`; `* / %`; prefix `! -`; call / index
// / field; primary. All binary operators are left-associative.
const (
	LOWEST         = 0
	TERNARY        = 5
	OR             = 10
	AND            = 20
	EQUALITY       = 30
	RELATIONAL     = 40
	ADDITIVE       = 50
	MULTIPLICATIVE = 60
	PREFIX         = 70
	POSTFIX        = 80 // call / index / field
)

// precedenceOf returns the binding power of an infix-position token, or
// LOWEST if the token is not an infix operator.
func precedenceOf(t lexer.TokenType) int {
	switch t {
	case lexer.OR:
		return OR
	case lexer.AND:
		return AND
	case lexer.EQ, lexer.NEQ:
		return EQUALITY
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		return RELATIONAL
	case lexer.PLUS, lexer.MINUS:
		return ADDITIVE
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return MULTIPLICATIVE
	case lexer.LPAREN, lexer.LBRACKET, lexer.DOT:
		return POSTFIX
	case lexer.QUESTION:
		return TERNARY
	default:
		return LOWEST
	}
}
