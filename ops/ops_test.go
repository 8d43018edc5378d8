package ops

import (
	"testing"

	"github.com/aetherscript/aether/objects"
	"github.com/stretchr/testify/require"
)

func TestBinaryAdditionNumber(t *testing.T) {
	v, err := Binary("+", objects.NewNumber(10), objects.NewNumber(20))
	require.Nil(t, err)
	require.Equal(t, "30", v.String())
}

func TestBinaryStringConcatCoercesNumber(t *testing.T) {
	v, err := Binary("+", objects.NewString("x"), objects.NewNumber(0.1))
	require.Nil(t, err)
	require.Equal(t, "x"+objects.NewNumber(0.1).String(), v.String())
}

func TestBinaryDivisionByZero(t *testing.T) {
	_, err := Binary("/", objects.NewNumber(1), objects.NewNumber(0))
	require.NotNil(t, err)
	require.Equal(t, "DivisionByZero", string(err.Kind))
}

func TestBinaryLargeIntegerMultiplicationPromotesToFraction(t *testing.T) {
	a, _ := objects.ParseIntegerLiteral("3284628396498263948629734587234583548273548253487325")
	b, _ := objects.ParseIntegerLiteral("4728364875283754872534781253784527635487235478923587423")
	v, err := Binary("*", a, b)
	require.Nil(t, err)
	require.IsType(t, &objects.Fraction{}, v)
	require.Equal(t, "15530921538361993565152129229913877304236184424817572492058487603003384389356972658598499493820859259913475", v.String())
}

func TestBinaryLogicalOrReturnsLastOperand(t *testing.T) {
	v, err := Binary("||", objects.NewBoolean(false), objects.NewNumber(7))
	require.Nil(t, err)
	require.Equal(t, "7", v.String())
}

func TestUnaryNegation(t *testing.T) {
	v, err := Unary("-", objects.NewNumber(5))
	require.Nil(t, err)
	require.Equal(t, "-5", v.String())
}

func TestCompareOrdering(t *testing.T) {
	v, err := Binary("<", objects.NewNumber(1), objects.NewNumber(2))
	require.Nil(t, err)
	require.True(t, v.Truthy())
}
