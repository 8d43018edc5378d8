package objects

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntegerLiteralThreshold(t *testing.T) {
	small, err := ParseIntegerLiteral("123456789012345") // 15 digits
	require.NoError(t, err)
	require.Equal(t, NumberType, small.Type())

	large, err := ParseIntegerLiteral("1234567890123456") // 16 digits
	require.NoError(t, err)
	require.Equal(t, FractionType, large.Type())
	require.Equal(t, "1234567890123456", large.String())
}

func TestFractionStaysReducedWithPositiveDenominator(t *testing.T) {
	f := NewFraction(big.NewRat(4, -6))
	require.Equal(t, int64(-2), f.Value.Num().Int64())
	require.Equal(t, int64(3), f.Value.Denom().Int64())
}

func TestTruthiness(t *testing.T) {
	require.False(t, NullValue.Truthy())
	require.False(t, NewBoolean(false).Truthy())
	require.False(t, NewNumber(0).Truthy())
	require.False(t, NewString("").Truthy())
	require.False(t, NewArray(nil).Truthy())
	require.False(t, NewDict().Truthy())

	require.True(t, NewBoolean(true).Truthy())
	require.True(t, NewNumber(-1).Truthy())
	require.True(t, NewString("x").Truthy())
	require.True(t, NewArray([]Value{NullValue}).Truthy())
}

func TestEqualCrossCaseNumberFraction(t *testing.T) {
	require.True(t, Equal(NewNumber(3), NewFractionFromInt(big.NewInt(3))))
	require.True(t, Equal(NewFractionFromInt(big.NewInt(3)), NewNumber(3)))
	require.False(t, Equal(NewNumber(3), NewFractionFromInt(big.NewInt(4))))
	require.False(t, Equal(NewNumber(3), NewString("3")))
}

func TestEqualStructural(t *testing.T) {
	a := NewArray([]Value{NewNumber(1), NewString("x")})
	b := NewArray([]Value{NewNumber(1), NewString("x")})
	require.True(t, Equal(a, b))

	d1 := NewDict()
	d1.Set("k", NewNumber(1))
	d2 := NewDict()
	d2.Set("k", NewNumber(1))
	require.True(t, Equal(d1, d2))

	d2.Set("extra", NullValue)
	require.False(t, Equal(d1, d2))
}

func TestCompareDefinedCases(t *testing.T) {
	c, ok := Compare(NewNumber(1), NewNumber(2))
	require.True(t, ok)
	require.Equal(t, -1, c)

	c, ok = Compare(NewString("a"), NewString("b"))
	require.True(t, ok)
	require.Equal(t, -1, c)

	c, ok = Compare(NewBoolean(false), NewBoolean(true))
	require.True(t, ok)
	require.Equal(t, -1, c)

	c, ok = Compare(NewNumber(3), NewFractionFromInt(big.NewInt(3)))
	require.True(t, ok)
	require.Equal(t, 0, c)

	_, ok = Compare(NewArray(nil), NewArray(nil))
	require.False(t, ok)
}

func TestNumberStringFormatting(t *testing.T) {
	require.Equal(t, "42", NewNumber(42).String())
	require.Equal(t, "0.1", NewNumber(0.1).String())
	require.Equal(t, "-7", NewNumber(-7).String())
}

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("z", NewNumber(1))
	d.Set("a", NewNumber(2))
	d.Set("z", NewNumber(3)) // re-set keeps original position
	require.Equal(t, []string{"z", "a"}, d.Keys())
	v, ok := d.Get("z")
	require.True(t, ok)
	require.Equal(t, float64(3), v.(*Number).Value)
}
