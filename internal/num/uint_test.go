package num

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUintPrecisionConversion(t *testing.T) {
	amount := NewUint(1_500_000)

	d, err := amount.ToDecimal(6)
	require.NoError(t, err)
	require.Equal(t, MustDecimal("1.5"), d)

	back, err := d.ToUint(6)
	require.NoError(t, err)
	require.Equal(t, amount, back)

	wei, err := d.ToUint(24)
	require.NoError(t, err)
	require.Equal(t, "1500000000000000000000000", wei.String())

	fromWei, err := wei.ToDecimal(24)
	require.NoError(t, err)
	require.Equal(t, d, fromWei)
}

func TestUintConversionFloorsAndBounds(t *testing.T) {
	d := MustDecimal("0.9999999")
	u, err := d.ToUint(6)
	require.NoError(t, err)
	require.Equal(t, NewUint(999_999), u)

	huge := MustDecimal("1000000000000000000000000000000000000000")
	_, err = huge.ToUint(6)
	require.ErrorIs(t, err, ErrConversionOverflow)
}

func TestUintArithmetic(t *testing.T) {
	a := NewUint(10)
	b := NewUint(3)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, NewUint(13), sum)

	_, err = b.Sub(a)
	require.ErrorIs(t, err, ErrOverflow)
	require.True(t, b.SaturatingSub(a).IsZero())

	q, err := NewUint(1_000_000).MulDiv(NewUint(999), NewUint(1000))
	require.NoError(t, err)
	require.Equal(t, NewUint(999_000), q)

	_, err = a.MulDiv(b, NewUint(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = UintFromString("340282366920938463463374607431768211456") // 2^128
	require.ErrorIs(t, err, ErrOverflow)
}
