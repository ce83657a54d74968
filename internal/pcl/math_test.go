package pcl

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"concentratedLiquidity/internal/num"
)

func dec(s string) num.Decimal {
	return num.MustDecimal(s)
}

func requireClose(t *testing.T, want, got, tol num.Decimal, msg string) {
	t.Helper()
	require.Truef(t, want.Diff(got).LTE(tol), "%s: want %s, got %s (tol %s)", msg, want, got, tol)
}

func TestCalcDConvergesAcrossBounds(t *testing.T) {
	amps := []num.Decimal{MinAmp, dec("40"), MaxAmp}
	gammas := []num.Decimal{MinGamma, dec("0.000145"), MaxGamma}
	balances := [][2]num.Decimal{
		{dec("1"), dec("1")},
		{dec("1000000"), dec("1000000")},
		{dec("123.45"), dec("6789")},
		{dec("1000000"), dec("1")},
		{dec("0.001"), dec("250000")},
	}

	for _, amp := range amps {
		for _, gamma := range gammas {
			for _, xs := range balances {
				name := fmt.Sprintf("amp=%s/gamma=%s/xs=%s,%s", amp, gamma, xs[0], xs[1])
				t.Run(name, func(t *testing.T) {
					d, err := CalcD(xs, AmpGamma{Amp: amp, Gamma: gamma})
					require.NoError(t, err)
					require.False(t, d.IsZero())

					sum, err := xs[0].Add(xs[1])
					require.NoError(t, err)
					prod, err := xs[0].Mul(xs[1])
					require.NoError(t, err)
					lower, err := prod.Sqrt().MulUint64(2)
					require.NoError(t, err)
					require.True(t, d.LTE(sum), "D above constant-sum bound")
					require.True(t, d.GTE(lower), "D below constant-product bound")
				})
			}
		}
	}
}

func TestCalcDBalancedPoolIsSum(t *testing.T) {
	d, err := CalcD([2]num.Decimal{dec("1000000"), dec("1000000")}, AmpGamma{Amp: dec("40"), Gamma: dec("0.000145")})
	require.NoError(t, err)
	require.Equal(t, dec("2000000"), d)
}

func TestCalcDRejectsEmptyBalance(t *testing.T) {
	_, err := CalcD([2]num.Decimal{dec("0"), dec("1")}, AmpGamma{Amp: dec("40"), Gamma: dec("0.000145")})
	require.ErrorIs(t, err, ErrInvalidZeroAmount)
}

func TestCalcDReportsNonConvergence(t *testing.T) {
	_, err := calcD([2]num.Decimal{dec("1000000"), dec("1")}, AmpGamma{Amp: dec("40"), Gamma: dec("0.000145")}, 1)
	require.ErrorIs(t, err, ErrDidNotConverge)
}

func TestCalcYInvertsCalcD(t *testing.T) {
	ag := AmpGamma{Amp: dec("40"), Gamma: dec("0.000145")}
	xs := [2]num.Decimal{dec("1000"), dec("2000")}

	d, err := CalcD(xs, ag)
	require.NoError(t, err)

	y1, err := CalcY(xs, d, ag, 1)
	require.NoError(t, err)
	requireClose(t, xs[1], y1, dec("0.000001"), "y1")

	y0, err := CalcY(xs, d, ag, 0)
	require.NoError(t, err)
	requireClose(t, xs[0], y0, dec("0.000001"), "y0")
}

func TestXCP(t *testing.T) {
	xcp, err := XCP(dec("2000000"), dec("1"))
	require.NoError(t, err)
	require.Equal(t, dec("1000000"), xcp)

	xcp, err = XCP(dec("2000"), dec("4"))
	require.NoError(t, err)
	require.Equal(t, dec("500"), xcp)
}

func TestHalfPow(t *testing.T) {
	cases := []struct {
		p    string
		want string
	}{
		{"0", "1"},
		{"1", "0.5"},
		{"3", "0.125"},
		{"0.5", "0.707106781186547524"},
		{"2.5", "0.176776695296636881"},
		{"0.1", "0.933032991536807415"},
	}
	for _, tc := range cases {
		got, err := HalfPow(dec(tc.p))
		require.NoError(t, err, tc.p)
		requireClose(t, dec(tc.want), got, dec("0.000000000000001"), tc.p)
	}

	got, err := HalfPow(dec("100"))
	require.NoError(t, err)
	require.True(t, got.IsZero())
}
