package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

func TestImbalancedWithdrawAlwaysRejected(t *testing.T) {
	e, st, snap := seeded(t, testParams())
	msg := WithdrawMsg{
		Sender: sender,
		Amount: units("1000000"),
		Assets: []model.Asset{{Info: usd, Amount: units("1000000")}},
	}
	_, _, err := e.WithdrawLiquidity(st, Env{Time: t0}, snap, msg)
	require.ErrorIs(t, err, ErrImbalancedWithdrawDisabled)
}

func TestWithdrawValidation(t *testing.T) {
	e, st, snap := seeded(t, testParams())

	_, _, err := e.WithdrawLiquidity(st, Env{Time: t0}, snap, WithdrawMsg{Sender: sender})
	require.ErrorIs(t, err, pcl.ErrInvalidZeroAmount)

	_, _, err = e.WithdrawLiquidity(st, Env{Time: t0}, snap, WithdrawMsg{Sender: sender, Amount: snap.TotalShare})
	require.ErrorIs(t, err, num.ErrOverflow)
}

func TestWithdrawEverythingButLockedLiquidity(t *testing.T) {
	e, st, snap := seeded(t, testParams())
	userShare := units("999999999000")

	next, res, err := e.WithdrawLiquidity(st, Env{Time: t0 + 5}, snap, WithdrawMsg{Sender: sender, Amount: userShare})
	require.NoError(t, err)

	// refund = pool * (share - 1) / total
	require.Equal(t, "999999998999", sent(res, sender, usd).String())
	require.Equal(t, "999999998999", sent(res, sender, luna).String())

	burn := res.Transfers[len(res.Transfers)-1]
	require.Equal(t, model.TransferBurn, burn.Kind)
	require.Equal(t, userShare, burn.Asset.Amount)

	after := settle(t, next, snap, [2]num.Uint{}, res)
	require.Equal(t, "1000", after.TotalShare.String())
	require.False(t, after.Pools[0].IsZero())
	require.False(t, after.Pools[1].IsZero())
	require.True(t, next.Config.PoolState.Price.XcpProfitReal.GTE(num.DecimalOne()))
}

func TestFailedOperationLeavesStateUntouched(t *testing.T) {
	e, st, snap := seeded(t, testParams())
	before, err := st.Digest()
	require.NoError(t, err)

	next, res, err := e.WithdrawLiquidity(st, Env{Time: t0 + 1}, snap, WithdrawMsg{Sender: sender, Amount: units("1"), Assets: []model.Asset{{Info: usd}}})
	require.Error(t, err)
	require.Nil(t, next.Observations)
	require.Empty(t, res.Transfers)

	after, err := st.Digest()
	require.NoError(t, err)
	require.Equal(t, before, after)
}
