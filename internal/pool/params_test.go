package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pcl"
)

func TestUpdateParamsAuthorization(t *testing.T) {
	e := NewEngine(nil)
	st := newPool(t, testParams())
	update := UpdatePoolParams{MidFee: decPtr("0.001")}

	_, _, err := e.UpdateParams(st, Env{Time: t0}, UpdateParamsMsg{Sender: "mallory", FactoryOwner: factory, Update: update})
	require.ErrorIs(t, err, ErrUnauthorized)

	next, res, err := e.UpdateParams(st, Env{Time: t0}, UpdateParamsMsg{Sender: factory, FactoryOwner: factory, Update: update})
	require.NoError(t, err)
	require.Equal(t, dec("0.001"), next.Config.Params.MidFee)
	action, _ := model.AttributeValue(res.Attributes, "action")
	require.Equal(t, "update_params", action)

	// a pool owner takes precedence over the factory owner
	p := testParams()
	p.Owner = "pool-owner"
	owned := newPool(t, p)
	_, _, err = e.UpdateParams(owned, Env{Time: t0}, UpdateParamsMsg{Sender: factory, FactoryOwner: factory, Update: update})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = e.UpdateParams(owned, Env{Time: t0}, UpdateParamsMsg{Sender: "pool-owner", FactoryOwner: factory, Update: update})
	require.NoError(t, err)
}

func TestUpdateParamsRejectsInvalidValues(t *testing.T) {
	e := NewEngine(nil)
	st := newPool(t, testParams())
	msg := UpdateParamsMsg{Sender: factory, FactoryOwner: factory, Update: UpdatePoolParams{MidFee: decPtr("0.01")}}

	_, _, err := e.UpdateParams(st, Env{Time: t0}, msg)
	require.ErrorIs(t, err, pcl.ErrIncorrectPoolParam)
	require.Equal(t, dec("0.0026"), st.Config.Params.MidFee)

	msg.Update = nil
	_, _, err = e.UpdateParams(st, Env{Time: t0}, msg)
	require.ErrorIs(t, err, pcl.ErrIncorrectPoolParam)
}

func TestPromoteAndStop(t *testing.T) {
	e := NewEngine(nil)
	st := newPool(t, testParams())
	promote := Promote{NextAmp: dec("80"), NextGamma: dec("0.00029"), FutureTime: t0 + 3*day}

	_, _, err := e.UpdateParams(st, Env{Time: t0 + 10}, UpdateParamsMsg{Sender: factory, FactoryOwner: factory, Update: promote})
	require.ErrorIs(t, err, pcl.ErrIncorrectPoolParam)

	st, _, err = e.UpdateParams(st, Env{Time: t0 + day}, UpdateParamsMsg{Sender: factory, FactoryOwner: factory, Update: promote})
	require.NoError(t, err)

	cfg, err := QueryConfig(st, Env{Time: t0 + 2*day})
	require.NoError(t, err)
	require.Equal(t, dec("60"), cfg.Amp)
	require.Equal(t, dec("0.0002175"), cfg.Gamma)
	require.True(t, cfg.ChangingAmpGamma)

	st, _, err = e.UpdateParams(st, Env{Time: t0 + 2*day}, UpdateParamsMsg{Sender: factory, FactoryOwner: factory, Update: StopChangingAmpGamma{}})
	require.NoError(t, err)
	cfg, err = QueryConfig(st, Env{Time: t0 + 10*day})
	require.NoError(t, err)
	require.Equal(t, dec("60"), cfg.Amp)
	require.False(t, cfg.ChangingAmpGamma)
}

func TestFeeShareToggle(t *testing.T) {
	e := NewEngine(nil)
	st := newPool(t, testParams())
	msg := UpdateParamsMsg{Sender: factory, FactoryOwner: factory}

	msg.Update = EnableFeeShare{Bps: 0, Recipient: "share"}
	_, _, err := e.UpdateParams(st, Env{Time: t0}, msg)
	require.ErrorIs(t, err, pcl.ErrFeeShareOutOfBounds)

	msg.Update = EnableFeeShare{Bps: 1000, Recipient: "share"}
	st, _, err = e.UpdateParams(st, Env{Time: t0}, msg)
	require.NoError(t, err)
	require.NotNil(t, st.Config.FeeShare)
	require.Equal(t, uint16(1000), st.Config.FeeShare.Bps)

	msg.Update = DisableFeeShare{}
	st, _, err = e.UpdateParams(st, Env{Time: t0}, msg)
	require.NoError(t, err)
	require.Nil(t, st.Config.FeeShare)
}
