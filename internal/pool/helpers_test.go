package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

const (
	t0       = uint64(1_700_000_000)
	day      = uint64(86_400)
	sender   = "alice"
	factory  = "factory-owner"
	feeAddr  = "maker"
	lpToken  = "0x00000000000000000000000000000000000000a1"
	contract = "pool-contract"
)

var (
	usd  = model.NativeAsset("uusd")
	luna = model.NativeAsset("uluna")
)

func dec(s string) num.Decimal {
	return num.MustDecimal(s)
}

func units(s string) num.Uint {
	return num.MustUint(s)
}

func decPtr(s string) *num.Decimal {
	d := dec(s)
	return &d
}

func testParams() InstantiateParams {
	return InstantiateParams{
		AssetInfos:     []model.AssetInfo{usd, luna},
		Precisions:     []uint8{6, 6},
		Contract:       contract,
		LiquidityToken: lpToken,
		Amp:            dec("40"),
		Gamma:          dec("0.000145"),
		Params: pcl.PoolParams{
			MidFee:               dec("0.0026"),
			OutFee:               dec("0.0045"),
			FeeGamma:             dec("0.00023"),
			RepegProfitThreshold: dec("0.000002"),
			MinPriceScaleDelta:   dec("0.000146"),
			MaHalfTime:           600,
		},
		PriceScale: dec("1"),
	}
}

func newPool(t *testing.T, p InstantiateParams) State {
	t.Helper()
	st, err := Instantiate(p, t0)
	require.NoError(t, err)
	return st
}

// settle plays the host: incoming funds land in the pool and transfers are executed.
func settle(t *testing.T, st State, snap Snapshot, incoming [2]num.Uint, res Result) Snapshot {
	t.Helper()
	var err error
	for i := range snap.Pools {
		snap.Pools[i], err = snap.Pools[i].Add(incoming[i])
		require.NoError(t, err)
	}
	for _, tr := range res.Transfers {
		switch tr.Kind {
		case model.TransferMint:
			snap.TotalShare, err = snap.TotalShare.Add(tr.Asset.Amount)
		case model.TransferBurn:
			snap.TotalShare, err = snap.TotalShare.Sub(tr.Asset.Amount)
		case model.TransferSend:
			i, ierr := st.Config.Pair.index(tr.Asset.Info)
			require.NoError(t, ierr)
			snap.Pools[i], err = snap.Pools[i].Sub(tr.Asset.Amount)
		}
		require.NoError(t, err)
	}
	return snap
}

func provideMsg(a, b string) ProvideMsg {
	return ProvideMsg{
		Sender: sender,
		Assets: []model.Asset{
			{Info: usd, Amount: units(a)},
			{Info: luna, Amount: units(b)},
		},
	}
}

// seeded returns a pool holding 1,000,000 of each asset after a first provide at t0.
func seeded(t *testing.T, p InstantiateParams) (*Engine, State, Snapshot) {
	t.Helper()
	e := NewEngine(nil)
	st := newPool(t, p)
	msg := provideMsg("1000000000000", "1000000000000")
	st, res, err := e.ProvideLiquidity(st, Env{Time: t0}, Snapshot{}, msg)
	require.NoError(t, err)
	snap := settle(t, st, Snapshot{}, [2]num.Uint{units("1000000000000"), units("1000000000000")}, res)
	return e, st, snap
}

func minted(res Result, recipient string) num.Uint {
	for _, tr := range res.Transfers {
		if tr.Kind == model.TransferMint && tr.Recipient == recipient {
			return tr.Asset.Amount
		}
	}
	return num.Uint{}
}

func sent(res Result, recipient string, info model.AssetInfo) num.Uint {
	for _, tr := range res.Transfers {
		if tr.Kind == model.TransferSend && tr.Recipient == recipient && tr.Asset.Info.Equal(info) {
			return tr.Asset.Amount
		}
	}
	return num.Uint{}
}

func requireClose(t *testing.T, want, got num.Decimal, tol string) {
	t.Helper()
	require.True(t, want.Diff(got).LTE(dec(tol)), "want %s, got %s (tolerance %s)", want, got, tol)
}
