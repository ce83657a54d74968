package pool

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/observation"
	"concentratedLiquidity/internal/pcl"
)

type ConfigResponse struct {
	Pair       PairInfo            `json:"pair"`
	Owner      string              `json:"owner,omitempty"`
	Amp        num.Decimal         `json:"amp"`
	Gamma      num.Decimal         `json:"gamma"`
	Params     pcl.PoolParams      `json:"params"`
	PriceState pcl.PriceState      `json:"price_state"`
	FeeShare   *pcl.FeeShareConfig `json:"fee_share,omitempty"`

	// ChangingAmpGamma is set while amp and gamma ramp towards their future values.
	ChangingAmpGamma bool `json:"changing_amp_gamma"`
}

func QueryConfig(st State, env Env) (ConfigResponse, error) {
	ag, err := st.Config.PoolState.AmpGammaAt(env.Time)
	if err != nil {
		return ConfigResponse{}, err
	}
	return ConfigResponse{
		Pair:       st.Config.Pair,
		Owner:      st.Config.Owner,
		Amp:        ag.Amp,
		Gamma:      ag.Gamma,
		Params:     st.Config.Params,
		PriceState: st.Config.PoolState.Price,
		FeeShare:   st.Config.FeeShare,

		ChangingAmpGamma: st.Config.PoolState.IsChangingAmpGamma(env.Time),
	}, nil
}

type PoolResponse struct {
	Assets     [2]model.Asset `json:"assets"`
	TotalShare num.Uint       `json:"total_share"`
}

func QueryPool(st State, snap Snapshot) PoolResponse {
	pair := st.Config.Pair
	return PoolResponse{
		Assets:     [2]model.Asset{pair.asset(0, snap.Pools[0]), pair.asset(1, snap.Pools[1])},
		TotalShare: snap.TotalShare,
	}
}

// CumulativePrice accumulates the amount of Ask quoted per unit of Offer, in price·seconds.
type CumulativePrice struct {
	Offer model.AssetInfo `json:"offer"`
	Ask   model.AssetInfo `json:"ask"`
	Value num.Decimal     `json:"value"`
}

type CumulativePricesResponse struct {
	PoolResponse
	CumulativePrices [2]CumulativePrice `json:"cumulative_prices"`
}

func QueryCumulativePrices(st State, env Env, snap Snapshot) (CumulativePricesResponse, error) {
	cum, err := st.Observations.CumulativePricesAt(env.Time)
	if err != nil {
		return CumulativePricesResponse{}, err
	}
	infos := st.Config.Pair.AssetInfos
	return CumulativePricesResponse{
		PoolResponse: QueryPool(st, snap),
		CumulativePrices: [2]CumulativePrice{
			{Offer: infos[0], Ask: infos[1], Value: cum.Base},
			{Offer: infos[1], Ask: infos[0], Value: cum.Quote},
		},
	}, nil
}

// QueryObserve returns the average prices over the last secondsAgo seconds.
func QueryObserve(st State, env Env, secondsAgo uint64) (observation.Prices, error) {
	return st.Observations.Observe(env.Time, secondsAgo)
}

type SimulationResponse struct {
	ReturnAmount     num.Uint `json:"return_amount"`
	SpreadAmount     num.Uint `json:"spread_amount"`
	CommissionAmount num.Uint `json:"commission_amount"`
}

// QuerySimulation prices a swap without changing anything.
func QuerySimulation(st State, env Env, snap Snapshot, fee FeeInfo, offer model.Asset, ask *model.AssetInfo) (SimulationResponse, error) {
	pair := st.Config.Pair
	offerInd, askInd, err := pair.swapIndices(offer.Info, ask)
	if err != nil {
		return SimulationResponse{}, err
	}
	amount, err := offer.Amount.ToDecimal(pair.Precisions[offerInd])
	if err != nil {
		return SimulationResponse{}, errors.Wrap(err, "convert offer")
	}
	xs, _, err := snap.decimals(pair)
	if err != nil {
		return SimulationResponse{}, err
	}
	if err := pcl.BeforeSwapCheck(xs, amount); err != nil {
		return SimulationResponse{}, err
	}
	fees, err := st.Config.swapFees(fee)
	if err != nil {
		return SimulationResponse{}, err
	}
	swapped, err := pcl.ComputeSwap(xs, amount, askInd, st.Config.PoolState, st.Config.Params, env.Time, fees)
	if err != nil {
		return SimulationResponse{}, err
	}
	return simulationAmounts(pair.Precisions[askInd], swapped.Dy, swapped.SpreadFee, swapped.TotalFee)
}

func simulationAmounts(prec uint8, ret, spread, commission num.Decimal) (SimulationResponse, error) {
	var out SimulationResponse
	var err error
	if out.ReturnAmount, err = ret.ToUint(prec); err != nil {
		return SimulationResponse{}, errors.Wrap(err, "convert return amount")
	}
	if out.SpreadAmount, err = spread.ToUint(prec); err != nil {
		return SimulationResponse{}, errors.Wrap(err, "convert spread amount")
	}
	if out.CommissionAmount, err = commission.ToUint(prec); err != nil {
		return SimulationResponse{}, errors.Wrap(err, "convert commission")
	}
	return out, nil
}

type ReverseSimulationResponse struct {
	OfferAmount      num.Uint `json:"offer_amount"`
	SpreadAmount     num.Uint `json:"spread_amount"`
	CommissionAmount num.Uint `json:"commission_amount"`
}

// QueryReverseSimulation finds the offer needed to receive ask, assuming the worst-case fee.
func QueryReverseSimulation(st State, env Env, snap Snapshot, ask model.Asset, offer *model.AssetInfo) (ReverseSimulationResponse, error) {
	pair := st.Config.Pair
	askInd, offerInd, err := pair.swapIndices(ask.Info, offer)
	if err != nil {
		return ReverseSimulationResponse{}, err
	}
	amount, err := ask.Amount.ToDecimal(pair.Precisions[askInd])
	if err != nil {
		return ReverseSimulationResponse{}, errors.Wrap(err, "convert ask")
	}
	xs, _, err := snap.decimals(pair)
	if err != nil {
		return ReverseSimulationResponse{}, err
	}
	if err := pcl.BeforeSwapCheck(xs, amount); err != nil {
		return ReverseSimulationResponse{}, err
	}
	result, err := pcl.ComputeOfferAmount(xs, amount, askInd, st.Config.PoolState, st.Config.Params, env.Time)
	if err != nil {
		return ReverseSimulationResponse{}, err
	}

	var out ReverseSimulationResponse
	if out.OfferAmount, err = result.Offer.ToUint(pair.Precisions[offerInd]); err != nil {
		return ReverseSimulationResponse{}, errors.Wrap(err, "convert offer amount")
	}
	if out.SpreadAmount, err = result.SpreadFee.ToUint(pair.Precisions[askInd]); err != nil {
		return ReverseSimulationResponse{}, errors.Wrap(err, "convert spread amount")
	}
	if out.CommissionAmount, err = result.TotalFee.ToUint(pair.Precisions[askInd]); err != nil {
		return ReverseSimulationResponse{}, errors.Wrap(err, "convert commission")
	}
	return out, nil
}

// QueryComputeD returns the current invariant D for the snapshot balances.
func QueryComputeD(st State, env Env, snap Snapshot) (num.Decimal, error) {
	xs, _, err := snap.decimals(st.Config.Pair)
	if err != nil {
		return num.Decimal{}, err
	}
	ag, err := st.Config.PoolState.AmpGammaAt(env.Time)
	if err != nil {
		return num.Decimal{}, err
	}
	var c num.Calc
	ixs := [2]num.Decimal{xs[0], c.Mul(xs[1], st.Config.PoolState.Price.PriceScale)}
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "compute d")
	}
	return pcl.CalcD(ixs, ag)
}
