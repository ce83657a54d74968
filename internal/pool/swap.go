package pool

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

// SwapMsg sells OfferAsset for the other pool asset.
type SwapMsg struct {
	Sender       string
	OfferAsset   model.Asset
	AskAssetInfo *model.AssetInfo
	BeliefPrice  *num.Decimal
	MaxSpread    *num.Decimal
	To           string
}

// swapFees resolves the maker and fee-share fractions that apply to a swap.
func (c Config) swapFees(fee FeeInfo) (pcl.SwapFees, error) {
	maker, err := fee.makerShare()
	if err != nil {
		return pcl.SwapFees{}, errors.Wrap(err, "maker fee share")
	}
	fees := pcl.SwapFees{MakerShare: maker}
	if c.FeeShare != nil {
		fees.FeeShare = c.FeeShare.Share()
	}
	return fees, nil
}

// swapIndices resolves offer and ask positions and checks the optional ask asset.
func (p PairInfo) swapIndices(offer model.AssetInfo, ask *model.AssetInfo) (int, int, error) {
	offerInd, err := p.index(offer)
	if err != nil {
		return 0, 0, err
	}
	askInd := 1 - offerInd
	if ask != nil {
		i, err := p.index(*ask)
		if err != nil {
			return 0, 0, err
		}
		if i != askInd {
			return 0, 0, errors.Wrapf(ErrInvalidAsset, "offer and ask are both %s", ask)
		}
	}
	return offerInd, askInd, nil
}

func (s *State) swap(env Env, snap Snapshot, fee FeeInfo, msg SwapMsg) (Result, error) {
	cfg := &s.Config
	pair := cfg.Pair
	offerInd, askInd, err := pair.swapIndices(msg.OfferAsset.Info, msg.AskAssetInfo)
	if err != nil {
		return Result{}, err
	}
	offer, err := msg.OfferAsset.Amount.ToDecimal(pair.Precisions[offerInd])
	if err != nil {
		return Result{}, errors.Wrap(err, "convert offer")
	}
	xs, total, err := snap.decimals(pair)
	if err != nil {
		return Result{}, err
	}
	if err := pcl.BeforeSwapCheck(xs, offer); err != nil {
		return Result{}, err
	}

	fees, err := cfg.swapFees(fee)
	if err != nil {
		return Result{}, err
	}
	swapped, err := pcl.ComputeSwap(xs, offer, askInd, cfg.PoolState, cfg.Params, env.Time, fees)
	if err != nil {
		return Result{}, err
	}

	askPrec := pair.Precisions[askInd]
	returnAmount, err := swapped.Dy.ToUint(askPrec)
	if err != nil {
		return Result{}, errors.Wrap(err, "convert return amount")
	}
	spreadAmount, err := swapped.SpreadFee.ToUint(askPrec)
	if err != nil {
		return Result{}, errors.Wrap(err, "convert spread amount")
	}
	commission, err := swapped.TotalFee.ToUint(askPrec)
	if err != nil {
		return Result{}, errors.Wrap(err, "convert commission")
	}
	if err := checkSpread(msg, returnAmount, spreadAmount); err != nil {
		return Result{}, err
	}

	outflow, err := swapped.Outflow()
	if err != nil {
		return Result{}, errors.Wrap(err, "swap outflow")
	}
	var c num.Calc
	xs[offerInd] = c.Add(xs[offerInd], offer)
	xs[askInd] = c.Sub(xs[askInd], outflow)
	if err := c.Err(); err != nil {
		return Result{}, errors.Wrap(err, "swap balances")
	}

	// Dust trades are skipped: rounding would dominate the realised price.
	if outflow.GTE(pcl.MinTradeSize) && offer.GTE(pcl.MinTradeSize) {
		lastPrice, err := swapped.LastPrice(offer, offerInd)
		if err != nil {
			return Result{}, errors.Wrap(err, "swap price")
		}
		ixs := [2]num.Decimal{xs[0], c.Mul(xs[1], cfg.PoolState.Price.PriceScale)}
		if err := c.Err(); err != nil {
			return Result{}, errors.Wrap(err, "swap balances")
		}
		if err := cfg.PoolState.UpdatePrice(cfg.Params, ixs, lastPrice, total, env.Time); err != nil {
			return Result{}, err
		}
	}

	receiver := msg.To
	if receiver == "" {
		receiver = msg.Sender
	}
	var res Result
	res.send(pair.asset(askInd, returnAmount), receiver)

	makerFee := num.Uint{}
	if fee.FeeAddress != "" {
		if makerFee, err = swapped.MakerFee.ToUint(askPrec); err != nil {
			return Result{}, errors.Wrap(err, "convert maker fee")
		}
		res.send(pair.asset(askInd, makerFee), fee.FeeAddress)
	}
	shareFee := num.Uint{}
	if cfg.FeeShare != nil {
		if shareFee, err = swapped.ShareFee.ToUint(askPrec); err != nil {
			return Result{}, errors.Wrap(err, "convert fee share")
		}
		res.send(pair.asset(askInd, shareFee), cfg.FeeShare.Recipient)
	}

	if offer.GTE(pcl.MinTradeSize) && swapped.Dy.GTE(pcl.MinTradeSize) {
		legs := [2]num.Decimal{offer, swapped.Dy}
		if offerInd == 1 {
			legs = [2]num.Decimal{swapped.Dy, offer}
		}
		if err := s.record(env.Time, legs); err != nil {
			return Result{}, err
		}
	}

	res.attr("action", "swap")
	res.attr("sender", msg.Sender)
	res.attr("receiver", receiver)
	res.attr("offer_asset", pair.AssetInfos[offerInd].String())
	res.attr("ask_asset", pair.AssetInfos[askInd].String())
	res.attr("offer_amount", msg.OfferAsset.Amount.String())
	res.attr("return_amount", returnAmount.String())
	res.attr("spread_amount", spreadAmount.String())
	res.attr("commission_amount", commission.String())
	res.attr("maker_fee_amount", makerFee.String())
	res.attr("fee_share_amount", shareFee.String())
	return res, nil
}

// checkSpread compares the belief price against the trade in native units, as the trader quoted it.
func checkSpread(msg SwapMsg, returnAmount, spreadAmount num.Uint) error {
	offer, err := msg.OfferAsset.Amount.ToDecimal(0)
	if err != nil {
		return errors.Wrap(err, "convert offer")
	}
	ret, err := returnAmount.ToDecimal(0)
	if err != nil {
		return errors.Wrap(err, "convert return amount")
	}
	spread, err := spreadAmount.ToDecimal(0)
	if err != nil {
		return errors.Wrap(err, "convert spread amount")
	}
	return pcl.AssertMaxSpread(msg.BeliefPrice, msg.MaxSpread, offer, ret, spread)
}
