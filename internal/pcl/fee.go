package pcl

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
)

// Fee returns the swap fee rate for internal balances xp. Balanced pools pay mid_fee and the rate moves
// towards out_fee as the pool gets imbalanced; fee_gamma controls how fast.
func (p PoolParams) Fee(xp [2]num.Decimal) (num.Decimal, error) {
	var c num.Calc
	sum := c.Add(xp[0], xp[1])
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "fee")
	}
	if sum.IsZero() {
		return p.MidFee, nil
	}
	k := num.Min(c.Div(c.MulUint64(c.Mul(xp[0], xp[1]), 4), c.Pow(sum, 2)), num.DecimalOne())
	f := c.Div(p.FeeGamma, c.Sub(c.Add(p.FeeGamma, num.DecimalOne()), k))
	fee := c.Add(c.Mul(f, p.MidFee), c.Mul(c.Sub(num.DecimalOne(), num.Min(f, num.DecimalOne())), p.OutFee))
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "fee")
	}
	return fee, nil
}

// CalcProvideFee charges deposits for the imbalance they add: fee(xp)/2 scaled by how far the deposit is
// from an even split. deposits and xp are in internal units.
func CalcProvideFee(deposits, xp [2]num.Decimal, params PoolParams) (num.Decimal, error) {
	var c num.Calc
	sum := c.Add(deposits[0], deposits[1])
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "provide fee")
	}
	if sum.IsZero() {
		return num.Decimal{}, nil
	}
	avg := c.DivUint64(sum, 2)
	deviation := c.Add(deposits[0].Diff(avg), deposits[1].Diff(avg))
	fee, err := params.Fee(xp)
	if err != nil {
		return num.Decimal{}, err
	}
	rate := c.Div(c.Mul(c.DivUint64(fee, 2), deviation), sum)
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "provide fee")
	}
	return rate, nil
}

// FeeShareConfig diverts part of every swap fee to a third party.
type FeeShareConfig struct {
	Bps       uint16 `json:"bps"`
	Recipient string `json:"recipient"`
}

func NewFeeShareConfig(bps uint16, recipient string) (FeeShareConfig, error) {
	if bps == 0 || bps > MaxFeeShareBps {
		return FeeShareConfig{}, errors.Wrapf(ErrFeeShareOutOfBounds, "fee share %d bps must be within (0, %d]", bps, MaxFeeShareBps)
	}
	if recipient == "" {
		return FeeShareConfig{}, errors.Wrap(ErrFeeShareOutOfBounds, "fee share recipient is empty")
	}
	return FeeShareConfig{Bps: bps, Recipient: recipient}, nil
}

// Share returns the fee share as a fraction.
func (f FeeShareConfig) Share() num.Decimal {
	share, _ := num.DecimalFromRatio(uint64(f.Bps), 10_000)
	return share
}

// SwapFees are the fractions of the swap fee paid out of the pool.
type SwapFees struct {
	// MakerShare applies to the fee left after the fee share.
	MakerShare num.Decimal
	FeeShare   num.Decimal
}

// SwapResult is a priced swap in real (not price-scaled) 18-digit units of the ask asset.
type SwapResult struct {
	Dy        num.Decimal `json:"dy"`
	SpreadFee num.Decimal `json:"spread_fee"`
	TotalFee  num.Decimal `json:"total_fee"`
	MakerFee  num.Decimal `json:"maker_fee"`
	ShareFee  num.Decimal `json:"share_fee"`
}

// Outflow is everything leaving the pool on the ask side.
func (r SwapResult) Outflow() (num.Decimal, error) {
	var c num.Calc
	out := c.Sum(r.Dy, r.MakerFee, r.ShareFee)
	return out, c.Err()
}

// LastPrice is the realised price of asset 1 in asset 0.
func (r SwapResult) LastPrice(offer num.Decimal, offerInd int) (num.Decimal, error) {
	out, err := r.Outflow()
	if err != nil {
		return num.Decimal{}, err
	}
	if offerInd == 0 {
		return offer.Div(out)
	}
	return out.Div(offer)
}

func swapPrice(ps num.Decimal, askInd int) (num.Decimal, error) {
	if askInd == 1 {
		return num.DecimalOne().Div(ps)
	}
	return ps, nil
}

// ComputeSwap prices an offer of asset 1-askInd against real balances xs.
func ComputeSwap(xs [2]num.Decimal, offer num.Decimal, askInd int, state PoolState, params PoolParams, now uint64, fees SwapFees) (SwapResult, error) {
	ag, err := state.AmpGammaAt(now)
	if err != nil {
		return SwapResult{}, err
	}
	ps := state.Price.PriceScale
	offerInd := 1 - askInd

	var c num.Calc
	ixs := [2]num.Decimal{xs[0], c.Mul(xs[1], ps)}
	if err := c.Err(); err != nil {
		return SwapResult{}, errors.Wrap(err, "compute swap")
	}
	d, err := CalcD(ixs, ag)
	if err != nil {
		return SwapResult{}, err
	}

	internalOffer := offer
	if offerInd == 1 {
		internalOffer = c.Mul(offer, ps)
	}
	ixs[offerInd] = c.Add(ixs[offerInd], internalOffer)
	if err := c.Err(); err != nil {
		return SwapResult{}, errors.Wrap(err, "compute swap")
	}

	newY, err := CalcY(ixs, d, ag, askInd)
	if err != nil {
		return SwapResult{}, err
	}
	dy := ixs[askInd].SaturatingSub(newY)
	ixs[askInd] = newY

	price, err := swapPrice(ps, askInd)
	if err != nil {
		return SwapResult{}, errors.Wrap(err, "compute swap")
	}
	if askInd == 1 {
		dy = c.Div(dy, ps)
	}
	spread := c.Mul(offer, price).SaturatingSub(dy)

	rate, err := params.Fee(ixs)
	if err != nil {
		return SwapResult{}, err
	}
	total := c.Mul(rate, dy)
	share := c.Mul(total, fees.FeeShare)
	maker := c.Mul(c.Sub(total, share), fees.MakerShare)
	dy = c.Sub(dy, total)
	if err := c.Err(); err != nil {
		return SwapResult{}, errors.Wrap(err, "compute swap")
	}

	return SwapResult{
		Dy:        dy,
		SpreadFee: spread,
		TotalFee:  total,
		MakerFee:  maker,
		ShareFee:  share,
	}, nil
}

// OfferResult is the outcome of a reverse simulation.
type OfferResult struct {
	Offer     num.Decimal `json:"offer"`
	SpreadFee num.Decimal `json:"spread_fee"`
	TotalFee  num.Decimal `json:"total_fee"`
}

// ComputeOfferAmount finds how much of asset 1-askInd must be offered to receive ask, charging out_fee.
func ComputeOfferAmount(xs [2]num.Decimal, ask num.Decimal, askInd int, state PoolState, params PoolParams, now uint64) (OfferResult, error) {
	ag, err := state.AmpGammaAt(now)
	if err != nil {
		return OfferResult{}, err
	}
	ps := state.Price.PriceScale
	offerInd := 1 - askInd

	var c num.Calc
	ixs := [2]num.Decimal{xs[0], c.Mul(xs[1], ps)}
	if err := c.Err(); err != nil {
		return OfferResult{}, errors.Wrap(err, "compute offer")
	}
	d, err := CalcD(ixs, ag)
	if err != nil {
		return OfferResult{}, err
	}

	dy := c.Div(ask, c.Sub(num.DecimalOne(), params.OutFee))
	internalDy := dy
	if askInd == 1 {
		internalDy = c.Mul(dy, ps)
	}
	if err := c.Err(); err != nil {
		return OfferResult{}, errors.Wrap(err, "compute offer")
	}
	if internalDy.GTE(ixs[askInd]) {
		return OfferResult{}, errors.Wrapf(num.ErrOverflow, "ask amount %s exceeds pool balance", ask)
	}
	ixs[askInd] = c.Sub(ixs[askInd], internalDy)

	newX, err := CalcY(ixs, d, ag, offerInd)
	if err != nil {
		return OfferResult{}, err
	}
	offer := newX.SaturatingSub(ixs[offerInd])
	if offerInd == 1 {
		offer = c.Div(offer, ps)
	}

	price, err := swapPrice(ps, askInd)
	if err != nil {
		return OfferResult{}, errors.Wrap(err, "compute offer")
	}
	spread := c.Mul(offer, price).SaturatingSub(dy)
	total := c.Sub(dy, ask)
	if err := c.Err(); err != nil {
		return OfferResult{}, errors.Wrap(err, "compute offer")
	}
	return OfferResult{Offer: offer, SpreadFee: spread, TotalFee: total}, nil
}
