package pool

import (
	"fmt"

	"github.com/pkg/errors"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

// ProvideMsg deposits one or both pool assets. A missing asset counts as a zero deposit.
type ProvideMsg struct {
	Sender            string
	Assets            []model.Asset
	SlippageTolerance *num.Decimal
	AutoStake         bool
	Receiver          string
}

func (s *State) provide(env Env, snap Snapshot, msg ProvideMsg) (Result, error) {
	switch n := len(msg.Assets); {
	case n == 0:
		return Result{}, errors.Wrap(pcl.ErrInvalidZeroAmount, "nothing to provide")
	case n > 2:
		return Result{}, errors.Wrapf(ErrInvalidNumberOfAssets, "got %d", n)
	}

	cfg := &s.Config
	pair := cfg.Pair
	amounts, err := pair.sortAssets(msg.Assets)
	if err != nil {
		return Result{}, err
	}
	if amounts[0].IsZero() && amounts[1].IsZero() {
		return Result{}, errors.Wrap(pcl.ErrInvalidZeroAmount, "both deposits are zero")
	}
	deposits, err := pair.toDecimals(amounts)
	if err != nil {
		return Result{}, err
	}
	pools, total, err := snap.decimals(pair)
	if err != nil {
		return Result{}, err
	}
	first := total.IsZero()
	if first && (deposits[0].IsZero() || deposits[1].IsZero()) {
		return Result{}, errors.Wrap(pcl.ErrInvalidZeroAmount, "initial provide can not be one-sided")
	}

	price := &cfg.PoolState.Price
	ps := price.PriceScale
	ag, err := cfg.PoolState.AmpGammaAt(env.Time)
	if err != nil {
		return Result{}, err
	}

	var c num.Calc
	reserves := [2]num.Decimal{c.Add(pools[0], deposits[0]), c.Add(pools[1], deposits[1])}
	newXp := [2]num.Decimal{reserves[0], c.Mul(reserves[1], ps)}
	if err := c.Err(); err != nil {
		return Result{}, errors.Wrap(err, "provide balances")
	}
	newD, err := pcl.CalcD(newXp, ag)
	if err != nil {
		return Result{}, err
	}

	var res Result
	var share num.Decimal
	supply := total
	if first {
		xcp, err := pcl.XCP(newD, ps)
		if err != nil {
			return Result{}, errors.Wrap(err, "initial xcp")
		}
		locked, err := pcl.MinimumLiquidityAmount.ToDecimal(pcl.LPTokenPrecision)
		if err != nil {
			return Result{}, err
		}
		if !xcp.GT(locked) {
			return Result{}, errors.Wrapf(pcl.ErrMinimumLiquidityAmount, "xcp %s", xcp)
		}
		share = c.Sub(xcp, locked)
		supply = locked
		price.XcpProfit = num.DecimalOne()
		price.XcpProfitReal = num.DecimalOne()
		res.Transfers = append(res.Transfers, model.Transfer{
			Kind:      model.TransferMint,
			Asset:     pair.share(pcl.MinimumLiquidityAmount),
			Recipient: pair.Contract,
		})
	} else {
		oldD, err := pcl.CalcD([2]num.Decimal{pools[0], c.Mul(pools[1], ps)}, ag)
		if err != nil {
			return Result{}, err
		}
		minted, err := pcl.MintShare(total, oldD, newD)
		if err != nil {
			return Result{}, err
		}
		fee, err := pcl.CalcProvideFee([2]num.Decimal{deposits[0], c.Mul(deposits[1], ps)}, newXp, cfg.Params)
		if err != nil {
			return Result{}, err
		}
		share = c.Mul(minted, c.Sub(num.DecimalOne(), fee))
	}
	supply = c.Add(supply, share)

	// Deposit legs that deviate from a balanced deposit of the same share act as a trade.
	ratio := c.Div(share, c.Add(total, share))
	balanced := [2]num.Decimal{c.Mul(newXp[0], ratio), c.Div(c.Mul(newXp[1], ratio), ps)}
	if err := c.Err(); err != nil {
		return Result{}, errors.Wrap(err, "provide share")
	}
	diff := [2]num.Decimal{deposits[0].Diff(balanced[0]), deposits[1].Diff(balanced[1])}

	lastPrice := price.LastPrice
	if diff[0].GTE(pcl.MinTradeSize) && diff[1].GTE(pcl.MinTradeSize) {
		if err := pcl.AssertSlippageTolerance(deposits, share, *price, msg.SlippageTolerance); err != nil {
			return Result{}, err
		}
		if lastPrice, err = diff[0].Div(diff[1]); err != nil {
			return Result{}, errors.Wrap(err, "provide price")
		}
	}
	if err := cfg.PoolState.UpdatePrice(cfg.Params, newXp, lastPrice, supply, env.Time); err != nil {
		return Result{}, err
	}

	minted, err := share.ToUint(pcl.LPTokenPrecision)
	if err != nil {
		return Result{}, errors.Wrap(err, "convert share")
	}
	if minted.IsZero() {
		return Result{}, errors.Wrap(pcl.ErrInvalidZeroAmount, "deposit is too small to mint a share")
	}
	receiver := msg.Receiver
	if receiver == "" {
		receiver = msg.Sender
	}
	res.Transfers = append(res.Transfers, model.Transfer{
		Kind:      model.TransferMint,
		Asset:     pair.share(minted),
		Recipient: receiver,
		AutoStake: msg.AutoStake,
	})

	if deposits[0].GTE(pcl.MinTradeSize) || deposits[1].GTE(pcl.MinTradeSize) {
		if err := s.record(env.Time, reserves); err != nil {
			return Result{}, err
		}
	}

	res.attr("action", "provide_liquidity")
	res.attr("sender", msg.Sender)
	res.attr("receiver", receiver)
	res.attr("assets", fmt.Sprintf("%s, %s", pair.asset(0, amounts[0]), pair.asset(1, amounts[1])))
	res.attr("share", minted.String())
	return res, nil
}
