package pool

import (
	"fmt"

	"github.com/pkg/errors"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

// WithdrawMsg burns Amount of the share token for a proportional part of both reserves.
// Assets must be empty; a per-asset withdraw is not supported.
type WithdrawMsg struct {
	Sender string
	Amount num.Uint
	Assets []model.Asset
}

func (s *State) withdraw(env Env, snap Snapshot, msg WithdrawMsg) (Result, error) {
	if len(msg.Assets) > 0 {
		return Result{}, ErrImbalancedWithdrawDisabled
	}
	if msg.Amount.IsZero() {
		return Result{}, errors.Wrap(pcl.ErrInvalidZeroAmount, "withdraw amount is zero")
	}
	if !msg.Amount.LT(snap.TotalShare) {
		return Result{}, errors.Wrapf(num.ErrOverflow, "withdraw amount %s exceeds share supply %s", msg.Amount, snap.TotalShare)
	}

	cfg := &s.Config
	pair := cfg.Pair

	// One unit stays behind so the rounding always favours the pool.
	burned := msg.Amount.SaturatingSub(num.NewUint(1))
	var refunds, remaining [2]num.Uint
	for i, balance := range snap.Pools {
		refund, err := balance.MulDiv(burned, snap.TotalShare)
		if err != nil {
			return Result{}, errors.Wrap(err, "refund")
		}
		refunds[i] = refund
		remaining[i] = balance.SaturatingSub(refund)
	}

	reserves, err := pair.toDecimals(remaining)
	if err != nil {
		return Result{}, err
	}
	left, err := snap.TotalShare.Sub(msg.Amount)
	if err != nil {
		return Result{}, errors.Wrap(err, "remaining share")
	}
	leftDec, err := left.ToDecimal(pcl.LPTokenPrecision)
	if err != nil {
		return Result{}, errors.Wrap(err, "convert remaining share")
	}
	if !reserves[0].IsZero() && !reserves[1].IsZero() {
		if err := cfg.PoolState.RefreshProfit(reserves, leftDec, env.Time); err != nil {
			return Result{}, err
		}
	}

	var res Result
	res.send(pair.asset(0, refunds[0]), msg.Sender)
	res.send(pair.asset(1, refunds[1]), msg.Sender)
	res.Transfers = append(res.Transfers, model.Transfer{
		Kind:  model.TransferBurn,
		Asset: pair.share(msg.Amount),
	})

	refundDec, err := pair.toDecimals(refunds)
	if err != nil {
		return Result{}, err
	}
	if refundDec[0].GTE(pcl.MinTradeSize) || refundDec[1].GTE(pcl.MinTradeSize) {
		if err := s.record(env.Time, reserves); err != nil {
			return Result{}, err
		}
	}

	res.attr("action", "withdraw_liquidity")
	res.attr("sender", msg.Sender)
	res.attr("withdrawn_share", msg.Amount.String())
	res.attr("refund_assets", fmt.Sprintf("%s, %s", pair.asset(0, refunds[0]), pair.asset(1, refunds[1])))
	return res, nil
}
