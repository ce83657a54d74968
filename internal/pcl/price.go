package pcl

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
)

// UpdateOracle folds LastPrice into the exponential moving average. Nothing happens within the same second.
func (p *PriceState) UpdateOracle(maHalfTime, now uint64) error {
	if now <= p.LastPriceUpdate {
		return nil
	}
	exp, err := num.DecimalFromRatio(now-p.LastPriceUpdate, maHalfTime)
	if err != nil {
		return errors.Wrap(err, "oracle exponent")
	}
	alpha, err := HalfPow(exp)
	if err != nil {
		return err
	}

	var c num.Calc
	oracle := c.Add(
		c.Mul(p.LastPrice, c.Sub(num.DecimalOne(), alpha)),
		c.Mul(p.OraclePrice, alpha),
	)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "update oracle")
	}
	p.OraclePrice = oracle
	p.LastPriceUpdate = now
	return nil
}

// UpdatePrice refreshes the oracle, the profit counters and, when the pool has earned enough, moves price_scale
// towards the oracle. xs are the internal balances after the operation with xs[1] multiplied by the current
// price_scale; totalLP is the LP supply after the operation in 18-digit units.
func (s *PoolState) UpdatePrice(params PoolParams, xs [2]num.Decimal, lastPrice, totalLP num.Decimal, now uint64) error {
	ag, err := s.AmpGammaAt(now)
	if err != nil {
		return err
	}
	ps := &s.Price

	if err := ps.UpdateOracle(params.MaHalfTime, now); err != nil {
		return err
	}
	ps.LastPrice = lastPrice

	if totalLP.IsZero() || ps.XcpProfitReal.IsZero() {
		return nil
	}

	d, err := CalcD(xs, ag)
	if err != nil {
		return err
	}
	xcp, err := XCP(d, ps.PriceScale)
	if err != nil {
		return errors.Wrap(err, "xcp")
	}

	var c num.Calc
	profit := c.Div(xcp, totalLP)
	ps.XcpProfit = c.Div(c.Mul(ps.XcpProfit, profit), ps.XcpProfitReal)
	ps.XcpProfitReal = profit

	norm := c.Div(ps.OraclePrice.Diff(ps.PriceScale), ps.PriceScale)
	step := num.Max(params.MinPriceScaleDelta, c.DivUint64(norm, 10))
	// Half of the profit stays in the pool; only the other half may be spent on repegging.
	spare := c.Sum(ps.XcpProfit, num.DecimalOne(), c.MulUint64(params.RepegProfitThreshold, 2))
	doubleReal := c.MulUint64(profit, 2)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "update price")
	}
	if !norm.GT(step) || !doubleReal.GT(spare) {
		return nil
	}

	candidate := c.Div(
		c.Add(c.Mul(ps.PriceScale, c.Sub(norm, step)), c.Mul(step, ps.OraclePrice)),
		norm,
	)
	repriced := [2]num.Decimal{xs[0], c.Div(c.Mul(xs[1], candidate), ps.PriceScale)}
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "repeg")
	}
	newD, err := CalcD(repriced, ag)
	if err != nil {
		return err
	}
	newXcp, err := XCP(newD, candidate)
	if err != nil {
		return errors.Wrap(err, "repeg xcp")
	}
	newReal := c.Div(newXcp, totalLP)
	keep := c.Add(ps.XcpProfit, num.DecimalOne())
	doubleNewReal := c.MulUint64(newReal, 2)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "repeg")
	}
	if doubleNewReal.GT(keep) {
		ps.PriceScale = candidate
		ps.XcpProfitReal = newReal
	}
	return nil
}

// RefreshProfit recomputes xcp_profit_real from real balances xs and the share supply totalLP without
// touching the oracle or xcp_profit. Used after withdrawals.
func (s *PoolState) RefreshProfit(xs [2]num.Decimal, totalLP num.Decimal, now uint64) error {
	ag, err := s.AmpGammaAt(now)
	if err != nil {
		return err
	}
	var c num.Calc
	ixs := [2]num.Decimal{xs[0], c.Mul(xs[1], s.Price.PriceScale)}
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "refresh profit")
	}
	d, err := CalcD(ixs, ag)
	if err != nil {
		return err
	}
	xcp, err := XCP(d, s.Price.PriceScale)
	if err != nil {
		return errors.Wrap(err, "xcp")
	}
	profit, err := xcp.Div(totalLP)
	if err != nil {
		return errors.Wrap(err, "refresh profit")
	}
	s.Price.XcpProfitReal = profit
	return nil
}
