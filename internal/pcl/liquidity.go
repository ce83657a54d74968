package pcl

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
)

func resolveTolerance(tolerance *num.Decimal) (num.Decimal, error) {
	if tolerance == nil {
		return DefaultSlippage, nil
	}
	if tolerance.GT(MaxAllowedSlippage) {
		return num.Decimal{}, errors.Wrapf(ErrAllowedSpreadAssertion, "got %s", *tolerance)
	}
	return *tolerance, nil
}

// AssertSlippageTolerance compares minted shares against the shares a balanced deposit of the same value
// would get at price_scale. deposits are real 18-digit amounts, minted is in 18-digit LP units.
func AssertSlippageTolerance(deposits [2]num.Decimal, minted num.Decimal, price PriceState, tolerance *num.Decimal) error {
	tol, err := resolveTolerance(tolerance)
	if err != nil {
		return err
	}

	var c num.Calc
	value := c.Add(deposits[0], c.Mul(deposits[1], price.PriceScale))
	half := c.DivUint64(value, 2)
	expected := c.Div(c.Mul(half, c.Div(half, price.PriceScale)).Sqrt(), price.XcpProfitReal)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "slippage tolerance")
	}
	if expected.IsZero() {
		return nil
	}
	slippage := c.Div(expected.SaturatingSub(minted), expected)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "slippage tolerance")
	}
	if slippage.GT(tol) {
		return errors.Wrapf(ErrMaxSpreadAssertion, "slippage %s exceeds tolerance %s", slippage, tol)
	}
	return nil
}

// AssertMaxSpread rejects swaps whose return deviates too much from the belief price, or whose spread is
// too large a part of the return when no belief price is given. belief price is offer per ask; amounts
// are expected in native units so that the price matches what the trader quoted.
func AssertMaxSpread(beliefPrice, maxSpread *num.Decimal, offer, ret, spread num.Decimal) error {
	limit, err := resolveTolerance(maxSpread)
	if err != nil {
		return err
	}

	var c num.Calc
	if beliefPrice != nil {
		expected := c.Div(offer, *beliefPrice)
		if err := c.Err(); err != nil {
			return errors.Wrap(err, "max spread")
		}
		if ret.GTE(expected) {
			return nil
		}
		ratio := c.Div(expected.SaturatingSub(ret), expected)
		if err := c.Err(); err != nil {
			return errors.Wrap(err, "max spread")
		}
		if ratio.GT(limit) {
			return errors.Wrapf(ErrMaxSpreadAssertion, "spread %s exceeds %s", ratio, limit)
		}
		return nil
	}

	gross := c.Add(ret, spread)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "max spread")
	}
	if gross.IsZero() {
		return nil
	}
	ratio := c.Div(spread, gross)
	if err := c.Err(); err != nil {
		return errors.Wrap(err, "max spread")
	}
	if ratio.GT(limit) {
		return errors.Wrapf(ErrMaxSpreadAssertion, "spread %s exceeds %s", ratio, limit)
	}
	return nil
}

// BeforeSwapCheck rejects empty offers and swaps against an empty pool.
func BeforeSwapCheck(xs [2]num.Decimal, offer num.Decimal) error {
	if offer.IsZero() {
		return errors.Wrap(ErrInvalidZeroAmount, "offer amount is zero")
	}
	if xs[0].IsZero() || xs[1].IsZero() {
		return errors.Wrap(ErrInvalidZeroAmount, "pool is empty")
	}
	return nil
}

// MintShare returns the LP amount minted when D grows from oldD to newD, before the provide fee.
func MintShare(totalShare, oldD, newD num.Decimal) (num.Decimal, error) {
	var c num.Calc
	grown := c.Div(c.Mul(totalShare, newD), oldD)
	if err := c.Err(); err != nil {
		return num.Decimal{}, errors.Wrap(err, "mint share")
	}
	return grown.SaturatingSub(totalShare), nil
}
