package pcl

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
)

// PoolParams are the owner-tunable fee and repeg parameters.
type PoolParams struct {
	MidFee               num.Decimal `json:"mid_fee"`
	OutFee               num.Decimal `json:"out_fee"`
	FeeGamma             num.Decimal `json:"fee_gamma"`
	RepegProfitThreshold num.Decimal `json:"repeg_profit_threshold"`
	MinPriceScaleDelta   num.Decimal `json:"min_price_scale_delta"`
	MaHalfTime           uint64      `json:"ma_half_time"`
}

// UpdatePoolParams carries a partial update; nil fields keep their value.
type UpdatePoolParams struct {
	MidFee               *num.Decimal `json:"mid_fee,omitempty"`
	OutFee               *num.Decimal `json:"out_fee,omitempty"`
	FeeGamma             *num.Decimal `json:"fee_gamma,omitempty"`
	RepegProfitThreshold *num.Decimal `json:"repeg_profit_threshold,omitempty"`
	MinPriceScaleDelta   *num.Decimal `json:"min_price_scale_delta,omitempty"`
	MaHalfTime           *uint64      `json:"ma_half_time,omitempty"`
}

// Update applies u and re-validates the whole parameter set. p is left untouched on error.
func (p *PoolParams) Update(u UpdatePoolParams) error {
	next := *p
	if u.MidFee != nil {
		next.MidFee = *u.MidFee
	}
	if u.OutFee != nil {
		next.OutFee = *u.OutFee
	}
	if u.FeeGamma != nil {
		next.FeeGamma = *u.FeeGamma
	}
	if u.RepegProfitThreshold != nil {
		next.RepegProfitThreshold = *u.RepegProfitThreshold
	}
	if u.MinPriceScaleDelta != nil {
		next.MinPriceScaleDelta = *u.MinPriceScaleDelta
	}
	if u.MaHalfTime != nil {
		next.MaHalfTime = *u.MaHalfTime
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p PoolParams) Validate() error {
	switch {
	case p.MidFee.GT(MaxFee):
		return errors.Wrapf(ErrIncorrectPoolParam, "mid_fee %s exceeds %s", p.MidFee, MaxFee)
	case p.OutFee.GT(MaxFee):
		return errors.Wrapf(ErrIncorrectPoolParam, "out_fee %s exceeds %s", p.OutFee, MaxFee)
	case p.MidFee.GT(p.OutFee):
		return errors.Wrapf(ErrIncorrectPoolParam, "mid_fee %s must not exceed out_fee %s", p.MidFee, p.OutFee)
	case p.FeeGamma.IsZero() || p.FeeGamma.GT(MaxFeeGamma):
		return errors.Wrapf(ErrIncorrectPoolParam, "fee_gamma %s must be within (0, %s]", p.FeeGamma, MaxFeeGamma)
	case p.RepegProfitThreshold.GT(MaxRepegProfitThreshold):
		return errors.Wrapf(ErrIncorrectPoolParam, "repeg_profit_threshold %s exceeds %s", p.RepegProfitThreshold, MaxRepegProfitThreshold)
	case p.MinPriceScaleDelta.GT(MaxMinPriceScaleDelta):
		return errors.Wrapf(ErrIncorrectPoolParam, "min_price_scale_delta %s exceeds %s", p.MinPriceScaleDelta, MaxMinPriceScaleDelta)
	case p.MaHalfTime < MinMaHalfTime || p.MaHalfTime > MaxMaHalfTime:
		return errors.Wrapf(ErrIncorrectPoolParam, "ma_half_time %d must be within [%d, %d]", p.MaHalfTime, MinMaHalfTime, MaxMaHalfTime)
	}
	return nil
}
