package pool

import (
	"strconv"

	"github.com/pkg/errors"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pcl"
)

// ParamsUpdate is one of UpdatePoolParams, Promote, StopChangingAmpGamma, EnableFeeShare or DisableFeeShare.
type ParamsUpdate interface {
	Name() string
	applyTo(cfg *Config, now uint64) ([]model.Attribute, error)
}

// UpdateParamsMsg changes pool configuration. Only the pool owner, or the factory owner when the pool
// has none, may send it.
type UpdateParamsMsg struct {
	Sender       string
	FactoryOwner string
	Update       ParamsUpdate
}

type UpdatePoolParams pcl.UpdatePoolParams

func (UpdatePoolParams) Name() string { return "update_params" }

func (u UpdatePoolParams) applyTo(cfg *Config, _ uint64) ([]model.Attribute, error) {
	if err := cfg.Params.Update(pcl.UpdatePoolParams(u)); err != nil {
		return nil, err
	}
	var attrs []model.Attribute
	add := func(key, value string) { attrs = append(attrs, model.Attribute{Key: key, Value: value}) }
	if u.MidFee != nil {
		add("mid_fee", u.MidFee.String())
	}
	if u.OutFee != nil {
		add("out_fee", u.OutFee.String())
	}
	if u.FeeGamma != nil {
		add("fee_gamma", u.FeeGamma.String())
	}
	if u.RepegProfitThreshold != nil {
		add("repeg_profit_threshold", u.RepegProfitThreshold.String())
	}
	if u.MinPriceScaleDelta != nil {
		add("min_price_scale_delta", u.MinPriceScaleDelta.String())
	}
	if u.MaHalfTime != nil {
		add("ma_half_time", strconv.FormatUint(*u.MaHalfTime, 10))
	}
	return attrs, nil
}

type Promote pcl.PromoteParams

func (Promote) Name() string { return "promote_params" }

func (p Promote) applyTo(cfg *Config, now uint64) ([]model.Attribute, error) {
	if err := cfg.PoolState.Promote(now, pcl.PromoteParams(p)); err != nil {
		return nil, err
	}
	return []model.Attribute{
		{Key: "next_amp", Value: p.NextAmp.String()},
		{Key: "next_gamma", Value: p.NextGamma.String()},
		{Key: "future_time", Value: strconv.FormatUint(p.FutureTime, 10)},
	}, nil
}

type StopChangingAmpGamma struct{}

func (StopChangingAmpGamma) Name() string { return "stop_changing_amp_gamma" }

func (StopChangingAmpGamma) applyTo(cfg *Config, now uint64) ([]model.Attribute, error) {
	if err := cfg.PoolState.StopPromotion(now); err != nil {
		return nil, err
	}
	return nil, nil
}

type EnableFeeShare struct {
	Bps       uint16 `json:"fee_share_bps"`
	Recipient string `json:"fee_share_address"`
}

func (EnableFeeShare) Name() string { return "enable_fee_share" }

func (e EnableFeeShare) applyTo(cfg *Config, _ uint64) ([]model.Attribute, error) {
	fs, err := pcl.NewFeeShareConfig(e.Bps, e.Recipient)
	if err != nil {
		return nil, err
	}
	cfg.FeeShare = &fs
	return []model.Attribute{
		{Key: "fee_share_bps", Value: strconv.FormatUint(uint64(fs.Bps), 10)},
		{Key: "fee_share_address", Value: fs.Recipient},
	}, nil
}

type DisableFeeShare struct{}

func (DisableFeeShare) Name() string { return "disable_fee_share" }

func (DisableFeeShare) applyTo(cfg *Config, _ uint64) ([]model.Attribute, error) {
	cfg.FeeShare = nil
	return nil, nil
}

func (s *State) updateParams(env Env, msg UpdateParamsMsg) (Result, error) {
	owner := s.Config.Owner
	if owner == "" {
		owner = msg.FactoryOwner
	}
	if owner == "" || msg.Sender != owner {
		return Result{}, errors.Wrapf(ErrUnauthorized, "sender %s", msg.Sender)
	}
	if msg.Update == nil {
		return Result{}, errors.Wrap(pcl.ErrIncorrectPoolParam, "no update given")
	}

	attrs, err := msg.Update.applyTo(&s.Config, env.Time)
	if err != nil {
		return Result{}, err
	}
	var res Result
	res.attr("action", msg.Update.Name())
	res.Attributes = append(res.Attributes, attrs...)
	return res, nil
}
