package pcl

import (
	"github.com/pkg/errors"

	"concentratedLiquidity/internal/num"
)

// AmpGamma is the pair of curve shape parameters.
type AmpGamma struct {
	Amp   num.Decimal `json:"amp"`
	Gamma num.Decimal `json:"gamma"`
}

// NewAmpGamma validates amp and gamma against their bounds.
func NewAmpGamma(amp, gamma num.Decimal) (AmpGamma, error) {
	ag := AmpGamma{Amp: amp, Gamma: gamma}
	if err := ag.Validate(); err != nil {
		return AmpGamma{}, err
	}
	return ag, nil
}

func (ag AmpGamma) Validate() error {
	if ag.Amp.LT(MinAmp) || ag.Amp.GT(MaxAmp) {
		return errors.Wrapf(ErrIncorrectPoolParam, "amp %s must be within [%s, %s]", ag.Amp, MinAmp, MaxAmp)
	}
	if ag.Gamma.LT(MinGamma) || ag.Gamma.GT(MaxGamma) {
		return errors.Wrapf(ErrIncorrectPoolParam, "gamma %s must be within [%s, %s]", ag.Gamma, MinGamma, MaxGamma)
	}
	return nil
}

// PriceState tracks the pool's view of the market price and of its own profit.
type PriceState struct {
	OraclePrice     num.Decimal `json:"oracle_price"`
	LastPrice       num.Decimal `json:"last_price"`
	PriceScale      num.Decimal `json:"price_scale"`
	LastPriceUpdate uint64      `json:"last_price_update"`
	XcpProfit       num.Decimal `json:"xcp_profit"`
	XcpProfitReal   num.Decimal `json:"xcp_profit_real"`
}

// PoolState holds the amp/gamma promotion schedule and the price state.
// The amp and gamma in effect at a given time are derived with AmpGammaAt and never stored.
type PoolState struct {
	Initial     AmpGamma   `json:"initial"`
	Future      AmpGamma   `json:"future"`
	InitialTime uint64     `json:"initial_time"`
	FutureTime  uint64     `json:"future_time"`
	Price       PriceState `json:"price_state"`
}

// NewPoolState creates the state of a freshly instantiated pool.
func NewPoolState(ag AmpGamma, priceScale num.Decimal, now uint64) (PoolState, error) {
	if err := ag.Validate(); err != nil {
		return PoolState{}, err
	}
	if priceScale.IsZero() {
		return PoolState{}, errors.Wrap(ErrIncorrectPoolParam, "initial price scale must be positive")
	}
	return PoolState{
		Initial:     ag,
		Future:      ag,
		InitialTime: now,
		FutureTime:  now,
		Price: PriceState{
			OraclePrice:     priceScale,
			LastPrice:       priceScale,
			PriceScale:      priceScale,
			LastPriceUpdate: now,
		},
	}, nil
}

// IsChangingAmpGamma reports whether now falls inside an active amp/gamma ramp.
func (s PoolState) IsChangingAmpGamma(now uint64) bool {
	return now > s.InitialTime && now < s.FutureTime
}

// AmpGammaAt interpolates amp and gamma linearly between the initial and future values.
func (s PoolState) AmpGammaAt(now uint64) (AmpGamma, error) {
	if now >= s.FutureTime {
		return s.Future, nil
	}
	if now <= s.InitialTime {
		return s.Initial, nil
	}

	total := s.FutureTime - s.InitialTime
	passed := now - s.InitialTime
	left := total - passed

	var c num.Calc
	amp := c.DivUint64(c.Add(c.MulUint64(s.Initial.Amp, left), c.MulUint64(s.Future.Amp, passed)), total)
	gamma := c.DivUint64(c.Add(c.MulUint64(s.Initial.Gamma, left), c.MulUint64(s.Future.Gamma, passed)), total)
	if err := c.Err(); err != nil {
		return AmpGamma{}, errors.Wrap(err, "interpolate amp gamma")
	}
	return AmpGamma{Amp: amp, Gamma: gamma}, nil
}

// PromoteParams schedules a linear move of amp and gamma.
type PromoteParams struct {
	NextAmp    num.Decimal `json:"next_amp"`
	NextGamma  num.Decimal `json:"next_gamma"`
	FutureTime uint64      `json:"future_time"`
}

// Promote starts a promotion from the current amp/gamma to the requested values.
func (s *PoolState) Promote(now uint64, p PromoteParams) error {
	if now < s.InitialTime+MinAmpChangingTime {
		return errors.Wrapf(ErrIncorrectPoolParam, "amp and gamma can be changed once per %d seconds", MinAmpChangingTime)
	}
	if p.FutureTime < now+MinAmpChangingTime {
		return errors.Wrapf(ErrIncorrectPoolParam, "promotion must last at least %d seconds", MinAmpChangingTime)
	}
	next, err := NewAmpGamma(p.NextAmp, p.NextGamma)
	if err != nil {
		return err
	}
	current, err := s.AmpGammaAt(now)
	if err != nil {
		return err
	}
	if err := checkMaxChange("amp", current.Amp, next.Amp); err != nil {
		return err
	}
	if err := checkMaxChange("gamma", current.Gamma, next.Gamma); err != nil {
		return err
	}

	s.Initial = current
	s.InitialTime = now
	s.Future = next
	s.FutureTime = p.FutureTime
	return nil
}

func checkMaxChange(name string, current, next num.Decimal) error {
	lo, hi := num.Min(current, next), num.Max(current, next)
	limit, err := lo.MulUint64(MaxChange)
	if err != nil {
		return errors.Wrapf(err, "%s change", name)
	}
	if hi.GT(limit) {
		return errors.Wrapf(ErrIncorrectPoolParam, "%s can change at most %dx, %s -> %s", name, MaxChange, current, next)
	}
	return nil
}

// StopPromotion freezes amp and gamma at their current interpolated values.
func (s *PoolState) StopPromotion(now uint64) error {
	current, err := s.AmpGammaAt(now)
	if err != nil {
		return err
	}
	s.Initial = current
	s.Future = current
	s.InitialTime = now
	s.FutureTime = now
	return nil
}
