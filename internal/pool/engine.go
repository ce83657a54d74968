package pool

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
)

// Env is the execution context of one operation. Time is in seconds.
type Env struct {
	Time uint64
}

// Snapshot holds the pool balances before the operation, without funds sent along with it,
// and the share supply at the share token precision.
type Snapshot struct {
	Pools      [2]num.Uint `json:"pools"`
	TotalShare num.Uint    `json:"total_share"`
}

func (s Snapshot) decimals(pair PairInfo) ([2]num.Decimal, num.Decimal, error) {
	pools, err := pair.toDecimals(s.Pools)
	if err != nil {
		return pools, num.Decimal{}, err
	}
	total, err := s.TotalShare.ToDecimal(pcl.LPTokenPrecision)
	if err != nil {
		return pools, num.Decimal{}, errors.Wrap(err, "convert total share")
	}
	return pools, total, nil
}

// FeeInfo is the maker fee configuration provided by the pool factory.
type FeeInfo struct {
	FeeAddress  string `json:"fee_address,omitempty"`
	MakerFeeBps uint16 `json:"maker_fee_bps"`
}

func (f FeeInfo) makerShare() (num.Decimal, error) {
	if f.FeeAddress == "" {
		return num.DecimalZero(), nil
	}
	return num.DecimalFromRatio(uint64(f.MakerFeeBps), 10_000)
}

// Result is what a successful operation hands back to the host besides the new state.
type Result struct {
	Transfers  []model.Transfer  `json:"transfers"`
	Attributes []model.Attribute `json:"attributes"`
}

func (r *Result) attr(key, value string) {
	r.Attributes = append(r.Attributes, model.Attribute{Key: key, Value: value})
}

func (r *Result) send(asset model.Asset, recipient string) {
	if asset.Amount.IsZero() {
		return
	}
	r.Transfers = append(r.Transfers, model.Transfer{Kind: model.TransferSend, Asset: asset, Recipient: recipient})
}

// Engine applies pool operations. It holds no pool state; callers own State values.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// apply runs fn on a copy of st. The copy is returned only when fn succeeds.
// Operations older than the pool's latest update are rejected before fn runs.
func (e *Engine) apply(action string, st State, env Env, fn func(*State) (Result, error)) (State, Result, error) {
	var err error
	if last := st.lastUpdate(); env.Time < last {
		err = errors.Wrapf(ErrTimeRegression, "%s at %d, pool updated at %d", action, env.Time, last)
	}
	next := st.Clone()
	var res Result
	if err == nil {
		res, err = fn(&next)
	}
	if err != nil {
		e.logger.Debug("operation rejected",
			zap.String("pool", st.Config.Pair.Contract),
			zap.String("action", action),
			zap.Error(err),
		)
		return State{}, Result{}, err
	}
	if e.logger.Core().Enabled(zap.DebugLevel) {
		digest, derr := next.Digest()
		if derr != nil {
			return State{}, Result{}, derr
		}
		e.logger.Debug("operation applied",
			zap.String("pool", st.Config.Pair.Contract),
			zap.String("action", action),
			zap.Int("transfers", len(res.Transfers)),
			zap.String("digest", digest),
		)
	}
	return next, res, nil
}

func (e *Engine) ProvideLiquidity(st State, env Env, snap Snapshot, msg ProvideMsg) (State, Result, error) {
	return e.apply("provide_liquidity", st, env, func(s *State) (Result, error) {
		return s.provide(env, snap, msg)
	})
}

func (e *Engine) WithdrawLiquidity(st State, env Env, snap Snapshot, msg WithdrawMsg) (State, Result, error) {
	return e.apply("withdraw_liquidity", st, env, func(s *State) (Result, error) {
		return s.withdraw(env, snap, msg)
	})
}

func (e *Engine) Swap(st State, env Env, snap Snapshot, fee FeeInfo, msg SwapMsg) (State, Result, error) {
	return e.apply("swap", st, env, func(s *State) (Result, error) {
		return s.swap(env, snap, fee, msg)
	})
}

func (e *Engine) UpdateParams(st State, env Env, msg UpdateParamsMsg) (State, Result, error) {
	return e.apply("update_params", st, env, func(s *State) (Result, error) {
		return s.updateParams(env, msg)
	})
}

// lastUpdate is the latest time the pool has seen: an oracle update or a recorded observation.
func (s State) lastUpdate() uint64 {
	last := s.Config.PoolState.Price.LastPriceUpdate
	if s.Observations == nil {
		return last
	}
	if newest, ok := s.Observations.Newest(); ok && newest.Timestamp > last {
		last = newest.Timestamp
	}
	return last
}

// record stores base and quote amounts in the observation ring.
func (s *State) record(now uint64, amounts [2]num.Decimal) error {
	if _, err := s.Observations.Record(now, amounts[0], amounts[1]); err != nil {
		return errors.Wrap(err, "record observation")
	}
	return nil
}
