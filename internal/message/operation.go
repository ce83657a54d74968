package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/pcl"
	"concentratedLiquidity/internal/pool"
)

var ErrInvalidOperation = errors.New("invalid operation")

const (
	ActionProvide  = "provide_liquidity"
	ActionWithdraw = "withdraw_liquidity"
	ActionSwap     = "swap"
	ActionUpdate   = "update_params"
)

// Envelope is one line of an operation log.
type Envelope struct {
	Action    string          `json:"action"`
	Sender    string          `json:"sender"`
	Timestamp uint64          `json:"timestamp"`
	Msg       json.RawMessage `json:"msg"`
}

// Operation is a decoded envelope. Exactly one of the message pointers is set.
type Operation struct {
	Action    string
	Sender    string
	Timestamp uint64

	Provide  *pool.ProvideMsg
	Withdraw *pool.WithdrawMsg
	Swap     *pool.SwapMsg
	Update   *pool.UpdateParamsMsg
}

type provideBody struct {
	Assets            []model.Asset `json:"assets"`
	SlippageTolerance *num.Decimal  `json:"slippage_tolerance,omitempty"`
	AutoStake         bool          `json:"auto_stake,omitempty"`
	Receiver          string        `json:"receiver,omitempty"`
}

type withdrawBody struct {
	Amount num.Uint      `json:"amount"`
	Assets []model.Asset `json:"assets,omitempty"`
}

type swapBody struct {
	OfferAsset   model.Asset      `json:"offer_asset"`
	AskAssetInfo *model.AssetInfo `json:"ask_asset_info,omitempty"`
	BeliefPrice  *num.Decimal     `json:"belief_price,omitempty"`
	MaxSpread    *num.Decimal     `json:"max_spread,omitempty"`
	To           string           `json:"to,omitempty"`
}

type updateBody struct {
	Update               *pcl.UpdatePoolParams `json:"update,omitempty"`
	Promote              *pcl.PromoteParams    `json:"promote,omitempty"`
	StopChangingAmpGamma *struct{}             `json:"stop_changing_amp_gamma,omitempty"`
	EnableFeeShare       *pool.EnableFeeShare  `json:"enable_fee_share,omitempty"`
	DisableFeeShare      *struct{}             `json:"disable_fee_share,omitempty"`
}

func (b updateBody) variant() (pool.ParamsUpdate, error) {
	switch {
	case b.Update != nil:
		return pool.UpdatePoolParams(*b.Update), nil
	case b.Promote != nil:
		return pool.Promote(*b.Promote), nil
	case b.StopChangingAmpGamma != nil:
		return pool.StopChangingAmpGamma{}, nil
	case b.EnableFeeShare != nil:
		return *b.EnableFeeShare, nil
	case b.DisableFeeShare != nil:
		return pool.DisableFeeShare{}, nil
	}
	return nil, fmt.Errorf("%w: empty update", ErrInvalidOperation)
}

// Decode validates data against the schema and decodes it into an Operation.
// factoryOwner is attached to parameter updates for authorization.
func Decode(data []byte, factoryOwner string) (Operation, error) {
	if err := Validate(data); err != nil {
		return Operation{}, err
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Operation{}, fmt.Errorf("decode envelope: %w", err)
	}
	op := Operation{Action: env.Action, Sender: env.Sender, Timestamp: env.Timestamp}

	switch env.Action {
	case ActionProvide:
		var body provideBody
		if err := json.Unmarshal(env.Msg, &body); err != nil {
			return Operation{}, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		op.Provide = &pool.ProvideMsg{
			Sender:            env.Sender,
			Assets:            body.Assets,
			SlippageTolerance: body.SlippageTolerance,
			AutoStake:         body.AutoStake,
			Receiver:          body.Receiver,
		}
	case ActionWithdraw:
		var body withdrawBody
		if err := json.Unmarshal(env.Msg, &body); err != nil {
			return Operation{}, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		op.Withdraw = &pool.WithdrawMsg{Sender: env.Sender, Amount: body.Amount, Assets: body.Assets}
	case ActionSwap:
		var body swapBody
		if err := json.Unmarshal(env.Msg, &body); err != nil {
			return Operation{}, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		op.Swap = &pool.SwapMsg{
			Sender:       env.Sender,
			OfferAsset:   body.OfferAsset,
			AskAssetInfo: body.AskAssetInfo,
			BeliefPrice:  body.BeliefPrice,
			MaxSpread:    body.MaxSpread,
			To:           body.To,
		}
	case ActionUpdate:
		var body updateBody
		if err := json.Unmarshal(env.Msg, &body); err != nil {
			return Operation{}, fmt.Errorf("decode %s: %w", env.Action, err)
		}
		update, err := body.variant()
		if err != nil {
			return Operation{}, err
		}
		op.Update = &pool.UpdateParamsMsg{Sender: env.Sender, FactoryOwner: factoryOwner, Update: update}
	default:
		return Operation{}, fmt.Errorf("%w: unknown action %q", ErrInvalidOperation, env.Action)
	}
	return op, nil
}
