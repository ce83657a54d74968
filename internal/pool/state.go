package pool

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/num"
	"concentratedLiquidity/internal/observation"
	"concentratedLiquidity/internal/pcl"
)

// MaxPrecision bounds the number of decimals an asset may use.
const MaxPrecision = 36

// PairInfo describes the two pool assets in pool order and the addresses the pool acts as.
type PairInfo struct {
	AssetInfos     [2]model.AssetInfo `json:"asset_infos"`
	Precisions     [2]uint8           `json:"precisions"`
	Contract       string             `json:"contract"`
	LiquidityToken string             `json:"liquidity_token"`
}

// Config is everything the pool keeps between operations, apart from the observation ring.
type Config struct {
	Pair      PairInfo            `json:"pair"`
	Owner     string              `json:"owner,omitempty"`
	Params    pcl.PoolParams      `json:"pool_params"`
	PoolState pcl.PoolState       `json:"pool_state"`
	FeeShare  *pcl.FeeShareConfig `json:"fee_share,omitempty"`
}

// State is the complete persisted state of one pool.
type State struct {
	Config       Config              `json:"config"`
	Observations *observation.Buffer `json:"observations"`
}

// Clone returns a deep copy; operations only ever mutate clones.
func (s State) Clone() State {
	out := s
	if s.Config.FeeShare != nil {
		fs := *s.Config.FeeShare
		out.Config.FeeShare = &fs
	}
	out.Observations = s.Observations.Clone()
	return out
}

// Digest is the hex blake3 hash of the canonical JSON encoding. Equal states have equal digests.
func (s State) Digest() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "encode state")
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// InstantiateParams are the creation parameters of a pool.
type InstantiateParams struct {
	AssetInfos          []model.AssetInfo   `json:"asset_infos"`
	Precisions          []uint8             `json:"precisions"`
	Contract            string              `json:"contract"`
	LiquidityToken      string              `json:"liquidity_token"`
	Owner               string              `json:"owner,omitempty"`
	Amp                 num.Decimal         `json:"amp"`
	Gamma               num.Decimal         `json:"gamma"`
	Params              pcl.PoolParams      `json:"params"`
	PriceScale          num.Decimal         `json:"price_scale"`
	ObservationCapacity int                 `json:"observation_capacity,omitempty"`
	FeeShare            *pcl.FeeShareConfig `json:"fee_share,omitempty"`
}

// Instantiate validates p and creates an empty pool at time now.
func Instantiate(p InstantiateParams, now uint64) (State, error) {
	if len(p.AssetInfos) != 2 || len(p.Precisions) != 2 {
		return State{}, errors.Wrapf(ErrInvalidNumberOfAssets, "got %d assets and %d precisions", len(p.AssetInfos), len(p.Precisions))
	}
	var pair PairInfo
	for i, info := range p.AssetInfos {
		canonical, err := info.Validate()
		if err != nil {
			return State{}, errors.Wrap(ErrInvalidAsset, err.Error())
		}
		if p.Precisions[i] > MaxPrecision {
			return State{}, errors.Wrapf(ErrInvalidPrecision, "%s has %d decimals", canonical, p.Precisions[i])
		}
		pair.AssetInfos[i] = canonical
		pair.Precisions[i] = p.Precisions[i]
	}
	if pair.AssetInfos[0].Equal(pair.AssetInfos[1]) {
		return State{}, errors.Wrapf(ErrInvalidAsset, "doubling assets: %s", pair.AssetInfos[0])
	}
	if p.Contract == "" || p.LiquidityToken == "" {
		return State{}, errors.Wrap(pcl.ErrIncorrectPoolParam, "pool contract and liquidity token are required")
	}
	pair.Contract = p.Contract
	pair.LiquidityToken = p.LiquidityToken

	if err := p.Params.Validate(); err != nil {
		return State{}, err
	}
	ag, err := pcl.NewAmpGamma(p.Amp, p.Gamma)
	if err != nil {
		return State{}, err
	}
	poolState, err := pcl.NewPoolState(ag, p.PriceScale, now)
	if err != nil {
		return State{}, err
	}

	var feeShare *pcl.FeeShareConfig
	if p.FeeShare != nil {
		fs, err := pcl.NewFeeShareConfig(p.FeeShare.Bps, p.FeeShare.Recipient)
		if err != nil {
			return State{}, err
		}
		feeShare = &fs
	}

	capacity := p.ObservationCapacity
	if capacity == 0 {
		capacity = observation.DefaultCapacity
	}
	buf, err := observation.New(capacity)
	if err != nil {
		return State{}, errors.Wrap(err, "observations")
	}

	return State{
		Config: Config{
			Pair:      pair,
			Owner:     p.Owner,
			Params:    p.Params,
			PoolState: poolState,
			FeeShare:  feeShare,
		},
		Observations: buf,
	}, nil
}

// index returns the position of info in the pair.
func (p PairInfo) index(info model.AssetInfo) (int, error) {
	for i, candidate := range p.AssetInfos {
		if candidate.Equal(info) {
			return i, nil
		}
	}
	return 0, errors.Wrap(ErrInvalidAsset, info.String())
}

// sortAssets maps assets onto pool order. Omitted assets get a zero amount.
func (p PairInfo) sortAssets(assets []model.Asset) ([2]num.Uint, error) {
	var amounts [2]num.Uint
	var seen [2]bool
	for _, asset := range assets {
		i, err := p.index(asset.Info)
		if err != nil {
			return amounts, err
		}
		if seen[i] {
			return amounts, errors.Wrapf(ErrInvalidAsset, "duplicate asset %s", asset.Info)
		}
		seen[i] = true
		amounts[i] = asset.Amount
	}
	return amounts, nil
}

func (p PairInfo) toDecimals(amounts [2]num.Uint) ([2]num.Decimal, error) {
	var out [2]num.Decimal
	for i, amount := range amounts {
		d, err := amount.ToDecimal(p.Precisions[i])
		if err != nil {
			return out, errors.Wrapf(err, "convert %s", p.AssetInfos[i])
		}
		out[i] = d
	}
	return out, nil
}

func (p PairInfo) asset(i int, amount num.Uint) model.Asset {
	return model.Asset{Info: p.AssetInfos[i], Amount: amount}
}

func (p PairInfo) share(amount num.Uint) model.Asset {
	return model.Asset{Info: model.TokenAsset(p.LiquidityToken), Amount: amount}
}
