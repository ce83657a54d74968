package aggregate

import (
	"fmt"
	"math/big"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pool"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	Pool          string
	WindowStart   uint64
	WindowEnd     uint64
	FirstSequence uint64
	LastSequence  uint64
	LastDigest    string

	SwapCount     uint64
	ProvideCount  uint64
	WithdrawCount uint64

	Volume   [2]*big.Int
	Fee      [2]*big.Int
	MakerFee [2]*big.Int
	ShareFee [2]*big.Int
}

func NewAccumulator(record model.OperationRecord, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		Pool:          record.Pool,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		FirstSequence: record.Sequence,
		LastSequence:  record.Sequence,
		Volume:        [2]*big.Int{big.NewInt(0), big.NewInt(0)},
		Fee:           [2]*big.Int{big.NewInt(0), big.NewInt(0)},
		MakerFee:      [2]*big.Int{big.NewInt(0), big.NewInt(0)},
		ShareFee:      [2]*big.Int{big.NewInt(0), big.NewInt(0)},
	}
}

// AddRecord folds a successful operation into the window.
func (a *Accumulator) AddRecord(pair pool.PairInfo, record model.OperationRecord) error {
	if record.Sequence < a.FirstSequence {
		a.FirstSequence = record.Sequence
	}
	if record.Sequence >= a.LastSequence {
		a.LastSequence = record.Sequence
		a.LastDigest = record.StateDigest
	}

	action, _ := model.AttributeValue(record.Attributes, "action")
	if action == "" {
		action = record.Action
	}
	switch action {
	case "swap":
		return a.applySwap(pair, record.Attributes)
	case "provide_liquidity":
		a.ProvideCount++
	case "withdraw_liquidity":
		a.WithdrawCount++
	}
	return nil
}

func (a *Accumulator) applySwap(pair pool.PairInfo, attrs []model.Attribute) error {
	offerInfo, _ := model.AttributeValue(attrs, "offer_asset")
	offer := -1
	for i, info := range pair.AssetInfos {
		if info.String() == offerInfo {
			offer = i
		}
	}
	if offer < 0 {
		return fmt.Errorf("swap offers unknown asset %q", offerInfo)
	}
	ask := 1 - offer

	amounts := []struct {
		key    string
		target *big.Int
	}{
		{"offer_amount", a.Volume[offer]},
		{"return_amount", a.Volume[ask]},
		{"commission_amount", a.Fee[ask]},
		{"maker_fee_amount", a.MakerFee[ask]},
		{"fee_share_amount", a.ShareFee[ask]},
	}
	parsed := make([]*big.Int, len(amounts))
	for i, entry := range amounts {
		value, _ := model.AttributeValue(attrs, entry.key)
		amount, err := parseBigInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
		parsed[i] = amount
	}
	for i, entry := range amounts {
		entry.target.Add(entry.target, parsed[i])
	}

	a.SwapCount++
	return nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok || parsed.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	return parsed, nil
}
