package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"concentratedLiquidity/internal/num"
)

// ErrInvalidAssetInfo reports a malformed asset identifier.
var ErrInvalidAssetInfo = errors.New("invalid asset info")

// AssetKind distinguishes chain-native denominations from token contracts.
type AssetKind string

const (
	AssetNative AssetKind = "native"
	AssetToken  AssetKind = "token"
)

// AssetInfo identifies an asset: a native denom or a token contract address.
type AssetInfo struct {
	Kind AssetKind `json:"kind"`
	ID   string    `json:"id"`
}

func NativeAsset(denom string) AssetInfo {
	return AssetInfo{Kind: AssetNative, ID: denom}
}

func TokenAsset(address string) AssetInfo {
	return AssetInfo{Kind: AssetToken, ID: address}
}

// Validate checks the identifier and returns its canonical form (checksummed address for tokens).
func (a AssetInfo) Validate() (AssetInfo, error) {
	id := strings.TrimSpace(a.ID)
	switch a.Kind {
	case AssetNative:
		if id == "" {
			return AssetInfo{}, fmt.Errorf("%w: empty denom", ErrInvalidAssetInfo)
		}
		return AssetInfo{Kind: AssetNative, ID: id}, nil
	case AssetToken:
		if !common.IsHexAddress(id) {
			return AssetInfo{}, fmt.Errorf("%w: invalid token address %s", ErrInvalidAssetInfo, id)
		}
		return AssetInfo{Kind: AssetToken, ID: common.HexToAddress(id).Hex()}, nil
	default:
		return AssetInfo{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidAssetInfo, a.Kind)
	}
}

// Equal compares identifiers; token addresses compare case-insensitively.
func (a AssetInfo) Equal(o AssetInfo) bool {
	if a.Kind != o.Kind {
		return false
	}
	if a.Kind == AssetToken {
		return strings.EqualFold(a.ID, o.ID)
	}
	return a.ID == o.ID
}

func (a AssetInfo) String() string {
	return a.ID
}

// Asset is an amount of an asset at the asset's native precision.
type Asset struct {
	Info   AssetInfo `json:"info"`
	Amount num.Uint  `json:"amount"`
}

func (a Asset) String() string {
	return a.Amount.String() + a.Info.ID
}

// ParseAssetInfo parses "native:<denom>" or "token:<address>".
func ParseAssetInfo(input string) (AssetInfo, error) {
	kind, id, ok := strings.Cut(strings.TrimSpace(input), ":")
	if !ok {
		return AssetInfo{}, fmt.Errorf("%w: %q, expected kind:id", ErrInvalidAssetInfo, input)
	}
	return AssetInfo{Kind: AssetKind(strings.ToLower(kind)), ID: id}.Validate()
}
