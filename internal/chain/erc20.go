package chain

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"concentratedLiquidity/internal/num"
)

const erc20ABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error
)

func erc20ABIInstance() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

func unpackSingle(method string, resp []byte) (interface{}, error) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s return size %d", method, len(values))
	}
	return values[0], nil
}

func unpackAmount(method string, resp []byte) (num.Uint, error) {
	value, err := unpackSingle(method, resp)
	if err != nil {
		return num.Uint{}, err
	}
	amount, ok := value.(*big.Int)
	if !ok {
		return num.Uint{}, fmt.Errorf("%s unexpected type %T", method, value)
	}
	return amountFromBig(amount)
}

func unpackDecimals(resp []byte) (uint8, error) {
	value, err := unpackSingle("decimals", resp)
	if err != nil {
		return 0, err
	}
	decimals, ok := value.(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals unexpected type %T", value)
	}
	return decimals, nil
}

func amountFromBig(value *big.Int) (num.Uint, error) {
	if value == nil || value.Sign() < 0 {
		return num.Uint{}, fmt.Errorf("invalid amount %v", value)
	}
	return num.UintFromString(value.String())
}
