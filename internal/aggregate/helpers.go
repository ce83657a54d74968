package aggregate

import (
	"math/big"
)

const ratioScale = 18

func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(value, denom).FloatString(int(decimals))
}

// averagePrice is the traded volume of asset 1 per unit of asset 0, both at their precisions.
func averagePrice(volume0, volume1 *big.Int, decimals0, decimals1 uint8) *string {
	if volume0 == nil || volume0.Sign() == 0 || volume1 == nil || volume1.Sign() == 0 {
		return nil
	}
	quote := new(big.Int).Mul(volume1, pow10(decimals0))
	base := new(big.Int).Mul(volume0, pow10(decimals1))
	price := new(big.Rat).SetFrac(quote, base).FloatString(ratioScale)
	return &price
}

func pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}
