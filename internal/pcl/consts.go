package pcl

import "concentratedLiquidity/internal/num"

const (
	// MaxIter bounds every iterative solver.
	MaxIter = 255
	// newtonIters is how many iterations may use Newton steps before the solvers fall back to plain bisection.
	newtonIters = 48

	// LPTokenPrecision is the number of decimals of the pool share token.
	LPTokenPrecision uint8 = 6

	// MinAmpChangingTime is the minimum interval between promotions and the minimum promotion length, in seconds.
	MinAmpChangingTime uint64 = 86400
	// MaxChange bounds the ratio between the current and the promoted amp or gamma.
	MaxChange uint64 = 10

	// MaxFeeShareBps is the largest fee share allowed, in basis points.
	MaxFeeShareBps uint16 = 1000

	MinMaHalfTime uint64 = 1
	MaxMaHalfTime uint64 = 7 * 86400
)

var (
	MinAmp   = num.MustDecimal("0.1")
	MaxAmp   = num.NewDecimal(100_000)
	MinGamma = num.MustDecimal("0.00000001")
	MaxGamma = num.MustDecimal("0.02")

	MaxFee                  = num.MustDecimal("0.5")
	MaxFeeGamma             = num.DecimalOne()
	MaxRepegProfitThreshold = num.MustDecimal("0.01")
	MaxMinPriceScaleDelta   = num.DecimalOne()

	// MinTradeSize is the smallest leg (in internal 18-digit units) that moves prices or the TWAP.
	MinTradeSize = num.MustDecimal("0.00001")

	// MinimumLiquidityAmount is locked in the pool forever on the first deposit, in LP token units.
	MinimumLiquidityAmount = num.NewUint(1000)

	DefaultSlippage    = num.MustDecimal("0.005")
	MaxAllowedSlippage = num.MustDecimal("0.5")

	// solverTolFloor is the smallest absolute tolerance the solvers aim for.
	solverTolFloor = num.MustDecimal("0.0000000000000001")
	// solverTolRel is the inverse relative tolerance: results are accurate to value/solverTolRel.
	solverTolRel uint64 = 1_000_000_000_000_000

	halfPowTol = num.MustDecimal("0.0000000000000001")
)
