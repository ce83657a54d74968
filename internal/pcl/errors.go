package pcl

import "github.com/pkg/errors"

var (
	ErrDidNotConverge = errors.New("newton method did not converge")

	ErrInvalidZeroAmount   = errors.New("event of zero transfer")
	ErrIncorrectPoolParam  = errors.New("incorrect pool parameter")
	ErrFeeShareOutOfBounds = errors.New("fee share is out of bounds")

	ErrMaxSpreadAssertion     = errors.New("operation exceeds max spread limit")
	ErrAllowedSpreadAssertion = errors.New("allowed spread must be less than or equal to 50%")
	ErrMinimumLiquidityAmount = errors.New("initial liquidity must be more than the minimum liquidity amount")
)
