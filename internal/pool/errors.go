package pool

import "github.com/pkg/errors"

var (
	ErrInvalidNumberOfAssets      = errors.New("invalid number of assets, the pool supports exactly two")
	ErrInvalidAsset               = errors.New("asset does not belong to the pool")
	ErrInvalidPrecision           = errors.New("asset precision is out of range")
	ErrImbalancedWithdrawDisabled = errors.New("imbalanced withdraw is currently disabled")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrTimeRegression             = errors.New("operation time is older than the last pool update")
)
