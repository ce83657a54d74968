package model

import "time"

// PoolWindowMetrics stores aggregated swap activity of a pool for one window.
type PoolWindowMetrics struct {
	Pool           string
	WindowSizeSecs int64
	WindowStart    time.Time
	WindowEnd      time.Time
	SwapCount      uint64
	ProvideCount   uint64
	WithdrawCount  uint64
	Volume0        string
	Volume1        string
	Fee0           string
	Fee1           string
	MakerFee0      string
	MakerFee1      string
	ShareFee0      string
	ShareFee1      string
	AvgPrice       *string
	LastDigest     string
}
