package replay

import (
	"time"

	"concentratedLiquidity/internal/model"
	"concentratedLiquidity/internal/pool"
)

type outcome struct {
	action    string
	sender    string
	timestamp uint64
	result    pool.Result
	digest    string
	err       error
}

func buildRecord(seq uint64, poolName string, o outcome, processedAt time.Time) model.OperationRecord {
	record := model.OperationRecord{
		Sequence:    seq,
		Pool:        poolName,
		Action:      o.action,
		Sender:      o.sender,
		Timestamp:   o.timestamp,
		ProcessedAt: processedAt.UTC().Format(time.RFC3339Nano),
	}
	if o.err != nil {
		record.Error = o.err.Error()
		return record
	}
	record.Attributes = o.result.Attributes
	record.Transfers = o.result.Transfers
	record.StateDigest = o.digest
	return record
}
