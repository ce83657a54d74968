package storage

import (
	"context"

	"concentratedLiquidity/internal/model"
)

// Storage defines a sink for operation records.
type Storage interface {
	PutRecordBatch(ctx context.Context, records []model.OperationRecord) error
}

// Multi writes every batch to all sinks in order and stops at the first failure.
type Multi []Storage

func (m Multi) PutRecordBatch(ctx context.Context, records []model.OperationRecord) error {
	for _, sink := range m {
		if err := sink.PutRecordBatch(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
