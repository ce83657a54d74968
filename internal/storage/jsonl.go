package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"concentratedLiquidity/internal/model"
)

const maxLineSize = 10 * 1024 * 1024

// JsonlStorage writes operation records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutRecordBatch appends a batch of operation records as JSON lines.
func (s *JsonlStorage) PutRecordBatch(_ context.Context, records []model.OperationRecord) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", record.Sequence, err)
		}
		line = append(line, '\n')
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record %d: %w", record.Sequence, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ScanLines calls fn with every non-empty line of a JSONL file and its 1-based position
// among non-empty lines. line is only valid during the call. Iteration stops at the first
// error returned by fn.
func ScanLines(path string, fn func(n uint64, line []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var n uint64
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		n++
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

// ReadRecords decodes every operation record of a JSONL file written by JsonlStorage.
func ReadRecords(path string, fn func(model.OperationRecord) error) error {
	return ScanLines(path, func(n uint64, line []byte) error {
		var record model.OperationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("decode record on line %d: %w", n, err)
		}
		return fn(record)
	})
}
