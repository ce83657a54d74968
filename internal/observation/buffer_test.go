package observation

import (
	"errors"
	"testing"

	"concentratedLiquidity/internal/num"
)

func d(s string) num.Decimal {
	return num.MustDecimal(s)
}

func TestNewRejectsZeroCapacity(t *testing.T) {
	if _, err := New(0); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestRecordAccumulatesPreviousPrice(t *testing.T) {
	buf, err := New(10)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if ok, err := buf.Record(100, d("1000"), d("2000")); err != nil || !ok {
		t.Fatalf("record 1: ok=%v err=%v", ok, err)
	}
	if ok, err := buf.Record(110, d("2000"), d("1000")); err != nil || !ok {
		t.Fatalf("record 2: ok=%v err=%v", ok, err)
	}

	newest, _ := buf.Newest()
	if !newest.CumulativeBase.Equal(d("20")) || !newest.CumulativeQuote.Equal(d("5")) {
		t.Fatalf("cumulative mismatch: %+v", newest)
	}

	cum, err := buf.CumulativePricesAt(120)
	if err != nil {
		t.Fatalf("cumulative: %v", err)
	}
	if !cum.Base.Equal(d("25")) || !cum.Quote.Equal(d("25")) {
		t.Fatalf("extrapolated mismatch: %+v", cum)
	}
}

func TestRecordIgnoresDustAndSameSecond(t *testing.T) {
	buf, _ := New(10)

	if ok, err := buf.Record(100, d("0.000001"), d("5")); err != nil || ok {
		t.Fatalf("dust should be ignored: ok=%v err=%v", ok, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected empty buffer, got %d", buf.Len())
	}

	_, _ = buf.Record(100, d("1"), d("1"))
	_, _ = buf.Record(100, d("1"), d("3"))
	if buf.Len() != 1 {
		t.Fatalf("same-second record should overwrite, len=%d", buf.Len())
	}
	newest, _ := buf.Newest()
	if !newest.BasePrice.Equal(d("3")) {
		t.Fatalf("base price mismatch: %s", newest.BasePrice)
	}

	if _, err := buf.Record(99, d("1"), d("1")); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestCumulativeNonDecreasing(t *testing.T) {
	buf, _ := New(4)
	_, _ = buf.Record(0, d("3"), d("7"))

	prev := num.DecimalZero()
	for now := uint64(0); now < 1000; now += 37 {
		cum, err := buf.CumulativePricesAt(now)
		if err != nil {
			t.Fatalf("cumulative: %v", err)
		}
		if cum.Base.LT(prev) {
			t.Fatalf("cumulative decreased at %d", now)
		}
		prev = cum.Base
	}
}

func TestRingWrapsAndObserve(t *testing.T) {
	buf, _ := New(3)
	// prices 1, 2, 3, 4 at t = 0, 10, 20, 30; the first one is evicted.
	for i, ts := range []uint64{0, 10, 20, 30} {
		quote := num.NewDecimal(uint64(i + 1))
		if _, err := buf.Record(ts, d("1"), quote); err != nil {
			t.Fatalf("record %d: %v", ts, err)
		}
	}
	if buf.Len() != 3 {
		t.Fatalf("len mismatch: %d", buf.Len())
	}
	oldest, _ := buf.Oldest()
	if oldest.Timestamp != 10 {
		t.Fatalf("oldest mismatch: %d", oldest.Timestamp)
	}

	// [15, 35]: 5s at 2, 10s at 3, 5s at 4 -> 60/20
	avg, err := buf.Observe(35, 20)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if !avg.Base.Equal(d("3")) {
		t.Fatalf("average mismatch: %s", avg.Base)
	}

	spot, err := buf.Observe(35, 0)
	if err != nil {
		t.Fatalf("observe spot: %v", err)
	}
	if !spot.Base.Equal(d("4")) {
		t.Fatalf("spot mismatch: %s", spot.Base)
	}

	if _, err := buf.Observe(35, 30); !errors.Is(err, ErrObservationTooOld) {
		t.Fatalf("expected ErrObservationTooOld, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	buf, _ := New(3)
	_, _ = buf.Record(1, d("1"), d("1"))
	cp := buf.Clone()
	_, _ = cp.Record(2, d("1"), d("2"))
	if buf.Len() != 1 || cp.Len() != 2 {
		t.Fatalf("clone shares state: %d %d", buf.Len(), cp.Len())
	}
}
