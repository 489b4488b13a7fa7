package jobscope

import (
	"math"
	"testing"
)

func TestAccumulatorSummary(t *testing.T) {
	var acc Accumulator
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		acc = acc.Add(v)
	}
	s := acc.Summary()
	if s.Count != 8 || s.Min != 2 || s.Max != 9 {
		t.Fatalf("summary %+v", s)
	}
	if s.Mean != 5 {
		t.Fatalf("mean = %v", s.Mean)
	}
	if math.Abs(s.Stdev-2) > 1e-9 {
		t.Fatalf("stdev = %v, want 2", s.Stdev)
	}
}

func TestAccumulatorSingleValueStdevZero(t *testing.T) {
	s := Accumulator{}.Add(1234).Summary()
	if s.Count != 1 || s.Stdev != 0 {
		t.Fatalf("singleton summary %+v", s)
	}
	if s.Min != 1234 || s.Max != 1234 || s.Mean != 1234 {
		t.Fatalf("singleton summary %+v", s)
	}
}

func TestAccumulatorEmpty(t *testing.T) {
	if s := (Accumulator{}).Summary(); s != (Summary{}) {
		t.Fatalf("empty summary %+v", s)
	}
}

func TestAccumulatorAddReturnsCopy(t *testing.T) {
	base := Accumulator{}.Add(10)
	_ = base.Add(1000)
	if base.Count != 1 || base.Max != 10 {
		t.Fatalf("Add mutated its receiver: %+v", base)
	}
}

func TestAccumulatorNegativeValues(t *testing.T) {
	acc := Accumulator{}.Add(-5).Add(5)
	s := acc.Summary()
	if s.Min != -5 || s.Max != 5 || s.Mean != 0 {
		t.Fatalf("summary %+v", s)
	}
	if math.Abs(s.Stdev-5) > 1e-9 {
		t.Fatalf("stdev = %v, want 5", s.Stdev)
	}
}
