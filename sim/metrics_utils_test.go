package sim

import (
	"math"
	"testing"
)

func TestCalculateMean(t *testing.T) {
	if got := CalculateMean([]int{1, 2, 3, 6}); got != 3 {
		t.Errorf("CalculateMean: got %v, want 3", got)
	}
	if got := CalculateMean([]float64{}); got != 0 {
		t.Errorf("CalculateMean(empty): got %v, want 0", got)
	}
}

func TestCalculateVariance_SampleDenominator(t *testing.T) {
	// GIVEN values with mean 5 and squared deviations summing to 32
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	// WHEN the sample variance is computed
	got := CalculateVariance(data)

	// THEN it divides by n-1
	want := 32.0 / 7.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("CalculateVariance: got %v, want %v", got, want)
	}
	if got := CalculateStdDev(data); math.Abs(got-math.Sqrt(want)) > 1e-12 {
		t.Errorf("CalculateStdDev: got %v, want %v", got, math.Sqrt(want))
	}
}

func TestCalculateVariance_SingleValue_IsZero(t *testing.T) {
	if got := CalculateVariance([]int{42}); got != 0 {
		t.Errorf("CalculateVariance(single): got %v, want 0", got)
	}
}

func TestCalculateMinMax(t *testing.T) {
	data := []int{4, -2, 9, 0}
	if got := CalculateMin(data); got != -2 {
		t.Errorf("CalculateMin: got %v, want -2", got)
	}
	if got := CalculateMax(data); got != 9 {
		t.Errorf("CalculateMax: got %v, want 9", got)
	}
}

func TestSummarize_Empty_IsNaN(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || !math.IsNaN(s.Mean) || !math.IsNaN(s.Min) {
		t.Errorf("Summarize(nil): got %+v, want NaN fields", s)
	}
}
