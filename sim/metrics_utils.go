// sim/metrics_utils.go
package sim

import "math"

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculateMean is a util function that calculates the mean of a data list.
// Returns 0 for an empty list.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}

	return sum / float64(len(numbers))
}

// CalculateVariance is the sample variance (n-1 denominator, floored at 1 so
// a single value has variance 0).
func CalculateVariance[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	mean := CalculateMean(numbers)
	ss := 0.0
	for _, number := range numbers {
		d := float64(number) - mean
		ss += d * d
	}
	return ss / float64(max(len(numbers)-1, 1))
}

// CalculateStdDev is the square root of CalculateVariance.
func CalculateStdDev[T IntOrFloat64](numbers []T) float64 {
	return math.Sqrt(CalculateVariance(numbers))
}

// CalculateMin returns the smallest value, 0 for an empty list.
func CalculateMin[T IntOrFloat64](numbers []T) T {
	var lo T
	for i, n := range numbers {
		if i == 0 || n < lo {
			lo = n
		}
	}
	return lo
}

// CalculateMax returns the largest value, 0 for an empty list.
func CalculateMax[T IntOrFloat64](numbers []T) T {
	var hi T
	for i, n := range numbers {
		if i == 0 || n > hi {
			hi = n
		}
	}
	return hi
}

// Summary holds the descriptive statistics printed in run reports.
type Summary struct {
	Count  int
	Min    float64
	Mean   float64
	Max    float64
	StdDev float64
}

// Summarize computes a Summary. All fields are NaN except Count for an empty list.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Min: nan, Mean: nan, Max: nan, StdDev: nan}
	}
	return Summary{
		Count:  len(values),
		Min:    CalculateMin(values),
		Mean:   CalculateMean(values),
		Max:    CalculateMax(values),
		StdDev: CalculateStdDev(values),
	}
}
