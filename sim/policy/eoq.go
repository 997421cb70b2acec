package policy

import "math"

// EOQ is the economic order quantity sqrt(2*A*d/h) for mean demand d per
// period, fixed cost A per order and holding cost h per unit per period,
// rounded to whichever neighbouring integer is cheaper. Never less than 1.
func EOQ(d, a, h float64) int {
	if d <= 0 || a <= 0 {
		return 1
	}
	if h <= 0 {
		return max(int(math.Ceil(d)), 1)
	}
	q := math.Sqrt(2 * a * d / h)
	if q <= 1 {
		return 1
	}
	lo, hi := math.Floor(q), math.Ceil(q)
	if orderCost(lo, d, a, h) <= orderCost(hi, d, a, h) {
		return int(lo)
	}
	return int(hi)
}

// orderCost is the ordering plus holding cost per period of ordering q at a time.
func orderCost(q, d, a, h float64) float64 {
	return a*d/q + h*q/2
}
