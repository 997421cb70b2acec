// Package calibrate searches per-group target service levels by bisection
// so that the realized levels of a full simulation land near the desired ones.
package calibrate

import "math"

// Config holds the stopping criteria of the bisection.
type Config struct {
	Epsilon       float64 // freeze a group once its bracket is narrower than this
	MaxIterations int     // simulation rounds per phase
	Neighborhood  float64 // freeze a group once |target - realized| is within this
}

// DefaultConfig returns epsilon 1e-5, 300 iterations and a 0.02 neighborhood.
func DefaultConfig() Config {
	return Config{Epsilon: 1e-5, MaxIterations: 300, Neighborhood: 0.02}
}

// Bracket is the bisection state of one group. Trial is the target level
// handed to the policy strategy; [Lower, Upper] bounds where the right trial lies.
type Bracket struct {
	Lower      float64
	Upper      float64
	Trial      float64
	Frozen     bool
	Iterations int // number of times the bracket was narrowed
}

func newBracket(trial float64) Bracket {
	return Bracket{Lower: 0, Upper: 1, Trial: trial}
}

// Width is Upper - Lower.
func (b Bracket) Width() float64 { return b.Upper - b.Lower }

// step narrows the bracket once given the realized level of the last run.
// A higher trial is assumed to yield a higher realized level. Returns true
// if Trial changed.
func (b *Bracket) step(target, realized float64, cfg Config) bool {
	if b.Frozen {
		return false
	}
	if math.IsNaN(realized) || math.Abs(target-realized) <= cfg.Neighborhood {
		b.Frozen = true
		return false
	}

	if realized < target {
		b.Lower = b.Trial
	} else {
		b.Upper = b.Trial
	}
	b.Trial = (b.Lower + b.Upper) / 2
	b.Iterations++

	if b.Width() < cfg.Epsilon {
		b.Frozen = true
	}
	return true
}
