package calibrate

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inventory-sim/inventory-sim/sim"
	"github.com/inventory-sim/inventory-sim/sim/policy"
)

// Phase records how one bisection phase ended.
type Phase struct {
	Name       string
	Iterations int // rounds that moved at least one trial, one simulation each
	Brackets   map[string]Bracket
}

// Converged reports whether every group froze before the iteration cap.
func (p Phase) Converged() bool {
	for _, b := range p.Brackets {
		if !b.Frozen {
			return false
		}
	}
	return true
}

// Outcome is the result of Harmonize.
type Outcome struct {
	// Result of the last simulation run.
	Result *sim.Result
	// Materials carry the policies of the last run.
	Materials []sim.Material
	// Targets are the final trial levels per combined class.
	Targets  map[string]float64
	FillRate Phase
	CSL      Phase
	Runs     int
}

// Calibrator re-simulates the full material set with policies built at
// per-group trial targets and adjusts those trials by bisection.
type Calibrator struct {
	creator policy.Creator
	simCfg  sim.SimConfig
	cfg     Config
}

// New creates a Calibrator.
func New(creator policy.Creator, simCfg sim.SimConfig, cfg Config) *Calibrator {
	return &Calibrator{creator: creator, simCfg: simCfg, cfg: cfg}
}

// Harmonize runs two bisection phases over the combined-class groups named
// in targetCSL. Phase one drives the realized fill rate toward targetFR;
// phase two restarts the brackets from the phase-one trials and drives the
// realized CSL toward targetCSL, freezing any group already above its
// target. Trials start at targetCSL.
//
// Hitting the iteration cap is not an error: the last run is returned and
// Phase.Converged reports which groups were still open.
func (c *Calibrator) Harmonize(materials []sim.Material, targetCSL, targetFR map[string]float64) (*Outcome, error) {
	groups := make([]string, 0, len(targetCSL))
	for g := range targetCSL {
		if _, ok := targetFR[g]; !ok {
			return nil, fmt.Errorf("group %q has a CSL target but no fill rate target", g)
		}
		groups = append(groups, g)
	}
	sort.Strings(groups)

	trials := make(map[string]float64, len(groups))
	for _, g := range groups {
		trials[g] = targetCSL[g]
	}

	out := &Outcome{}
	if err := c.simulate(out, materials, trials); err != nil {
		return nil, err
	}

	fill := func(r *sim.Result) map[string]float64 { return r.RealizedFillRate(sim.DimensionCombined) }
	csl := func(r *sim.Result) map[string]float64 { return r.RealizedCSL(sim.DimensionCombined) }

	var err error
	out.FillRate, err = c.phase(out, "fill rate", materials, groups, trials, targetFR, fill, false)
	if err != nil {
		return nil, err
	}
	out.CSL, err = c.phase(out, "CSL", materials, groups, trials, targetCSL, csl, true)
	if err != nil {
		return nil, err
	}
	out.Targets = trials
	return out, nil
}

// phase runs bisection rounds until every group is frozen or the cap is hit.
// trials is updated in place.
func (c *Calibrator) phase(out *Outcome, name string, materials []sim.Material, groups []string,
	trials, targets map[string]float64, realizedOf func(*sim.Result) map[string]float64, freezeAbove bool,
) (Phase, error) {
	brackets := make(map[string]*Bracket, len(groups))
	for _, g := range groups {
		b := newBracket(trials[g])
		brackets[g] = &b
	}

	iteration := 0
	for iteration < c.cfg.MaxIterations {
		realized := realizedOf(out.Result)
		open, changed := 0, false
		for _, g := range groups {
			b := brackets[g]
			if freezeAbove && realized[g] > targets[g] {
				b.Frozen = true
			}
			if b.Frozen {
				continue
			}
			open++
			if b.step(targets[g], realized[g], c.cfg) {
				trials[g] = b.Trial
				changed = true
			}
		}
		// a round where every open group froze runs no simulation
		if !changed {
			break
		}
		iteration++
		if err := c.simulate(out, materials, trials); err != nil {
			return Phase{}, err
		}
		logrus.Infof("calibrate %s: iteration %d, %d groups open", name, iteration, open)
	}

	p := Phase{Name: name, Iterations: iteration, Brackets: make(map[string]Bracket, len(groups))}
	for g, b := range brackets {
		p.Brackets[g] = *b
	}
	if !p.Converged() {
		logrus.Warnf("calibrate %s: stopped after %d iterations with open groups", name, iteration)
	}
	return p, nil
}

func (c *Calibrator) simulate(out *Outcome, materials []sim.Material, trials map[string]float64) error {
	withPolicies, err := policy.CreatePolicies(c.creator, materials, trials)
	if err != nil {
		return err
	}
	result, err := sim.Run(withPolicies, c.simCfg)
	if err != nil {
		return fmt.Errorf("calibration run %d: %w", out.Runs+1, err)
	}
	out.Result = result
	out.Materials = withPolicies
	out.Runs++
	return nil
}
