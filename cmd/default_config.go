package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inventory-sim/inventory-sim/sim"
	"github.com/inventory-sim/inventory-sim/sim/calibrate"
	"github.com/inventory-sim/inventory-sim/sim/dataset"
)

// StockoutCosts are the per-event backorder costs by criticality tier.
type StockoutCosts struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
	None   float64 `yaml:"none"`
}

// CostsConfig is the costs section of defaults.yaml.
type CostsConfig struct {
	HoldingRate    float64       `yaml:"holding_rate"`
	FixedOrderCost float64       `yaml:"fixed_order_cost"`
	StockoutCosts  StockoutCosts `yaml:"stockout_costs"`
}

// SimulationConfig is the simulation section of defaults.yaml.
type SimulationConfig struct {
	StockoutRule  string  `yaml:"stockout_rule"`
	MonthSizeDays float64 `yaml:"month_size_days"`
}

// CalibrationConfig is the calibration section of defaults.yaml.
type CalibrationConfig struct {
	Epsilon       float64 `yaml:"epsilon"`
	MaxIterations int     `yaml:"max_iterations"`
	Neighborhood  float64 `yaml:"neighborhood"`
}

// CurveConfig is the curve section of defaults.yaml.
type CurveConfig struct {
	Step    float64 `yaml:"step"`
	Start   float64 `yaml:"start"`
	Stop    float64 `yaml:"stop"`
	Workers int     `yaml:"workers"`
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version     string            `yaml:"version"`
	Costs       CostsConfig       `yaml:"costs"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Curve       CurveConfig       `yaml:"curve"`
}

// builtinConfig mirrors the package defaults of sim and calibrate.
func builtinConfig() Config {
	costs := sim.DefaultCostConfig()
	cal := calibrate.DefaultConfig()
	curve := calibrate.DefaultCurveConfig()
	return Config{
		Costs: CostsConfig{
			HoldingRate:    costs.HoldingRate,
			FixedOrderCost: costs.FixedOrderCost,
			StockoutCosts: StockoutCosts{
				High:   costs.StockoutCosts[sim.CriticalityHigh],
				Medium: costs.StockoutCosts[sim.CriticalityMedium],
				Low:    costs.StockoutCosts[sim.CriticalityLow],
				None:   costs.StockoutCosts[sim.CriticalityNone],
			},
		},
		Simulation: SimulationConfig{
			StockoutRule:  string(sim.StockoutRuleLevel),
			MonthSizeDays: dataset.DefaultMonthSize,
		},
		Calibration: CalibrationConfig{
			Epsilon:       cal.Epsilon,
			MaxIterations: cal.MaxIterations,
			Neighborhood:  cal.Neighborhood,
		},
		Curve: CurveConfig{Step: curve.Step, Start: curve.Start, Stop: curve.Stop, Workers: curve.Workers},
	}
}

// loadDefaultsConfig parses the defaults file over the built-in defaults, so
// sections and keys left out of the file keep their built-in value. A missing
// file yields the built-in defaults. Uses strict field checking: typos are errors.
func loadDefaultsConfig(path string) (Config, error) {
	cfg := builtinConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logrus.Infof("defaults file %s not found, using built-in defaults", path)
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read defaults file %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse defaults YAML %s: %w", path, err)
	}
	if !sim.IsValidStockoutRule(cfg.Simulation.StockoutRule) {
		return Config{}, fmt.Errorf("unknown stockout_rule %q in %s", cfg.Simulation.StockoutRule, path)
	}
	if cfg.Simulation.MonthSizeDays <= 0 {
		return Config{}, fmt.Errorf("month_size_days must be positive, got %v", cfg.Simulation.MonthSizeDays)
	}
	return cfg, nil
}

// SimConfig converts the costs and simulation sections.
func (c Config) SimConfig() sim.SimConfig {
	return sim.SimConfig{
		Costs: sim.CostConfig{
			HoldingRate:    c.Costs.HoldingRate,
			FixedOrderCost: c.Costs.FixedOrderCost,
			StockoutCosts: map[sim.Criticality]float64{
				sim.CriticalityHigh:   c.Costs.StockoutCosts.High,
				sim.CriticalityMedium: c.Costs.StockoutCosts.Medium,
				sim.CriticalityLow:    c.Costs.StockoutCosts.Low,
				sim.CriticalityNone:   c.Costs.StockoutCosts.None,
			},
		},
		StockoutRule: sim.StockoutRule(c.Simulation.StockoutRule),
	}
}

// CalibrateConfig converts the calibration section.
func (c Config) CalibrateConfig() calibrate.Config {
	return calibrate.Config{
		Epsilon:       c.Calibration.Epsilon,
		MaxIterations: c.Calibration.MaxIterations,
		Neighborhood:  c.Calibration.Neighborhood,
	}
}

// CurveConfig converts the curve section.
func (c Config) CurveConfig() calibrate.CurveConfig {
	return calibrate.CurveConfig{Step: c.Curve.Step, Start: c.Curve.Start, Stop: c.Curve.Stop, Workers: c.Curve.Workers}
}
