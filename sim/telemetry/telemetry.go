// Package telemetry exposes simulation results as Prometheus metrics that can
// be written to a node_exporter textfile.
package telemetry

import (
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/inventory-sim/inventory-sim/sim"
)

// Cost kinds reported on inventory_sim_cost_total.
const (
	CostHolding   = "holding"
	CostFixed     = "fixed"
	CostMarginal  = "marginal"
	CostBackorder = "backorder"
)

// RunCollector holds the metrics of observed runs on a private registry.
type RunCollector struct {
	registry *prometheus.Registry

	groupCSL        *prometheus.GaugeVec
	groupFillRate   *prometheus.GaugeVec
	costTotal       *prometheus.GaugeVec
	eventsProcessed prometheus.Counter
	runs            prometheus.Counter
}

// NewRunCollector creates a collector with its own registry.
func NewRunCollector() *RunCollector {
	c := &RunCollector{
		registry: prometheus.NewRegistry(),
		groupCSL: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inventory_sim_group_csl",
				Help: "Demand-weighted cycle service level of a material group in the last run",
			},
			[]string{"dimension", "group"},
		),
		groupFillRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inventory_sim_group_fill_rate",
				Help: "Demand-weighted fill rate of a material group in the last run",
			},
			[]string{"dimension", "group"},
		),
		costTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inventory_sim_cost_total",
				Help: "Total cost of the last run by kind",
			},
			[]string{"kind"},
		),
		eventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sim_events_processed_total",
			Help: "Events processed across all observed runs",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sim_runs_total",
			Help: "Number of observed runs",
		}),
	}
	c.registry.MustRegister(c.groupCSL, c.groupFillRate, c.costTotal, c.eventsProcessed, c.runs)
	return c
}

// Registry returns the collector's registry.
func (c *RunCollector) Registry() *prometheus.Registry { return c.registry }

// Observe records result. Group and cost gauges reflect the latest run;
// groups with undefined service levels are left out.
func (c *RunCollector) Observe(result *sim.Result) {
	c.groupCSL.Reset()
	c.groupFillRate.Reset()
	for _, dim := range sim.Dimensions {
		for _, g := range result.Groups[dim] {
			if math.IsNaN(g.CSL) {
				continue
			}
			c.groupCSL.WithLabelValues(string(dim), g.Key).Set(g.CSL)
			c.groupFillRate.WithLabelValues(string(dim), g.Key).Set(g.FillRate)
		}
	}

	backorder := decimal.Zero
	for _, v := range result.BackorderCosts {
		backorder = backorder.Add(v)
	}
	c.costTotal.WithLabelValues(CostHolding).Set(result.Totals.Holding.InexactFloat64())
	c.costTotal.WithLabelValues(CostFixed).Set(result.Totals.Fixed.InexactFloat64())
	c.costTotal.WithLabelValues(CostMarginal).Set(result.Totals.Marginal.InexactFloat64())
	c.costTotal.WithLabelValues(CostBackorder).Set(backorder.InexactFloat64())

	c.eventsProcessed.Add(float64(result.EventsProcessed))
	c.runs.Inc()
}

// WriteTextfile writes the current metrics in the Prometheus text format.
// The file is replaced atomically.
func (c *RunCollector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
