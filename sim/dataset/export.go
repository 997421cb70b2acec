package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/inventory-sim/inventory-sim/sim"
	"github.com/inventory-sim/inventory-sim/sim/calibrate"
)

// CombinedClassHeader is the header row of <prefix>_combined_class.csv.
var CombinedClassHeader = []string{
	"Price", "Demand", "Criticality", "CSL", "Fill rate",
	"Fixed costs", "Holding costs", "Marginal costs",
	"Total costs (no marginal)", "Total costs", "Weights", "Counts",
}

// CurveHeader is the header row of an efficiency-curve file.
var CurveHeader = []string{"Target CSL", "Realized CSL", "Total costs"}

// Export writes the result files of one run next to prefix:
// _fill_rates.csv, _CSL.csv, _combined_class.csv, _summary.txt and
// _training.csv. materials must be the materials of the run, in the same
// order as result.Materials; their demand history and master data fill the
// training file, whose stock columns carry the end-of-run policy.
func Export(prefix string, result *sim.Result, materials []sim.Material, monthSize float64) error {
	if len(materials) != len(result.Materials) {
		return fmt.Errorf("export: %d materials for a result with %d", len(materials), len(result.Materials))
	}
	if monthSize <= 0 {
		monthSize = DefaultMonthSize
	}
	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	perMaterial := func(value func(sim.MaterialMetrics) float64) [][]string {
		rows := make([][]string, len(result.Materials))
		for i, mm := range result.Materials {
			rows[i] = []string{mm.ID, formatFloat(value(mm))}
		}
		return rows
	}

	if err := writeCSV(prefix+"_fill_rates.csv", nil, perMaterial(func(mm sim.MaterialMetrics) float64 { return mm.FillRate })); err != nil {
		return err
	}
	if err := writeCSV(prefix+"_CSL.csv", nil, perMaterial(func(mm sim.MaterialMetrics) float64 { return mm.CSL })); err != nil {
		return err
	}
	if err := writeCSV(prefix+"_combined_class.csv", CombinedClassHeader, combinedRows(result)); err != nil {
		return err
	}
	if err := writeSummary(prefix+"_summary.txt", result); err != nil {
		return err
	}
	if err := writeCSV(prefix+"_training.csv", nil, trainingRows(result, materials, monthSize)); err != nil {
		return err
	}
	logrus.Infof("exported results to %s_*", prefix)
	return nil
}

func combinedRows(result *sim.Result) [][]string {
	groups := result.Groups[sim.DimensionCombined]
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.PriceClass,
			g.DemandClass,
			string(g.Criticality),
			formatFloat(g.CSL),
			formatFloat(g.FillRate),
			g.Costs.Fixed.String(),
			g.Costs.Holding.String(),
			g.Costs.Marginal.String(),
			g.Costs.Total().String(),
			g.Costs.TotalWithMarginal().String(),
			strconv.Itoa(g.Weight),
			strconv.Itoa(g.Count),
		})
	}
	return rows
}

// trainingRows renders materials in the import layout. The min stock column
// is reorder point + 1 so that LoadMaterials restores the same (s,S) policy.
func trainingRows(result *sim.Result, materials []sim.Material, monthSize float64) [][]string {
	rows := make([][]string, len(materials))
	for i, m := range materials {
		mm := result.Materials[i]
		row := make([]string, 0, minColumns+len(m.Demand)-1)
		row = append(row,
			m.ID,
			formatFloat(math.Round(m.LeadTime*monthSize)),
			strconv.Itoa(mm.ReorderPoint+1),
			strconv.Itoa(mm.MaxStock),
			"0",
			formatFloat(m.Price),
			strconv.Itoa(m.CritH),
			strconv.Itoa(m.CritM),
			strconv.Itoa(m.CritL),
			"0",
		)
		for _, d := range m.Demand {
			row = append(row, strconv.Itoa(d))
		}
		row = append(row, m.PriceClass, m.DemandClass, string(m.Criticality()))
		rows[i] = row
	}
	return rows
}

// WriteCurves writes one file per group, <dir>/<name>_<group>.csv, listing
// target CSL, realized CSL and total cost per sweep point.
func WriteCurves(dir, name string, curves map[string][]calibrate.CurvePoint) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for group, points := range curves {
		rows := make([][]string, len(points))
		for i, p := range points {
			rows[i] = []string{formatFloat(p.Target), formatFloat(p.RealizedCSL), p.TotalCost.String()}
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", name, group))
		if err := writeCSV(path, CurveHeader, rows); err != nil {
			return err
		}
	}
	logrus.Infof("wrote %d efficiency curves to %s", len(curves), dir)
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if header != nil {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func writeSummary(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()
	if err := result.WriteSummary(file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
