// Package dataset reads material master data from CSV and writes run results
// back to disk as CSV and text files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inventory-sim/inventory-sim/sim"
)

// DefaultMonthSize is the number of days per demand period.
const DefaultMonthSize = 30.0

// Column layout of a material row. Demand periods start at colDemand; the
// last three columns are price class, demand class and a trailing label.
const (
	colID = iota
	colLeadTime
	colMinStock
	colMaxStock
	colCurrentStock
	colPrice
	colCritH
	colCritM
	colCritL
	colReserved
	colDemand

	trailingColumns = 3
	minColumns      = colDemand + 1 + trailingColumns
)

// LoadMaterials reads a headerless material CSV. Lead times are given in days
// and converted to periods of monthSize days (DefaultMonthSize when <= 0).
// Every material starts under an (s,S) policy with s = min_stock-1 and
// S = max_stock. All rows must have the same number of demand periods.
func LoadMaterials(path string, monthSize float64) ([]sim.Material, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open materials file %s: %w", path, err)
	}
	defer file.Close()

	materials, err := ReadMaterials(file, monthSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.Infof("loaded %d materials from %s", len(materials), path)
	return materials, nil
}

// ReadMaterials is LoadMaterials over an already open reader.
func ReadMaterials(r io.Reader, monthSize float64) ([]sim.Material, error) {
	if monthSize <= 0 {
		monthSize = DefaultMonthSize
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read materials CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, sim.ErrNoMaterials
	}

	materials := make([]sim.Material, 0, len(records))
	horizon := -1
	for i, record := range records {
		line := i + 1
		m, err := parseMaterial(record, monthSize)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if horizon < 0 {
			horizon = m.Horizon()
		} else if m.Horizon() != horizon {
			return nil, fmt.Errorf("line %d: %w: material %s has %d periods, expected %d",
				line, sim.ErrHorizonMismatch, m.ID, m.Horizon(), horizon)
		}
		materials = append(materials, m)
	}
	return materials, nil
}

func parseMaterial(record []string, monthSize float64) (sim.Material, error) {
	n := len(record)
	if n < minColumns {
		return sim.Material{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, n)
	}

	var m sim.Material
	m.ID = strings.TrimSpace(record[colID])
	if m.ID == "" {
		return sim.Material{}, fmt.Errorf("empty material id")
	}

	leadTimeDays, err := parseFloat(record, colLeadTime, "lead time")
	if err != nil {
		return sim.Material{}, err
	}
	if leadTimeDays < 0 {
		return sim.Material{}, fmt.Errorf("lead time must be non-negative, got %v", leadTimeDays)
	}
	m.LeadTime = leadTimeDays / monthSize

	minStock, err := parseInt(record, colMinStock, "min stock")
	if err != nil {
		return sim.Material{}, err
	}
	maxStock, err := parseInt(record, colMaxStock, "max stock")
	if err != nil {
		return sim.Material{}, err
	}
	if maxStock < 0 || minStock-1 > maxStock {
		return sim.Material{}, fmt.Errorf("invalid stock bounds: min %d, max %d", minStock, maxStock)
	}

	if m.Price, err = parseFloat(record, colPrice, "price"); err != nil {
		return sim.Material{}, err
	}
	if m.Price <= 0 {
		return sim.Material{}, fmt.Errorf("price must be positive, got %v", m.Price)
	}
	if m.CritH, err = parseInt(record, colCritH, "crit H"); err != nil {
		return sim.Material{}, err
	}
	if m.CritM, err = parseInt(record, colCritM, "crit M"); err != nil {
		return sim.Material{}, err
	}
	if m.CritL, err = parseInt(record, colCritL, "crit L"); err != nil {
		return sim.Material{}, err
	}

	m.Demand = make([]int, n-colDemand-trailingColumns)
	for j := range m.Demand {
		if m.Demand[j], err = parseInt(record, colDemand+j, fmt.Sprintf("demand period %d", j)); err != nil {
			return sim.Material{}, err
		}
	}
	m.PriceClass = strings.TrimSpace(record[n-3])
	m.DemandClass = strings.TrimSpace(record[n-2])
	m.Policy = sim.NewSSPolicy(minStock-1, maxStock)
	return m, nil
}

func parseInt(record []string, col int, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(record[col]))
	if err != nil {
		return 0, fmt.Errorf("column %d (%s): %w", col+1, field, err)
	}
	return v, nil
}

func parseFloat(record []string, col int, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("column %d (%s): %w", col+1, field, err)
	}
	return v, nil
}
