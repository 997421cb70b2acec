// Package store keeps a history of simulation runs in SQLite.
//
// Two tables are maintained:
//
//	runs:          one row per saved run with its cost totals
//	group_metrics: per-group CSL, fill rate and costs for every dimension
//
// Costs are stored as decimal strings so they read back exactly. Undefined
// service levels (no demand in the group) are stored as NULL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/inventory-sim/inventory-sim/sim"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Run is the header row of a saved run.
type Run struct {
	ID        int64
	Label     string
	CreatedAt time.Time
	Materials int
	Events    int
	Costs     sim.Costs
}

// Open opens or creates the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database lives only as long as its single connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// dsn enables foreign keys, keeping any query parameters already in path.
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		created_at TEXT NOT NULL,
		materials INTEGER NOT NULL,
		events INTEGER NOT NULL,
		holding_cost TEXT NOT NULL,
		fixed_cost TEXT NOT NULL,
		marginal_cost TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS group_metrics (
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		dimension TEXT NOT NULL,
		group_key TEXT NOT NULL,
		csl REAL,
		fill_rate REAL,
		holding_cost TEXT NOT NULL,
		fixed_cost TEXT NOT NULL,
		marginal_cost TEXT NOT NULL,
		weight INTEGER NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, dimension, group_key)
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores result under label in one transaction and returns the run id.
func (s *Store) SaveRun(ctx context.Context, label string, result *sim.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (label, created_at, materials, events, holding_cost, fixed_cost, marginal_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		label,
		time.Now().UTC().Format(time.RFC3339Nano),
		len(result.Materials),
		result.EventsProcessed,
		result.Totals.Holding.String(),
		result.Totals.Fixed.String(),
		result.Totals.Marginal.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO group_metrics
			(run_id, dimension, group_key, csl, fill_rate, holding_cost, fixed_cost, marginal_cost, weight, count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare group insert: %w", err)
	}
	defer stmt.Close()

	for _, dim := range sim.Dimensions {
		for _, g := range result.Groups[dim] {
			if _, err := stmt.ExecContext(ctx,
				runID, string(dim), g.Key,
				nullable(g.CSL), nullable(g.FillRate),
				g.Costs.Holding.String(), g.Costs.Fixed.String(), g.Costs.Marginal.String(),
				g.Weight, g.Count,
			); err != nil {
				return 0, fmt.Errorf("failed to insert group %s/%s: %w", dim, g.Key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// Run reads the header row of a saved run.
func (s *Store) Run(ctx context.Context, runID int64) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, created_at, materials, events, holding_cost, fixed_cost, marginal_cost
		FROM runs WHERE id = ?`, runID)

	var (
		r                        Run
		createdAt                string
		holding, fixed, marginal string
	)
	err := row.Scan(&r.ID, &r.Label, &createdAt, &r.Materials, &r.Events, &holding, &fixed, &marginal)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to read run %d: %w", runID, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Run{}, fmt.Errorf("run %d: bad created_at %q: %w", runID, createdAt, err)
	}
	if r.Costs, err = parseCosts(holding, fixed, marginal); err != nil {
		return Run{}, fmt.Errorf("run %d: %w", runID, err)
	}
	return r, nil
}

// GroupMetrics reads back the groups of one dimension of a run, sorted by key.
func (s *Store) GroupMetrics(ctx context.Context, runID int64, dim sim.Dimension) ([]sim.GroupMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_key, csl, fill_rate, holding_cost, fixed_cost, marginal_cost, weight, count
		FROM group_metrics
		WHERE run_id = ? AND dimension = ?
		ORDER BY group_key`, runID, string(dim))
	if err != nil {
		return nil, fmt.Errorf("failed to query groups of run %d: %w", runID, err)
	}
	defer rows.Close()

	var groups []sim.GroupMetrics
	for rows.Next() {
		var (
			g                        = sim.GroupMetrics{Dimension: dim}
			csl, fillRate            sql.NullFloat64
			holding, fixed, marginal string
		)
		if err := rows.Scan(&g.Key, &csl, &fillRate, &holding, &fixed, &marginal, &g.Weight, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.CSL = fromNullable(csl)
		g.FillRate = fromNullable(fillRate)
		if g.Costs, err = parseCosts(holding, fixed, marginal); err != nil {
			return nil, fmt.Errorf("group %s: %w", g.Key, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func parseCosts(holding, fixed, marginal string) (sim.Costs, error) {
	var c sim.Costs
	var err error
	if c.Holding, err = decimal.NewFromString(holding); err != nil {
		return sim.Costs{}, fmt.Errorf("bad holding cost %q: %w", holding, err)
	}
	if c.Fixed, err = decimal.NewFromString(fixed); err != nil {
		return sim.Costs{}, fmt.Errorf("bad fixed cost %q: %w", fixed, err)
	}
	if c.Marginal, err = decimal.NewFromString(marginal); err != nil {
		return sim.Costs{}, fmt.Errorf("bad marginal cost %q: %w", marginal, err)
	}
	return c, nil
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
