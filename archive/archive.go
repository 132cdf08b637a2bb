/*package archive stores run summaries in PostgreSQL so that studies can be
compared across invocations.
*/
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/littlejoeyc/starship-reentry-sim/analyze"
	"github.com/littlejoeyc/starship-reentry-sim/integrator"
)

// Record is one archived run.
type Record struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Name       string
	Preset     string
	ForceModel string

	Config  integrator.Config
	Params  analyze.Params
	Summary analyze.Summary
}

// NewRecord stamps run id with the current time.
func NewRecord(id uuid.UUID, name, preset, model string, cfg integrator.Config, p analyze.Params, s analyze.Summary) *Record {
	return &Record{
		ID:         id,
		CreatedAt:  time.Now().UTC(),
		Name:       name,
		Preset:     preset,
		ForceModel: model,
		Config:     cfg,
		Params:     p,
		Summary:    s,
	}
}

type Client struct {
	db *sql.DB
}

// New opens a client for the given PostgreSQL connection string. No
// connection is made until the first query.
func New(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// NewWithDB wraps an existing handle.
func NewWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS reentry_runs (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		name TEXT NOT NULL,
		preset TEXT NOT NULL,
		force_model TEXT NOT NULL,
		initial_altitude DOUBLE PRECISION NOT NULL,
		initial_velocity DOUBLE PRECISION NOT NULL,
		time_step DOUBLE PRECISION NOT NULL,
		max_steps INTEGER NOT NULL,
		mass DOUBLE PRECISION NOT NULL,
		plasma_threshold DOUBLE PRECISION NOT NULL,
		cooling_factor DOUBLE PRECISION NOT NULL,
		tile_capacity DOUBLE PRECISION NOT NULL,
		samples INTEGER NOT NULL,
		impacted BOOLEAN NOT NULL,
		duration DOUBLE PRECISION NOT NULL,
		min_altitude DOUBLE PRECISION NOT NULL,
		peak_heat_flux DOUBLE PRECISION NOT NULL,
		peak_heat_flux_altitude DOUBLE PRECISION NOT NULL,
		plasma_samples INTEGER NOT NULL,
		total_energy_normal DOUBLE PRECISION NOT NULL,
		total_energy_cooled DOUBLE PRECISION NOT NULL,
		final_percent_normal DOUBLE PRECISION NOT NULL,
		final_percent_cooled DOUBLE PRECISION NOT NULL,
		exhaustion_altitude_normal DOUBLE PRECISION,
		exhaustion_altitude_cooled DOUBLE PRECISION
	)
`

// Migrate creates the run table if it does not exist.
func (c *Client) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create reentry_runs: %w", err)
	}
	return nil
}

// Save inserts rec.
func (c *Client) Save(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO reentry_runs (
			id, created_at, name, preset, force_model,
			initial_altitude, initial_velocity, time_step, max_steps, mass,
			plasma_threshold, cooling_factor, tile_capacity,
			samples, impacted, duration, min_altitude,
			peak_heat_flux, peak_heat_flux_altitude, plasma_samples,
			total_energy_normal, total_energy_cooled,
			final_percent_normal, final_percent_cooled,
			exhaustion_altitude_normal, exhaustion_altitude_cooled
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
	`
	cfg, p, s := &rec.Config, &rec.Params, &rec.Summary
	_, err := c.db.ExecContext(ctx, query,
		rec.ID, rec.CreatedAt, rec.Name, rec.Preset, rec.ForceModel,
		cfg.InitialAltitude, cfg.InitialVelocity, cfg.TimeStep, cfg.MaxSteps, cfg.Mass,
		p.PlasmaThreshold, p.CoolingFactor, p.TileCapacity,
		s.Samples, s.Impacted, s.Duration, s.MinAltitude,
		s.PeakHeatFlux, s.PeakHeatFluxAltitude, s.PlasmaSamples,
		s.TotalEnergyNormal, s.TotalEnergyCooled,
		s.FinalPercentNormal, s.FinalPercentCooled,
		nullable(s.ExhaustionAltitudeNormal), nullable(s.ExhaustionAltitudeCooled),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (c *Client) Recent(ctx context.Context, limit int) ([]*Record, error) {
	query := `
		SELECT
			id, created_at, name, preset, force_model,
			initial_altitude, initial_velocity, time_step, max_steps, mass,
			plasma_threshold, cooling_factor, tile_capacity,
			samples, impacted, duration, min_altitude,
			peak_heat_flux, peak_heat_flux_altitude, plasma_samples,
			total_energy_normal, total_energy_cooled,
			final_percent_normal, final_percent_cooled,
			exhaustion_altitude_normal, exhaustion_altitude_cooled
		FROM reentry_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*Record{}
	for rows.Next() {
		rec := &Record{}
		cfg, p, s := &rec.Config, &rec.Params, &rec.Summary
		var exNormal, exCooled sql.NullFloat64
		if err := rows.Scan(
			&rec.ID, &rec.CreatedAt, &rec.Name, &rec.Preset, &rec.ForceModel,
			&cfg.InitialAltitude, &cfg.InitialVelocity, &cfg.TimeStep, &cfg.MaxSteps, &cfg.Mass,
			&p.PlasmaThreshold, &p.CoolingFactor, &p.TileCapacity,
			&s.Samples, &s.Impacted, &s.Duration, &s.MinAltitude,
			&s.PeakHeatFlux, &s.PeakHeatFluxAltitude, &s.PlasmaSamples,
			&s.TotalEnergyNormal, &s.TotalEnergyCooled,
			&s.FinalPercentNormal, &s.FinalPercentCooled,
			&exNormal, &exCooled,
		); err != nil {
			return nil, err
		}
		p.TimeStep = cfg.TimeStep
		s.ExhaustionAltitudeNormal = fromNullable(exNormal)
		s.ExhaustionAltitudeCooled = fromNullable(exCooled)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// NaN marks an absent value in a Summary and is stored as NULL.
func nullable(x float64) sql.NullFloat64 {
	if math.IsNaN(x) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}

func fromNullable(x sql.NullFloat64) float64 {
	if !x.Valid {
		return math.NaN()
	}
	return x.Float64
}
