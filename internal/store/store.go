package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/utakatalp/standings-simulator/internal/league"
)

// ErrNotFound is returned when a simulation id is unknown.
var ErrNotFound = errors.New("not found")

// Store wraps a Postgres connection and persists the base standings table and
// simulation runs.
type Store struct {
	DB *sql.DB
}

// Simulation is one persisted projected table together with the
// qualification query it answered.
type Simulation struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Team      string
	Cutoff    int
	Status    league.QualificationStatus
	Rank      int
	Table     []league.TeamRecord
}

// NewStore opens a Postgres connection using the given connection string.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS standings (
        team          TEXT    PRIMARY KEY,
        position      INT     NOT NULL,
        matches       INT     NOT NULL DEFAULT 0,
        wins          INT     NOT NULL DEFAULT 0,
        losses        INT     NOT NULL DEFAULT 0,
        ties          INT     NOT NULL DEFAULT 0,
        no_results    INT     NOT NULL DEFAULT 0,
        points        INT     NOT NULL DEFAULT 0,
        runs_for      INT     NOT NULL DEFAULT 0,
        balls_for     INT     NOT NULL DEFAULT 0,
        runs_against  INT     NOT NULL DEFAULT 0,
        balls_against INT     NOT NULL DEFAULT 0,
        nrr           DOUBLE PRECISION NOT NULL DEFAULT 0
    );
    `,
		`CREATE TABLE IF NOT EXISTS simulations (
		    id         UUID PRIMARY KEY,
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		    team       TEXT NOT NULL DEFAULT '',
		    cutoff     INT  NOT NULL DEFAULT 0,
		    status     TEXT NOT NULL DEFAULT '',
		    rank       INT  NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS simulation_rows (
		    simulation_id UUID NOT NULL REFERENCES simulations(id) ON DELETE CASCADE,
		    position      INT  NOT NULL,
		    team          TEXT NOT NULL,
		    matches       INT  NOT NULL,
		    wins          INT  NOT NULL,
		    losses        INT  NOT NULL,
		    ties          INT  NOT NULL,
		    no_results    INT  NOT NULL,
		    points        INT  NOT NULL,
		    runs_for      INT  NOT NULL,
		    balls_for     INT  NOT NULL,
		    runs_against  INT  NOT NULL,
		    balls_against INT  NOT NULL,
		    nrr           DOUBLE PRECISION NOT NULL,
		    PRIMARY KEY (simulation_id, position)
		);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// ReplaceTable swaps the stored base table for rows in a single transaction.
// Row order is kept as the position column.
func (s *Store) ReplaceTable(ctx context.Context, rows []league.TeamRecord) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ReplaceTable tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM standings;`); err != nil {
		return fmt.Errorf("clearing standings: %w", err)
	}

	const q = `
    INSERT INTO standings (
      team, position, matches, wins, losses, ties, no_results, points,
      runs_for, balls_for, runs_against, balls_against, nrr
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	for i, t := range rows {
		if _, err := tx.ExecContext(ctx, q,
			t.Team, i+1,
			t.Matches, t.Wins, t.Losses, t.Ties, t.NoResults, t.Points,
			t.RunsFor, t.BallsFor, t.RunsAgainst, t.BallsAgainst, t.NRR,
		); err != nil {
			return fmt.Errorf("inserting team %q: %w", t.Team, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ReplaceTable tx: %w", err)
	}
	return nil
}

// GetTable returns the stored base table in standings order.
func (s *Store) GetTable(ctx context.Context) ([]league.TeamRecord, error) {
	const q = `
    SELECT
      team,
      matches,
      wins,
      losses,
      ties,
      no_results,
      points,
      runs_for,
      balls_for,
      runs_against,
      balls_against,
      nrr
    FROM standings
    ORDER BY
      points   DESC,
      nrr      DESC,
      position ASC
    `
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying table: %w", err)
	}
	defer rows.Close()

	var table []league.TeamRecord
	for rows.Next() {
		t, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		table = append(table, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return table, nil
}

// SaveSimulation persists a projected table. A zero ID is replaced with a new
// random one; the stored ID is returned.
func (s *Store) SaveSimulation(ctx context.Context, run Simulation) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin SaveSimulation tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO simulations (id, team, cutoff, status, rank) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Team, run.Cutoff, string(run.Status), run.Rank,
	); err != nil {
		return uuid.Nil, fmt.Errorf("saving simulation: %w", err)
	}

	const q = `
    INSERT INTO simulation_rows (
      simulation_id, position, team, matches, wins, losses, ties, no_results, points,
      runs_for, balls_for, runs_against, balls_against, nrr
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `
	for i, t := range run.Table {
		if _, err := tx.ExecContext(ctx, q,
			run.ID, i+1, t.Team,
			t.Matches, t.Wins, t.Losses, t.Ties, t.NoResults, t.Points,
			t.RunsFor, t.BallsFor, t.RunsAgainst, t.BallsAgainst, t.NRR,
		); err != nil {
			return uuid.Nil, fmt.Errorf("saving row %d of simulation %s: %w", i+1, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit SaveSimulation tx: %w", err)
	}
	return run.ID, nil
}

// GetSimulation loads a persisted simulation with its table in rank order.
func (s *Store) GetSimulation(ctx context.Context, id uuid.UUID) (*Simulation, error) {
	run := &Simulation{ID: id}
	var status string
	err := s.DB.QueryRowContext(ctx,
		`SELECT created_at, team, cutoff, status, rank FROM simulations WHERE id = $1`, id,
	).Scan(&run.CreatedAt, &run.Team, &run.Cutoff, &status, &run.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("simulation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying simulation: %w", err)
	}
	run.Status = league.QualificationStatus(status)

	rows, err := s.DB.QueryContext(ctx, `
    SELECT team, matches, wins, losses, ties, no_results, points,
           runs_for, balls_for, runs_against, balls_against, nrr
    FROM simulation_rows
    WHERE simulation_id = $1
    ORDER BY position
    `, id)
	if err != nil {
		return nil, fmt.Errorf("querying simulation rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning simulation row: %w", err)
		}
		run.Table = append(run.Table, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating simulation rows: %w", err)
	}
	return run, nil
}

func (s *Store) DeleteAllSimulations(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM simulations;`)
	if err != nil {
		return fmt.Errorf("deleting all simulations: %w", err)
	}
	return nil
}

// Seed loads rows into the standings table if it is empty. With reset set,
// saved simulations are dropped and the table is replaced unconditionally.
// It reports whether the table was written.
func (s *Store) Seed(ctx context.Context, rows []league.TeamRecord, reset bool) (bool, error) {
	if reset {
		if err := s.DeleteAllSimulations(ctx); err != nil {
			return false, err
		}
	} else {
		existing, err := s.GetTable(ctx)
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			return false, nil
		}
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := s.ReplaceTable(ctx, rows); err != nil {
		return false, err
	}
	return true, nil
}

func scanRecord(rows *sql.Rows) (league.TeamRecord, error) {
	var t league.TeamRecord
	err := rows.Scan(
		&t.Team,
		&t.Matches,
		&t.Wins,
		&t.Losses,
		&t.Ties,
		&t.NoResults,
		&t.Points,
		&t.RunsFor,
		&t.BallsFor,
		&t.RunsAgainst,
		&t.BallsAgainst,
		&t.NRR,
	)
	return t, err
}
