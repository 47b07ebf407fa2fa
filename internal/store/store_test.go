package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/utakatalp/standings-simulator/internal/league"
)

// setupTestStore starts a PostgreSQL container and returns a migrated store.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	s, err := NewStore(ctx, dsn)
	require.NoError(t, err, "failed to open store")
	require.NoError(t, s.Migrate(ctx))

	t.Cleanup(func() {
		s.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
	return s
}

func TestStore_ReplaceAndGetTable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rows := []league.TeamRecord{
		{Team: "Notts Outlaws", Matches: 12, Wins: 7, Losses: 4, NoResults: 1, Points: 30, RunsFor: 2010, BallsFor: 1308, RunsAgainst: 1930, BallsAgainst: 1316, NRR: 0.455},
		{Team: "Bears Men", Matches: 12, Wins: 5, Losses: 6, NoResults: 1, Points: 22, NRR: -0.18},
		{Team: "Yorkshire Men", Matches: 12, Wins: 5, Losses: 6, NoResults: 1, Points: 22, NRR: -0.18},
	}
	require.NoError(t, s.ReplaceTable(ctx, rows))
	// replacing twice must not duplicate rows
	require.NoError(t, s.ReplaceTable(ctx, rows))

	got, err := s.GetTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestStore_SaveAndGetSimulation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table, err := league.NewSimulator(nil).Simulate(nil, []league.FixtureOutcome{{
		Fixture: league.Fixture{Team1: "TeamA", Team2: "TeamB"},
		Kind:    league.WinByWickets, Winner: "TeamA",
		FirstInningsRuns: 160, ChasingTeamRuns: 161, BallsRemaining: 12,
	}})
	require.NoError(t, err)

	id, err := s.SaveSimulation(ctx, Simulation{
		Team:   "TeamB",
		Cutoff: 1,
		Status: league.Eliminated,
		Rank:   2,
		Table:  table,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	run, err := s.GetSimulation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "TeamB", run.Team)
	assert.Equal(t, league.Eliminated, run.Status)
	assert.Equal(t, 2, run.Rank)
	assert.Equal(t, table, run.Table)
	assert.False(t, run.CreatedAt.IsZero())

	_, err = s.GetSimulation(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteAllSimulations(ctx))
	_, err = s.GetSimulation(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Seed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := []league.TeamRecord{{Team: "Bears Men", Matches: 1, Wins: 1, Points: 4}}
	second := []league.TeamRecord{{Team: "Notts Outlaws", Matches: 1, Losses: 1}}

	wrote, err := s.Seed(ctx, first, false)
	require.NoError(t, err)
	assert.True(t, wrote)

	// a populated table is left alone without reset
	wrote, err = s.Seed(ctx, second, false)
	require.NoError(t, err)
	assert.False(t, wrote)
	got, err := s.GetTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	id, err := s.SaveSimulation(ctx, Simulation{Table: first})
	require.NoError(t, err)

	wrote, err = s.Seed(ctx, second, true)
	require.NoError(t, err)
	assert.True(t, wrote)
	got, err = s.GetTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	_, err = s.GetSimulation(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
