package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 120, cfg.Simulation.InningsBalls)
	assert.Equal(t, 4, cfg.Qualification.Cutoff)
	assert.Equal(t, 10, cfg.Permutations.MaxFixtures)
	assert.Equal(t, 160, cfg.Permutations.FirstInningsRuns)
	assert.Equal(t, 20, cfg.Permutations.Margin)
	assert.Empty(t, cfg.DB.DSN)
	assert.False(t, cfg.DB.ResetOnStart)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "qualification:\n  team: Bears Men\n  cutoff: 2\nsimulation:\n  strict_teams: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("NRR_DB_DSN", "postgres://localhost/standings")
	t.Setenv("NRR_QUALIFICATION_CUTOFF", "3")
	t.Setenv("NRR_DB_RESET_ON_START", "true")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "Bears Men", cfg.Qualification.Team)
	assert.Equal(t, 3, cfg.Qualification.Cutoff)
	assert.True(t, cfg.Simulation.StrictTeams)
	assert.Equal(t, "postgres://localhost/standings", cfg.DB.DSN)
	assert.True(t, cfg.DB.ResetOnStart)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qualification: [unterminated"), 0o600))

	_, err := Load(path, false)
	assert.Error(t, err)
}
