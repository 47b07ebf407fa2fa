package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/standings-simulator/internal/league"
	"github.com/utakatalp/standings-simulator/internal/store"
)

type staticTable []league.TeamRecord

func (s staticTable) GetTable(context.Context) ([]league.TeamRecord, error) {
	return append([]league.TeamRecord(nil), s...), nil
}

type failingTable struct{}

func (failingTable) GetTable(context.Context) ([]league.TeamRecord, error) {
	return nil, errors.New("db down")
}

type memoryRuns struct {
	runs map[uuid.UUID]store.Simulation
}

func (m *memoryRuns) SaveSimulation(_ context.Context, run store.Simulation) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	m.runs[run.ID] = run
	return run.ID, nil
}

func (m *memoryRuns) GetSimulation(_ context.Context, id uuid.UUID) (*store.Simulation, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &run, nil
}

var baseTable = staticTable{
	{Team: "Lancashire Lightning", Matches: 1, Wins: 1, Points: 4, RunsFor: 180, BallsFor: 120, RunsAgainst: 150, BallsAgainst: 120},
	{Team: "Notts Outlaws", Matches: 1, Wins: 1, Points: 4, RunsFor: 170, BallsFor: 120, RunsAgainst: 160, BallsAgainst: 120},
	{Team: "Yorkshire Men", Matches: 1, Losses: 1, RunsFor: 150, BallsFor: 120, RunsAgainst: 180, BallsAgainst: 120},
	{Team: "Bears Men", Matches: 1, Losses: 1, RunsFor: 160, BallsFor: 120, RunsAgainst: 170, BallsAgainst: 120},
}

func newTestServer(t *testing.T, src TableSource, runs SimulationStore) *httptest.Server {
	t.Helper()
	h := &Handler{
		Tables:      src,
		Runs:        runs,
		Simulator:   league.NewSimulator(nil),
		Cutoff:      2,
		MaxFixtures: 4,
		Template:    league.DefaultMarginTemplate,
	}
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func post[T any](t *testing.T, url, body string) (int, envelope[T]) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestGetTable(t *testing.T) {
	srv := newTestServer(t, baseTable, nil)

	resp, err := http.Get(srv.URL + "/table")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope[[]standingRow]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Len(t, env.Data, 4)
	assert.Equal(t, "Lancashire Lightning", env.Data[0].Team)
	assert.Equal(t, "20.0", env.Data[0].OversFor)
}

func TestGetTable_SourceFailure(t *testing.T) {
	srv := newTestServer(t, failingTable{}, nil)

	resp, err := http.Get(srv.URL + "/table")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSimulate_QualificationAndPersistence(t *testing.T) {
	runs := &memoryRuns{runs: map[uuid.UUID]store.Simulation{}}
	srv := newTestServer(t, baseTable, runs)

	body := `{
		"team": "Yorkshire Men",
		"outcomes": [
			{"team1": "Yorkshire Men", "team2": "Lancashire Lightning", "kind": "win_by_wickets",
			 "winner": "Yorkshire Men", "firstInningsRuns": 120, "chasingTeamRuns": 121, "ballsRemaining": 60},
			{"team1": "Notts Outlaws", "team2": "Bears Men", "kind": "no_result"}
		]
	}`
	status, env := post[simulateResponse](t, srv.URL+"/simulate", body)
	require.Equal(t, http.StatusOK, status)

	require.NotNil(t, env.Data.Qualification)
	assert.Equal(t, league.Qualifies, env.Data.Qualification.Status)
	assert.Equal(t, 2, env.Data.Qualification.Cutoff)
	assert.Equal(t, "Notts Outlaws", env.Data.Table[0].Team)
	assert.Equal(t, "Yorkshire Men", env.Data.Table[1].Team)
	assert.Equal(t, 2, env.Data.Qualification.Rank)

	id, err := uuid.Parse(env.Data.ID)
	require.NoError(t, err)
	saved := runs.runs[id]
	assert.Equal(t, "Yorkshire Men", saved.Team)
	assert.Len(t, saved.Table, 4)

	resp, err := http.Get(srv.URL + "/simulations/" + id.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSimulate_UnknownQualificationTeam(t *testing.T) {
	srv := newTestServer(t, baseTable, nil)

	status, env := post[simulateResponse](t, srv.URL+"/simulate", `{"team": "Steelbacks", "cutoff": 4, "outcomes": []}`)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Data.Qualification)
	assert.Equal(t, league.NotFound, env.Data.Qualification.Status)
	assert.Empty(t, env.Data.ID)
}

func TestSimulate_ValidationErrors(t *testing.T) {
	srv := newTestServer(t, baseTable, nil)

	cases := []string{
		`{"outcomes": [{"team1": "Bears Men", "team2": "Notts Outlaws", "kind": "win_by_wickets", "winner": "Bears Men", "firstInningsRuns": 100, "chasingTeamRuns": 101, "ballsRemaining": 150}]}`,
		`{"outcomes": [{"team1": "Bears Men", "team2": "Notts Outlaws", "kind": "abandoned"}]}`,
		`{"outcomes": "nope"}`,
		`{"unexpected": true}`,
	}
	for _, body := range cases {
		status, env := post[any](t, srv.URL+"/simulate", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, http.StatusBadRequest, env.Code, body)
	}
}

func TestSimulateCSV(t *testing.T) {
	srv := newTestServer(t, baseTable, nil)

	resp, err := http.Post(srv.URL+"/simulate.csv", "application/json", strings.NewReader(`{"outcomes": []}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Team,M,W,L,T,N/R,PT,NRR,Runs For,Overs For,Runs Against,Overs Against", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Lancashire Lightning,1,1,0,0,0,4,1.500,180,20.0,150,20.0"))
}

func TestPermutations(t *testing.T) {
	srv := newTestServer(t, baseTable, nil)

	body := `{"fixtures": [{"team1": "Yorkshire Men", "team2": "Bears Men"}], "cutoff": 1}`
	status, env := post[[]prediction](t, srv.URL+"/permutations", body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env.Data, 4)
	assert.Equal(t, "Lancashire Lightning", env.Data[0].Team)
	assert.Equal(t, 3, env.Data[0].Scenarios)
	assert.Equal(t, 100.0, env.Data[0].Probability)

	tooMany := `{"fixtures": [{"team1":"A","team2":"B"},{"team1":"A","team2":"B"},{"team1":"A","team2":"B"},{"team1":"A","team2":"B"},{"team1":"A","team2":"B"}]}`
	status, _ = post[any](t, srv.URL+"/permutations", tooMany)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPermutations_RejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t, baseTable, nil)

	// "fixture" is a typo for "fixtures"; it must not silently enumerate nothing
	body := `{"fixture": [{"team1": "Yorkshire Men", "team2": "Bears Men"}]}`
	status, env := post[any](t, srv.URL+"/permutations", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "fixture")
}

func TestPermutations_BadTemplateIsServerError(t *testing.T) {
	h := &Handler{
		Tables:    baseTable,
		Simulator: league.NewSimulator(nil),
		Template:  league.MarginTemplate{FirstInningsRuns: 160, Margin: 0},
	}
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	body := `{"fixtures": [{"team1": "Yorkshire Men", "team2": "Bears Men"}]}`
	status, env := post[any](t, srv.URL+"/permutations", body)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "permutation run failed", env.Message)
}

func TestGetSimulation_NotPersisted(t *testing.T) {
	srv := newTestServer(t, baseTable, &memoryRuns{runs: map[uuid.UUID]store.Simulation{}})

	resp, err := http.Get(srv.URL + "/simulations/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/simulations/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
