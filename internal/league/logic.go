// internal/league/logic.go
package league

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// DefaultInningsBalls is a full 20-over innings.
const DefaultInningsBalls = 120

// MaxInningsRuns caps any run figure in a predicted outcome so that
// accumulated totals cannot overflow.
const MaxInningsRuns = 10000

// Simulator folds predicted outcomes into a standings table.
type Simulator struct {
	// InningsBalls is the ball allocation of a completed innings.
	InningsBalls int
	// StrictTeams rejects outcomes naming teams absent from the base table
	// instead of admitting them with zeroed stats.
	StrictTeams bool
	Logger      *zap.Logger
}

func NewSimulator(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{InningsBalls: DefaultInningsBalls, Logger: logger}
}

func (s *Simulator) inningsBalls() int {
	if s.InningsBalls <= 0 {
		return DefaultInningsBalls
	}
	return s.InningsBalls
}

func (s *Simulator) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Simulate applies outcomes in order to a copy of base and returns the
// updated table with recomputed NRR, sorted by points then NRR. Every
// outcome is validated before any is applied. base is never modified.
func (s *Simulator) Simulate(base []TeamRecord, outcomes []FixtureOutcome) ([]TeamRecord, error) {
	entriesMap, order, err := indexTable(base)
	if err != nil {
		return nil, err
	}

	for i, o := range outcomes {
		if err := s.validate(o, entriesMap); err != nil {
			return nil, fmt.Errorf("outcome %d (%s vs %s): %w", i+1, o.Team1, o.Team2, err)
		}
	}

	for _, o := range outcomes {
		if o.Kind == NotPlayed {
			continue
		}
		for _, name := range []string{o.Team1, o.Team2} {
			if _, ok := entriesMap[name]; !ok {
				s.logger().Warn("admitting team absent from base table", zap.String("team", name))
				entriesMap[name] = &TeamRecord{Team: name}
				order = append(order, name)
			}
		}
		s.apply(entriesMap, o)
	}

	table := make([]TeamRecord, 0, len(order))
	for _, name := range order {
		e := entriesMap[name]
		e.NRR = NetRunRate(e.RunsFor, e.BallsFor, e.RunsAgainst, e.BallsAgainst)
		table = append(table, *e)
	}
	SortTable(table)

	s.logger().Debug("simulation finished",
		zap.Int("teams", len(table)),
		zap.Int("outcomes", len(outcomes)),
	)
	return table, nil
}

func indexTable(base []TeamRecord) (map[string]*TeamRecord, []string, error) {
	entriesMap := make(map[string]*TeamRecord, len(base))
	order := make([]string, 0, len(base))
	for i, t := range base {
		if t.Team == "" {
			return nil, nil, fmt.Errorf("%w: row %d has no team name", ErrInvalidTable, i+1)
		}
		if _, dup := entriesMap[t.Team]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate team %q", ErrInvalidTable, t.Team)
		}
		if t.Matches < 0 || t.Wins < 0 || t.Losses < 0 || t.Ties < 0 || t.NoResults < 0 ||
			t.Points < 0 || t.RunsFor < 0 || t.RunsAgainst < 0 || t.BallsFor < 0 || t.BallsAgainst < 0 {
			return nil, nil, fmt.Errorf("%w: negative value in row for %q", ErrInvalidTable, t.Team)
		}
		row := t
		entriesMap[t.Team] = &row
		order = append(order, t.Team)
	}
	return entriesMap, order, nil
}

func (s *Simulator) validate(o FixtureOutcome, entriesMap map[string]*TeamRecord) error {
	switch o.Kind {
	case NotPlayed:
		return nil
	case WinByRuns, WinByWickets, Tie, NoResult:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOutcome, o.Kind)
	}

	if o.Team1 == "" || o.Team2 == "" {
		return fmt.Errorf("%w: both teams are required", ErrInvalidOutcome)
	}
	if o.Team1 == o.Team2 {
		return fmt.Errorf("%w: %q cannot play itself", ErrInvalidOutcome, o.Team1)
	}
	if s.StrictTeams {
		for _, name := range []string{o.Team1, o.Team2} {
			if _, ok := entriesMap[name]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownTeam, name)
			}
		}
	}

	switch o.Kind {
	case WinByRuns:
		if o.Winner != o.Team1 && o.Winner != o.Team2 {
			return fmt.Errorf("%w: winner %q did not play", ErrInvalidOutcome, o.Winner)
		}
		if o.BattedFirst != "" && o.BattedFirst != o.Team1 && o.BattedFirst != o.Team2 {
			return fmt.Errorf("%w: %q did not play", ErrInvalidOutcome, o.BattedFirst)
		}
		if o.FirstInningsRuns < 0 || o.FirstInningsRuns > MaxInningsRuns {
			return fmt.Errorf("%w: first innings runs %d not in [0, %d]", ErrInvalidOutcome, o.FirstInningsRuns, MaxInningsRuns)
		}
		if o.Margin < 1 || o.Margin > MaxInningsRuns {
			return fmt.Errorf("%w: margin %d not in [1, %d]", ErrInvalidOutcome, o.Margin, MaxInningsRuns)
		}
		if o.BattedFirst == o.Winner && o.Margin > o.FirstInningsRuns {
			return fmt.Errorf("%w: margin %d exceeds defended total %d", ErrInvalidOutcome, o.Margin, o.FirstInningsRuns)
		}
	case WinByWickets:
		if o.Winner != o.Team1 && o.Winner != o.Team2 {
			return fmt.Errorf("%w: winner %q did not play", ErrInvalidOutcome, o.Winner)
		}
		if o.BattedFirst != "" && o.BattedFirst != o.Loser() {
			return fmt.Errorf("%w: the chasing side must win", ErrInvalidOutcome)
		}
		if o.BallsRemaining < 0 || o.BallsRemaining >= s.inningsBalls() {
			return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidBallsRemaining, o.BallsRemaining, s.inningsBalls()-1)
		}
		if o.FirstInningsRuns < 0 || o.ChasingTeamRuns < 0 {
			return fmt.Errorf("%w: negative runs", ErrInvalidOutcome)
		}
		if o.ChasingTeamRuns > MaxInningsRuns {
			return fmt.Errorf("%w: chase of %d exceeds %d", ErrInvalidOutcome, o.ChasingTeamRuns, MaxInningsRuns)
		}
		if o.ChasingTeamRuns <= o.FirstInningsRuns {
			return fmt.Errorf("%w: chase of %d does not pass target %d", ErrInvalidOutcome, o.ChasingTeamRuns, o.FirstInningsRuns)
		}
	}
	return nil
}

func (s *Simulator) apply(entriesMap map[string]*TeamRecord, o FixtureOutcome) {
	entriesMap[o.Team1].Matches++
	entriesMap[o.Team2].Matches++

	full := s.inningsBalls()
	switch o.Kind {
	case WinByRuns:
		winner, loser := entriesMap[o.Winner], entriesMap[o.Loser()]
		winnerScore, loserScore := o.FirstInningsRuns+o.Margin, o.FirstInningsRuns
		if o.BattedFirst == o.Winner {
			winnerScore, loserScore = o.FirstInningsRuns, o.FirstInningsRuns-o.Margin
		}
		recordWin(winner, loser)
		winner.addInnings(winnerScore, full, loserScore, full)
		loser.addInnings(loserScore, full, winnerScore, full)

	case WinByWickets:
		chaser, defender := entriesMap[o.Winner], entriesMap[o.Loser()]
		faced := full - o.BallsRemaining
		recordWin(chaser, defender)
		chaser.addInnings(o.ChasingTeamRuns, faced, o.FirstInningsRuns, full)
		defender.addInnings(o.FirstInningsRuns, full, o.ChasingTeamRuns, faced)

	case Tie:
		for _, e := range []*TeamRecord{entriesMap[o.Team1], entriesMap[o.Team2]} {
			e.Ties++
			e.Points += 2
		}

	case NoResult:
		for _, e := range []*TeamRecord{entriesMap[o.Team1], entriesMap[o.Team2]} {
			e.NoResults++
			e.Points += 2
		}
	}
}

func recordWin(winner, loser *TeamRecord) {
	winner.Wins++
	winner.Points += 4
	loser.Losses++
}

func (t *TeamRecord) addInnings(runsFor, ballsFor, runsAgainst, ballsAgainst int) {
	t.RunsFor += runsFor
	t.BallsFor += ballsFor
	t.RunsAgainst += runsAgainst
	t.BallsAgainst += ballsAgainst
}

// NetRunRate is runs per over scored minus runs per over conceded. A team
// with no balls faced or bowled has an NRR of 0.
func NetRunRate(runsFor, ballsFor, runsAgainst, ballsAgainst int) float64 {
	if ballsFor == 0 || ballsAgainst == 0 {
		return 0
	}
	rateFor := float64(runsFor*BallsPerOver) / float64(ballsFor)
	rateAgainst := float64(runsAgainst*BallsPerOver) / float64(ballsAgainst)
	return rateFor - rateAgainst
}

// SortTable orders the table by points then NRR, both descending. Rows equal
// on both keys keep their relative order.
func SortTable(table []TeamRecord) {
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.NRR > b.NRR
	})
}

// Rank returns the 1-based position of team in a sorted table.
func Rank(table []TeamRecord, team string) (int, error) {
	for i, e := range table {
		if e.Team == team {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrTeamNotFound, team)
}

// Qualify reports whether team finishes within the top cutoff places.
func Qualify(table []TeamRecord, team string, cutoff int) (QualificationStatus, int) {
	rank, err := Rank(table, team)
	if err != nil {
		return NotFound, 0
	}
	if rank <= cutoff {
		return Qualifies, rank
	}
	return Eliminated, rank
}
