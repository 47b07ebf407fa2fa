package league

// Prediction is the share of enumerated scenarios in which a team finishes
// inside the qualification cutoff.
type Prediction struct {
	Team        string
	Qualified   int
	Scenarios   int
	Probability float64
}

// TeamRecord represents one row of the standings table.
type TeamRecord struct {
	Team        string
	Matches     int
	Wins        int
	Losses      int
	Ties        int
	NoResults   int
	Points      int
	RunsFor     int
	RunsAgainst int
	// BallsFor and BallsAgainst hold raw balls, not overs.
	BallsFor     int
	BallsAgainst int
	NRR          float64
}

// OversFor returns the batting balls in overs.balls notation.
func (t TeamRecord) OversFor() string { return OversFromBalls(t.BallsFor) }

// OversAgainst returns the bowling balls in overs.balls notation.
func (t TeamRecord) OversAgainst() string { return OversFromBalls(t.BallsAgainst) }

// Fixture is a remaining match between two teams.
type Fixture struct {
	Date  string `json:"date,omitempty"`
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`
}

type OutcomeKind string

const (
	NotPlayed    OutcomeKind = "not_played"
	WinByRuns    OutcomeKind = "win_by_runs"
	WinByWickets OutcomeKind = "win_by_wickets"
	Tie          OutcomeKind = "tie"
	NoResult     OutcomeKind = "no_result"
)

// FixtureOutcome is a predicted result for one fixture.
//
// For WinByRuns, BattedFirst is optional: when it is empty or names the
// loser, the winner is credited FirstInningsRuns+Margin. For WinByWickets the
// winner is always the chasing side.
type FixtureOutcome struct {
	Fixture
	Kind             OutcomeKind `json:"kind"`
	Winner           string      `json:"winner,omitempty"`
	BattedFirst      string      `json:"battedFirst,omitempty"`
	FirstInningsRuns int         `json:"firstInningsRuns,omitempty"`
	Margin           int         `json:"margin,omitempty"`
	ChasingTeamRuns  int         `json:"chasingTeamRuns,omitempty"`
	BallsRemaining   int         `json:"ballsRemaining,omitempty"`
}

// Loser returns the participant that is not the winner.
func (o FixtureOutcome) Loser() string {
	if o.Winner == o.Team1 {
		return o.Team2
	}
	return o.Team1
}

type QualificationStatus string

const (
	Qualifies  QualificationStatus = "qualifies"
	Eliminated QualificationStatus = "eliminated"
	NotFound   QualificationStatus = "not_found"
)
