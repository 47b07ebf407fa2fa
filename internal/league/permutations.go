package league

import (
	"fmt"
	"math"
	"sort"
)

// DefaultMaxFixtures bounds permutation enumeration to 3^10 scenarios.
const DefaultMaxFixtures = 10

// MarginTemplate fixes the scores used for every enumerated win.
type MarginTemplate struct {
	FirstInningsRuns int
	Margin           int
}

var DefaultMarginTemplate = MarginTemplate{FirstInningsRuns: 160, Margin: 20}

// Validate reports whether the template yields a legal win by runs.
func (t MarginTemplate) Validate() error {
	if t.FirstInningsRuns < 0 || t.FirstInningsRuns > MaxInningsRuns {
		return fmt.Errorf("%w: first innings runs %d not in [0, %d]", ErrInvalidTemplate, t.FirstInningsRuns, MaxInningsRuns)
	}
	if t.Margin < 1 || t.Margin > MaxInningsRuns {
		return fmt.Errorf("%w: margin %d not in [1, %d]", ErrInvalidTemplate, t.Margin, MaxInningsRuns)
	}
	return nil
}

// QualificationOdds enumerates every combination of team1 win, team2 win and
// no result across fixtures, simulates each scenario against base and counts
// how often each team finishes within cutoff.
func (s *Simulator) QualificationOdds(
	base []TeamRecord,
	fixtures []Fixture,
	cutoff, maxFixtures int,
	tmpl MarginTemplate,
) ([]Prediction, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if maxFixtures <= 0 {
		maxFixtures = DefaultMaxFixtures
	}
	if len(fixtures) > maxFixtures {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyFixtures, len(fixtures), maxFixtures)
	}

	scenarios := 1
	for range fixtures {
		scenarios *= 3
	}

	// 1) Count how many scenarios each team qualifies in
	qualified := make(map[string]int)
	var teams []string
	outcomes := make([]FixtureOutcome, len(fixtures))
	for n := 0; n < scenarios; n++ {
		code := n
		for i, f := range fixtures {
			outcomes[i] = scenarioOutcome(f, code%3, tmpl)
			code /= 3
		}

		table, err := s.Simulate(base, outcomes)
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", n, err)
		}
		if teams == nil {
			for _, e := range table {
				teams = append(teams, e.Team)
			}
			sort.Strings(teams)
		}
		for i := 0; i < cutoff && i < len(table); i++ {
			qualified[table[i].Team]++
		}
	}

	// 2) Turn counts into probabilities
	preds := make([]Prediction, 0, len(teams))
	for _, t := range teams {
		count := qualified[t]
		p := (float64(count) / float64(scenarios)) * 100.0
		preds = append(preds, Prediction{
			Team:        t,
			Qualified:   count,
			Scenarios:   scenarios,
			Probability: math.Round(p*100) / 100,
		})
	}

	// 3) Sort descending by probability
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})

	return preds, nil
}

func scenarioOutcome(f Fixture, code int, tmpl MarginTemplate) FixtureOutcome {
	o := FixtureOutcome{Fixture: f}
	switch code {
	case 0:
		o.Kind, o.Winner = WinByRuns, f.Team1
	case 1:
		o.Kind, o.Winner = WinByRuns, f.Team2
	default:
		o.Kind = NoResult
		return o
	}
	o.FirstInningsRuns = tmpl.FirstInningsRuns
	o.Margin = tmpl.Margin
	return o
}
