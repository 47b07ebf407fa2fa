package league

import (
	"fmt"
	"io"
)

// PrintTable writes a fixed-width standings table to w.
func PrintTable(w io.Writer, label string, table []TeamRecord) {
	fmt.Fprintln(w, label)
	fmt.Fprintf(w, "%3s %-34s %2s %2s %2s %2s %3s %3s %7s %5s %6s %5s %6s\n",
		"#", "Team", "M", "W", "L", "T", "N/R", "PT", "NRR", "RF", "OF", "RA", "OA")
	for i, entry := range table {
		fmt.Fprintf(w, "%3d %-34s %2d %2d %2d %2d %3d %3d %7.3f %5d %6s %5d %6s\n",
			i+1,
			entry.Team,
			entry.Matches,
			entry.Wins,
			entry.Losses,
			entry.Ties,
			entry.NoResults,
			entry.Points,
			entry.NRR,
			entry.RunsFor,
			entry.OversFor(),
			entry.RunsAgainst,
			entry.OversAgainst(),
		)
	}
}

// QualificationMessage renders a one-line verdict for team.
func QualificationMessage(team string, status QualificationStatus, rank, cutoff int) string {
	switch status {
	case Qualifies:
		return fmt.Sprintf("%s QUALIFY in position %d (top %d)", team, rank, cutoff)
	case Eliminated:
		return fmt.Sprintf("%s DO NOT QUALIFY, finishing %d (top %d needed)", team, rank, cutoff)
	default:
		return fmt.Sprintf("%s not found in updated table", team)
	}
}

// Summary describes a predicted outcome in one line.
func (o FixtureOutcome) Summary() string {
	switch o.Kind {
	case WinByRuns:
		return fmt.Sprintf("%s beat %s by %d runs", o.Winner, o.Loser(), o.Margin)
	case WinByWickets:
		return fmt.Sprintf("%s beat %s chasing %d with %d balls remaining",
			o.Winner, o.Loser(), o.FirstInningsRuns+1, o.BallsRemaining)
	case Tie:
		return fmt.Sprintf("%s tied with %s", o.Team1, o.Team2)
	case NoResult:
		return fmt.Sprintf("%s vs %s: no result", o.Team1, o.Team2)
	default:
		return fmt.Sprintf("%s vs %s: not played", o.Team1, o.Team2)
	}
}
