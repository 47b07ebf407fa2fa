// Package table reads and writes standings tables in CSV form and decodes
// predicted outcome lists.
package table

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utakatalp/standings-simulator/internal/league"
)

// Columns is the header used for both import and export.
var Columns = []string{
	"Team", "M", "W", "L", "T", "N/R", "PT", "NRR",
	"Runs For", "Overs For", "Runs Against", "Overs Against",
}

// Read parses a standings CSV. Columns are matched by header name; absent
// columns and empty cells read as 0.
func Read(r io.Reader) ([]league.TeamRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", league.ErrInvalidTable)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := idx["Team"]; !ok {
		return nil, fmt.Errorf("%w: missing Team column", league.ErrInvalidTable)
	}

	var rows []league.TeamRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}
		row, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if row.Team == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, idx map[string]int) (league.TeamRecord, error) {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var (
		t   league.TeamRecord
		err error
	)
	t.Team = cell("Team")
	ints := []struct {
		col string
		dst *int
	}{
		{"M", &t.Matches},
		{"W", &t.Wins},
		{"L", &t.Losses},
		{"T", &t.Ties},
		{"N/R", &t.NoResults},
		{"PT", &t.Points},
		{"Runs For", &t.RunsFor},
		{"Runs Against", &t.RunsAgainst},
	}
	for _, f := range ints {
		if *f.dst, err = parseCount(cell(f.col)); err != nil {
			return t, fmt.Errorf("column %s: %w", f.col, err)
		}
	}
	if t.BallsFor, err = league.BallsFromOvers(cell("Overs For")); err != nil {
		return t, fmt.Errorf("column Overs For: %w", err)
	}
	if t.BallsAgainst, err = league.BallsFromOvers(cell("Overs Against")); err != nil {
		return t, fmt.Errorf("column Overs Against: %w", err)
	}
	if s := cell("NRR"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return t, fmt.Errorf("column NRR: %w", err)
		}
		t.NRR = d.InexactFloat64()
	}
	return t, nil
}

// parseCount accepts integers and the "3.0" form spreadsheets emit for them.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not a whole number", league.ErrInvalidTable, s)
	}
	return int(d.IntPart()), nil
}

// Write renders table as CSV with NRR rounded to 3 decimal places.
func Write(w io.Writer, table []league.TeamRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, t := range table {
		rec := []string{
			t.Team,
			strconv.Itoa(t.Matches),
			strconv.Itoa(t.Wins),
			strconv.Itoa(t.Losses),
			strconv.Itoa(t.Ties),
			strconv.Itoa(t.NoResults),
			strconv.Itoa(t.Points),
			FormatNRR(t.NRR),
			strconv.Itoa(t.RunsFor),
			t.OversFor(),
			strconv.Itoa(t.RunsAgainst),
			t.OversAgainst(),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing %s: %w", t.Team, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatNRR rounds half away from zero to 3 decimal places.
func FormatNRR(nrr float64) string {
	return decimal.NewFromFloat(nrr).StringFixed(3)
}

func LoadFile(path string) ([]league.TeamRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func SaveFile(path string, table []league.TeamRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadOutcomes decodes a JSON array of predicted outcomes.
func ReadOutcomes(r io.Reader) ([]league.FixtureOutcome, error) {
	var outcomes []league.FixtureOutcome
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&outcomes); err != nil {
		return nil, fmt.Errorf("%w: decoding outcomes: %v", league.ErrInvalidOutcome, err)
	}
	return outcomes, nil
}

func LoadOutcomes(path string) ([]league.FixtureOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening outcomes: %w", err)
	}
	defer f.Close()
	return ReadOutcomes(f)
}
