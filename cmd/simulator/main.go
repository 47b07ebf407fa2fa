// Command simulator projects a standings table under predicted fixture
// outcomes and reports whether a team qualifies.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/utakatalp/standings-simulator/internal/config"
	"github.com/utakatalp/standings-simulator/internal/league"
	"github.com/utakatalp/standings-simulator/internal/logger"
	"github.com/utakatalp/standings-simulator/internal/table"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to YAML config file")
	tablePath := flag.String("table", "", "Current standings CSV (default: data.table_path from config)")
	outcomesPath := flag.String("outcomes", "", "JSON file with predicted outcomes")
	team := flag.String("team", "", "Team to check for qualification (default: qualification.team from config)")
	cutoff := flag.Int("cutoff", 0, "Qualification cutoff rank (default: qualification.cutoff from config)")
	outPath := flag.String("out", "", "Write the projected table to this CSV file")
	permutations := flag.Bool("permutations", false, "Enumerate win/win/no-result permutations of the outcome fixtures")
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("standings-simulator version %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath, false)
	if err != nil {
		fatalf("loading config: %v", err)
	}
	log, err := logger.New(cfg.Log, "simulator")
	if err != nil {
		fatalf("building logger: %v", err)
	}
	defer log.Sync()

	if *tablePath == "" {
		*tablePath = cfg.Data.TablePath
	}
	if *team == "" {
		*team = cfg.Qualification.Team
	}
	if *cutoff <= 0 {
		*cutoff = cfg.Qualification.Cutoff
	}

	base, err := table.LoadFile(*tablePath)
	if err != nil {
		fatalf("loading table: %v", err)
	}

	var outcomes []league.FixtureOutcome
	if *outcomesPath != "" {
		if outcomes, err = table.LoadOutcomes(*outcomesPath); err != nil {
			fatalf("loading outcomes: %v", err)
		}
	}
	log.Info("inputs loaded",
		zap.String("table", *tablePath),
		zap.Int("teams", len(base)),
		zap.Int("outcomes", len(outcomes)),
	)

	sim := league.NewSimulator(log)
	sim.InningsBalls = cfg.Simulation.InningsBalls
	sim.StrictTeams = cfg.Simulation.StrictTeams

	league.PrintTable(os.Stdout, "Current Table", base)
	fmt.Println()

	if len(outcomes) > 0 {
		fmt.Println("Predicted Fixtures")
		for _, o := range outcomes {
			if o.Date != "" {
				fmt.Printf("  %s - %s\n", o.Date, o.Summary())
			} else {
				fmt.Printf("  %s\n", o.Summary())
			}
		}
		fmt.Println()
	}

	projected, err := sim.Simulate(base, outcomes)
	if err != nil {
		fatalf("simulating: %v", err)
	}
	league.PrintTable(os.Stdout, "Projected Table", projected)
	fmt.Println()

	if *team != "" {
		status, rank := league.Qualify(projected, *team, *cutoff)
		fmt.Println(league.QualificationMessage(*team, status, rank, *cutoff))
	}

	if *outPath != "" {
		if err := table.SaveFile(*outPath, projected); err != nil {
			fatalf("exporting table: %v", err)
		}
		log.Info("projected table written", zap.String("path", *outPath))
	}

	if *permutations {
		fixtures := make([]league.Fixture, 0, len(outcomes))
		for _, o := range outcomes {
			fixtures = append(fixtures, o.Fixture)
		}
		tmpl := league.MarginTemplate{
			FirstInningsRuns: cfg.Permutations.FirstInningsRuns,
			Margin:           cfg.Permutations.Margin,
		}
		preds, err := sim.QualificationOdds(base, fixtures, *cutoff, cfg.Permutations.MaxFixtures, tmpl)
		if err != nil {
			fatalf("enumerating permutations: %v", err)
		}
		fmt.Printf("\nTop %d finishes across %d fixtures\n", *cutoff, len(fixtures))
		for _, p := range preds {
			fmt.Printf("%-34s %6.2f%% (%d/%d)\n", p.Team, p.Probability, p.Qualified, p.Scenarios)
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
