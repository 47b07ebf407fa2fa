package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/utakatalp/standings-simulator/internal/api"
	"github.com/utakatalp/standings-simulator/internal/config"
	"github.com/utakatalp/standings-simulator/internal/league"
	"github.com/utakatalp/standings-simulator/internal/logger"
	"github.com/utakatalp/standings-simulator/internal/store"
	"github.com/utakatalp/standings-simulator/internal/table"
)

func main() {
	cfgPath := os.Getenv("NRR_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("NRR_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log, "server")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := league.NewSimulator(logger.Named("simulator"))
	sim.InningsBalls = cfg.Simulation.InningsBalls
	sim.StrictTeams = cfg.Simulation.StrictTeams

	tmpl := league.MarginTemplate{
		FirstInningsRuns: cfg.Permutations.FirstInningsRuns,
		Margin:           cfg.Permutations.Margin,
	}
	if err := tmpl.Validate(); err != nil {
		logger.Fatal("invalid permutations config", zap.Error(err))
	}

	h := &api.Handler{
		Simulator:   sim,
		Cutoff:      cfg.Qualification.Cutoff,
		MaxFixtures: cfg.Permutations.MaxFixtures,
		Template:    tmpl,
		Logger:      logger,
	}

	if cfg.DB.DSN != "" {
		st, err := store.NewStore(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer st.Close()
		st.DB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		st.DB.SetMaxIdleConns(cfg.DB.MaxIdleConns)

		if err := st.Migrate(ctx); err != nil {
			logger.Fatal("migrate failed", zap.Error(err))
		}
		if err := seedTable(ctx, st, cfg.Data.TablePath, cfg.DB.ResetOnStart, logger); err != nil {
			logger.Fatal("seeding standings failed", zap.Error(err))
		}
		h.Tables, h.Runs = st, st
		logger.Info("serving standings from postgres")
	} else {
		h.Tables = table.FileSource{Path: cfg.Data.TablePath}
		logger.Info("serving standings from csv", zap.String("path", cfg.Data.TablePath))
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: api.NewRouter(h),
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

// seedTable loads the CSV into the store. Without reset an existing table is
// left alone.
func seedTable(ctx context.Context, st *store.Store, path string, reset bool, logger *zap.Logger) error {
	var rows []league.TeamRecord
	if path != "" {
		var err error
		rows, err = table.LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("no seed table found", zap.String("path", path))
		} else if err != nil {
			return err
		}
	}
	wrote, err := st.Seed(ctx, rows, reset)
	if err != nil {
		return err
	}
	if reset {
		logger.Info("saved simulations cleared")
	}
	if wrote {
		logger.Info("seeded standings", zap.Int("teams", len(rows)))
	}
	return nil
}
