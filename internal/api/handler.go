package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/utakatalp/standings-simulator/internal/league"
	"github.com/utakatalp/standings-simulator/internal/store"
	"github.com/utakatalp/standings-simulator/internal/table"
)

// TableSource supplies the base standings table.
type TableSource interface {
	GetTable(ctx context.Context) ([]league.TeamRecord, error)
}

// SimulationStore persists projected tables.
type SimulationStore interface {
	SaveSimulation(ctx context.Context, run store.Simulation) (uuid.UUID, error)
	GetSimulation(ctx context.Context, id uuid.UUID) (*store.Simulation, error)
}

type Handler struct {
	Tables    TableSource
	Runs      SimulationStore // optional
	Simulator *league.Simulator
	Cutoff    int
	// MaxFixtures and Template configure POST /permutations.
	MaxFixtures int
	Template    league.MarginTemplate
	Logger      *zap.Logger
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/table", h.getTable).Methods(http.MethodGet)
	r.HandleFunc("/table.csv", h.getTableCSV).Methods(http.MethodGet)
	r.HandleFunc("/simulate", h.simulate).Methods(http.MethodPost)
	r.HandleFunc("/simulate.csv", h.simulateCSV).Methods(http.MethodPost)
	r.HandleFunc("/permutations", h.permutations).Methods(http.MethodPost)
	r.HandleFunc("/simulations/{id}", h.getSimulation).Methods(http.MethodGet)
}

// NewRouter returns a router with every route registered and request logging.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(h.logger()))
	h.Register(r)
	return r
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

type simulateRequest struct {
	Outcomes []league.FixtureOutcome `json:"outcomes"`
	Team     string                  `json:"team,omitempty"`
	Cutoff   int                     `json:"cutoff,omitempty"`
}

type simulateResponse struct {
	ID            string               `json:"id,omitempty"`
	Table         []standingRow        `json:"table"`
	Qualification *qualificationResult `json:"qualification,omitempty"`
}

type permutationsRequest struct {
	Fixtures []league.Fixture `json:"fixtures"`
	Cutoff   int              `json:"cutoff,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request) {
	base, err := h.Tables.GetTable(r.Context())
	if err != nil {
		h.logger().Error("loading base table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load table")
		return
	}
	Ok(w, toRows(base))
}

func (h *Handler) getTableCSV(w http.ResponseWriter, r *http.Request) {
	base, err := h.Tables.GetTable(r.Context())
	if err != nil {
		h.logger().Error("loading base table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load table")
		return
	}
	h.writeCSV(w, "current_table.csv", base)
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	req, projected, ok := h.runSimulation(w, r)
	if !ok {
		return
	}

	resp := simulateResponse{Table: toRows(projected)}
	run := store.Simulation{Table: projected}
	if req.Team != "" {
		q := qualify(projected, req.Team, h.cutoff(req.Cutoff))
		resp.Qualification = &q
		run.Team, run.Cutoff, run.Status, run.Rank = q.Team, q.Cutoff, q.Status, q.Rank
	}
	if h.Runs != nil {
		id, err := h.Runs.SaveSimulation(r.Context(), run)
		if err != nil {
			h.logger().Error("saving simulation", zap.Error(err))
		} else {
			resp.ID = id.String()
		}
	}
	Ok(w, resp)
}

func (h *Handler) simulateCSV(w http.ResponseWriter, r *http.Request) {
	_, projected, ok := h.runSimulation(w, r)
	if !ok {
		return
	}
	h.writeCSV(w, "projected_table.csv", projected)
}

func (h *Handler) runSimulation(w http.ResponseWriter, r *http.Request) (simulateRequest, []league.TeamRecord, bool) {
	var req simulateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return req, nil, false
	}

	base, err := h.Tables.GetTable(r.Context())
	if err != nil {
		h.logger().Error("loading base table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load table")
		return req, nil, false
	}

	projected, err := h.Simulator.Simulate(base, req.Outcomes)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			h.logger().Error("simulating", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "simulation failed")
		}
		return req, nil, false
	}
	return req, projected, true
}

func (h *Handler) permutations(w http.ResponseWriter, r *http.Request) {
	var req permutationsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	base, err := h.Tables.GetTable(r.Context())
	if err != nil {
		h.logger().Error("loading base table", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load table")
		return
	}

	preds, err := h.Simulator.QualificationOdds(base, req.Fixtures, h.cutoff(req.Cutoff), h.MaxFixtures, h.Template)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger().Error("enumerating permutations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "permutation run failed")
		return
	}
	Ok(w, toPredictions(preds))
}

func (h *Handler) getSimulation(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeError(w, http.StatusNotFound, "simulations are not persisted")
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return
	}
	run, err := h.Runs.GetSimulation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "simulation not found")
		return
	}
	if err != nil {
		h.logger().Error("loading simulation", zap.String("id", id.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load simulation")
		return
	}

	resp := simulateResponse{ID: run.ID.String(), Table: toRows(run.Table)}
	if run.Team != "" {
		resp.Qualification = &qualificationResult{
			Team:    run.Team,
			Status:  run.Status,
			Rank:    run.Rank,
			Cutoff:  run.Cutoff,
			Message: league.QualificationMessage(run.Team, run.Status, run.Rank, run.Cutoff),
		}
	}
	Ok(w, resp)
}

func (h *Handler) cutoff(requested int) int {
	if requested > 0 {
		return requested
	}
	if h.Cutoff > 0 {
		return h.Cutoff
	}
	return 4
}

func (h *Handler) writeCSV(w http.ResponseWriter, filename string, rows []league.TeamRecord) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := table.Write(w, rows); err != nil {
		h.logger().Error("writing csv", zap.Error(err))
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, league.ErrInvalidOutcome) ||
		errors.Is(err, league.ErrInvalidBallsRemaining) ||
		errors.Is(err, league.ErrUnknownTeam) ||
		errors.Is(err, league.ErrTooManyFixtures)
}
