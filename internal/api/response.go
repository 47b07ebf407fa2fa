package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/utakatalp/standings-simulator/internal/league"
	"github.com/utakatalp/standings-simulator/internal/table"
)

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type standingRow struct {
	Rank         int     `json:"rank"`
	Team         string  `json:"team"`
	Matches      int     `json:"m"`
	Wins         int     `json:"w"`
	Losses       int     `json:"l"`
	Ties         int     `json:"t"`
	NoResults    int     `json:"nr"`
	Points       int     `json:"pt"`
	NRR          float64 `json:"nrr"`
	NRRDisplay   string  `json:"nrrDisplay"`
	RunsFor      int     `json:"runsFor"`
	OversFor     string  `json:"oversFor"`
	RunsAgainst  int     `json:"runsAgainst"`
	OversAgainst string  `json:"oversAgainst"`
}

type qualificationResult struct {
	Team    string                     `json:"team"`
	Status  league.QualificationStatus `json:"status"`
	Rank    int                        `json:"rank,omitempty"`
	Cutoff  int                        `json:"cutoff"`
	Message string                     `json:"message"`
}

type prediction struct {
	Team        string  `json:"team"`
	Qualified   int     `json:"qualified"`
	Scenarios   int     `json:"scenarios"`
	Probability float64 `json:"probability"`
}

func Ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, apiResponse{Code: 0, Message: "ok", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Code: status, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func toRows(rows []league.TeamRecord) []standingRow {
	out := make([]standingRow, 0, len(rows))
	for i, t := range rows {
		out = append(out, standingRow{
			Rank:         i + 1,
			Team:         t.Team,
			Matches:      t.Matches,
			Wins:         t.Wins,
			Losses:       t.Losses,
			Ties:         t.Ties,
			NoResults:    t.NoResults,
			Points:       t.Points,
			NRR:          t.NRR,
			NRRDisplay:   table.FormatNRR(t.NRR),
			RunsFor:      t.RunsFor,
			OversFor:     t.OversFor(),
			RunsAgainst:  t.RunsAgainst,
			OversAgainst: t.OversAgainst(),
		})
	}
	return out
}

func toPredictions(preds []league.Prediction) []prediction {
	out := make([]prediction, 0, len(preds))
	for _, p := range preds {
		out = append(out, prediction(p))
	}
	return out
}

func qualify(rows []league.TeamRecord, team string, cutoff int) qualificationResult {
	status, rank := league.Qualify(rows, team, cutoff)
	return qualificationResult{
		Team:    team,
		Status:  status,
		Rank:    rank,
		Cutoff:  cutoff,
		Message: league.QualificationMessage(team, status, rank, cutoff),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}
