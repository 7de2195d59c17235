package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"milelog/internal/api"
	"milelog/internal/engine"
	"milelog/internal/faults"
	"milelog/internal/logging"
	"milelog/internal/records"
	"milelog/internal/recordstore"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	items, err := s.engine.LoadRecords(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	store := s.engine.Store()
	s.writeJSON(w, r, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Backend: store.Backend(),
		Store:   store.Path(),
		Records: len(items),
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r)
	items, err := s.engine.LoadSelection(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromRecords(items))
}

func (s *Server) handleAppendRecord(w http.ResponseWriter, r *http.Request) {
	var req api.AppendRecordRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, faults.Wrap(faults.ErrValidation, "api", "decode body", "", err))
		return
	}
	rec, err := api.ToRecord(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, outcome, err := s.engine.AppendOrMergeRecord(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if outcome == recordstore.Inserted {
		status = http.StatusCreated
	}
	s.writeJSON(w, r, status, api.AppendRecordResponse{Outcome: outcome.String(), Record: api.FromRecord(stored)})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.TrendFor(r.Context(), selectionFromQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromTrendReport(report))
}

func (s *Server) handleExtrapolate(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r)
	now := s.now().UTC()
	target, err := api.ParseDateParam("target", r.URL.Query().Get("target"), time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.engine.ExtrapolateFor(r.Context(), sel, target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromProjection(sel.String(), p))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mileage, err := strconv.ParseInt(strings.TrimSpace(query.Get("mileage")), 10, 64)
	if err != nil || mileage < 0 {
		s.writeError(w, r, faults.Wrap(faults.ErrValidation, "api", "mileage", "expected a non-negative integer", nil))
		return
	}
	at, err := api.ParseDateParam("date", query.Get("date"), records.CivilDate(s.now()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	prediction, err := s.engine.PredictIdentity(r.Context(), mileage, at, records.ParseClass(query.Get("class")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromPrediction(prediction))
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	report, err := s.engine.Rebuild(r.Context(), engine.RebuildOptions{DryRun: dryRun})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.FromRebuildReport(report))
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.engine.Fleet().Vehicles())
}

func selectionFromQuery(r *http.Request) engine.Selection {
	query := r.URL.Query()
	return engine.Selection{
		Class:    records.ParseClass(query.Get("class")),
		Identity: records.ParseIdentity(query.Get("identity")),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, faults.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, faults.ErrDataMissing):
		return http.StatusNotFound
	case errors.Is(err, faults.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, faults.ErrLockTimeout), errors.Is(err, faults.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Error(err))
	}
	s.writeJSON(w, r, status, api.ErrorResponse{Error: faults.Diagnostic(err), Kind: api.ErrorKind(err)})
}
