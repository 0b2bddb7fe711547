package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/command"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/modeling"
	"github.com/kilianp07/gridmon/core/monitor"
	"github.com/kilianp07/gridmon/core/recommendation"
	"github.com/kilianp07/gridmon/core/report"
)

var errNotFound = errors.New("not found")

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Monitor.NetworkStatus())
}

func (s *Server) objects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Objects.Objects())
}

func (s *Server) object(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.deps.Objects.Object(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) bottlenecks(w http.ResponseWriter, r *http.Request) {
	threshold := s.deps.Threshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("threshold: %w", err))
			return
		}
		threshold = f
	}
	writeJSON(w, http.StatusOK, s.deps.Monitor.Bottlenecks(threshold))
}

type monitoringState struct {
	Active bool `json:"active"`
}

func (s *Server) monitoring(on bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if on {
			s.deps.Monitor.Start()
		} else {
			s.deps.Monitor.Stop()
		}
		s.log.Infof("monitoring set to %t by %s", on, user(r))
		writeJSON(w, http.StatusOK, monitoringState{Active: s.deps.Monitor.Active()})
	}
}

func (s *Server) anomalies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Monitor.ActiveAnomalies())
}

func (s *Server) testAnomaly(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Simulation == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("simulation disabled"))
		return
	}
	a, ok := s.deps.Simulation.GenerateTestAnomaly()
	if !ok {
		writeError(w, http.StatusConflict, errors.New("network has no objects"))
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) resolveAnomaly(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Monitor.ResolveAnomaly(mux.Vars(r)["id"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status model.AnomalyStatus `json:"status"`
}

func (s *Server) anomalyStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Monitor.SetAnomalyStatus(mux.Vars(r)["id"], req.Status); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Recommendations.GenerateFor(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("pending") == "true" {
		writeJSON(w, http.StatusOK, s.deps.Recommendations.Pending())
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Recommendations.All())
}

func (s *Server) approve(w http.ResponseWriter, r *http.Request) {
	s.recommendationAction(w, s.deps.Recommendations.Approve(mux.Vars(r)["id"], user(r)))
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request) {
	s.recommendationAction(w, s.deps.Recommendations.Reject(mux.Vars(r)["id"]))
}

func (s *Server) executed(w http.ResponseWriter, r *http.Request) {
	s.recommendationAction(w, s.deps.Recommendations.MarkExecuted(mux.Vars(r)["id"], user(r)))
}

func (s *Server) recommendationAction(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// executionView is the JSON form of a command execution.
type executionView struct {
	ID       string    `json:"execution_id"`
	Kind     string    `json:"kind"`
	Target   string    `json:"target"`
	At       time.Time `json:"executed_at"`
	Applied  bool      `json:"applied"`
	Undone   bool      `json:"undone"`
	Affected []string  `json:"affected,omitempty"`
	Error    string    `json:"error,omitempty"`
}

func viewOf(e *command.Execution) executionView {
	v := executionView{
		ID:       e.ID,
		Kind:     string(e.Command.Kind()),
		Target:   e.Command.Target(),
		At:       e.At,
		Applied:  e.Applied(),
		Undone:   e.Undone(),
		Affected: e.Snapshot.Reduced(),
	}
	if e.Err != nil {
		v.Error = e.Err.Error()
	}
	return v
}

func (s *Server) commandHistory(w http.ResponseWriter, _ *http.Request) {
	hist := s.deps.Commands.History()
	views := make([]executionView, len(hist))
	for i, e := range hist {
		views[i] = viewOf(e)
	}
	writeJSON(w, http.StatusOK, views)
}

type switchRequest struct {
	ObjectID string             `json:"object_id"`
	Status   model.ObjectStatus `json:"status"`
}

func (s *Server) switchStatus(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	exec, err := s.deps.Commands.Execute(r.Context(), command.SwitchStatus{ObjectID: req.ObjectID, NewStatus: req.Status, Operator: user(r)})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(exec))
}

func (s *Server) loadReduction(w http.ResponseWriter, r *http.Request) {
	if s.deps.Emergency == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("load reduction disabled"))
		return
	}
	exec, err := s.deps.Emergency(r.Context(), user(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(exec))
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	exec, err := s.deps.Commands.UndoLast(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(exec))
}

func (s *Server) alerts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("unread") == "true" {
		writeJSON(w, http.StatusOK, s.deps.Alerts.Unread())
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Alerts.Alerts())
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Alerts.MarkRead(mux.Vars(r)["id"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reportRequest struct {
	Type  model.ReportType `json:"report_type"`
	Start time.Time        `json:"start"`
	End   time.Time        `json:"end"`
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown report type %q", req.Type))
		return
	}
	if req.End.IsZero() {
		req.End = time.Now()
	}
	if req.Start.IsZero() {
		req.Start = req.End.Add(-24 * time.Hour)
	}
	rep, err := s.deps.Reports.Generate(req.Type, req.Start, req.End, user(r))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) reports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Reports.List())
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.deps.Reports.Get(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type forecastRequest struct {
	ObjectID string             `json:"object_id"`
	Weather  *model.WeatherData `json:"weather,omitempty"`
}

func (s *Server) createForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, ok := s.deps.Objects.Object(req.ObjectID); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("object %q %w", req.ObjectID, errNotFound))
		return
	}
	writeJSON(w, http.StatusCreated, s.deps.Forecasts.Create(req.ObjectID, req.Weather))
}

type forecastView struct {
	Latest  *model.LoadForecast  `json:"latest"`
	History []model.LoadForecast `json:"history"`
}

func (s *Server) forecasts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["objectId"]
	v := forecastView{History: s.deps.Forecasts.History(id)}
	if f, ok := s.deps.Forecasts.Latest(id); ok {
		v.Latest = &f
	}
	if v.History == nil {
		v.History = []model.LoadForecast{}
	}
	writeJSON(w, http.StatusOK, v)
}

type modelingRequest struct {
	Type     string `json:"object_type"`
	Power    string `json:"power"`
	Location string `json:"location"`
	Load     string `json:"load"`
}

func (s *Server) modeling(w http.ResponseWriter, r *http.Request) {
	var req modelingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := modeling.Simulate(req.Type, req.Power, req.Location, req.Load)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, monitor.ErrAnomalyNotFound),
		errors.Is(err, recommendation.ErrNotFound),
		errors.Is(err, recommendation.ErrAnomalyNotFound),
		errors.Is(err, command.ErrObjectNotFound),
		errors.Is(err, alert.ErrAlertNotFound),
		errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, monitor.ErrInvalidStatus),
		errors.Is(err, command.ErrInvalidStatus),
		errors.Is(err, report.ErrInvalidWindow),
		errors.Is(err, modeling.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, command.ErrNothingToUndo),
		errors.Is(err, command.ErrAlreadyUndone):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
