// Package api exposes the monitoring controllers as a JSON HTTP interface.
// The acting operator is taken from the X-User-ID header and is only used
// for attribution.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/command"
	"github.com/kilianp07/gridmon/core/forecast"
	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/monitor"
	"github.com/kilianp07/gridmon/core/recommendation"
	"github.com/kilianp07/gridmon/core/report"
	"github.com/kilianp07/gridmon/core/repository"
)

// UserHeader carries the operator identity.
const UserHeader = "X-User-ID"

// AnomalyGenerator injects synthetic anomalies.
type AnomalyGenerator interface {
	GenerateTestAnomaly() (model.Anomaly, bool)
}

// EmergencyFunc runs an emergency load reduction on behalf of operator.
type EmergencyFunc func(ctx context.Context, operator string) (*command.Execution, error)

// Deps are the controllers served by the API.
type Deps struct {
	Objects         repository.ObjectStore
	Monitor         *monitor.Controller
	Recommendations *recommendation.Controller
	Forecasts       *forecast.Controller
	Reports         *report.Controller
	Commands        *command.Executor
	Alerts          *alert.Service
	Simulation      AnomalyGenerator
	Emergency       EmergencyFunc
	// Threshold is the default bottleneck utilization in percent.
	Threshold float64
	Log       logger.Logger
}

// Server routes API requests to the controllers.
type Server struct {
	deps     Deps
	router   *mux.Router
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewServer builds the router.
func NewServer(d Deps) *Server {
	s := &Server{
		deps: d,
		log:  logger.OrNop(d.Log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	a := r.PathPrefix("/api").Subrouter()

	a.HandleFunc("/status", s.status).Methods(http.MethodGet)
	a.HandleFunc("/objects", s.objects).Methods(http.MethodGet)
	a.HandleFunc("/objects/{id}", s.object).Methods(http.MethodGet)
	a.HandleFunc("/bottlenecks", s.bottlenecks).Methods(http.MethodGet)
	a.HandleFunc("/monitoring/start", s.monitoring(true)).Methods(http.MethodPost)
	a.HandleFunc("/monitoring/stop", s.monitoring(false)).Methods(http.MethodPost)

	a.HandleFunc("/anomalies", s.anomalies).Methods(http.MethodGet)
	a.HandleFunc("/anomalies/test", s.testAnomaly).Methods(http.MethodPost)
	a.HandleFunc("/anomalies/{id}/resolve", s.resolveAnomaly).Methods(http.MethodPost)
	a.HandleFunc("/anomalies/{id}/status", s.anomalyStatus).Methods(http.MethodPost)
	a.HandleFunc("/anomalies/{id}/recommendation", s.recommend).Methods(http.MethodPost)

	a.HandleFunc("/recommendations", s.recommendations).Methods(http.MethodGet)
	a.HandleFunc("/recommendations/{id}/approve", s.approve).Methods(http.MethodPost)
	a.HandleFunc("/recommendations/{id}/reject", s.reject).Methods(http.MethodPost)
	a.HandleFunc("/recommendations/{id}/executed", s.executed).Methods(http.MethodPost)

	a.HandleFunc("/commands", s.commandHistory).Methods(http.MethodGet)
	a.HandleFunc("/commands/switch", s.switchStatus).Methods(http.MethodPost)
	a.HandleFunc("/commands/load-reduction", s.loadReduction).Methods(http.MethodPost)
	a.HandleFunc("/commands/undo", s.undo).Methods(http.MethodPost)

	a.HandleFunc("/alerts", s.alerts).Methods(http.MethodGet)
	a.HandleFunc("/alerts/stream", s.stream).Methods(http.MethodGet)
	a.HandleFunc("/alerts/{id}/read", s.markRead).Methods(http.MethodPost)

	a.HandleFunc("/reports", s.reports).Methods(http.MethodGet)
	a.HandleFunc("/reports", s.createReport).Methods(http.MethodPost)
	a.HandleFunc("/reports/{id}", s.report).Methods(http.MethodGet)

	a.HandleFunc("/forecasts", s.createForecast).Methods(http.MethodPost)
	a.HandleFunc("/forecasts/{objectId}", s.forecasts).Methods(http.MethodGet)

	a.HandleFunc("/modeling", s.modeling).Methods(http.MethodPost)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves h on addr until ctx is canceled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func user(r *http.Request) string {
	if u := r.Header.Get(UserHeader); u != "" {
		return u
	}
	return "anonymous"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
