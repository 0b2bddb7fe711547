package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridmon/core/alert"
	"github.com/kilianp07/gridmon/core/command"
	"github.com/kilianp07/gridmon/core/command/journal"
	"github.com/kilianp07/gridmon/core/forecast"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/monitor"
	"github.com/kilianp07/gridmon/core/recommendation"
	"github.com/kilianp07/gridmon/core/report"
	"github.com/kilianp07/gridmon/core/repository"
)

type fixture struct {
	srv    *Server
	store  *repository.MemoryStore
	mon    *monitor.Controller
	alerts *alert.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repository.NewMemoryStore(repository.Seed()...)
	mon := monitor.NewController(store, nil, nil, nil, nil)
	alerts := alert.NewService(nil, nil)
	t.Cleanup(alerts.Close)
	exec := command.NewExecutor(store, journal.Nop{}, nil, nil, nil)
	srv := NewServer(Deps{
		Objects:         store,
		Monitor:         mon,
		Recommendations: recommendation.NewController(store, nil),
		Forecasts:       forecast.NewController(store, nil, nil, nil),
		Reports:         report.NewController(store, nil),
		Commands:        exec,
		Alerts:          alerts,
		Emergency: func(ctx context.Context, operator string) (*command.Execution, error) {
			return exec.Execute(ctx, command.LoadReduction{Operator: operator})
		},
		Threshold: monitor.DefaultBottleneckThreshold,
	})
	return fixture{srv: srv, store: store, mon: mon, alerts: alerts}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(UserHeader, "dispatcher-1")
	rr := httptest.NewRecorder()
	f.srv.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestStatusAndObjects(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeBody[monitor.Status](t, rr)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 100.0, st.HealthPercentage)

	rr = f.do(t, http.MethodGet, "/api/objects", nil)
	objs := decodeBody[[]model.NetworkObject](t, rr)
	assert.Len(t, objs, 3)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/objects/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodDelete, "/api/status", nil).Code)
}

func TestMonitoringToggle(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/monitoring/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeBody[monitoringState](t, rr).Active)
	rr = f.do(t, http.MethodPost, "/api/monitoring/stop", nil)
	assert.False(t, decodeBody[monitoringState](t, rr).Active)
	assert.False(t, f.mon.Active())
}

func TestSwitchCommandAndUndo(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/commands/switch", switchRequest{ObjectID: "feeder_001", Status: model.StatusMaintenance})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	v := decodeBody[executionView](t, rr)
	assert.Equal(t, "switch_status", v.Kind)
	assert.True(t, v.Applied)
	obj, _ := f.store.Object("feeder_001")
	assert.Equal(t, model.StatusMaintenance, obj.Status)

	rr = f.do(t, http.MethodGet, "/api/commands", nil)
	assert.Len(t, decodeBody[[]executionView](t, rr), 1)

	rr = f.do(t, http.MethodPost, "/api/commands/undo", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decodeBody[executionView](t, rr).Undone)
	obj, _ = f.store.Object("feeder_001")
	assert.Equal(t, model.StatusOperational, obj.Status)

	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/commands/undo", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/commands/switch", switchRequest{ObjectID: "nope", Status: model.StatusFailure}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/commands/switch", switchRequest{ObjectID: "feeder_001", Status: "broken"}).Code)
}

func TestLoadReduction(t *testing.T) {
	f := newFixture(t)
	f.store.SetObjectLoad("feeder_001", 450)
	rr := f.do(t, http.MethodPost, "/api/commands/load-reduction", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	v := decodeBody[executionView](t, rr)
	assert.Equal(t, []string{"feeder_001"}, v.Affected)
	obj, _ := f.store.Object("feeder_001")
	assert.InDelta(t, 315, obj.CurrentLoad, 1e-9)
}

func TestAnomalyRecommendationFlow(t *testing.T) {
	f := newFixture(t)
	f.mon.Record(model.Anomaly{
		ID:         "an-1",
		DetectedAt: time.Now(),
		Type:       model.AnomalyOverload,
		Severity:   model.SeverityCritical,
		Status:     model.AnomalyDetected,
		ObjectID:   "feeder_001",
	}, "operator")

	rr := f.do(t, http.MethodGet, "/api/anomalies", nil)
	require.Len(t, decodeBody[[]model.Anomaly](t, rr), 1)

	rr = f.do(t, http.MethodPost, "/api/anomalies/an-1/recommendation", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	rec := decodeBody[model.Recommendation](t, rr)
	assert.Equal(t, 5, rec.Priority)
	assert.Equal(t, model.ActionSwitching, rec.ActionType)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/anomalies/nope/recommendation", nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/recommendations/"+rec.ID+"/approve", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/recommendations/nope/approve", nil).Code)

	rr = f.do(t, http.MethodGet, "/api/recommendations", nil)
	all := decodeBody[[]model.Recommendation](t, rr)
	require.Len(t, all, 1)
	assert.Equal(t, model.RecommendationApproved, all[0].Status)
	assert.Equal(t, "dispatcher-1", all[0].ExecutorID)
	rr = f.do(t, http.MethodGet, "/api/recommendations?pending=true", nil)
	assert.Empty(t, decodeBody[[]model.Recommendation](t, rr))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/anomalies/an-1/status", statusRequest{Status: "bogus"}).Code)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/anomalies/an-1/resolve", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/anomalies/nope/resolve", nil).Code)
	rr = f.do(t, http.MethodGet, "/api/anomalies", nil)
	assert.Empty(t, decodeBody[[]model.Anomaly](t, rr))
}

func TestTestAnomalyWithoutSimulation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodPost, "/api/anomalies/test", nil).Code)
}

func TestBottlenecks(t *testing.T) {
	f := newFixture(t)
	f.store.SetObjectLoad("feeder_001", 450)
	rr := f.do(t, http.MethodGet, "/api/bottlenecks", nil)
	b := decodeBody[[]monitor.Bottleneck](t, rr)
	require.Len(t, b, 1)
	assert.Equal(t, "feeder_001", b[0].ObjectID)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/bottlenecks?threshold=x", nil).Code)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/reports", reportRequest{Type: model.ReportDaily})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rep := decodeBody[model.Report](t, rr)
	assert.Equal(t, "dispatcher-1", rep.CreatedBy)
	assert.True(t, strings.HasPrefix(rep.Title, "Daily report for"))

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/reports/"+rep.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/reports/nope", nil).Code)
	assert.Len(t, decodeBody[[]model.Report](t, f.do(t, http.MethodGet, "/api/reports", nil)), 1)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/reports", reportRequest{Type: "yearly"}).Code)
	now := time.Now()
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/reports", reportRequest{Type: model.ReportWeekly, Start: now, End: now.Add(-time.Hour)}).Code)
}

func TestForecasts(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/forecasts/feeder_001", nil)
	v := decodeBody[forecastView](t, rr)
	assert.Nil(t, v.Latest)
	assert.Empty(t, v.History)

	rr = f.do(t, http.MethodPost, "/api/forecasts", forecastRequest{ObjectID: "feeder_001", Weather: &model.WeatherData{Temperature: 30}})
	require.Equal(t, http.StatusCreated, rr.Code)
	fc := decodeBody[model.LoadForecast](t, rr)
	assert.InDelta(t, 1.5, fc.WeatherFactor, 1e-9)

	v = decodeBody[forecastView](t, f.do(t, http.MethodGet, "/api/forecasts/feeder_001", nil))
	require.NotNil(t, v.Latest)
	assert.Equal(t, fc.ID, v.Latest.ID)
	assert.Len(t, v.History, 1)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/forecasts", forecastRequest{ObjectID: "nope"}).Code)
}

func TestAlerts(t *testing.T) {
	f := newFixture(t)
	a := f.alerts.Send("Voltage drop", model.SeverityMedium, alert.RecipientAllDispatchers)
	rr := f.do(t, http.MethodGet, "/api/alerts?unread=true", nil)
	assert.Len(t, decodeBody[[]model.Alert](t, rr), 1)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/alerts/"+a.ID+"/read", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/alerts/nope/read", nil).Code)
	rr = f.do(t, http.MethodGet, "/api/alerts?unread=true", nil)
	assert.Empty(t, decodeBody[[]model.Alert](t, rr))
	assert.Len(t, decodeBody[[]model.Alert](t, f.do(t, http.MethodGet, "/api/alerts", nil)), 1)
}

func TestModeling(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/modeling", modelingRequest{Type: "feeder", Power: "500", Location: "north", Load: "300"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/modeling", modelingRequest{Type: "feeder", Power: "abc", Load: "1"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/modeling", map[string]string{"unknown": "x"}).Code)
}

func TestAlertStream(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/alerts/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	received := make(chan model.Alert, 16)
	go func() {
		for {
			var a model.Alert
			if err := conn.ReadJSON(&a); err != nil {
				close(received)
				return
			}
			received <- a
		}
	}()

	// The handler subscribes after the upgrade; resend until it is listening.
	f.alerts.Send("ignored", model.SeverityLow, alert.RecipientAllDispatchers)
	var got model.Alert
	require.Eventually(t, func() bool {
		f.alerts.Send("Overload on feeder_001", model.SeverityCritical, alert.RecipientAllDispatchers)
		select {
		case got = <-received:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "Overload on feeder_001", got.Message)
	assert.Equal(t, model.SeverityCritical, got.Severity)
}
