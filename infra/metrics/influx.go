package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridmon/core/metrics"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/infra/logger"
)

// InfluxSink writes grid time series to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	timeout  time.Duration
}

// InfluxConfig holds the connection parameters of InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
		timeout:  5 * time.Second,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordReading writes one sensor value.
func (s *InfluxSink) RecordReading(ev coremetrics.ReadingEvent) error {
	p := write.NewPointWithMeasurement("sensor_reading").
		AddTag("object_id", ev.ObjectID).
		AddTag("kind", string(ev.Kind)).
		AddField("value", round3(ev.Value)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordAnomaly writes a stored anomaly.
func (s *InfluxSink) RecordAnomaly(ev coremetrics.AnomalyEvent) error {
	a := ev.Anomaly
	p := write.NewPointWithMeasurement("anomaly_detected").
		AddTag("object_id", a.ObjectID).
		AddTag("type", string(a.Type)).
		AddTag("severity", a.Severity.String()).
		AddTag("source", ev.Source).
		AddField("confidence", round3(a.Confidence)).
		AddField("anomaly_id", a.ID).
		SetTime(a.DetectedAt)
	return s.write(p)
}

// RecordNetworkStatus writes a network health snapshot.
func (s *InfluxSink) RecordNetworkStatus(ev coremetrics.NetworkStatusEvent) error {
	p := write.NewPointWithMeasurement("network_status").
		AddField("total", ev.Total).
		AddField("operational", ev.Operational).
		AddField("maintenance", ev.Maintenance).
		AddField("failures", ev.Failures).
		AddField("health_percent", round3(ev.HealthPercentage)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordObjectLoad writes the load of one object.
func (s *InfluxSink) RecordObjectLoad(ev coremetrics.ObjectLoadEvent) error {
	o := ev.Object
	p := write.NewPointWithMeasurement("object_load").
		AddTag("object_id", o.ID).
		AddTag("type", string(o.Type)).
		AddField("load_kw", round3(o.CurrentLoad)).
		AddField("utilization", round3(o.Utilization())).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordForecast writes a load forecast.
func (s *InfluxSink) RecordForecast(f model.LoadForecast) error {
	p := write.NewPointWithMeasurement("load_forecast").
		AddTag("object_id", f.ObjectID).
		AddTag("period", f.Period).
		AddField("predicted_load", round3(f.PredictedLoad)).
		AddField("confidence", round3(f.Confidence)).
		AddField("weather_factor", round3(f.WeatherFactor)).
		SetTime(f.ForecastTime)
	return s.write(p)
}

// RecordAlert writes a sent alert.
func (s *InfluxSink) RecordAlert(ev coremetrics.AlertEvent) error {
	a := ev.Alert
	p := write.NewPointWithMeasurement("alert_sent").
		AddTag("severity", a.Severity.String()).
		AddTag("recipient", a.Recipient).
		AddField("message", a.Message).
		SetTime(a.Time)
	return s.write(p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
