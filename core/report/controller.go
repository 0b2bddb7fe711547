// Package report builds textual summaries of anomalies and readings over a
// time window.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/repository"
)

var ErrInvalidWindow = errors.New("report window ends before it starts")

const dateLayout = "2006-01-02"

// Controller generates and lists reports.
type Controller struct {
	store repository.Store
	log   logger.Logger
	now   func() time.Time
}

// NewController creates a Controller backed by store.
func NewController(store repository.Store, log logger.Logger) *Controller {
	return &Controller{store: store, log: logger.OrNop(log), now: time.Now}
}

type row struct {
	Name  string
	Count int
}

// summary is the data exposed to report templates.
type summary struct {
	Total        int
	BySeverity   map[string]int
	SeverityRows []row
	ByType       []row
	Resolved     int
	Pending      int
	Readings     int
	Mean         float64
	AverageLoad  float64
	Peak         float64
}

func summarize(anomalies []model.Anomaly, readings []model.SensorData) summary {
	s := summary{
		Total:      len(anomalies),
		BySeverity: make(map[string]int, len(model.Severities)),
		Readings:   len(readings),
	}
	for _, sev := range model.Severities {
		s.BySeverity[sev.String()] = 0
	}
	byType := make(map[model.AnomalyType]int)
	for _, a := range anomalies {
		s.BySeverity[a.Severity.String()]++
		byType[a.Type]++
		switch a.Status {
		case model.AnomalyResolved:
			s.Resolved++
		case model.AnomalyDetected, model.AnomalyAnalyzing:
			s.Pending++
		}
	}
	for _, t := range model.AnomalyTypes {
		if n := byType[t]; n > 0 {
			s.ByType = append(s.ByType, row{Name: string(t), Count: n})
		}
	}
	for i := len(model.Severities) - 1; i >= 0; i-- {
		name := model.Severities[i].String()
		s.SeverityRows = append(s.SeverityRows, row{Name: name, Count: s.BySeverity[name]})
	}

	values := make([]float64, 0, len(readings))
	var power []float64
	for _, r := range readings {
		values = append(values, r.Value)
		if r.Kind() == model.SensorPower {
			power = append(power, r.Value)
		}
	}
	if len(values) > 0 {
		s.Mean = stat.Mean(values, nil)
		s.Peak = floats.Max(values)
		s.AverageLoad = s.Mean
	}
	if len(power) > 0 {
		s.AverageLoad = stat.Mean(power, nil)
	}
	return s
}

func title(typ model.ReportType, start, end time.Time) string {
	switch typ {
	case model.ReportDaily:
		return "Daily report for " + start.Format(dateLayout)
	case model.ReportWeekly:
		return fmt.Sprintf("Weekly report for %s - %s", start.Format(dateLayout), end.Format(dateLayout))
	default:
		return fmt.Sprintf("Report for period %s - %s", start.Format(dateLayout), end.Format(dateLayout))
	}
}

func templateName(typ model.ReportType) string {
	switch typ {
	case model.ReportDaily:
		return "daily"
	case model.ReportWeekly:
		return "weekly"
	default:
		return "general"
	}
}

// Generate summarises anomalies and readings with timestamps inside
// [start, end] and stores the report. Types other than daily and weekly get
// the general summary.
func (c *Controller) Generate(typ model.ReportType, start, end time.Time, createdBy string) (model.Report, error) {
	if end.Before(start) {
		return model.Report{}, ErrInvalidWindow
	}
	s := summarize(c.store.AnomaliesBetween(start, end), c.store.History(start, end))

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateName(typ), s); err != nil {
		return model.Report{}, fmt.Errorf("render %s report: %w", typ, err)
	}
	r := model.Report{
		ID:        uuid.NewString(),
		Title:     title(typ, start, end),
		Type:      typ,
		CreatedAt: c.now(),
		Content:   buf.String(),
		CreatedBy: createdBy,
	}
	c.store.AddReport(r)
	c.log.Infof("report %s generated by %s: %s", r.ID, createdBy, r.Title)
	return r, nil
}

// List returns every stored report.
func (c *Controller) List() []model.Report { return c.store.Reports() }

// Get returns the report with the given id.
func (c *Controller) Get(id string) (model.Report, bool) { return c.store.Report(id) }
