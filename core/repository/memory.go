package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/gridmon/core/model"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	objMu   sync.RWMutex
	objects map[string]model.NetworkObject

	readMu   sync.RWMutex
	readings []model.SensorData

	anomMu    sync.RWMutex
	anomalies []model.Anomaly
	anomIdx   map[string]int

	recMu  sync.RWMutex
	recs   []model.Recommendation
	recIdx map[string]int

	fcMu      sync.RWMutex
	forecasts []model.LoadForecast

	repMu   sync.RWMutex
	reports []model.Report
}

// NewMemoryStore creates an empty store populated with the given objects.
func NewMemoryStore(objects ...model.NetworkObject) *MemoryStore {
	s := &MemoryStore{
		objects: make(map[string]model.NetworkObject, len(objects)),
		anomIdx: make(map[string]int),
		recIdx:  make(map[string]int),
	}
	for _, o := range objects {
		s.AddObject(o)
	}
	return s
}

func (s *MemoryStore) AddObject(o model.NetworkObject) {
	s.objMu.Lock()
	s.objects[o.ID] = o.Clone()
	s.objMu.Unlock()
}

func (s *MemoryStore) Object(id string) (model.NetworkObject, bool) {
	s.objMu.RLock()
	defer s.objMu.RUnlock()
	o, ok := s.objects[id]
	if !ok {
		return model.NetworkObject{}, false
	}
	return o.Clone(), true
}

// Objects returns all objects sorted by id.
func (s *MemoryStore) Objects() []model.NetworkObject {
	s.objMu.RLock()
	res := make([]model.NetworkObject, 0, len(s.objects))
	for _, o := range s.objects {
		res = append(res, o.Clone())
	}
	s.objMu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *MemoryStore) SetObjectStatus(id string, status model.ObjectStatus) (model.ObjectStatus, bool) {
	s.objMu.Lock()
	defer s.objMu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return "", false
	}
	prev := o.Status
	o.Status = status
	s.objects[id] = o
	return prev, true
}

func (s *MemoryStore) SetObjectLoad(id string, load float64) bool {
	s.objMu.Lock()
	defer s.objMu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return false
	}
	o.SetLoad(load)
	s.objects[id] = o
	return true
}

func (s *MemoryStore) AddReading(d model.SensorData) {
	s.readMu.Lock()
	s.readings = append(s.readings, d)
	s.readMu.Unlock()
}

func (s *MemoryStore) Readings(sensorID string, start, end time.Time) []model.SensorData {
	s.readMu.RLock()
	defer s.readMu.RUnlock()
	var res []model.SensorData
	for _, d := range s.readings {
		if d.SensorID == sensorID && inWindow(d.Timestamp, start, end) {
			res = append(res, d)
		}
	}
	return res
}

func (s *MemoryStore) History(start, end time.Time) []model.SensorData {
	s.readMu.RLock()
	defer s.readMu.RUnlock()
	var res []model.SensorData
	for _, d := range s.readings {
		if inWindow(d.Timestamp, start, end) {
			res = append(res, d)
		}
	}
	return res
}

func (s *MemoryStore) AddAnomaly(a model.Anomaly) {
	s.anomMu.Lock()
	s.anomIdx[a.ID] = len(s.anomalies)
	s.anomalies = append(s.anomalies, a)
	s.anomMu.Unlock()
}

func (s *MemoryStore) Anomaly(id string) (model.Anomaly, bool) {
	s.anomMu.RLock()
	defer s.anomMu.RUnlock()
	i, ok := s.anomIdx[id]
	if !ok {
		return model.Anomaly{}, false
	}
	return s.anomalies[i], true
}

func (s *MemoryStore) Anomalies() []model.Anomaly {
	return s.filterAnomalies(func(model.Anomaly) bool { return true })
}

func (s *MemoryStore) ActiveAnomalies() []model.Anomaly {
	return s.filterAnomalies(func(a model.Anomaly) bool { return a.Status.IsActive() })
}

func (s *MemoryStore) AnomaliesBetween(start, end time.Time) []model.Anomaly {
	return s.filterAnomalies(func(a model.Anomaly) bool { return inWindow(a.DetectedAt, start, end) })
}

func (s *MemoryStore) filterAnomalies(keep func(model.Anomaly) bool) []model.Anomaly {
	s.anomMu.RLock()
	defer s.anomMu.RUnlock()
	res := make([]model.Anomaly, 0, len(s.anomalies))
	for _, a := range s.anomalies {
		if keep(a) {
			res = append(res, a)
		}
	}
	return res
}

func (s *MemoryStore) SetAnomalyStatus(id string, status model.AnomalyStatus) bool {
	s.anomMu.Lock()
	defer s.anomMu.Unlock()
	i, ok := s.anomIdx[id]
	if !ok {
		return false
	}
	s.anomalies[i].Status = status
	return true
}

func (s *MemoryStore) AddRecommendation(r model.Recommendation) {
	s.recMu.Lock()
	s.recIdx[r.ID] = len(s.recs)
	s.recs = append(s.recs, r)
	s.recMu.Unlock()
}

func (s *MemoryStore) Recommendation(id string) (model.Recommendation, bool) {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	i, ok := s.recIdx[id]
	if !ok {
		return model.Recommendation{}, false
	}
	return s.recs[i], true
}

func (s *MemoryStore) Recommendations() []model.Recommendation {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	res := make([]model.Recommendation, len(s.recs))
	copy(res, s.recs)
	return res
}

func (s *MemoryStore) PendingRecommendations() []model.Recommendation {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	var res []model.Recommendation
	for _, r := range s.recs {
		if r.Status == model.RecommendationPending {
			res = append(res, r)
		}
	}
	return res
}

func (s *MemoryStore) UpdateRecommendation(id string, fn func(*model.Recommendation)) bool {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	i, ok := s.recIdx[id]
	if !ok {
		return false
	}
	r := s.recs[i]
	fn(&r)
	// identity and anomaly link are not editable
	r.ID, r.AnomalyID = s.recs[i].ID, s.recs[i].AnomalyID
	s.recs[i] = r
	return true
}

func (s *MemoryStore) AddForecast(f model.LoadForecast) {
	s.fcMu.Lock()
	s.forecasts = append(s.forecasts, f)
	s.fcMu.Unlock()
}

func (s *MemoryStore) Forecasts(objectID string) []model.LoadForecast {
	s.fcMu.RLock()
	defer s.fcMu.RUnlock()
	var res []model.LoadForecast
	for _, f := range s.forecasts {
		if f.ObjectID == objectID {
			res = append(res, f)
		}
	}
	return res
}

// LatestForecast returns the forecast with the greatest ForecastTime. Ties
// keep the earliest inserted one.
func (s *MemoryStore) LatestForecast(objectID string) (model.LoadForecast, bool) {
	s.fcMu.RLock()
	defer s.fcMu.RUnlock()
	var (
		best  model.LoadForecast
		found bool
	)
	for _, f := range s.forecasts {
		if f.ObjectID != objectID {
			continue
		}
		if !found || f.ForecastTime.After(best.ForecastTime) {
			best, found = f, true
		}
	}
	return best, found
}

func (s *MemoryStore) AddReport(r model.Report) {
	s.repMu.Lock()
	s.reports = append(s.reports, r)
	s.repMu.Unlock()
}

func (s *MemoryStore) Report(id string) (model.Report, bool) {
	s.repMu.RLock()
	defer s.repMu.RUnlock()
	for _, r := range s.reports {
		if r.ID == id {
			return r, true
		}
	}
	return model.Report{}, false
}

func (s *MemoryStore) Reports() []model.Report {
	s.repMu.RLock()
	defer s.repMu.RUnlock()
	res := make([]model.Report, len(s.reports))
	copy(res, s.reports)
	return res
}
