package model

import "time"

// ReportType selects the report template.
type ReportType string

const (
	ReportDaily    ReportType = "daily"
	ReportWeekly   ReportType = "weekly"
	ReportMonthly  ReportType = "monthly"
	ReportIncident ReportType = "incident"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportDaily, ReportWeekly, ReportMonthly, ReportIncident:
		return true
	}
	return false
}

// Report is a pre-rendered summary over a time window.
type Report struct {
	ID        string     `json:"report_id"`
	Title     string     `json:"title"`
	Type      ReportType `json:"report_type"`
	CreatedAt time.Time  `json:"creation_date"`
	Content   string     `json:"content"`
	CreatedBy string     `json:"created_by"`
}
