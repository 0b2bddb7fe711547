package report

import "text/template"

const dailyTmpl = `Daily report
============
Total anomalies: {{.Total}}
Critical: {{.BySeverity.critical}}
High: {{.BySeverity.high}}
Medium: {{.BySeverity.medium}}

Readings: {{.Readings}}
Mean value: {{printf "%.2f" .Mean}}
`

const weeklyTmpl = `Weekly report
=============
Week statistics:
- Total anomalies: {{.Total}}
- Resolved anomalies: {{.Resolved}}
- Pending anomalies: {{.Pending}}
- Data volume: {{.Readings}} readings

Trends:
- Average network load: {{printf "%.2f" .AverageLoad}}
- Peak load: {{printf "%.2f" .Peak}}
`

const generalTmpl = `Period report
=============
Total anomalies: {{.Total}}
{{- range .ByType}}
- {{.Name}}: {{.Count}}
{{- end}}
By severity:
{{- range .SeverityRows}}
- {{.Name}}: {{.Count}}
{{- end}}

Readings: {{.Readings}}
Mean value: {{printf "%.2f" .Mean}}
`

var templates = template.Must(template.New("daily").Parse(dailyTmpl))

func init() {
	template.Must(templates.New("weekly").Parse(weeklyTmpl))
	template.Must(templates.New("general").Parse(generalTmpl))
}
