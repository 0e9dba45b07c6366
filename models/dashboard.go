package models

// Colors shared by every attendance-colored chart.
var StatusColors = map[string]string{
	StatusNo:  "#9AC8CD",
	StatusYes: "#0E46A3",
}

// Chart names, also used as URL segments by the HTTP layer.
const (
	ChartAttendance   = "attendance"
	ChartAgeBox       = "age-box"
	ChartWeekday      = "weekday"
	ChartNeighborhood = "neighborhood"
	ChartConditions   = "conditions"
	ChartAgeHistogram = "age-histogram"
)

// ChartNames lists the charts in dashboard order.
var ChartNames = []string{
	ChartAttendance,
	ChartAgeBox,
	ChartNeighborhood,
	ChartWeekday,
	ChartConditions,
	ChartAgeHistogram,
}

// Summary holds the three KPI tallies.
type Summary struct {
	Total  int `json:"total"`
	NoShow int `json:"noShow"`
	Show   int `json:"show"`
}

// CountRow is one (category, count) pair.
type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GroupRow is one (group, no-show status, count) triple. Label is the
// display form of Group; they differ only where a display transform applies.
type GroupRow struct {
	Group  string `json:"group"`
	Label  string `json:"label"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// BoxStats is the five-number age summary of one no-show bucket.
type BoxStats struct {
	Status string  `json:"status"`
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// HistogramRow is one (bin, no-show status, count) triple.
type HistogramRow struct {
	Bin    int     `json:"bin"`
	Lo     float64 `json:"lo"`
	Hi     float64 `json:"hi"`
	Status string  `json:"status"`
	Count  int     `json:"count"`
}

// Chart is a render-ready aggregate: a title, one populated table and the
// categorical color map.
type Chart struct {
	Name      string            `json:"name"`
	Title     string            `json:"title"`
	Empty     bool              `json:"empty"`
	Colors    map[string]string `json:"colors"`
	Counts    []CountRow        `json:"counts,omitempty"`
	Groups    []GroupRow        `json:"groups,omitempty"`
	Boxes     []BoxStats        `json:"boxes,omitempty"`
	Histogram []HistogramRow    `json:"histogram,omitempty"`
}

// KPI is a labelled, thousands-grouped count.
type KPI struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Dashboard is the full output of one recomputation.
type Dashboard struct {
	Seq     uint64      `json:"seq"`
	Filter  FilterState `json:"filter"`
	Summary Summary     `json:"summary"`
	KPIs    []KPI       `json:"kpis"`
	Charts  []Chart     `json:"charts"`
}

// Chart returns the named chart, or nil.
func (d *Dashboard) Chart(name string) *Chart {
	for i := range d.Charts {
		if d.Charts[i].Name == name {
			return &d.Charts[i]
		}
	}
	return nil
}
