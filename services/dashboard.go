package services

import (
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"noshow-dashboard/models"
	"noshow-dashboard/utils"
)

// Chart titles.
const (
	TitleAttendance   = "No-show vs Show-up Rates"
	TitleAgeBox       = "Age Distribution by No-show Status"
	TitleWeekday      = "appointments by day of the week"
	TitleNeighborhood = "No-show Count by Neighborhood"
	TitleConditions   = "Impact of Chronic Conditions on Attendance"
	TitleAgeHistogram = "Age Impact on Attendance"

	TitleAgeBoxEmpty       = "No data available for selected filters"
	TitleAgeHistogramEmpty = "No data for selected filters"
)

// KPI titles.
const (
	KPITotal  = "Total Appointments"
	KPINoShow = "No-shows"
	KPIShow   = "Shows"
)

// WeekdayScale is the continuous color scale of the weekday chart, low to high.
var WeekdayScale = map[string]string{
	"low":  "#1E0342",
	"mid":  "#0E46A3",
	"high": "#9AC8CD",
}

// Dashboard owns the immutable dataset and recomputes every view from it.
type Dashboard struct {
	data    models.Dataset
	logger  *utils.Logger
	printer *message.Printer
}

// NewDashboard wraps a loaded dataset. data must not be modified afterwards.
func NewDashboard(data models.Dataset, logger *utils.Logger) *Dashboard {
	datasetRows.Set(float64(len(data)))
	return &Dashboard{
		data:    data,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// Dataset returns the shared dataset. Callers must treat it as read-only.
func (d *Dashboard) Dataset() models.Dataset {
	return d.data
}

// FormatCount renders n with thousands grouping ("110,527").
func (d *Dashboard) FormatCount(n int) string {
	return d.printer.Sprintf("%d", n)
}

// Options describes the filter controls offered to the presentation layer.
type Options struct {
	Genders       []Option `json:"genders"`
	Neighborhoods []string `json:"neighborhoods"`
	AgeMin        int      `json:"ageMin"`
	AgeMax        int      `json:"ageMax"`
	AgeStep       int      `json:"ageStep"`
	AgeMarks      []int    `json:"ageMarks"`
}

// Option is a labelled dropdown value.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Options lists the gender choices, observed neighborhoods and slider bounds.
func (d *Dashboard) Options() Options {
	hoods := d.data.Neighborhoods()
	sort.Strings(hoods)
	return Options{
		Genders: []Option{
			{Label: "Male", Value: models.GenderMale},
			{Label: "Female", Value: models.GenderFemale},
		},
		Neighborhoods: hoods,
		AgeMin:        models.AgeSliderMin,
		AgeMax:        models.AgeSliderMax,
		AgeStep:       1,
		AgeMarks:      []int{0, 20, 40, 60, 80, 100},
	}
}

// Recompute filters the dataset with f and runs every aggregator on the
// resulting view. Aggregators are independent and run concurrently.
func (d *Dashboard) Recompute(f models.FilterState) *models.Dashboard {
	start := time.Now()
	defer func() { recomputeDuration.Observe(time.Since(start).Seconds()) }()

	if _, err := f.ParseAge(); err != nil {
		malformedFilters.Inc()
		d.logger.Debug("[dashboard] %v, age treated as unconstrained", err)
	}

	view := Apply(d.data, f)
	filteredRows.Set(float64(view.Len()))

	out := &models.Dashboard{Filter: f}
	charts := make([]models.Chart, len(models.ChartNames))

	var g errgroup.Group
	g.Go(func() error {
		out.Summary = Summarize(view)
		return nil
	})
	for i, name := range models.ChartNames {
		i, name := i, name
		g.Go(func() error {
			charts[i] = buildChart(name, view)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.logger.Error("[dashboard] Recompute: %v", err)
	}

	out.Charts = charts
	out.KPIs = []models.KPI{
		{Title: KPITotal, Value: d.FormatCount(out.Summary.Total)},
		{Title: KPINoShow, Value: d.FormatCount(out.Summary.NoShow)},
		{Title: KPIShow, Value: d.FormatCount(out.Summary.Show)},
	}

	d.logger.Debug("[dashboard] Recomputed %d/%d rows in %v", view.Len(), len(d.data), time.Since(start))
	return out
}

func buildChart(name string, v models.View) models.Chart {
	c := models.Chart{Name: name, Colors: models.StatusColors, Empty: v.Len() == 0}
	switch name {
	case models.ChartAttendance:
		c.Title = TitleAttendance
		c.Counts = AttendanceSplit(v)
	case models.ChartAgeBox:
		c.Title = TitleAgeBox
		if c.Empty {
			c.Title = TitleAgeBoxEmpty
		}
		c.Boxes = AgeBoxes(v)
	case models.ChartWeekday:
		c.Title = TitleWeekday
		c.Colors = WeekdayScale
		c.Counts = WeekdayCounts(v)
	case models.ChartNeighborhood:
		c.Title = TitleNeighborhood
		c.Groups = NeighborhoodCounts(v)
	case models.ChartConditions:
		c.Title = TitleConditions
		c.Groups = ConditionCounts(v)
	case models.ChartAgeHistogram:
		c.Title = TitleAgeHistogram
		if c.Empty {
			c.Title = TitleAgeHistogramEmpty
		}
		c.Histogram = AgeHistogram(v)
	}
	return c
}
