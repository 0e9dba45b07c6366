package services

import (
	"sort"
	"strings"

	"noshow-dashboard/models"
)

// HistogramBins is the fixed bin count of the age-impact histogram.
const HistogramBins = 20

// Weekdays is the canonical display order of the weekday chart.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var statuses = []string{models.StatusNo, models.StatusYes}

func statusIndex(a *models.Appointment) int {
	if a.NoShow {
		return 1
	}
	return 0
}

// Summarize tallies the view.
func Summarize(v models.View) models.Summary {
	var s models.Summary
	s.Total = v.Len()
	for i := 0; i < v.Len(); i++ {
		if v.At(i).NoShow {
			s.NoShow++
		}
	}
	s.Show = s.Total - s.NoShow
	return s
}

// AttendanceSplit counts rows per no-show bucket, largest first. Empty
// buckets are not emitted.
func AttendanceSplit(v models.View) []models.CountRow {
	var counts [2]int
	for i := 0; i < v.Len(); i++ {
		counts[statusIndex(v.At(i))]++
	}

	rows := make([]models.CountRow, 0, 2)
	for i, s := range statuses {
		if counts[i] > 0 {
			rows = append(rows, models.CountRow{Label: s, Count: counts[i]})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// AgeBoxes computes the five-number age summary per no-show bucket.
// Buckets without rows are omitted.
func AgeBoxes(v models.View) []models.BoxStats {
	var ages [2][]float64
	for i := 0; i < v.Len(); i++ {
		a := v.At(i)
		k := statusIndex(a)
		ages[k] = append(ages[k], float64(a.Age))
	}

	boxes := make([]models.BoxStats, 0, 2)
	for i, s := range statuses {
		if len(ages[i]) == 0 {
			continue
		}
		b := fiveNumber(ages[i])
		b.Status = s
		boxes = append(boxes, b)
	}
	return boxes
}

// WeekdayCounts counts rows per appointment weekday, Monday first.
// Weekdays without rows are omitted.
func WeekdayCounts(v models.View) []models.CountRow {
	counts := make(map[string]int, 7)
	for i := 0; i < v.Len(); i++ {
		counts[v.At(i).Weekday]++
	}

	rows := make([]models.CountRow, 0, 7)
	for _, d := range Weekdays {
		if n := counts[d]; n > 0 {
			rows = append(rows, models.CountRow{Label: d, Count: n})
		}
	}
	return rows
}

// NeighborhoodLabel shortens a neighborhood to the first five characters of
// its first word. Distinct neighborhoods may share a label.
func NeighborhoodLabel(n string) string {
	fields := strings.Fields(n)
	if len(fields) == 0 {
		return ""
	}
	r := []rune(fields[0])
	if len(r) > 5 {
		r = r[:5]
	}
	return string(r)
}

// NeighborhoodCounts counts rows per (neighborhood, no-show), ordered by
// neighborhood name. Grouping uses the full name; only the label is shortened.
func NeighborhoodCounts(v models.View) []models.GroupRow {
	counts := make(map[string]*[2]int)
	for i := 0; i < v.Len(); i++ {
		a := v.At(i)
		c, ok := counts[a.Neighborhood]
		if !ok {
			c = new([2]int)
			counts[a.Neighborhood] = c
		}
		c[statusIndex(a)]++
	}

	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)

	rows := make([]models.GroupRow, 0, len(names)*2)
	for _, n := range names {
		label := NeighborhoodLabel(n)
		for k, s := range statuses {
			if counts[n][k] > 0 {
				rows = append(rows, models.GroupRow{Group: n, Label: label, Status: s, Count: counts[n][k]})
			}
		}
	}
	return rows
}

// Condition names as labelled in the source, sorted.
const (
	CondAlcoholism   = "Alcoholism"
	CondDiabetes     = "Diabetes"
	CondHandicap     = "Handcap"
	CondHypertension = "Hipertension"
)

type condition struct {
	name string
	has  func(*models.Appointment) bool
}

var conditions = []condition{
	{CondAlcoholism, func(a *models.Appointment) bool { return a.Alcoholism }},
	{CondDiabetes, func(a *models.Appointment) bool { return a.Diabetes }},
	// Only level 1 counts as the flag being set.
	{CondHandicap, func(a *models.Appointment) bool { return a.Handicap == 1 }},
	{CondHypertension, func(a *models.Appointment) bool { return a.Hypertension }},
}

// ConditionCounts counts, per chronic condition, the rows having it, split by
// no-show. A row with several conditions is counted once in each. Zero rows
// are not emitted.
func ConditionCounts(v models.View) []models.GroupRow {
	counts := make([][2]int, len(conditions))
	for i := 0; i < v.Len(); i++ {
		a := v.At(i)
		k := statusIndex(a)
		for c := range conditions {
			if conditions[c].has(a) {
				counts[c][k]++
			}
		}
	}

	rows := make([]models.GroupRow, 0, len(conditions)*2)
	for c, cond := range conditions {
		for k, s := range statuses {
			if counts[c][k] > 0 {
				rows = append(rows, models.GroupRow{Group: cond.name, Label: cond.name, Status: s, Count: counts[c][k]})
			}
		}
	}
	return rows
}

// AgeHistogram bins ages into HistogramBins equal-width bins spanning the
// view's age range and counts each bin per no-show status. Every bin is
// emitted for both statuses. A view holding a single distinct age yields one bin.
func AgeHistogram(v models.View) []models.HistogramRow {
	if v.Len() == 0 {
		return []models.HistogramRow{}
	}

	lo, hi := v.At(0).Age, v.At(0).Age
	for i := 1; i < v.Len(); i++ {
		age := v.At(i).Age
		if age < lo {
			lo = age
		}
		if age > hi {
			hi = age
		}
	}

	bins := HistogramBins
	if lo == hi {
		bins = 1
	}

	counts := make([][2]int, bins)
	for i := 0; i < v.Len(); i++ {
		a := v.At(i)
		b := 0
		if hi > lo {
			// integer arithmetic keeps ages on a bin edge in the upper bin
			b = (a.Age - lo) * bins / (hi - lo)
			if b >= bins {
				b = bins - 1
			}
		}
		counts[b][statusIndex(a)]++
	}

	rows := make([]models.HistogramRow, 0, bins*2)
	for b := 0; b < bins; b++ {
		from := binEdge(lo, hi, b, bins)
		to := binEdge(lo, hi, b+1, bins)
		if bins == 1 {
			to = float64(hi)
		}
		for k, s := range statuses {
			rows = append(rows, models.HistogramRow{Bin: b, Lo: from, Hi: to, Status: s, Count: counts[b][k]})
		}
	}
	return rows
}

// binEdge is the lower edge of bin b. The division is done last so edges that
// fall on whole ages are exact.
func binEdge(lo, hi, b, bins int) float64 {
	return float64(lo) + float64(b*(hi-lo))/float64(bins)
}
