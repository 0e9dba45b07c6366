package server

import (
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"noshow-dashboard/models"
)

const (
	chartWidth  = 1024
	chartHeight = 400
)

var (
	background = hexColor("#222222")
	foreground = hexColor("#0E46A3")
)

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

func barStyle(hex string) chart.Style {
	c := hexColor(hex)
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

func statusStyle(c *models.Chart, status string) chart.Style {
	if hex, ok := c.Colors[status]; ok {
		return barStyle(hex)
	}
	return barStyle(models.StatusColors[status])
}

// renderChart draws one dashboard chart as a bar chart PNG. Grouped tables
// become adjacent No/Yes bars; a box summary becomes its five numbers.
func renderChart(w io.Writer, c *models.Chart) error {
	bars := chartBars(c)
	if len(bars) == 0 {
		bars = []chart.Value{{Label: "no data", Value: 0, Style: barStyle("#222222")}}
	}

	max := 0.0
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
	}
	if max <= 0 {
		max = 1
	}

	bw, spacing := barLayout(len(bars))
	bc := chart.BarChart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontColor: foreground},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   bw,
		BarSpacing: spacing,
		Background: chart.Style{
			FillColor: background,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: background},
		XAxis:  chart.Style{FontColor: foreground, StrokeColor: foreground},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: foreground, StrokeColor: foreground},
			Range: &chart.ContinuousRange{Min: 0, Max: max * 1.1},
		},
		Bars: bars,
	}

	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart: render %s: %w", c.Name, err)
	}
	return nil
}

// barLayout splits the plot width into one slot per bar, two thirds bar
// and one third gap.
func barLayout(n int) (width, spacing int) {
	slot := (chartWidth - 80) / n
	width = slot * 2 / 3
	switch {
	case width > 60:
		width = 60
	case width < 2:
		width = 2
	}
	spacing = slot - width
	if spacing < 1 {
		spacing = 1
	}
	return width, spacing
}

func chartBars(c *models.Chart) []chart.Value {
	var bars []chart.Value
	switch {
	case len(c.Boxes) > 0:
		for _, b := range c.Boxes {
			st := statusStyle(c, b.Status)
			for _, p := range []struct {
				name string
				v    float64
			}{{"min", b.Min}, {"q1", b.Q1}, {"median", b.Median}, {"q3", b.Q3}, {"max", b.Max}} {
				bars = append(bars, chart.Value{Label: b.Status + " " + p.name, Value: p.v, Style: st})
			}
		}
	case len(c.Histogram) > 0:
		for _, h := range c.Histogram {
			label := ""
			if h.Status == models.StatusNo {
				label = fmt.Sprintf("%.0f", h.Lo)
			}
			bars = append(bars, chart.Value{Label: label, Value: float64(h.Count), Style: statusStyle(c, h.Status)})
		}
	case len(c.Groups) > 0:
		for _, g := range c.Groups {
			bars = append(bars, chart.Value{Label: g.Label + " " + g.Status, Value: float64(g.Count), Style: statusStyle(c, g.Status)})
		}
	default:
		for _, r := range c.Counts {
			st, ok := c.Colors[r.Label]
			if !ok {
				st = c.Colors["mid"]
			}
			if st == "" {
				st = models.StatusColors[models.StatusYes]
			}
			bars = append(bars, chart.Value{Label: r.Label, Value: float64(r.Count), Style: barStyle(st)})
		}
	}
	return bars
}
