package services

import (
	"fmt"
	"io"
	"strings"

	"noshow-dashboard/models"
)

// ReportPrinter renders a recomputed dashboard as a terminal report.
type ReportPrinter struct {
	out   io.Writer
	color bool
}

// NewReportPrinter creates a printer writing to out. color enables ANSI styling.
func NewReportPrinter(out io.Writer, color bool) *ReportPrinter {
	return &ReportPrinter{out: out, color: color}
}

func (p *ReportPrinter) style(code, s string) string {
	if !p.color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Print writes the KPIs, every chart table and the delay summary.
func (p *ReportPrinter) Print(r *models.Dashboard, delay *models.BoxStats) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Fprintf(p.out, "\n%s\n", p.style("1;35", sep))
	fmt.Fprintf(p.out, "%s\n", p.style("1;35", "  MEDICAL APPOINTMENT DASHBOARD"))
	fmt.Fprintf(p.out, "  Filter: %s\n", describeFilter(r.Filter))
	fmt.Fprintf(p.out, "%s\n\n", p.style("1;35", sep))

	for _, k := range r.KPIs {
		fmt.Fprintf(p.out, "  %-20s : %s\n", k.Title, p.style("1", k.Value))
	}
	fmt.Fprintln(p.out)

	for i := range r.Charts {
		c := &r.Charts[i]
		fmt.Fprintf(p.out, "%s\n", p.style("1;33", "  "+c.Title))
		fmt.Fprintf(p.out, "  %s\n", thin)
		p.printChart(c)
		fmt.Fprintln(p.out)
	}

	if delay != nil {
		fmt.Fprintf(p.out, "%s\n", p.style("1;33", "  Scheduling delay (days)"))
		fmt.Fprintf(p.out, "  %s\n", thin)
		fmt.Fprintf(p.out, "  min %.0f | q1 %.1f | median %.1f | q3 %.1f | max %.0f\n",
			delay.Min, delay.Q1, delay.Median, delay.Q3, delay.Max)
	}

	fmt.Fprintf(p.out, "\n%s\n\n", p.style("1;35", sep))
}

func (p *ReportPrinter) printChart(c *models.Chart) {
	if c.Empty {
		fmt.Fprintf(p.out, "  No data\n")
		return
	}
	switch {
	case len(c.Boxes) > 0:
		for _, b := range c.Boxes {
			fmt.Fprintf(p.out, "  %-4s n=%-7d min %.0f | q1 %.1f | median %.1f | q3 %.1f | max %.0f\n",
				b.Status, b.N, b.Min, b.Q1, b.Median, b.Q3, b.Max)
		}
	case len(c.Histogram) > 0:
		for _, h := range c.Histogram {
			if h.Count == 0 {
				continue
			}
			fmt.Fprintf(p.out, "  [%5.1f, %5.1f) %-4s %s (%d)\n", h.Lo, h.Hi, h.Status, bar(h.Count, c.Histogram), h.Count)
		}
	case len(c.Groups) > 0:
		for _, g := range c.Groups {
			fmt.Fprintf(p.out, "  %-28s %-4s %d\n", truncate(g.Group, 28), g.Status, g.Count)
		}
	default:
		for _, r := range c.Counts {
			fmt.Fprintf(p.out, "  %-12s %d\n", r.Label, r.Count)
		}
	}
}

func describeFilter(f models.FilterState) string {
	parts := make([]string, 0, 3)
	if f.Gender != "" {
		parts = append(parts, "gender="+f.Gender)
	}
	if f.Neighborhood != "" {
		parts = append(parts, "neighborhood="+f.Neighborhood)
	}
	if r, ok := f.AgeRange(); ok {
		parts = append(parts, fmt.Sprintf("age=[%d, %d]", r.Lo, r.Hi))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// bar scales count against the largest histogram cell to at most 30 blocks.
func bar(count int, rows []models.HistogramRow) string {
	max := 0
	for _, r := range rows {
		if r.Count > max {
			max = r.Count
		}
	}
	if max == 0 {
		return ""
	}
	n := count * 30 / max
	if n == 0 && count > 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
