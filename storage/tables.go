package storage

import (
	"strconv"

	"noshow-dashboard/models"
)

// chartTable flattens one chart into a header and string rows.
func chartTable(c *models.Chart) ([]string, [][]string) {
	switch {
	case len(c.Boxes) > 0:
		rows := make([][]string, 0, len(c.Boxes))
		for _, b := range c.Boxes {
			rows = append(rows, []string{
				b.Status, strconv.Itoa(b.N), ftoa(b.Min), ftoa(b.Q1), ftoa(b.Median), ftoa(b.Q3), ftoa(b.Max),
			})
		}
		return []string{"No-show", "N", "Min", "Q1", "Median", "Q3", "Max"}, rows
	case len(c.Histogram) > 0:
		rows := make([][]string, 0, len(c.Histogram))
		for _, h := range c.Histogram {
			rows = append(rows, []string{
				strconv.Itoa(h.Bin), ftoa(h.Lo), ftoa(h.Hi), h.Status, strconv.Itoa(h.Count),
			})
		}
		return []string{"Bin", "From", "To", "No-show", "Count"}, rows
	case len(c.Groups) > 0:
		rows := make([][]string, 0, len(c.Groups))
		for _, g := range c.Groups {
			rows = append(rows, []string{g.Group, g.Label, g.Status, strconv.Itoa(g.Count)})
		}
		return []string{"Group", "Label", "No-show", "Count"}, rows
	default:
		rows := make([][]string, 0, len(c.Counts))
		for _, r := range c.Counts {
			rows = append(rows, []string{r.Label, strconv.Itoa(r.Count)})
		}
		return []string{"Category", "Count"}, rows
	}
}

func summaryTable(d *models.Dashboard) ([]string, [][]string) {
	rows := make([][]string, 0, len(d.KPIs))
	for _, k := range d.KPIs {
		rows = append(rows, []string{k.Title, k.Value})
	}
	return []string{"Metric", "Value"}, rows
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
