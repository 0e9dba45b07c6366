package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"noshow-dashboard/models"
)

// CSVWriter writes a recomputed dashboard as one long CSV table:
// chart, title, then the chart's own columns.
// It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
}

// NewCSVWriter prepares a writer for path. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Export truncates the file and writes the dashboard to it.
func (c *CSVWriter) Export(d *models.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	if err := WriteDashboardCSV(f, d); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteDashboardCSV streams the KPIs and every chart table to out.
func WriteDashboardCSV(out io.Writer, d *models.Dashboard) error {
	w := csv.NewWriter(out)

	write := func(name, title string, head []string, rows [][]string) error {
		if err := w.Write(append([]string{"chart", "title"}, head...)); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
		for _, row := range rows {
			if err := w.Write(append([]string{name, title}, row...)); err != nil {
				return fmt.Errorf("csv: write row: %w", err)
			}
		}
		return nil
	}

	head, rows := summaryTable(d)
	if err := write("summary", "Summary", head, rows); err != nil {
		return err
	}
	for i := range d.Charts {
		c := &d.Charts[i]
		head, rows := chartTable(c)
		if err := write(c.Name, c.Title, head, rows); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
