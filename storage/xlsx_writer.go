package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"noshow-dashboard/models"
)

// XLSXWriter writes a recomputed dashboard as a workbook, one sheet per chart.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter prepares a writer for path.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{path: path}, nil
}

// Export writes the workbook to the configured path.
func (x *XLSXWriter) Export(d *models.Dashboard) error {
	f, err := os.Create(x.path)
	if err != nil {
		return fmt.Errorf("xlsx: create file %q: %w", x.path, err)
	}
	if err := WriteDashboardXLSX(f, d); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteDashboardXLSX builds the workbook in memory and streams it to out.
func WriteDashboardXLSX(out io.Writer, d *models.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	const first = "Sheet1"
	head, rows := summaryTable(d)
	if err := f.SetSheetName(first, "Summary"); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if err := writeSheet(f, "Summary", "Summary", head, rows, bold); err != nil {
		return err
	}

	for i := range d.Charts {
		c := &d.Charts[i]
		sheet := sheetName(c.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx: new sheet %q: %w", sheet, err)
		}
		head, rows := chartTable(c)
		if err := writeSheet(f, sheet, c.Title, head, rows, bold); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet, title string, head []string, rows [][]string, bold int) error {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return fmt.Errorf("xlsx: %s title: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return fmt.Errorf("xlsx: %s title style: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A2", &head); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return fmt.Errorf("xlsx: %s cell: %w", sheet, err)
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

// sheetName keeps names within Excel's 31 character limit.
func sheetName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
