package storage

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"noshow-dashboard/models"
)

// XLSXReader reads raw appointments from the first worksheet holding the
// required header.
type XLSXReader struct {
	path string
}

// NewXLSXReader creates a reader for the workbook at path.
func NewXLSXReader(path string) *XLSXReader {
	return &XLSXReader{path: path}
}

// ReadRaw opens the workbook and decodes every data row.
func (r *XLSXReader) ReadRaw(ctx context.Context) ([]*models.RawAppointment, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, &models.LoadError{Source: r.path, Err: err}
	}
	defer f.Close()

	var lastErr error = emptySourceError(r.path)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			lastErr = &models.LoadError{Source: r.path, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
			continue
		}
		if len(rows) == 0 {
			continue
		}
		h, err := parseHeader(r.path, rows[0])
		if err != nil {
			lastErr = err
			continue
		}

		raw := make([]*models.RawAppointment, 0, len(rows)-1)
		for i, row := range rows[1:] {
			if i%10000 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, &models.LoadError{Source: r.path, Row: i + 2, Err: err}
				}
			}
			raw = append(raw, h.decode(i+2, row))
		}
		return raw, nil
	}
	return nil, lastErr
}
