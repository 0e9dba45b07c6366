package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"noshow-dashboard/models"
)

// CSVReader reads raw appointments from a comma-separated file.
type CSVReader struct {
	path string
}

// NewCSVReader creates a reader for the CSV file at path.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// ReadRaw opens the file and decodes every data row.
func (r *CSVReader) ReadRaw(ctx context.Context) ([]*models.RawAppointment, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, &models.LoadError{Source: r.path, Err: err}
	}
	defer f.Close()

	return ReadCSV(ctx, r.path, f)
}

// ReadCSV decodes raw appointments from any CSV stream. The first row must
// be the header.
func ReadCSV(ctx context.Context, source string, in io.Reader) ([]*models.RawAppointment, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, emptySourceError(source)
	}
	if err != nil {
		return nil, &models.LoadError{Source: source, Err: fmt.Errorf("read header: %w", err)}
	}

	h, err := parseHeader(source, first)
	if err != nil {
		return nil, err
	}

	raw := make([]*models.RawAppointment, 0, 1024)
	for rowNum := 2; ; rowNum++ {
		if rowNum%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &models.LoadError{Source: source, Row: rowNum, Err: err}
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.LoadError{Source: source, Row: rowNum, Err: err}
		}
		raw = append(raw, h.decode(rowNum, row))
	}
	return raw, nil
}
