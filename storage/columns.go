package storage

import (
	"fmt"
	"strings"

	"noshow-dashboard/models"
)

// Source column names, as published in the Kaggle appointment dataset.
const (
	colPatientID      = "PatientId"
	colAppointmentID  = "AppointmentID"
	colGender         = "Gender"
	colScheduledDay   = "ScheduledDay"
	colAppointmentDay = "AppointmentDay"
	colAge            = "Age"
	colNeighbourhood  = "Neighbourhood"
	colScholarship    = "Scholarship"
	colHipertension   = "Hipertension"
	colDiabetes       = "Diabetes"
	colAlcoholism     = "Alcoholism"
	colHandcap        = "Handcap"
	colSMSReceived    = "SMS_received"
	colNoShow         = "No-show"
)

// RequiredColumns must be present in every tabular source.
var RequiredColumns = []string{
	colGender, colAge, colNeighbourhood, colNoShow, colScheduledDay, colAppointmentDay,
}

// SourceColumns is the full header in source order.
var SourceColumns = []string{
	colPatientID, colAppointmentID, colGender, colScheduledDay, colAppointmentDay,
	colAge, colNeighbourhood, colScholarship, colHipertension, colDiabetes,
	colAlcoholism, colHandcap, colSMSReceived, colNoShow,
}

// header maps column names to their positions in one source.
type header map[string]int

// parseHeader indexes a header row and checks the required columns.
func parseHeader(source string, row []string) (header, error) {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := h[col]; !ok {
			return nil, &models.LoadError{Source: source, Column: col, Err: models.ErrMissingColumn}
		}
	}
	return h, nil
}

func (h header) cell(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// decode turns one data row into a RawAppointment. Short rows are padded
// with empty cells.
func (h header) decode(rowNum int, row []string) *models.RawAppointment {
	return &models.RawAppointment{
		Row:            rowNum,
		PatientID:      h.cell(row, colPatientID),
		AppointmentID:  h.cell(row, colAppointmentID),
		Gender:         h.cell(row, colGender),
		ScheduledDay:   h.cell(row, colScheduledDay),
		AppointmentDay: h.cell(row, colAppointmentDay),
		Age:            h.cell(row, colAge),
		Neighbourhood:  h.cell(row, colNeighbourhood),
		Scholarship:    h.cell(row, colScholarship),
		Hipertension:   h.cell(row, colHipertension),
		Diabetes:       h.cell(row, colDiabetes),
		Alcoholism:     h.cell(row, colAlcoholism),
		Handcap:        h.cell(row, colHandcap),
		SMSReceived:    h.cell(row, colSMSReceived),
		NoShow:         h.cell(row, colNoShow),
	}
}

func emptySourceError(source string) error {
	return &models.LoadError{Source: source, Err: fmt.Errorf("no header row")}
}
