package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noshow-dashboard/models"
)

func rawRow(row int) *models.RawAppointment {
	return &models.RawAppointment{
		Row:            row,
		PatientID:      "29872499824296",
		AppointmentID:  "5642903",
		Gender:         "F",
		ScheduledDay:   "2016-04-29T18:38:08Z",
		AppointmentDay: "2016-04-29T00:00:00Z",
		Age:            "62",
		Neighbourhood:  "JARDIM DA PENHA",
		Scholarship:    "0",
		Hipertension:   "1",
		Diabetes:       "0",
		Alcoholism:     "0",
		Handcap:        "0",
		SMSReceived:    "0",
		NoShow:         "No",
	}
}

func TestCleanerTypesAndDerives(t *testing.T) {
	c := NewCleaner(newTestLogger())

	data, err := c.Clean("test.csv", []*models.RawAppointment{rawRow(2)})
	require.NoError(t, err)
	require.Len(t, data, 1)

	a := data[0]
	assert.Equal(t, "F", a.Gender)
	assert.Equal(t, 62, a.Age)
	assert.Equal(t, int64(5642903), a.AppointmentID)
	assert.True(t, a.Hypertension)
	assert.False(t, a.NoShow)
	assert.Equal(t, "Friday", a.Weekday)
	assert.Equal(t, -1, a.DelayDays, "same-day appointment scheduled later that day floors to -1")
}

func TestCleanerDelayDays(t *testing.T) {
	tests := []struct {
		scheduled, appointment string
		want                   int
	}{
		{"2016-04-27T10:00:00Z", "2016-04-29T00:00:00Z", 1},
		{"2016-04-27T00:00:00Z", "2016-04-29T00:00:00Z", 2},
		{"2016-04-29 00:00:00", "2016-04-29", 0},
		{"2016-05-10T08:00:00Z", "2016-05-09T00:00:00Z", -2},
	}

	c := NewCleaner(newTestLogger())
	for _, tt := range tests {
		r := rawRow(2)
		r.ScheduledDay, r.AppointmentDay = tt.scheduled, tt.appointment
		data, err := c.Clean("test.csv", []*models.RawAppointment{r})
		require.NoError(t, err)
		assert.Equal(t, tt.want, data[0].DelayDays, "%s -> %s", tt.scheduled, tt.appointment)
	}
}

func TestCleanerToleratesOddCells(t *testing.T) {
	r := rawRow(2)
	r.Age = "-1"
	r.Handcap = "3"
	r.NoShow = "yes"
	r.Diabetes = "n/a"

	data, err := NewCleaner(newTestLogger()).Clean("test.csv", []*models.RawAppointment{r})
	require.NoError(t, err)
	assert.Equal(t, -1, data[0].Age)
	assert.Equal(t, 3, data[0].Handicap)
	assert.True(t, data[0].NoShow)
	assert.False(t, data[0].Diabetes)

	r.Age = "unknown"
	data, err = NewCleaner(newTestLogger()).Clean("test.csv", []*models.RawAppointment{r})
	require.NoError(t, err)
	assert.Equal(t, 0, data[0].Age)
}

func TestCleanerRejectsBadTimestamp(t *testing.T) {
	r := rawRow(7)
	r.AppointmentDay = "next tuesday"

	_, err := NewCleaner(newTestLogger()).Clean("test.csv", []*models.RawAppointment{rawRow(2), r})
	require.Error(t, err)

	var le *models.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "AppointmentDay", le.Column)
	assert.Equal(t, 7, le.Row)
}

func TestParseTimeLayouts(t *testing.T) {
	want := time.Date(2016, 4, 29, 18, 38, 8, 0, time.UTC)
	for _, s := range []string{"2016-04-29T18:38:08Z", "2016-04-29 18:38:08"} {
		got, err := parseTime(s)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), s)
	}
}
