package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"noshow-dashboard/models"
	"noshow-dashboard/utils"
)

// timeLayouts are tried in order for the two timestamp columns.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Cleaner transforms RawAppointments into the typed Dataset.
// Timestamps must parse; every other cell is tolerated.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean types every raw row and derives the weekday and delay columns.
// An unparsable timestamp aborts the load with a *models.LoadError.
func (c *Cleaner) Clean(source string, raw []*models.RawAppointment) (models.Dataset, error) {
	data := make(models.Dataset, 0, len(raw))
	var badAges, negativeDelays int

	for _, r := range raw {
		scheduled, err := parseTime(r.ScheduledDay)
		if err != nil {
			return nil, &models.LoadError{Source: source, Column: "ScheduledDay", Row: r.Row, Err: err}
		}
		appointment, err := parseTime(r.AppointmentDay)
		if err != nil {
			return nil, &models.LoadError{Source: source, Column: "AppointmentDay", Row: r.Row, Err: err}
		}

		age, ok := parseInt(r.Age)
		if !ok {
			badAges++
		}

		a := models.Appointment{
			PatientID:     strings.TrimSpace(r.PatientID),
			AppointmentID: parseInt64(r.AppointmentID),
			Gender:        strings.ToUpper(strings.TrimSpace(r.Gender)),
			ScheduledAt:   scheduled,
			AppointmentAt: appointment,
			Age:           age,
			Neighborhood:  r.Neighbourhood,
			Scholarship:   parseFlag(r.Scholarship),
			Hypertension:  parseFlag(r.Hipertension),
			Diabetes:      parseFlag(r.Diabetes),
			Alcoholism:    parseFlag(r.Alcoholism),
			Handicap:      parseLevel(r.Handcap),
			SMSReceived:   parseFlag(r.SMSReceived),
			NoShow:        parseNoShow(r.NoShow),
		}
		a.Derive()
		if a.DelayDays < 0 {
			negativeDelays++
		}
		data = append(data, a)
	}

	if badAges > 0 {
		c.logger.Warn("[cleaner] %d rows with unparsable age kept as 0", badAges)
	}
	c.logger.Debug("[cleaner] %d rows with negative scheduling delay", negativeDelays)
	c.logger.Info("[cleaner] Typed %d appointments from %s", len(data), source)
	return data, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// parseInt accepts integers and integral floats such as "34.0".
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// parseLevel reads the handicap level (0-4 in the source).
func parseLevel(s string) int {
	n, _ := parseInt(s)
	return n
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	default:
		n, ok := parseInt(s)
		return ok && n == 1
	}
}

func parseNoShow(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), models.StatusYes)
}
