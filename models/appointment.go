package models

import (
	"errors"
	"fmt"
	"time"
)

// Gender codes as they appear in the source dataset.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// No-show labels. "Yes" means the patient did not attend.
const (
	StatusNo  = "No"
	StatusYes = "Yes"
)

// RawAppointment holds one unparsed row of the source table.
// Readers fill it column by column before any typing or derivation.
type RawAppointment struct {
	Row            int
	PatientID      string
	AppointmentID  string
	Gender         string
	ScheduledDay   string
	AppointmentDay string
	Age            string
	Neighbourhood  string
	Scholarship    string
	Hipertension   string
	Diabetes       string
	Alcoholism     string
	Handcap        string
	SMSReceived    string
	NoShow         string
}

// Appointment is the typed record shared read-only by every recomputation.
type Appointment struct {
	PatientID     string
	AppointmentID int64
	Gender        string
	ScheduledAt   time.Time
	AppointmentAt time.Time
	Age           int
	Neighborhood  string
	Scholarship   bool
	Hypertension  bool
	Diabetes      bool
	Alcoholism    bool
	Handicap      int
	SMSReceived   bool
	NoShow        bool

	// Derived once at load.
	Weekday   string
	DelayDays int
}

// Derive fills the computed columns from the two timestamps.
func (a *Appointment) Derive() {
	a.Weekday = a.AppointmentAt.Weekday().String()
	a.DelayDays = floorDays(a.AppointmentAt.Sub(a.ScheduledAt))
}

// Status returns the no-show label used by every attendance-colored chart.
func (a *Appointment) Status() string {
	if a.NoShow {
		return StatusYes
	}
	return StatusNo
}

func floorDays(d time.Duration) int {
	const day = 24 * time.Hour
	n := d / day
	if d%day < 0 {
		n--
	}
	return int(n)
}

// Dataset is the ordered, load-once collection of appointments.
// It is never mutated after the loader returns it.
type Dataset []Appointment

// Neighborhoods returns the distinct neighborhoods in first-seen order.
func (d Dataset) Neighborhoods() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range d {
		n := d[i].Neighborhood
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// View is a logical subset of a Dataset: an index list into the parent rows.
// Rows are never copied.
type View struct {
	data    Dataset
	indices []int
	all     bool
}

// NewView returns a view over every row of d.
func NewView(d Dataset) View {
	return View{data: d, all: true}
}

// NewSubView returns a view restricted to the given row indices of d.
func NewSubView(d Dataset, indices []int) View {
	return View{data: d, indices: indices}
}

// Len returns the number of rows in the view.
func (v View) Len() int {
	if v.all {
		return len(v.data)
	}
	return len(v.indices)
}

// At returns the i-th row of the view.
func (v View) At(i int) *Appointment {
	if v.all {
		return &v.data[i]
	}
	return &v.data[v.indices[i]]
}

// Index maps the i-th row of the view to its position in the dataset.
func (v View) Index(i int) int {
	if v.all {
		return i
	}
	return v.indices[i]
}

// Dataset returns the parent dataset of the view.
func (v View) Dataset() Dataset {
	return v.data
}

// Indices returns the dataset positions covered by the view.
func (v View) Indices() []int {
	out := make([]int, v.Len())
	for i := range out {
		out[i] = v.Index(i)
	}
	return out
}

// AgeRange is a closed age interval; both bounds inclusive.
type AgeRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Contains reports whether age lies within the interval.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Lo && age <= r.Hi
}

// Default slider bounds of the age filter.
const (
	AgeSliderMin = 0
	AgeSliderMax = 100
)

// FilterState is the immutable input tuple of one recomputation.
// Empty Gender or Neighborhood means unconstrained. Age carries the raw
// slider payload; anything other than an ordered pair is unconstrained.
type FilterState struct {
	Gender       string `json:"gender"`
	Neighborhood string `json:"neighborhood"`
	Age          []int  `json:"age"`
}

// ErrMalformedFilter describes an age interval that is not an ordered pair.
// Callers recover by treating the dimension as unconstrained.
var ErrMalformedFilter = errors.New("malformed filter input")

// AgeRange returns the age constraint, or false when the dimension is
// unconstrained. A malformed payload also yields false.
func (f FilterState) AgeRange() (AgeRange, bool) {
	r, err := f.ParseAge()
	if err != nil || r == nil {
		return AgeRange{}, false
	}
	return *r, true
}

// ParseAge validates the age payload. A nil range with a nil error means no
// age constraint was given.
func (f FilterState) ParseAge() (*AgeRange, error) {
	if f.Age == nil {
		return nil, nil
	}
	if len(f.Age) != 2 {
		return nil, fmt.Errorf("%w: age range has %d bounds", ErrMalformedFilter, len(f.Age))
	}
	if f.Age[0] > f.Age[1] {
		return nil, fmt.Errorf("%w: age range [%d, %d] is reversed", ErrMalformedFilter, f.Age[0], f.Age[1])
	}
	return &AgeRange{Lo: f.Age[0], Hi: f.Age[1]}, nil
}

// LoadError is returned when the source dataset cannot be turned into a Dataset.
// It is fatal at start-up.
type LoadError struct {
	Source string
	Column string
	Row    int
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d column %q: %v", e.Source, e.Row, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Source, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrMissingColumn marks a required column absent from the source header.
var ErrMissingColumn = errors.New("missing required column")
