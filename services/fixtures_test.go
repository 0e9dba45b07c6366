package services

import (
	"time"

	"noshow-dashboard/models"
	"noshow-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

var monday = time.Date(2016, 4, 25, 0, 0, 0, 0, time.UTC)

func appt(gender string, age int, hood string, noShow bool) models.Appointment {
	a := models.Appointment{
		Gender:        gender,
		Age:           age,
		Neighborhood:  hood,
		NoShow:        noShow,
		ScheduledAt:   monday.Add(-48 * time.Hour),
		AppointmentAt: monday,
	}
	a.Derive()
	return a
}

// scenarioDataset is three female attenders aged 30/40/50 and two male
// no-shows aged 20/60.
func scenarioDataset() models.Dataset {
	return models.Dataset{
		appt("F", 30, "JARDIM DA PENHA", false),
		appt("F", 40, "JARDIM CAMBURI", false),
		appt("F", 50, "CENTRO", false),
		appt("M", 20, "CENTRO", true),
		appt("M", 60, "MARIA ORTIZ", true),
	}
}

func ages(v models.View) []int {
	out := make([]int, v.Len())
	for i := range out {
		out[i] = v.At(i).Age
	}
	return out
}
