package services

import (
	"noshow-dashboard/models"
)

// predicate is the compiled form of a FilterState. Zero-valued fields are
// unconstrained dimensions.
type predicate struct {
	gender       string
	neighborhood string
	age          models.AgeRange
	hasAge       bool
}

func compile(f models.FilterState) predicate {
	p := predicate{gender: f.Gender, neighborhood: f.Neighborhood}
	p.age, p.hasAge = f.AgeRange()
	return p
}

func (p predicate) unconstrained() bool {
	return p.gender == "" && p.neighborhood == "" && !p.hasAge
}

func (p predicate) match(a *models.Appointment) bool {
	if p.gender != "" && a.Gender != p.gender {
		return false
	}
	if p.neighborhood != "" && a.Neighborhood != p.neighborhood {
		return false
	}
	if p.hasAge && !p.age.Contains(a.Age) {
		return false
	}
	return true
}

// Apply returns the view of data matching every active constraint of f.
// It is pure: the same inputs always give the same rows, in dataset order.
func Apply(data models.Dataset, f models.FilterState) models.View {
	return ApplyView(models.NewView(data), f)
}

// ApplyView narrows an existing view with f. Re-applying the filter that
// produced v returns the same rows.
func ApplyView(v models.View, f models.FilterState) models.View {
	p := compile(f)
	if p.unconstrained() {
		return v
	}

	n := v.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if p.match(v.At(i)) {
			indices = append(indices, v.Index(i))
		}
	}
	return models.NewSubView(v.Dataset(), indices)
}
