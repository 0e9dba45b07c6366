package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"noshow-dashboard/models"
)

func TestApplyScenario(t *testing.T) {
	data := scenarioDataset()

	tests := []struct {
		name   string
		filter models.FilterState
		want   []int
	}{
		{"unconstrained", models.FilterState{}, []int{30, 40, 50, 20, 60}},
		{"full slider", models.FilterState{Age: []int{0, 100}}, []int{30, 40, 50, 20, 60}},
		{"female", models.FilterState{Gender: "F"}, []int{30, 40, 50}},
		{"male", models.FilterState{Gender: "M"}, []int{20, 60}},
		{"age 25-45", models.FilterState{Age: []int{25, 45}}, []int{30, 40}},
		{"inclusive bounds", models.FilterState{Age: []int{40, 50}}, []int{40, 50}},
		{"neighborhood", models.FilterState{Neighborhood: "CENTRO"}, []int{50, 20}},
		{"conjunction", models.FilterState{Gender: "M", Neighborhood: "CENTRO"}, []int{20}},
		{"no match", models.FilterState{Gender: "F", Age: []int{55, 100}}, []int{}},
		{"exact neighborhood only", models.FilterState{Neighborhood: "centro"}, []int{}},
		{"prefix is not a match", models.FilterState{Neighborhood: "JARDIM"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ages(Apply(data, tt.filter)))
		})
	}
}

func TestApplyMalformedAgeIsUnconstrained(t *testing.T) {
	data := scenarioDataset()

	for _, age := range [][]int{{}, {30}, {10, 20, 30}, {60, 20}} {
		v := Apply(data, models.FilterState{Gender: "F", Age: age})
		assert.Equal(t, []int{30, 40, 50}, ages(v), "age=%v", age)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	data := scenarioDataset()
	filters := []models.FilterState{
		{},
		{Gender: "F"},
		{Age: []int{25, 45}},
		{Gender: "M", Neighborhood: "CENTRO", Age: []int{0, 100}},
		{Age: []int{9, 1}},
	}

	for _, f := range filters {
		once := Apply(data, f)
		twice := ApplyView(once, f)
		assert.Equal(t, once.Indices(), twice.Indices(), "filter %+v", f)
	}
}

func TestApplyIsPure(t *testing.T) {
	data := scenarioDataset()
	f := models.FilterState{Gender: "F", Age: []int{25, 45}}

	first := Apply(data, f).Indices()
	Apply(data, models.FilterState{Gender: "M"})
	assert.Equal(t, first, Apply(data, f).Indices())
}

func TestApplyConjunctiveNarrowing(t *testing.T) {
	data := scenarioDataset()

	pairs := []struct {
		loose, strict models.FilterState
	}{
		{models.FilterState{}, models.FilterState{Gender: "F"}},
		{models.FilterState{Gender: "F"}, models.FilterState{Gender: "F", Neighborhood: "CENTRO"}},
		{models.FilterState{Age: []int{0, 100}}, models.FilterState{Age: []int{25, 45}}},
		{models.FilterState{Neighborhood: "CENTRO"}, models.FilterState{Neighborhood: "CENTRO", Age: []int{30, 60}}},
	}

	for _, p := range pairs {
		assert.LessOrEqual(t, Apply(data, p.strict).Len(), Apply(data, p.loose).Len(), "%+v vs %+v", p.strict, p.loose)
	}
}

func TestApplyUnconstrainedKeepsOutOfRangeAges(t *testing.T) {
	data := models.Dataset{appt("F", -1, "X", false), appt("M", 115, "X", true)}
	assert.Equal(t, 2, Apply(data, models.FilterState{}).Len())
	assert.Equal(t, 0, Apply(data, models.FilterState{Age: []int{0, 100}}).Len())
}
