package server

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"noshow-dashboard/models"
)

// filterFromQuery reads gender, neighborhood and age from the query string.
// age is accepted as "lo,hi" or as two repeated age parameters. Any value
// that does not parse becomes a malformed range, which the filter engine
// treats as unconstrained.
func filterFromQuery(q url.Values) models.FilterState {
	f := models.FilterState{
		Gender:       strings.TrimSpace(q.Get("gender")),
		Neighborhood: q.Get("neighborhood"),
	}

	vals, ok := q["age"]
	if !ok {
		return f
	}
	var parts []string
	for _, v := range vals {
		parts = append(parts, strings.Split(v, ",")...)
	}

	age := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return models.FilterState{Gender: f.Gender, Neighborhood: f.Neighborhood, Age: []int{}}
		}
		age = append(age, n)
	}
	f.Age = age
	return f
}

// ageFromJSON decodes a websocket age value. Absent or null means no age
// constraint; anything other than a list of integers is malformed.
func ageFromJSON(raw json.RawMessage) []int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var vals []interface{}
	if err := dec.Decode(&vals); err != nil {
		return []int{}
	}

	age := make([]int, 0, len(vals))
	for _, v := range vals {
		n, ok := v.(json.Number)
		if !ok {
			return []int{}
		}
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return []int{}
		}
		age = append(age, i)
	}
	return age
}
