package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noshow-dashboard/models"
)

func TestPageURL(t *testing.T) {
	u, err := PageURL("http://localhost:8050/", models.FilterState{
		Gender:       "F",
		Neighborhood: "JARDIM DA PENHA",
		Age:          []int{10, 40},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8050/?age=10%2C40&gender=F&neighborhood=JARDIM+DA+PENHA", u)

	u, err = PageURL("http://localhost:8050/", models.FilterState{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8050/", u)
}

func TestPageURLInvalid(t *testing.T) {
	_, err := PageURL("://bad", models.FilterState{})
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "out/dash.png", OutputPath("out/dash.png", "all", 1))
	assert.Equal(t, "out/dash-male.png", OutputPath("out/dash.png", "male", 3))
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	assert.Equal(t, "/custom/chrome", findChromeBinary("/custom/chrome"))
}
