package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"noshow-dashboard/config"
	"noshow-dashboard/models"
)

func TestRecomputeScenario(t *testing.T) {
	d := NewDashboard(scenarioDataset(), newTestLogger())

	out := d.Recompute(models.FilterState{Gender: "F"})
	assert.Equal(t, models.Summary{Total: 3, NoShow: 0, Show: 3}, out.Summary)
	assert.Equal(t, []models.KPI{
		{Title: KPITotal, Value: "3"},
		{Title: KPINoShow, Value: "0"},
		{Title: KPIShow, Value: "3"},
	}, out.KPIs)

	split := out.Chart(models.ChartAttendance)
	require.NotNil(t, split)
	assert.Equal(t, []models.CountRow{{Label: "No", Count: 3}}, split.Counts)
	assert.Equal(t, "#9AC8CD", split.Colors["No"])
	assert.Equal(t, "#0E46A3", split.Colors["Yes"])
	assert.Len(t, out.Charts, len(models.ChartNames))
}

func TestRecomputeEmptyView(t *testing.T) {
	d := NewDashboard(scenarioDataset(), newTestLogger())

	out := d.Recompute(models.FilterState{Neighborhood: "NOWHERE"})
	assert.Equal(t, 0, out.Summary.Total)
	for _, c := range out.Charts {
		assert.True(t, c.Empty, c.Name)
		assert.NotEmpty(t, c.Title, c.Name)
	}
	assert.Equal(t, TitleAgeBoxEmpty, out.Chart(models.ChartAgeBox).Title)
	assert.Equal(t, TitleAgeHistogramEmpty, out.Chart(models.ChartAgeHistogram).Title)
}

func TestFormatCountGroupsThousands(t *testing.T) {
	d := NewDashboard(nil, newTestLogger())
	assert.Equal(t, "0", d.FormatCount(0))
	assert.Equal(t, "999", d.FormatCount(999))
	assert.Equal(t, "110,527", d.FormatCount(110527))
	assert.Equal(t, "1,234,567", d.FormatCount(1234567))
}

func TestOptions(t *testing.T) {
	opts := NewDashboard(scenarioDataset(), newTestLogger()).Options()
	assert.Equal(t, []string{"CENTRO", "JARDIM CAMBURI", "JARDIM DA PENHA", "MARIA ORTIZ"}, opts.Neighborhoods)
	assert.Equal(t, 0, opts.AgeMin)
	assert.Equal(t, 100, opts.AgeMax)
	assert.Len(t, opts.Genders, 2)
}

func TestBinderPublishesLatest(t *testing.T) {
	b := NewBinder(NewDashboard(scenarioDataset(), newTestLogger()))
	require.NotNil(t, b.Current())
	assert.Equal(t, 5, b.Current().Summary.Total)

	out, ok := b.Update(models.FilterState{Gender: "M"})
	require.True(t, ok)
	assert.Same(t, out, b.Current())
	assert.Equal(t, 2, b.Current().Summary.Total)
}

func TestBinderDropsStaleSequence(t *testing.T) {
	b := NewBinder(NewDashboard(scenarioDataset(), newTestLogger()))

	_, ok := b.UpdateSeq(10, models.FilterState{Gender: "F"})
	require.True(t, ok)

	out, ok := b.UpdateSeq(4, models.FilterState{Gender: "M"})
	assert.False(t, ok)
	assert.Nil(t, out)
	assert.Equal(t, uint64(10), b.Current().Seq)
	assert.Equal(t, 3, b.Current().Summary.Total)
}

func TestBinderConcurrentUpdatesNeverMix(t *testing.T) {
	b := NewBinder(NewDashboard(scenarioDataset(), newTestLogger()))
	filters := []models.FilterState{{Gender: "F"}, {Gender: "M"}, {Age: []int{25, 45}}, {}}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Update(filters[i%len(filters)])
		}(i)
	}
	wg.Wait()

	cur := b.Current()
	require.NotNil(t, cur)
	want := NewDashboard(scenarioDataset(), newTestLogger()).Recompute(cur.Filter)
	assert.Equal(t, want.Summary, cur.Summary)
	assert.Equal(t, want.Charts, cur.Charts)
}

func TestReportPrinter(t *testing.T) {
	d := NewDashboard(scenarioDataset(), newTestLogger())
	f := models.FilterState{Gender: "F", Age: []int{0, 100}}
	out := d.Recompute(f)
	delay, _ := DelayStats(Apply(d.Dataset(), f))

	var buf bytes.Buffer
	NewReportPrinter(&buf, false).Print(out, &delay)
	text := buf.String()

	assert.Contains(t, text, "gender=F age=[0, 100]")
	assert.Contains(t, text, "Total Appointments")
	assert.Contains(t, text, TitleConditions)
	assert.Contains(t, text, "Scheduling delay")
	assert.NotContains(t, text, "\033[")
}

func TestTruncateKeepsWholeRunes(t *testing.T) {
	assert.Equal(t, "CENTRO", truncate("CENTRO", 28))
	assert.Equal(t, "SÃO CRISTÓ...", truncate("SÃO CRISTÓVÃO DO NORTE", 13))
	assert.Equal(t, "ÁÉÍÓÚ", truncate("ÁÉÍÓÚ", 5))
}

func TestLoaderReadsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appointments.csv")
	body := strings.Join([]string{
		"PatientId,AppointmentID,Gender,ScheduledDay,AppointmentDay,Age,Neighbourhood,Scholarship,Hipertension,Diabetes,Alcoholism,Handcap,SMS_received,No-show",
		"29872499824296,5642903,F,2016-04-29T18:38:08Z,2016-04-29T00:00:00Z,62,JARDIM DA PENHA,0,1,0,0,0,0,No",
		"558997776694438,5642503,M,2016-04-29T16:08:27Z,2016-04-29T00:00:00Z,56,JARDIM DA PENHA,0,0,0,0,0,0,Yes",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg := &config.Config{DatasetPath: path, DatasetSource: config.SourceCSV}
	data, err := NewLoader(cfg, newTestLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.True(t, data[1].NoShow)
	assert.Equal(t, "Friday", data[0].Weekday)
}

func TestLoaderMissingFile(t *testing.T) {
	cfg := &config.Config{DatasetPath: filepath.Join(t.TempDir(), "nope.csv"), DatasetSource: config.SourceCSV}
	_, err := NewLoader(cfg, newTestLogger()).Load(context.Background())

	var le *models.LoadError
	assert.ErrorAs(t, err, &le)
}

type mockDatasetReader struct {
	mock.Mock
}

func (m *mockDatasetReader) FetchAll(ctx context.Context) (models.Dataset, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(models.Dataset)
	return data, args.Error(1)
}

func (m *mockDatasetReader) Close() error {
	return m.Called().Error(0)
}

func TestLoaderLoadDatasetClosesSource(t *testing.T) {
	ctx := context.Background()
	r := &mockDatasetReader{}
	r.On("FetchAll", ctx).Return(scenarioDataset(), nil).Once()
	r.On("Close").Return(nil).Once()

	data, err := NewLoader(&config.Config{}, newTestLogger()).LoadDataset(ctx, r)
	require.NoError(t, err)
	assert.Len(t, data, 5)
	r.AssertExpectations(t)
}

func TestLoaderLoadDatasetPassesLoadError(t *testing.T) {
	ctx := context.Background()
	r := &mockDatasetReader{}
	r.On("FetchAll", ctx).Return(nil, &models.LoadError{Source: "postgres:appointments", Row: 3, Err: errors.New("bad scan")}).Once()
	r.On("Close").Return(nil).Once()

	_, err := NewLoader(&config.Config{}, newTestLogger()).LoadDataset(ctx, r)
	var le *models.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.Row)
	r.AssertExpectations(t)
}
