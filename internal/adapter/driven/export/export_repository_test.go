package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *entity.TimeSeriesTable {
	t.Helper()
	table, err := billing.Build([][]byte{[]byte(`[
		{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-03T00:00:00-08:00","cost":{"amount":"1.5","currency":"USD"}},
		{"lineItemId":"com.google.cloud/services/bigquery/Storage","endTime":"2014-02-04T00:00:00-08:00","cost":{"amount":"2","currency":"USD"}},
		{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-04T00:00:00-08:00","cost":{"amount":"3","currency":"USD"}}
	]`)})
	require.NoError(t, err)
	return table
}

func newTestRepository() *ExportRepositoryImpl {
	fixed := time.Date(2014, 2, 5, 8, 30, 0, 0, time.UTC)
	return &ExportRepositoryImpl{now: func() time.Time { return fixed }}
}

func TestExportTableToCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := newTestRepository().ExportTableToCSV(sampleTable(t), "demo", "demo_report", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "demo_report_20140205_083000.csv"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"Date", "compute-engine/Vm", "bigquery/Storage", "Cloud/bigquery", "Cloud/compute-engine", "Total"}, records[0])
	assert.Equal(t, []string{"2014-02-03", "1.5", "", "0", "1.5", "1.5"}, records[1])
	assert.Equal(t, []string{"2014-02-04", "3", "2", "2", "3", "5"}, records[2])
	assert.Equal(t, []string{"Total", "4.5", "2", "2", "4.5", "6.5"}, records[3])
}

func TestExportTableToJSON(t *testing.T) {
	path, err := newTestRepository().ExportTableToJSON(sampleTable(t), "demo", "demo_report", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report tableReport
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, "demo", report.Project)
	assert.Equal(t, "2014-02-05T08:30:00Z", report.GeneratedAt)
	assert.Equal(t, []string{"Cloud/bigquery", "Cloud/compute-engine"}, report.Rollups)
	require.Len(t, report.Rows, 2)
	_, present := report.Rows[0].Cells["bigquery/Storage"]
	assert.False(t, present, "missing cells are omitted")
	assert.Equal(t, "5", report.Rows[1].Total)
	assert.Equal(t, "4.5", report.Totals["Cloud/compute-engine"])
	assert.Equal(t, "6.5", report.Total)
}

func TestExportTableToPDF(t *testing.T) {
	repo := newTestRepository()
	path, err := repo.ExportTableToPDF(sampleTable(t), "demo", "demo_report", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	_, err = repo.ExportTableToPDF(entity.NewTimeSeriesTable(), "empty", "empty_report", t.TempDir())
	assert.NoError(t, err)
}

func TestGenerateFilenameCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	path, err := newTestRepository().generateFilename("base", dir, "csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "base_20140205_083000.csv"), path)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCleanRichTags(t *testing.T) {
	assert.Equal(t, "ok", cleanRichTags("[green]ok[/]"))
	assert.Equal(t, "red", cleanRichTags("\x1b[31mred\x1b[0m"))
}
