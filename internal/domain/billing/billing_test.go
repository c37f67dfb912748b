package billing

import (
	"testing"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalLineItem(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"com.google.cloud/services/compute-engine/VmimageN1Standard_1", "compute-engine/VmimageN1Standard_1"},
		{"compute-engine/Network", "compute-engine/Network"},
		{"", ""},
		{"x/com.google.cloud/services/y", "x/com.google.cloud/services/y"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalLineItem(tt.raw))
	}
	assert.Equal(t, "compute-engine", Product("compute-engine/Network"))
	assert.Equal(t, "bigquery", Product("bigquery"))
}

func TestParseObjectName(t *testing.T) {
	project, date, err := ParseObjectName("exports/google-platform-demo-2014-02-04.json")
	require.NoError(t, err)
	assert.Equal(t, "google-platform-demo", project)
	assert.Equal(t, time.Date(2014, 2, 4, 0, 0, 0, 0, time.UTC), date)

	for _, name := range []string{"README.md", "demo.json", "demo-2014-13-01.json", "demo-2014-02-04.csv", "-2014-02-04.json"} {
		_, _, err := ParseObjectName(name)
		assert.Error(t, err, name)
	}

	assert.Equal(t, "exports/demo-2014-02-04.json", ObjectName("exports/", "demo", date))
}

func TestParseEndTime(t *testing.T) {
	want := time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, v := range []string{"2014-02-01T00:00:00-08:00", "2014-02-01T00:00:00+05:30", "2014-02-01T00:00:00Z", "2014-02-01T00:00:00"} {
		got, err := ParseEndTime(v)
		require.NoError(t, err, v)
		assert.Equal(t, want, got, v)
	}
	_, err := ParseEndTime("yesterday")
	assert.Error(t, err)
}

func record(end, item, amount string) string {
	return `{"lineItemId":"com.google.cloud/services/` + item + `","endTime":"` + end + `T00:00:00-08:00","cost":{"amount":"` + amount + `","currency":"USD"}}`
}

func object(records ...string) []byte {
	out := "["
	for i, r := range records {
		if i > 0 {
			out += ","
		}
		out += r
	}
	return []byte(out + "]")
}

func TestBuilderColumnStability(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddObject(object(
		record("2014-02-01", "compute-engine/Vm", "1.5"),
		record("2014-02-01", "cloud-storage/Storage", "0.25"),
	)))
	require.NoError(t, b.AddObject(object(
		record("2014-02-02", "cloud-storage/Storage", "0.5"),
		record("2014-02-02", "bigquery/Analysis", "3"),
		record("2014-02-02", "compute-engine/Vm", "2"),
	)))

	tbl := b.Table()
	assert.Equal(t, []string{"compute-engine/Vm", "cloud-storage/Storage", "bigquery/Analysis"}, tbl.Columns)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC), tbl.Rows[0].Date)

	first := tbl.Rows[0]
	assert.Len(t, first.Cells, 2, "rows only grow to the widest column seen when written")
	assert.True(t, first.Cells[0].Decimal.Equal(decimal.RequireFromString("1.5")))

	second := tbl.Rows[1]
	assert.True(t, second.Cells[0].Decimal.Equal(decimal.NewFromInt(2)))
	assert.True(t, second.Cells[1].Decimal.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, second.Cells[2].Decimal.Equal(decimal.NewFromInt(3)))
}

func TestBuilderLastWriteWins(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddObject(object(
		record("2014-02-01", "compute-engine/Vm", "1"),
		record("2014-02-01", "compute-engine/Vm", "4"),
	)))
	tbl := b.Table()
	require.Len(t, tbl.Rows, 1)
	assert.True(t, tbl.Rows[0].Cells[0].Decimal.Equal(decimal.NewFromInt(4)))
}

func TestBuilderMissingCellsStayMissing(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddObject(object(
		record("2014-02-01", "compute-engine/Vm", "1"),
		record("2014-02-02", "cloud-storage/Storage", "2"),
	)))
	tbl := b.Table()
	assert.False(t, tbl.Rows[1].Cells[0].Valid)
	assert.True(t, tbl.Rows[1].Cells[1].Valid)
}

func TestBuildFailsOnBadRecord(t *testing.T) {
	_, err := Build([][]byte{
		object(record("2014-02-01", "compute-engine/Vm", "1")),
		object(`{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"not-a-time","cost":{"amount":"1"}}`),
	})
	assert.Error(t, err)

	_, err = Build([][]byte{object(`{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-01T00:00:00-08:00"}`)})
	assert.ErrorContains(t, err, "missing cost amount")

	_, err = Build([][]byte{[]byte(`{not json`)})
	assert.Error(t, err)
}

func TestAmountAcceptsNumbers(t *testing.T) {
	records, err := ParseRecords([]byte(`[{"lineItemId":"com.google.cloud/services/bigquery/Analysis","endTime":"2014-02-01T00:00:00-08:00","cost":{"amount":0.125,"currency":"USD"}}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("0.125")))
	assert.Equal(t, "USD", records[0].Currency)
}

func TestSynthesizeRollups(t *testing.T) {
	tbl, err := Build([][]byte{
		object(
			record("2014-02-01", "compute-engine/Vm", "1.5"),
			record("2014-02-01", "cloud-storage/Storage", "0.25"),
			record("2014-02-01", "compute-engine/Network", "0.5"),
		),
		object(record("2014-02-02", "cloud-storage/Storage", "1")),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"compute-engine/Vm", "cloud-storage/Storage", "compute-engine/Network",
		"Cloud/cloud-storage", "Cloud/compute-engine",
	}, tbl.Columns)
	assert.Equal(t, 3, tbl.RawColumns)
	assert.Equal(t, []string{"Cloud/cloud-storage", "Cloud/compute-engine"}, tbl.RollupColumns())

	for _, row := range tbl.Rows {
		require.Len(t, row.Cells, len(tbl.Columns))
		for ci := tbl.RawColumns; ci < len(tbl.Columns); ci++ {
			product := tbl.Columns[ci][len(entity.RollupPrefix):]
			want := decimal.Zero
			for ri := 0; ri < tbl.RawColumns; ri++ {
				if Product(tbl.Columns[ri]) == product && row.Cells[ri].Valid {
					want = want.Add(row.Cells[ri].Decimal)
				}
			}
			assert.True(t, row.Cells[ci].Valid)
			assert.True(t, want.Equal(row.Cells[ci].Decimal), "%s on %s", tbl.Columns[ci], row.Date)
		}
	}

	day2 := tbl.Rows[1]
	assert.True(t, day2.Cells[4].Decimal.IsZero(), "compute rollup is zero when nothing was charged")
	assert.True(t, tbl.ColumnTotal("Cloud/compute-engine").Equal(decimal.NewFromInt(2)))
	assert.True(t, tbl.Total().Equal(decimal.RequireFromString("3.25")))

	assert.ErrorIs(t, Synthesize(tbl), ErrAlreadySynthesized)
}

func TestTablesDoNotShareState(t *testing.T) {
	a := entity.NewTimeSeriesTable()
	b := entity.NewTimeSeriesTable()
	a.Columns = append(a.Columns, "x")
	a.Rows = append(a.Rows, entity.Row{})
	assert.Empty(t, b.Columns)
	assert.Empty(t, b.Rows)

	bld := NewBuilder()
	bld.AddRecord(entity.CostRecord{EndTime: time.Unix(0, 0).UTC(), LineItemID: "a/b", Amount: decimal.NewFromInt(1)})
	t1 := bld.Table()
	t1.Rows[0].Cells[0] = entity.Cell{}
	t2 := bld.Table()
	assert.True(t, t2.Rows[0].Cells[0].Valid)
}
