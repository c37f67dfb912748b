package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TargetTotal selects the sum of every raw line-item column.
const TargetTotal = "Total"

// RollupPrefix prefixes the synthesized per-product columns.
const RollupPrefix = "Cloud/"

// Cell holds one cost amount. An invalid cell means "no charge".
type Cell = decimal.NullDecimal

// Row is the set of cells recorded for one date. Cells line up with the table columns.
type Row struct {
	Date  time.Time `json:"date"`
	Cells []Cell    `json:"cells"`
}

// TimeSeriesTable is the sparse date x line-item cost matrix of a project.
// Columns[:RawColumns] are canonical line items in first-seen order,
// the remaining columns are product rollups.
type TimeSeriesTable struct {
	Columns    []string `json:"columns"`
	RawColumns int      `json:"raw_columns"`
	Rows       []Row    `json:"rows"`
}

// NewTimeSeriesTable returns an empty table with its own backing slices.
func NewTimeSeriesTable() *TimeSeriesTable {
	return &TimeSeriesTable{
		Columns: []string{},
		Rows:    []Row{},
	}
}

// ColumnIndex returns the index of the named column or -1.
func (t *TimeSeriesTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsRollup reports whether the column at index i is a synthesized rollup.
func (t *TimeSeriesTable) IsRollup(i int) bool {
	return i >= t.RawColumns
}

// RollupColumns returns the synthesized column names.
func (t *TimeSeriesTable) RollupColumns() []string {
	if t.RawColumns >= len(t.Columns) {
		return nil
	}
	return t.Columns[t.RawColumns:]
}

// Value returns the cell at (row, column); missing cells are invalid.
func (r Row) Value(column int) Cell {
	if column < 0 || column >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[column]
}

// RowTotal sums the raw cells of a row.
func (t *TimeSeriesTable) RowTotal(r Row) decimal.Decimal {
	sum := decimal.Zero
	for i := 0; i < t.RawColumns && i < len(r.Cells); i++ {
		if r.Cells[i].Valid {
			sum = sum.Add(r.Cells[i].Decimal)
		}
	}
	return sum
}

// Total sums every raw column across all rows. Rollups are excluded.
func (t *TimeSeriesTable) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range t.Rows {
		sum = sum.Add(t.RowTotal(r))
	}
	return sum
}

// ColumnTotal sums one column across all rows. A missing column is zero.
func (t *TimeSeriesTable) ColumnTotal(name string) decimal.Decimal {
	idx := t.ColumnIndex(name)
	sum := decimal.Zero
	if idx < 0 {
		return sum
	}
	for _, r := range t.Rows {
		if c := r.Value(idx); c.Valid {
			sum = sum.Add(c.Decimal)
		}
	}
	return sum
}

// TargetAmount resolves an alert target against the table.
func (t *TimeSeriesTable) TargetAmount(target string) decimal.Decimal {
	if target == "" || target == TargetTotal {
		return t.Total()
	}
	return t.ColumnTotal(target)
}
