package billing

import (
	"sort"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
)

// Builder accumulates export records into a sparse date x line-item table.
// Column indexes are assigned on first sight and never move during a build.
type Builder struct {
	columns []string
	colIdx  map[string]int
	rows    []entity.Row
	rowIdx  map[time.Time]int
}

// NewBuilder starts an empty build.
func NewBuilder() *Builder {
	return &Builder{
		columns: []string{},
		colIdx:  make(map[string]int),
		rows:    []entity.Row{},
		rowIdx:  make(map[time.Time]int),
	}
}

// AddObject parses one export object and adds its records in order.
// On error the builder must be discarded.
func (b *Builder) AddObject(data []byte) error {
	records, err := ParseRecords(data)
	if err != nil {
		return err
	}
	for _, rec := range records {
		b.AddRecord(rec)
	}
	return nil
}

// AddRecord sets the cell of the record's date and line item.
// A second record for the same date and item overwrites the first.
func (b *Builder) AddRecord(rec entity.CostRecord) {
	item := CanonicalLineItem(rec.LineItemID)

	col, ok := b.colIdx[item]
	if !ok {
		col = len(b.columns)
		b.columns = append(b.columns, item)
		b.colIdx[item] = col
	}

	ri, ok := b.rowIdx[rec.EndTime]
	if !ok {
		ri = len(b.rows)
		b.rows = append(b.rows, entity.Row{Date: rec.EndTime, Cells: []entity.Cell{}})
		b.rowIdx[rec.EndTime] = ri
	}

	row := &b.rows[ri]
	for len(row.Cells) < col+1 {
		row.Cells = append(row.Cells, entity.Cell{})
	}
	row.Cells[col] = entity.Cell{Decimal: rec.Amount, Valid: true}
}

// Columns returns the line items seen so far in column order.
func (b *Builder) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// Table returns the raw table, rows ordered by date. Rows are not padded;
// Synthesize pads them to the final width.
func (b *Builder) Table() *entity.TimeSeriesTable {
	t := entity.NewTimeSeriesTable()
	t.Columns = append(t.Columns, b.columns...)
	t.RawColumns = len(b.columns)
	for _, r := range b.rows {
		cells := make([]entity.Cell, len(r.Cells))
		copy(cells, r.Cells)
		t.Rows = append(t.Rows, entity.Row{Date: r.Date, Cells: cells})
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date.Before(t.Rows[j].Date)
	})
	return t
}
