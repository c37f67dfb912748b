package billing

import (
	"errors"
	"sort"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrAlreadySynthesized is returned when rollups were already appended to a table.
var ErrAlreadySynthesized = errors.New("rollup columns already synthesized")

// Synthesize appends one "Cloud/<product>" column per product, sorted by product name.
// Each rollup cell is the sum of the row's raw cells of that product and is always present.
func Synthesize(t *entity.TimeSeriesTable) error {
	if len(t.Columns) != t.RawColumns {
		return ErrAlreadySynthesized
	}

	raw := t.RawColumns
	productCols := make(map[string][]int)
	for i := 0; i < raw; i++ {
		p := Product(t.Columns[i])
		productCols[p] = append(productCols[p], i)
	}
	products := make([]string, 0, len(productCols))
	for p := range productCols {
		products = append(products, p)
	}
	sort.Strings(products)

	for ri := range t.Rows {
		row := &t.Rows[ri]
		for len(row.Cells) < raw {
			row.Cells = append(row.Cells, entity.Cell{})
		}
		for _, p := range products {
			sum := decimal.Zero
			for _, ci := range productCols[p] {
				if c := row.Cells[ci]; c.Valid {
					sum = sum.Add(c.Decimal)
				}
			}
			row.Cells = append(row.Cells, entity.Cell{Decimal: sum, Valid: true})
		}
	}

	for _, p := range products {
		t.Columns = append(t.Columns, entity.RollupPrefix+p)
	}
	return nil
}

// Build runs a complete build over the given objects: records, then rollups.
func Build(objects [][]byte) (*entity.TimeSeriesTable, error) {
	b := NewBuilder()
	for _, obj := range objects {
		if err := b.AddObject(obj); err != nil {
			return nil, err
		}
	}
	t := b.Table()
	if err := Synthesize(t); err != nil {
		return nil, err
	}
	return t, nil
}
