package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
)

// chartColumn and chartRow follow the Google Charts DataTable JSON layout.
type chartColumn struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type chartValue struct {
	V any `json:"v"`
}

type chartRow struct {
	C []*chartValue `json:"c"`
}

type chartTable struct {
	Cols []chartColumn `json:"cols"`
	Rows []chartRow    `json:"rows"`
}

// chartDate renders a date as a DataTable datetime literal (months are zero based).
func chartDate(t time.Time) string {
	return fmt.Sprintf("Date(%d,%d,%d,%d,%d,%d)",
		t.Year(), int(t.Month())-1, t.Day(), t.Hour(), t.Minute(), t.Second())
}

// toChartTable converts a cost table into a DataTable ordered by time.
// Missing cells become null.
func toChartTable(table *entity.TimeSeriesTable) chartTable {
	out := chartTable{
		Cols: make([]chartColumn, 0, len(table.Columns)+1),
		Rows: make([]chartRow, 0, len(table.Rows)),
	}
	out.Cols = append(out.Cols, chartColumn{ID: "Time", Label: "Time", Type: "datetime"})
	for _, name := range table.Columns {
		out.Cols = append(out.Cols, chartColumn{ID: name, Label: name, Type: "number"})
	}

	for _, row := range table.Rows {
		cells := make([]*chartValue, 0, len(table.Columns)+1)
		cells = append(cells, &chartValue{V: chartDate(row.Date)})
		for i := range table.Columns {
			if c := row.Value(i); c.Valid {
				cells = append(cells, &chartValue{V: c.Decimal.InexactFloat64()})
			} else {
				cells = append(cells, nil)
			}
		}
		out.Rows = append(out.Rows, chartRow{C: cells})
	}
	return out
}

// HandleChart returns a project's aggregate. Without a date the trailing
// window is returned, with one only that date's export.
func (c *Controller) HandleChart(w http.ResponseWriter, r *http.Request) {
	project := strings.TrimSpace(r.URL.Query().Get("project"))
	if project == "" {
		writeError(w, http.StatusBadRequest, "project is required")
		return
	}

	var (
		table *entity.TimeSeriesTable
		err   error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		day, perr := time.Parse(billing.DateLayout, date)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		table, err = c.Aggregates.GetForDate(r.Context(), project, day)
	} else {
		table, err = c.Aggregates.Get(r.Context(), project)
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChartTable(table))
}

// HandleProjects lists the projects found in the export storage.
func (c *Controller) HandleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := c.Aggregates.ListProjects(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": projects})
}
