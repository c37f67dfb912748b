package repository

import (
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
)

// ExportRepository writes aggregate reports to disk.
type ExportRepository interface {
	ExportTableToCSV(table *entity.TimeSeriesTable, project, filename, outputDir string) (string, error)
	ExportTableToJSON(table *entity.TimeSeriesTable, project, filename, outputDir string) (string, error)
	ExportTableToPDF(table *entity.TimeSeriesTable, project, filename, outputDir string) (string, error)
}
