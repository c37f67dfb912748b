package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

// --- Relatório da tabela de custos de um projeto ---

func (r *ExportRepositoryImpl) ExportTableToCSV(table *entity.TimeSeriesTable, project, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := append([]string{"Date"}, table.Columns...)
	headers = append(headers, entity.TargetTotal)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range table.Rows {
		record := make([]string, 0, len(headers))
		record = append(record, row.Date.Format(billing.DateLayout))
		for i := range table.Columns {
			if c := row.Value(i); c.Valid {
				record = append(record, c.Decimal.String())
			} else {
				record = append(record, "")
			}
		}
		record = append(record, table.RowTotal(row).String())
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	totals := make([]string, 0, len(headers))
	totals = append(totals, entity.TargetTotal)
	for _, name := range table.Columns {
		totals = append(totals, table.ColumnTotal(name).String())
	}
	totals = append(totals, table.Total().String())
	if err := writer.Write(totals); err != nil {
		return "", fmt.Errorf("error writing CSV totals: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// tableReport é o formato do relatório JSON.
type tableReport struct {
	Project     string            `json:"project"`
	GeneratedAt string            `json:"generated_at"`
	Columns     []string          `json:"columns"`
	Rollups     []string          `json:"rollups"`
	Rows        []tableReportRow  `json:"rows"`
	Totals      map[string]string `json:"totals"`
	Total       string            `json:"total"`
}

type tableReportRow struct {
	Date  string            `json:"date"`
	Cells map[string]string `json:"cells"`
	Total string            `json:"total"`
}

func (r *ExportRepositoryImpl) ExportTableToJSON(table *entity.TimeSeriesTable, project, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	report := tableReport{
		Project:     project,
		GeneratedAt: r.now().UTC().Format(time.RFC3339),
		Columns:     table.Columns,
		Rollups:     table.RollupColumns(),
		Rows:        make([]tableReportRow, 0, len(table.Rows)),
		Totals:      make(map[string]string, len(table.Columns)),
		Total:       table.Total().String(),
	}
	if report.Columns == nil {
		report.Columns = []string{}
	}
	if report.Rollups == nil {
		report.Rollups = []string{}
	}
	for _, row := range table.Rows {
		cells := make(map[string]string)
		for i, name := range table.Columns {
			if c := row.Value(i); c.Valid {
				cells[name] = c.Decimal.String()
			}
		}
		report.Rows = append(report.Rows, tableReportRow{
			Date:  row.Date.Format(billing.DateLayout),
			Cells: cells,
			Total: table.RowTotal(row).String(),
		})
	}
	for _, name := range table.Columns {
		report.Totals[name] = table.ColumnTotal(name).String()
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportTableToPDF(table *entity.TimeSeriesTable, project, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		content = cleanRichTags(content)
		if strings.TrimSpace(content) == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by billing-alerts | %s", r.now().Format(billing.DateLayout))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	name := project
	if len(name) > 80 {
		name = name[:77] + "..."
	}
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", name)), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	period := "no data"
	if len(table.Rows) > 0 {
		period = fmt.Sprintf("%s to %s",
			table.Rows[0].Date.Format(billing.DateLayout),
			table.Rows[len(table.Rows)-1].Date.Format(billing.DateLayout))
	}
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Period: %s", period)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	// Resumo
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
	pdf.Cell(0, 8, "Cost Summary")
	pdf.Ln(7)
	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("$%s", table.Total().StringFixed(2))), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	var products strings.Builder
	for _, col := range table.RollupColumns() {
		products.WriteString(fmt.Sprintf("%s: $%s\n", strings.TrimPrefix(col, entity.RollupPrefix), table.ColumnTotal(col).StringFixed(2)))
	}
	drawSection("Cost By Product", products.String())

	// Tabela diária
	if len(table.Rows) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, "Daily Costs")
		pdf.Ln(9)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(220, 220, 220)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(95, 7, "Date", "1", 0, "L", true, 0, "")
		pdf.CellFormat(95, 7, "Cost", "1", 1, "R", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, row := range table.Rows {
			pdf.CellFormat(95, 6, row.Date.Format(billing.DateLayout), "1", 0, "L", false, 0, "")
			pdf.CellFormat(95, 6, tr(fmt.Sprintf("$%s", table.RowTotal(row).StringFixed(2))), "1", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
