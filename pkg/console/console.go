package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Console é uma implementação do ConsoleInterface.
type Console struct{}

// NewConsole cria um novo Console.
func NewConsole() *Console {
	return &Console{}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayDailyBars exibe um gráfico de barras com o custo de cada dia e a
// variação em relação ao dia anterior.
func (c *Console) DisplayDailyBars(title string, dailyCosts []types.DailyCost) {
	fmt.Println("\n" + RenderDailyBars(title, dailyCosts))
}

// RenderDailyBars monta o painel usado por DisplayDailyBars.
func RenderDailyBars(title string, dailyCosts []types.DailyCost) string {
	maxCost := 0.0
	for _, cost := range dailyCosts {
		if cost.Cost > maxCost {
			maxCost = cost.Cost
		}
	}

	if maxCost == 0 {
		return pterm.Warning.Sprint("All costs are $0.00 for this period")
	}

	tableData := pterm.TableData{
		{"Day", "Cost", "", "DoD Change"},
	}

	var prevCost *float64
	for _, dc := range dailyCosts {
		barLength := int((dc.Cost / maxCost) * 40)
		bar := strings.Repeat("█", barLength)

		barColor := pterm.FgBlue.Sprint(bar)
		change := ""

		if prevCost != nil {
			barColor, change = changeStyle(*prevCost, dc.Cost, bar)
		}

		tableData = append(tableData, []string{
			dc.Day,
			fmt.Sprintf("$%.2f", dc.Cost),
			barColor,
			change,
		})

		currentCost := dc.Cost
		prevCost = &currentCost
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	return pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)
}

// changeStyle colore a barra e formata a variação percentual entre dois dias.
func changeStyle(prev, cur float64, bar string) (string, string) {
	if prev < 0.01 {
		if cur < 0.01 {
			return pterm.FgYellow.Sprint(bar), pterm.FgYellow.Sprint("0%")
		}
		return pterm.FgRed.Sprint(bar), pterm.FgRed.Sprint("N/A")
	}

	changePercent := ((cur - prev) / prev) * 100.0
	switch {
	case math.Abs(changePercent) < 0.01:
		return pterm.FgYellow.Sprint(bar), pterm.FgYellow.Sprint("0%")
	case changePercent > 999:
		return pterm.FgRed.Sprint(bar), pterm.FgRed.Sprint(">+999%")
	case changePercent < -999:
		return pterm.FgGreen.Sprint(bar), pterm.FgGreen.Sprint(">-999%")
	case changePercent > 0:
		return pterm.FgRed.Sprint(bar), pterm.FgRed.Sprintf("+%.2f%%", changePercent)
	default:
		return pterm.FgGreen.Sprint(bar), pterm.FgGreen.Sprintf("%.2f%%", changePercent)
	}
}
