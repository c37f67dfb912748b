package main

import (
	"context"
	"fmt"
	"os"

	"github.com/diillson/billing-alerts-go/internal/adapter/driven/config"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/export"
	"github.com/diillson/billing-alerts-go/internal/adapter/driving/cli"
	"github.com/diillson/billing-alerts-go/pkg/console"
)

func main() {
	// Inicializa os repositórios
	configRepo := config.NewConfigRepository()
	exportRepo := export.NewExportRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(configRepo, exportRepo, consoleImpl)

	// Executa o aplicativo
	if err := app.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
