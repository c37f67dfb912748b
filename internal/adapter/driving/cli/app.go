package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/diillson/billing-alerts-go/pkg/version"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	now        func() time.Time
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(
	configRepo repository.ConfigRepository,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
) *CLIApp {
	app := &CLIApp{
		configRepo: configRepo,
		exportRepo: exportRepo,
		console:    console,
		now:        time.Now,
	}

	rootCmd := &cobra.Command{
		Use:           "billing-alerts",
		Short:         "Cloud billing export aggregation and cost alerts",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "Billing Alerts version: %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")

	rootCmd.AddCommand(
		app.serveCommand(),
		app.watchCommand(),
		app.projectsCommand(),
		app.chartCommand(),
		app.reportCommand(),
		app.flushCommand(),
		app.evaluateCommand(),
		app.notifyCommand(),
		app.rulesCommand(),
		app.subscriptionCommand(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI application with a cancellable context.
func (app *CLIApp) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs substitui os argumentos da linha de comando (usado em testes).
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// parseArgs parses command-line flags into a CLIArgs struct.
// Flags not defined by cmd keep their zero value.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	project, _ := flags.GetString("project")
	date, _ := flags.GetString("date")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	addr, _ := flags.GetString("addr")
	watch, _ := flags.GetBool("watch")

	if flags.Lookup("dir") != nil {
		// Diretório padrão: diretório de trabalho atual
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			dir = cwd
		} else {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return nil, err
			}
			dir = absDir
		}
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		Project:    project,
		Date:       date,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
		Addr:       addr,
		Watch:      watch,
	}, nil
}

// setup carrega a configuração e monta os serviços de um comando.
func (app *CLIApp) setup(cmd *cobra.Command) (*types.CLIArgs, *services, error) {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := app.configRepo.Load(args.ConfigFile)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.buildServices(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return args, svc, nil
}
