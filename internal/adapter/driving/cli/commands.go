package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/localfs"
	"github.com/diillson/billing-alerts-go/internal/adapter/driving/api"
	"github.com/diillson/billing-alerts-go/internal/application/usecase"
	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/diillson/billing-alerts-go/pkg/console"
	"github.com/diillson/billing-alerts-go/pkg/version"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const watchDebounce = 500 * time.Millisecond

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (app *CLIApp) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and receive object change notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayWelcomeBanner()
			go version.CheckLatestVersion(version.Version)

			args, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			addr := args.Addr
			if addr == "" {
				addr = svc.config.HTTPAddr
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			svc.warmer.Warm()

			// o servidor e o watcher param juntos quando qualquer um termina
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			pool := pond.NewPool(2)
			defer pool.StopAndWait()

			group := pool.NewGroup()
			group.SubmitErr(func() error {
				defer cancel()
				return api.Serve(ctx, addr, svc.controller().NewRouter(), svc.logger)
			})
			if args.Watch {
				group.SubmitErr(func() error {
					defer cancel()
					return app.runWatcher(ctx, svc)
				})
			}
			return group.Wait()
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from configuration)")
	cmd.Flags().Bool("watch", false, "Also watch the local export directory for new objects")
	return cmd
}

func (app *CLIApp) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the local export directory and evaluate alerts on every new object",
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayWelcomeBanner()

			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return app.runWatcher(ctx, svc)
		},
	}
}

func (app *CLIApp) runWatcher(ctx context.Context, svc *services) error {
	if b := svc.config.Storage.Backend; b != "" && b != "local" {
		return fmt.Errorf("watching requires the local storage backend, got %q", b)
	}
	handler := func(ctx context.Context, event entity.ObjectChangeEvent) error {
		result, err := svc.notifications.HandleObjectChange(ctx, event)
		if err != nil {
			return err
		}
		app.printResult(event.Name, result)
		return nil
	}
	w, err := localfs.NewWatcher(svc.config.Storage.Dir, handler, watchDebounce, svc.logger)
	if err != nil {
		return err
	}
	app.console.LogInfo("Watching %s for export objects", svc.config.Storage.Dir)
	return w.Run(ctx)
}

func (app *CLIApp) projectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the projects found in the export storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			projects, err := svc.aggregates.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				app.console.LogWarning("No export objects found")
				return nil
			}
			table := app.console.CreateTable()
			table.AddColumn("Project")
			for _, p := range projects {
				table.AddRow(p)
			}
			app.console.Println(table.Render())
			return nil
		},
	}
}

// loadTable returns the window aggregate, or the single-date one when a date is given.
func loadTable(ctx context.Context, svc *services, args *types.CLIArgs) (*entity.TimeSeriesTable, error) {
	if args.Project == "" {
		return nil, errors.New("--project is required")
	}
	if args.Date == "" {
		return svc.aggregates.Get(ctx, args.Project)
	}
	day, err := time.Parse(billing.DateLayout, args.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", args.Date)
	}
	return svc.aggregates.GetForDate(ctx, args.Project, day)
}

func (app *CLIApp) chartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Display a project's daily costs and product rollups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			status := app.console.Status(fmt.Sprintf("Building cost table for %s...", args.Project))
			table, err := loadTable(cmd.Context(), svc, args)
			status.Stop()
			if err != nil {
				return err
			}

			daily := make([]types.DailyCost, 0, len(table.Rows))
			for _, row := range table.Rows {
				daily = append(daily, types.DailyCost{
					Day:  row.Date.Format(billing.DateLayout),
					Cost: table.RowTotal(row).InexactFloat64(),
				})
			}
			app.console.DisplayDailyBars(fmt.Sprintf("%s daily costs", args.Project), daily)

			summary := app.console.CreateTable()
			summary.AddColumn("Product")
			summary.AddColumn("Cost")
			for _, col := range table.RollupColumns() {
				summary.AddRow(strings.TrimPrefix(col, entity.RollupPrefix), "$"+table.ColumnTotal(col).StringFixed(2))
			}
			summary.AddRow(console.BrightCyan(entity.TargetTotal), console.BrightCyan("$"+table.Total().StringFixed(2)))
			app.console.Println(summary.Render())
			return nil
		},
	}
	cmd.Flags().StringP("project", "p", "", "Project name")
	cmd.Flags().String("date", "", "Single export date (YYYY-MM-DD); default is the trailing window")
	return cmd
}

func (app *CLIApp) reportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a project's aggregate as CSV, JSON or PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			table, err := loadTable(cmd.Context(), svc, args)
			if err != nil {
				return err
			}

			name := args.ReportName
			if name == "" {
				name = args.Project + "_costs"
			}
			for _, kind := range args.ReportType {
				var path string
				switch strings.ToLower(strings.TrimSpace(kind)) {
				case "csv":
					path, err = app.exportRepo.ExportTableToCSV(table, args.Project, name, args.Dir)
				case "json":
					path, err = app.exportRepo.ExportTableToJSON(table, args.Project, name, args.Dir)
				case "pdf":
					path, err = app.exportRepo.ExportTableToPDF(table, args.Project, name, args.Dir)
				default:
					app.console.LogWarning("Unsupported report type: %s", kind)
					continue
				}
				if err != nil {
					app.console.LogError("Failed to export %s report: %v", kind, err)
					continue
				}
				app.console.LogSuccess("%s report saved to %s", strings.ToUpper(kind), path)
			}
			return nil
		},
	}
	cmd.Flags().StringP("project", "p", "", "Project name")
	cmd.Flags().String("date", "", "Single export date (YYYY-MM-DD); default is the trailing window")
	cmd.Flags().StringP("report-name", "n", "", "Base name for the report file (without extension)")
	cmd.Flags().StringSliceP("report-type", "y", []string{"csv"}, "Report types: csv, json, pdf")
	cmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	return cmd
}

func (app *CLIApp) flushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Clear the aggregate cache and the project catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.aggregates.Flush(cmd.Context()); err != nil {
				return err
			}
			app.console.LogSuccess("Cache flushed")
			return nil
		},
	}
}

func (app *CLIApp) evaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a project's rules without sending notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if args.Project == "" {
				return errors.New("--project is required")
			}
			ref := billing.Day(app.now())
			if args.Date != "" {
				if ref, err = time.Parse(billing.DateLayout, args.Date); err != nil {
					return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", args.Date)
				}
			}

			rules, err := svc.rules.ListForProject(cmd.Context(), args.Project)
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				app.console.LogWarning("No rules apply to %s", args.Project)
				return nil
			}

			table := app.console.CreateTable()
			for _, col := range []string{"Rule", "Trigger", "Range", "Target", "Threshold", "Fired"} {
				table.AddColumn(col)
			}
			for _, rule := range rules {
				fired, err := svc.evaluator.Evaluate(cmd.Context(), rule, args.Project, ref)
				status := console.BrightGreen("no")
				switch {
				case err != nil:
					status = console.BoldRed("error: " + err.Error())
				case fired:
					status = console.BrightYellow("YES")
				}
				table.AddRow(rule.Name, rule.Trigger, rule.Range, rule.Target, rule.TriggerValue.String(), status)
			}
			app.console.Println(table.Render())
			return nil
		},
	}
	cmd.Flags().StringP("project", "p", "", "Project name")
	cmd.Flags().String("date", "", "Reference date (YYYY-MM-DD); default is today")
	return cmd
}

func (app *CLIApp) notifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <object-name>",
		Short: "Process an object change as if the storage had reported it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			event := entity.ObjectChangeEvent{Name: positional[0]}
			result, err := svc.notifications.HandleObjectChange(cmd.Context(), event)
			if err != nil {
				return err
			}
			app.printResult(event.Name, result)
			return nil
		},
	}
}

func (app *CLIApp) printResult(name string, result usecase.NotificationResult) {
	switch {
	case result.Ignored:
		app.console.LogWarning("%s does not look like an export object, ignored", name)
	case result.Duplicate:
		app.console.LogInfo("%s was already notified today", result.Project)
	case result.Sent:
		app.console.LogSuccess("Notification sent for %s (%d rule(s) triggered)", result.Project, len(result.TriggeredRules))
	default:
		app.console.LogInfo("No rule triggered for %s", result.Project)
	}
}

func (app *CLIApp) rulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage alert rules",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List alert rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			var rules []entity.AlertRule
			if args.Project != "" {
				rules, err = svc.rules.ListForProject(cmd.Context(), args.Project)
			} else {
				rules, err = svc.rules.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			table := app.console.CreateTable()
			for _, col := range []string{"ID", "Name", "Project", "Trigger", "Range", "Target", "Threshold"} {
				table.AddColumn(col)
			}
			for _, r := range rules {
				project := r.Project
				if project == "" {
					project = "*"
				}
				table.AddRow(r.ID, r.Name, project, r.Trigger, r.Range, r.Target, r.TriggerValue.String())
			}
			app.console.Println(table.Render())
			return nil
		},
	}
	list.Flags().StringP("project", "p", "", "Only rules applying to this project")

	add := &cobra.Command{
		Use:   "add",
		Short: "Create an alert rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			name, _ := cmd.Flags().GetString("name")
			rangeFlag, _ := cmd.Flags().GetString("range")
			triggerFlag, _ := cmd.Flags().GetString("trigger")
			valueFlag, _ := cmd.Flags().GetString("value")
			target, _ := cmd.Flags().GetString("target")

			rng, err := entity.ParseAlertRange(rangeFlag)
			if err != nil {
				return err
			}
			trigger, err := entity.ParseTriggerKind(triggerFlag)
			if err != nil {
				return err
			}
			value, err := decimal.NewFromString(valueFlag)
			if err != nil {
				return fmt.Errorf("invalid --value %q: %w", valueFlag, err)
			}

			rule, err := svc.rules.Create(cmd.Context(), entity.AlertRule{
				Name:         name,
				Project:      args.Project,
				Range:        rng,
				Trigger:      trigger,
				TriggerValue: value,
				Target:       target,
			})
			if err != nil {
				return err
			}
			app.console.LogSuccess("Rule %s created (%s)", rule.Name, rule.ID)
			return nil
		},
	}
	add.Flags().String("name", "", "Rule name")
	add.Flags().StringP("project", "p", "", "Restrict the rule to one project (default: all projects)")
	add.Flags().String("range", "1", "Comparison window: 1, 7, 30 or 365 days")
	add.Flags().String("trigger", "TOTAL_AMOUNT", "RELATIVE_CHANGE, TOTAL_CHANGE or TOTAL_AMOUNT")
	add.Flags().String("value", "0", "Threshold; negative values fire on decreases")
	add.Flags().String("target", entity.TargetTotal, "Column to compare, e.g. Cloud/compute-engine")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an alert rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.rules.Delete(cmd.Context(), positional[0]); err != nil {
				return err
			}
			app.console.LogSuccess("Rule %s deleted", positional[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func (app *CLIApp) subscriptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Show or change a project's notification recipients",
	}

	get := &cobra.Command{
		Use:   "get <project>",
		Short: "Show a project's subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			sub, err := svc.subscriptions.Get(cmd.Context(), positional[0])
			if err != nil {
				return err
			}
			app.printSubscription(sub)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <project>",
		Short: "Replace a project's recipients and daily summary flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			_, svc, err := app.setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			emails, _ := cmd.Flags().GetStringSlice("email")
			daily, _ := cmd.Flags().GetBool("daily-summary")
			sub, err := svc.subscriptions.Update(cmd.Context(), positional[0], emails, daily)
			if err != nil {
				return err
			}
			app.printSubscription(sub)
			return nil
		},
	}
	set.Flags().StringSlice("email", nil, "Recipient address (repeatable or comma-separated)")
	set.Flags().Bool("daily-summary", false, "Send a summary every day even when no rule fires")

	cmd.AddCommand(get, set)
	return cmd
}

func (app *CLIApp) printSubscription(sub entity.Subscription) {
	emails := strings.Join(sub.Emails, ", ")
	if emails == "" {
		emails = "(fallback address)"
	}
	table := app.console.CreateTable()
	table.AddColumn("Project")
	table.AddColumn("Recipients")
	table.AddColumn("Daily summary")
	table.AddRow(sub.Project, emails, sub.DailySummary)
	app.console.Println(table.Render())
}
