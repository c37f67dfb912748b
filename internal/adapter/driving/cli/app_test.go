package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diillson/billing-alerts-go/internal/adapter/driven/config"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/export"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/store"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/diillson/billing-alerts-go/pkg/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConsole struct {
	mu    sync.Mutex
	lines []string
}

func (c *recordingConsole) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, s)
}

func (c *recordingConsole) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

func (c *recordingConsole) Print(a ...interface{})                 { c.add(fmt.Sprint(a...)) }
func (c *recordingConsole) Printf(format string, a ...interface{}) { c.add(fmt.Sprintf(format, a...)) }
func (c *recordingConsole) Println(a ...interface{})               { c.add(fmt.Sprint(a...)) }
func (c *recordingConsole) LogInfo(format string, a ...interface{}) {
	c.add("INFO " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.add("WARN " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogError(format string, a ...interface{}) {
	c.add("ERROR " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogSuccess(format string, a ...interface{}) {
	c.add("OK " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) Status(message string) types.StatusHandle { return noopStatus{} }
func (c *recordingConsole) CreateTable() types.TableInterface {
	return console.NewConsole().CreateTable()
}
func (c *recordingConsole) DisplayDailyBars(title string, dailyCosts []types.DailyCost) {
	for _, d := range dailyCosts {
		c.add(fmt.Sprintf("BAR %s %.2f", d.Day, d.Cost))
	}
}

type noopStatus struct{}

func (noopStatus) Update(string) {}
func (noopStatus) Stop()         {}

type fixture struct {
	dir        string
	configFile string
	console    *recordingConsole
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	exports := filepath.Join(dir, "exports")
	require.NoError(t, os.MkdirAll(exports, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(exports, "demo-2014-02-03.json"), []byte(`[
{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-03T00:00:00-08:00","cost":{"amount":"10","currency":"USD"}}
]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(exports, "demo-2014-02-04.json"), []byte(`[
{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-04T00:00:00-08:00","cost":{"amount":"45","currency":"USD"}}
]`), 0o644))

	cfg := map[string]any{
		"storage":   map[string]any{"backend": "local", "dir": exports},
		"state":     map[string]any{"backend": "sqlite", "sqlite_path": filepath.Join(dir, "state.db")},
		"mail":      map[string]any{"backend": "console", "fallback_address": "ops@example.com"},
		"log_level": "error",
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	configFile := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configFile, data, 0o644))

	return &fixture{dir: dir, configFile: configFile, console: &recordingConsole{}}
}

func (f *fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	app := NewCLIApp(config.NewConfigRepositoryWithEnv(nil), export.NewExportRepository(), f.console)
	app.now = func() time.Time { return time.Date(2014, 2, 4, 9, 0, 0, 0, time.UTC) }
	app.SetArgs(append([]string{"--config-file", f.configFile}, args...))
	return app.ExecuteContext(context.Background())
}

func TestRulesCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "rules", "add", "--name", "spike", "--range", "day",
		"--trigger", "relative_change", "--value", "300", "--target", "Cloud/compute-engine"))
	assert.Contains(t, f.console.output(), "OK Rule spike created")

	assert.Error(t, f.run(t, "rules", "add", "--name", "bad", "--range", "3"))
	assert.Error(t, f.run(t, "rules", "add", "--name", "bad", "--value", "lots"))

	s, err := store.NewSQLiteRepository(filepath.Join(f.dir, "state.db"))
	require.NoError(t, err)
	recs, err := s.List(context.Background(), repository.CollectionAlertRule)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.Len(t, recs, 1)

	require.NoError(t, f.run(t, "rules", "list"))
	assert.Contains(t, f.console.output(), "RELATIVE_CHANGE")

	require.NoError(t, f.run(t, "rules", "delete", recs[0].Key))
	assert.Error(t, f.run(t, "rules", "delete", recs[0].Key))
}

func TestEvaluateAndNotify(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "rules", "add", "--name", "spike", "--range", "1",
		"--trigger", "RELATIVE_CHANGE", "--value", "300", "--target", "Cloud/compute-engine"))

	require.NoError(t, f.run(t, "evaluate", "--project", "demo", "--date", "2014-02-04"))
	assert.Contains(t, f.console.output(), "YES")

	require.NoError(t, f.run(t, "notify", "demo-2014-02-04.json"))
	out := f.console.output()
	assert.Contains(t, out, "1 alert(s) triggered for demo")
	assert.Contains(t, out, "To: ops@example.com")
	assert.Contains(t, out, "OK Notification sent for demo")

	require.NoError(t, f.run(t, "notify", "demo-2014-02-04.json"))
	assert.Contains(t, f.console.output(), "demo was already notified today")

	require.NoError(t, f.run(t, "notify", "README.md"))
	assert.Contains(t, f.console.output(), "ignored")
}

func TestSubscriptionCommands(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.run(t, "subscription", "set", "demo", "--email", "b@x.io,a@x.io", "--daily-summary"))
	require.NoError(t, f.run(t, "subscription", "get", "demo"))
	assert.Contains(t, f.console.output(), "a@x.io, b@x.io")
}

func TestProjectsChartAndReport(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "projects"))
	assert.Contains(t, f.console.output(), "demo")

	require.NoError(t, f.run(t, "chart", "--project", "demo"))
	out := f.console.output()
	assert.Contains(t, out, "BAR 2014-02-03 10.00")
	assert.Contains(t, out, "BAR 2014-02-04 45.00")

	assert.Error(t, f.run(t, "chart"))

	reports := filepath.Join(f.dir, "reports")
	require.NoError(t, f.run(t, "report", "--project", "demo", "--report-type", "csv,json,pdf", "--dir", reports))
	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	require.NoError(t, f.run(t, "flush"))
	assert.Contains(t, f.console.output(), "OK Cache flushed")
}
