// Package mail delivers alert notifications over SMTP or to the console.
package mail

import (
	"fmt"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
)

// Subject returns the mail subject for a notification.
func Subject(n entity.Notification) string {
	date := n.Date.Format(billing.DateLayout)
	if len(n.TriggeredRules) == 0 {
		return fmt.Sprintf("[billing-alerts] Daily cost summary for %s (%s)", n.Project, date)
	}
	return fmt.Sprintf("[billing-alerts] %d alert(s) triggered for %s (%s)", len(n.TriggeredRules), n.Project, date)
}

// Body renders the plain-text body: triggered rules first, then the column
// totals of the current aggregate.
func Body(n entity.Notification) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Project: %s\n", n.Project)
	fmt.Fprintf(&b, "Export date: %s\n\n", n.Date.Format(billing.DateLayout))

	if len(n.TriggeredRules) > 0 {
		b.WriteString("Triggered rules:\n")
		for _, r := range n.TriggeredRules {
			fmt.Fprintf(&b, "  - %s: %s on %s over %s, threshold %s\n",
				r.Name, r.Trigger, r.Target, r.Range, r.TriggerValue.String())
		}
		b.WriteString("\n")
	}

	table := n.CurrentAggregate
	if table == nil || len(table.Rows) == 0 {
		b.WriteString("No cost data is available for this project.\n")
		return b.String()
	}

	first := table.Rows[0].Date.Format(billing.DateLayout)
	last := table.Rows[len(table.Rows)-1].Date.Format(billing.DateLayout)
	fmt.Fprintf(&b, "Costs from %s to %s:\n", first, last)
	for _, name := range table.RollupColumns() {
		fmt.Fprintf(&b, "  %-40s %s\n", name, table.ColumnTotal(name).StringFixed(2))
	}
	fmt.Fprintf(&b, "  %-40s %s\n", entity.TargetTotal, table.Total().StringFixed(2))
	return b.String()
}
