package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TriggerKind selects how an alert rule compares the target amount.
type TriggerKind int

const (
	RelativeChange TriggerKind = iota + 1
	TotalChange
	TotalAmount
)

var triggerKindNames = map[TriggerKind]string{
	RelativeChange: "RELATIVE_CHANGE",
	TotalChange:    "TOTAL_CHANGE",
	TotalAmount:    "TOTAL_AMOUNT",
}

func (k TriggerKind) String() string {
	if name, ok := triggerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TriggerKind(%d)", int(k))
}

// Valid reports whether k is one of the declared trigger kinds.
func (k TriggerKind) Valid() bool {
	_, ok := triggerKindNames[k]
	return ok
}

// ParseTriggerKind accepts the upper-case names, case-insensitively.
func ParseTriggerKind(s string) (TriggerKind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k, n := range triggerKindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown trigger kind %q", s)
}

func (k TriggerKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid trigger kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *TriggerKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTriggerKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// AlertRange is the comparison window of a rule, in days.
type AlertRange int

const (
	OneDay   AlertRange = 1
	OneWeek  AlertRange = 7
	OneMonth AlertRange = 30
	OneYear  AlertRange = 365
)

// Days returns the window length.
func (r AlertRange) Days() int {
	return int(r)
}

// Valid reports whether r is one of the supported windows.
func (r AlertRange) Valid() bool {
	switch r {
	case OneDay, OneWeek, OneMonth, OneYear:
		return true
	}
	return false
}

func (r AlertRange) String() string {
	switch r {
	case OneDay:
		return "1d"
	case OneWeek:
		return "7d"
	case OneMonth:
		return "30d"
	case OneYear:
		return "365d"
	}
	return fmt.Sprintf("AlertRange(%d)", int(r))
}

// ParseAlertRange accepts a day count ("7"), a suffixed count ("7d") or a name ("week").
func ParseAlertRange(s string) (AlertRange, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "day", "one_day":
		return OneDay, nil
	case "week", "one_week":
		return OneWeek, nil
	case "month", "one_month":
		return OneMonth, nil
	case "year", "one_year":
		return OneYear, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
	if err != nil {
		return 0, fmt.Errorf("unknown alert range %q", s)
	}
	r := AlertRange(n)
	if !r.Valid() {
		return 0, fmt.Errorf("unsupported alert range %d days", n)
	}
	return r, nil
}

// AlertRule is a user defined threshold on a project's cost table.
// An empty Project applies the rule to every project.
type AlertRule struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Project      string          `json:"project,omitempty"`
	Range        AlertRange      `json:"range_days"`
	Trigger      TriggerKind     `json:"trigger"`
	TriggerValue decimal.Decimal `json:"trigger_value"`
	Target       string          `json:"target"`
}

// AppliesTo reports whether the rule is global or scoped to project.
func (a AlertRule) AppliesTo(project string) bool {
	return a.Project == "" || a.Project == project
}
