package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RelativeChangeSentinel stands for an infinitely large increase when the
// previous period cost nothing.
var RelativeChangeSentinel = decimal.NewFromFloat(math.MaxFloat64)

var hundred = decimal.NewFromInt(100)

// TableSource serves the single-date table of a project.
type TableSource interface {
	GetForDate(ctx context.Context, project string, date time.Time) (*entity.TimeSeriesTable, error)
}

// AlertEvaluator decides whether a rule fires for a project on a reference date.
type AlertEvaluator struct {
	tables TableSource
}

// NewAlertEvaluator creates an evaluator reading tables from source.
func NewAlertEvaluator(source TableSource) *AlertEvaluator {
	return &AlertEvaluator{tables: source}
}

// Evaluate returns true when the rule triggers. Rules scoped to another
// project never trigger. Errors come only from building the tables.
func (e *AlertEvaluator) Evaluate(ctx context.Context, rule entity.AlertRule, project string, ref time.Time) (bool, error) {
	if rule.Project != "" && rule.Project != project {
		return false, nil
	}

	current, err := e.amount(ctx, project, ref, rule.Target)
	if err != nil {
		return false, err
	}

	var past decimal.Decimal
	if rule.Trigger != entity.TotalAmount {
		past, err = e.amount(ctx, project, ref.AddDate(0, 0, -rule.Range.Days()), rule.Target)
		if err != nil {
			return false, err
		}
	}

	value, err := RuleValue(rule.Trigger, current, past)
	if err != nil {
		return false, err
	}
	return Triggers(value, rule.TriggerValue), nil
}

func (e *AlertEvaluator) amount(ctx context.Context, project string, date time.Time, target string) (decimal.Decimal, error) {
	table, err := e.tables.GetForDate(ctx, project, date)
	if err != nil {
		return decimal.Zero, err
	}
	return table.TargetAmount(target), nil
}

// RuleValue computes the compared value of a trigger kind.
func RuleValue(kind entity.TriggerKind, current, past decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case entity.TotalAmount:
		return current, nil
	case entity.TotalChange:
		return current.Sub(past), nil
	case entity.RelativeChange:
		if past.IsZero() {
			return RelativeChangeSentinel, nil
		}
		return current.Sub(past).Div(past).Mul(hundred), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported trigger kind %s", kind)
	}
}

// Triggers applies the signed threshold: a negative threshold fires on a drop
// below it, any other threshold fires on a rise above it.
func Triggers(value, threshold decimal.Decimal) bool {
	if threshold.IsNegative() {
		return value.LessThan(threshold)
	}
	return value.GreaterThan(threshold)
}
