package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"go.uber.org/zap"
)

// NotificationResult describes what HandleObjectChange did with an event.
type NotificationResult struct {
	Project        string
	Date           time.Time
	Ignored        bool
	Duplicate      bool
	Sent           bool
	TriggeredRules []entity.AlertRule
}

// NotificationUseCase reacts to export object changes: it evaluates the
// project's rules and sends at most one combined notification per day.
type NotificationUseCase struct {
	aggregates      *AggregateUseCase
	evaluator       *AlertEvaluator
	dedup           *DedupGuard
	rules           *RuleUseCase
	subscriptions   *SubscriptionUseCase
	notifier        repository.Notifier
	warmer          *CacheWarmer
	fallbackAddress string
	logger          *zap.Logger
}

// NewNotificationUseCase creates a new notification use case.
func NewNotificationUseCase(
	aggregates *AggregateUseCase,
	evaluator *AlertEvaluator,
	dedup *DedupGuard,
	rules *RuleUseCase,
	subscriptions *SubscriptionUseCase,
	notifier repository.Notifier,
	warmer *CacheWarmer,
	fallbackAddress string,
	logger *zap.Logger,
) *NotificationUseCase {
	return &NotificationUseCase{
		aggregates:      aggregates,
		evaluator:       evaluator,
		dedup:           dedup,
		rules:           rules,
		subscriptions:   subscriptions,
		notifier:        notifier,
		warmer:          warmer,
		fallbackAddress: fallbackAddress,
		logger:          logger,
	}
}

// HandleObjectChange processes one object change event. Malformed names and
// duplicates are not errors. A returned error means the event was not
// processed and may be redelivered.
func (uc *NotificationUseCase) HandleObjectChange(ctx context.Context, event entity.ObjectChangeEvent) (NotificationResult, error) {
	project, date, err := billing.ParseObjectName(event.Name)
	if err != nil {
		uc.logger.Warn("Ignoring object change with unexpected name",
			zap.String("object", event.Name),
			zap.Error(err))
		return NotificationResult{Ignored: true}, nil
	}
	result := NotificationResult{Project: project, Date: date}

	// new data invalidates every cached table; repopulate whatever happens next
	uc.FlushAndWarm(ctx)

	claimed, err := uc.dedup.ProcessForToday(ctx, project)
	if err != nil {
		return result, err
	}
	if !claimed {
		uc.logger.Info("Project already notified today",
			zap.String("project", project),
			zap.String("object", event.Name))
		result.Duplicate = true
		return result, nil
	}

	rules, err := uc.rules.ListForProject(ctx, project)
	if err != nil {
		return result, fmt.Errorf("error listing rules for %s: %w", project, err)
	}
	for _, rule := range rules {
		fired, err := uc.evaluator.Evaluate(ctx, rule, project, date)
		if err != nil {
			uc.logger.Warn("Rule evaluation failed",
				zap.String("project", project),
				zap.String("rule", rule.Name),
				zap.Error(err))
			continue
		}
		if fired {
			result.TriggeredRules = append(result.TriggeredRules, rule)
		}
	}

	sub, err := uc.subscriptions.Get(ctx, project)
	if err != nil {
		return result, err
	}
	if len(result.TriggeredRules) == 0 && !sub.DailySummary {
		uc.logger.Debug("Nothing to notify", zap.String("project", project))
		return result, nil
	}

	table, err := uc.aggregates.Get(ctx, project)
	if err != nil {
		uc.logger.Warn("Sending notification without aggregate",
			zap.String("project", project),
			zap.Error(err))
		table = nil
	}

	recipients := sub.Emails
	if len(recipients) == 0 && uc.fallbackAddress != "" {
		recipients = []string{uc.fallbackAddress}
	}

	n := entity.Notification{
		Project:          project,
		Date:             date,
		TriggeredRules:   result.TriggeredRules,
		CurrentAggregate: table,
		Recipients:       recipients,
	}
	if err := uc.notifier.Send(ctx, n); err != nil {
		return result, fmt.Errorf("error sending notification for %s: %w", project, err)
	}
	result.Sent = true

	uc.logger.Info("Notification sent",
		zap.String("project", project),
		zap.Int("triggered_rules", len(result.TriggeredRules)),
		zap.Strings("recipients", recipients))
	return result, nil
}

// FlushAndWarm clears the caches and schedules their repopulation.
// Errors are logged only.
func (uc *NotificationUseCase) FlushAndWarm(ctx context.Context) {
	if err := uc.aggregates.Flush(ctx); err != nil {
		uc.logger.Error("Cache flush failed", zap.Error(err))
	}
	if uc.warmer != nil {
		uc.warmer.Warm()
	}
}
