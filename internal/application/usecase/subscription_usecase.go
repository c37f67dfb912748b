package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
)

// SubscriptionUseCase reads and updates the per-project subscriptions.
type SubscriptionUseCase struct {
	state repository.StateRepository
}

// NewSubscriptionUseCase creates a new subscription use case.
func NewSubscriptionUseCase(state repository.StateRepository) *SubscriptionUseCase {
	return &SubscriptionUseCase{state: state}
}

// Get returns the project's subscription, creating an empty one on first access.
func (uc *SubscriptionUseCase) Get(ctx context.Context, project string) (entity.Subscription, error) {
	rec, err := uc.state.Get(ctx, repository.CollectionSubscription, project)
	if errors.Is(err, types.ErrNotFound) {
		sub := entity.Subscription{Project: project, Emails: []string{}}
		if err := uc.save(ctx, sub); err != nil {
			return entity.Subscription{}, err
		}
		return sub, nil
	}
	if err != nil {
		return entity.Subscription{}, fmt.Errorf("error reading subscription %s: %w", project, err)
	}
	var sub entity.Subscription
	if err := json.Unmarshal(rec.Value, &sub); err != nil {
		return entity.Subscription{}, fmt.Errorf("error decoding subscription %s: %w", project, err)
	}
	if sub.Emails == nil {
		sub.Emails = []string{}
	}
	return sub, nil
}

// Update replaces the email list and daily summary flag.
func (uc *SubscriptionUseCase) Update(ctx context.Context, project string, emails []string, dailySummary bool) (entity.Subscription, error) {
	sub := entity.Subscription{
		Project:      project,
		Emails:       normalizeEmails(emails),
		DailySummary: dailySummary,
	}
	if err := uc.save(ctx, sub); err != nil {
		return entity.Subscription{}, err
	}
	return sub, nil
}

func (uc *SubscriptionUseCase) save(ctx context.Context, sub entity.Subscription) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("error encoding subscription %s: %w", sub.Project, err)
	}
	if err := uc.state.Put(ctx, repository.CollectionSubscription, sub.Project, data); err != nil {
		return fmt.Errorf("error saving subscription %s: %w", sub.Project, err)
	}
	return nil
}

func normalizeEmails(emails []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
