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
	"github.com/google/uuid"
)

// RuleUseCase manages alert rules. All rules live in one collection so a
// single List reads them atomically; flushing caches never touches them.
type RuleUseCase struct {
	state repository.StateRepository
}

// NewRuleUseCase creates a new rule use case.
func NewRuleUseCase(state repository.StateRepository) *RuleUseCase {
	return &RuleUseCase{state: state}
}

// Create validates and stores a new rule with a fresh id.
func (uc *RuleUseCase) Create(ctx context.Context, rule entity.AlertRule) (entity.AlertRule, error) {
	rule.ID = uuid.NewString()
	if err := normalizeRule(&rule); err != nil {
		return entity.AlertRule{}, err
	}
	if err := uc.save(ctx, rule); err != nil {
		return entity.AlertRule{}, err
	}
	return rule, nil
}

// Update replaces an existing rule.
func (uc *RuleUseCase) Update(ctx context.Context, rule entity.AlertRule) (entity.AlertRule, error) {
	if _, err := uc.Get(ctx, rule.ID); err != nil {
		return entity.AlertRule{}, err
	}
	if err := normalizeRule(&rule); err != nil {
		return entity.AlertRule{}, err
	}
	if err := uc.save(ctx, rule); err != nil {
		return entity.AlertRule{}, err
	}
	return rule, nil
}

// Delete removes a rule.
func (uc *RuleUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Get(ctx, id); err != nil {
		return err
	}
	if err := uc.state.Delete(ctx, repository.CollectionAlertRule, id); err != nil {
		return fmt.Errorf("error deleting rule %s: %w", id, err)
	}
	return nil
}

// Get returns a rule by id.
func (uc *RuleUseCase) Get(ctx context.Context, id string) (entity.AlertRule, error) {
	rec, err := uc.state.Get(ctx, repository.CollectionAlertRule, id)
	if errors.Is(err, types.ErrNotFound) {
		return entity.AlertRule{}, fmt.Errorf("%s: %w", id, types.ErrRuleNotFound)
	}
	if err != nil {
		return entity.AlertRule{}, fmt.Errorf("error reading rule %s: %w", id, err)
	}
	var rule entity.AlertRule
	if err := json.Unmarshal(rec.Value, &rule); err != nil {
		return entity.AlertRule{}, fmt.Errorf("error decoding rule %s: %w", id, err)
	}
	return rule, nil
}

// List returns every rule ordered by name, then id.
func (uc *RuleUseCase) List(ctx context.Context) ([]entity.AlertRule, error) {
	recs, err := uc.state.List(ctx, repository.CollectionAlertRule)
	if err != nil {
		return nil, fmt.Errorf("error listing rules: %w", err)
	}
	rules := make([]entity.AlertRule, 0, len(recs))
	for _, rec := range recs {
		var rule entity.AlertRule
		if err := json.Unmarshal(rec.Value, &rule); err != nil {
			return nil, fmt.Errorf("error decoding rule %s: %w", rec.Key, err)
		}
		rules = append(rules, rule)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Name != rules[j].Name {
			return rules[i].Name < rules[j].Name
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

// ListForProject returns the global rules and the rules scoped to project.
func (uc *RuleUseCase) ListForProject(ctx context.Context, project string) ([]entity.AlertRule, error) {
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []entity.AlertRule{}
	for _, r := range all {
		if r.AppliesTo(project) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (uc *RuleUseCase) save(ctx context.Context, rule entity.AlertRule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("error encoding rule %s: %w", rule.ID, err)
	}
	if err := uc.state.Put(ctx, repository.CollectionAlertRule, rule.ID, data); err != nil {
		return fmt.Errorf("error saving rule %s: %w", rule.ID, err)
	}
	return nil
}

func normalizeRule(rule *entity.AlertRule) error {
	rule.Name = strings.TrimSpace(rule.Name)
	rule.Project = strings.TrimSpace(rule.Project)
	rule.Target = strings.TrimSpace(rule.Target)
	if rule.ID == "" {
		return fmt.Errorf("%w: id is required", types.ErrInvalidRule)
	}
	if rule.Name == "" {
		return fmt.Errorf("%w: name is required", types.ErrInvalidRule)
	}
	if !rule.Range.Valid() {
		return fmt.Errorf("%w: range must be 1, 7, 30 or 365 days", types.ErrInvalidRule)
	}
	if !rule.Trigger.Valid() {
		return fmt.Errorf("%w: unknown trigger kind", types.ErrInvalidRule)
	}
	if rule.Target == "" {
		rule.Target = entity.TargetTotal
	}
	return nil
}
