package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"go.uber.org/zap"
)

const catalogKey = "ProjectCatalog"

// AggregateOptions configures the aggregate cache.
type AggregateOptions struct {
	// Prefix is prepended to every export object name.
	Prefix string
	// HistoryDays bounds the trailing window read when no date is given.
	HistoryDays int
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// AggregateUseCase builds, caches and serves project cost tables and the project catalog.
// Cached entries never expire; Flush is the only invalidation.
type AggregateUseCase struct {
	objects     repository.ObjectRepository
	state       repository.StateRepository
	prefix      string
	historyDays int
	now         func() time.Time
	logger      *zap.Logger
}

// NewAggregateUseCase creates a new aggregate use case.
func NewAggregateUseCase(
	objects repository.ObjectRepository,
	state repository.StateRepository,
	opts AggregateOptions,
	logger *zap.Logger,
) *AggregateUseCase {
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 90
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AggregateUseCase{
		objects:     objects,
		state:       state,
		prefix:      opts.Prefix,
		historyDays: opts.HistoryDays,
		now:         opts.Now,
		logger:      logger,
	}
}

// Get returns the project's table over the trailing window [today-HistoryDays, today].
func (uc *AggregateUseCase) Get(ctx context.Context, project string) (*entity.TimeSeriesTable, error) {
	return uc.getOrBuild(ctx, project, project, func() ([]string, error) {
		return uc.windowObjects(ctx, project)
	})
}

// GetForDate returns the table built from the single export object of project and date.
// A missing object yields an empty table.
func (uc *AggregateUseCase) GetForDate(ctx context.Context, project string, date time.Time) (*entity.TimeSeriesTable, error) {
	key := fmt.Sprintf("%s@%s", project, date.Format(billing.DateLayout))
	return uc.getOrBuild(ctx, project, key, func() ([]string, error) {
		return []string{billing.ObjectName(uc.prefix, project, date)}, nil
	})
}

func (uc *AggregateUseCase) getOrBuild(ctx context.Context, project, key string, names func() ([]string, error)) (*entity.TimeSeriesTable, error) {
	if table, ok := uc.cached(ctx, key); ok {
		return table, nil
	}

	objects, err := names()
	if err != nil {
		return nil, fmt.Errorf("project %s: %w: %w", project, types.ErrAggregateUnavailable, err)
	}
	table, err := uc.build(ctx, objects)
	if err != nil {
		uc.logger.Warn("Aggregate build failed",
			zap.String("project", project),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("project %s: %w: %w", project, types.ErrAggregateUnavailable, err)
	}

	data, err := json.Marshal(table)
	if err == nil {
		err = uc.state.Put(ctx, repository.CollectionAggregateCache, key, data)
	}
	if err != nil {
		uc.logger.Warn("Could not cache aggregate", zap.String("key", key), zap.Error(err))
	}
	return table, nil
}

func (uc *AggregateUseCase) cached(ctx context.Context, key string) (*entity.TimeSeriesTable, bool) {
	rec, err := uc.state.Get(ctx, repository.CollectionAggregateCache, key)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			uc.logger.Warn("Aggregate cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	table := &entity.TimeSeriesTable{}
	if err := json.Unmarshal(rec.Value, table); err != nil {
		uc.logger.Warn("Discarding undecodable cached aggregate", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return table, true
}

func (uc *AggregateUseCase) build(ctx context.Context, names []string) (*entity.TimeSeriesTable, error) {
	b := billing.NewBuilder()
	for _, name := range names {
		data, err := uc.objects.ReadObject(ctx, name)
		if errors.Is(err, types.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := b.AddObject(data); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	table := b.Table()
	if err := billing.Synthesize(table); err != nil {
		return nil, err
	}
	return table, nil
}

// windowObjects lists the project's export objects dated inside the trailing window.
func (uc *AggregateUseCase) windowObjects(ctx context.Context, project string) ([]string, error) {
	today := billing.Day(uc.now())
	from := today.AddDate(0, 0, -uc.historyDays)

	names, err := uc.objects.ListObjects(ctx, billing.ProjectPrefix(uc.prefix, project))
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, name := range names {
		p, date, err := billing.ParseObjectName(name)
		if err != nil || p != project {
			continue
		}
		if date.Before(from) || date.After(today) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// ListProjects returns the known projects in first-seen order of the object listing.
func (uc *AggregateUseCase) ListProjects(ctx context.Context) ([]string, error) {
	if rec, err := uc.state.Get(ctx, repository.CollectionProjectCatalog, catalogKey); err == nil {
		var projects []string
		if err := json.Unmarshal(rec.Value, &projects); err == nil {
			return projects, nil
		}
	}

	names, err := uc.objects.ListObjects(ctx, uc.prefix)
	if err != nil {
		return nil, fmt.Errorf("error listing export objects: %w", err)
	}
	projects := []string{}
	seen := make(map[string]bool)
	for _, name := range names {
		project, _, err := billing.ParseObjectName(name)
		if err != nil {
			uc.logger.Debug("Skipping object outside the naming contract", zap.String("object", name))
			continue
		}
		if !seen[project] {
			seen[project] = true
			projects = append(projects, project)
		}
	}

	data, _ := json.Marshal(projects)
	if err := uc.state.Put(ctx, repository.CollectionProjectCatalog, catalogKey, data); err != nil {
		uc.logger.Warn("Could not cache project catalog", zap.Error(err))
	}
	return projects, nil
}

// Flush discards every cached aggregate and the project catalog.
func (uc *AggregateUseCase) Flush(ctx context.Context) error {
	if err := uc.state.DeleteCollection(ctx, repository.CollectionAggregateCache); err != nil {
		return fmt.Errorf("error flushing aggregate cache: %w", err)
	}
	if err := uc.state.Delete(ctx, repository.CollectionProjectCatalog, catalogKey); err != nil {
		return fmt.Errorf("error flushing project catalog: %w", err)
	}
	return nil
}
