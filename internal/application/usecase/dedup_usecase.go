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
	"github.com/diillson/billing-alerts-go/pkg/retry"
	"go.uber.org/zap"
)

const dedupKey = "NotificationDedupState"

var errStateConflict = errors.New("dedup state changed concurrently")

// DedupGuard lets at most one notification per project and calendar day through.
type DedupGuard struct {
	state  repository.StateRepository
	now    func() time.Time
	retry  retry.Config
	logger *zap.Logger
}

// NewDedupGuard creates a guard over the singleton dedup record.
func NewDedupGuard(state repository.StateRepository, now func() time.Time, logger *zap.Logger) *DedupGuard {
	if now == nil {
		now = time.Now
	}
	return &DedupGuard{
		state:  state,
		now:    now,
		retry:  retry.DefaultConfig(),
		logger: logger,
	}
}

// ProcessForToday claims project for today. It returns true for exactly one
// caller per project and day. types.ErrDedupConflict means the claim could not
// be settled and the event should be retried.
func (g *DedupGuard) ProcessForToday(ctx context.Context, project string) (bool, error) {
	today := billing.Day(g.now()).Format(billing.DateLayout)
	claimed := false

	err := retry.WithBackoff(ctx, g.retry, g.logger, "dedup claim "+project, func() error {
		state, version, err := g.load(ctx)
		if err != nil {
			return err
		}
		if state.Day != today {
			state = entity.DedupState{Day: today, Processed: []string{}}
		}
		if state.Has(project) {
			claimed = false
			return nil
		}
		state.Processed = append(state.Processed, project)

		data, err := json.Marshal(state)
		if err != nil {
			return retry.Permanent(err)
		}
		ok, err := g.state.CompareAndSwap(ctx, repository.CollectionDedupState, dedupKey, version, data)
		if err != nil {
			return err
		}
		if !ok {
			return errStateConflict
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", types.ErrDedupConflict, err)
	}
	return claimed, nil
}

func (g *DedupGuard) load(ctx context.Context) (entity.DedupState, int64, error) {
	rec, err := g.state.Get(ctx, repository.CollectionDedupState, dedupKey)
	if errors.Is(err, types.ErrNotFound) {
		return entity.DedupState{}, 0, nil
	}
	if err != nil {
		return entity.DedupState{}, 0, err
	}
	var state entity.DedupState
	if err := json.Unmarshal(rec.Value, &state); err != nil {
		// overwrite a corrupt record rather than blocking every notification
		g.logger.Warn("Resetting undecodable dedup state", zap.Error(err))
		return entity.DedupState{}, rec.Version, nil
	}
	return state, rec.Version, nil
}

// State returns the stored dedup record.
func (g *DedupGuard) State(ctx context.Context) (entity.DedupState, error) {
	state, _, err := g.load(ctx)
	return state, err
}
