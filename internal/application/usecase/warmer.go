package usecase

import (
	"context"

	"github.com/alitto/pond/v2"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"go.uber.org/zap"
)

// CacheSource is what the warmer repopulates.
type CacheSource interface {
	ListProjects(ctx context.Context) ([]string, error)
	Get(ctx context.Context, project string) (*entity.TimeSeriesTable, error)
}

// CacheWarmer rebuilds the project catalog and every project's aggregate in
// the background. Failures are logged and never reach the caller.
type CacheWarmer struct {
	pool   pond.Pool
	source CacheSource
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewCacheWarmer creates a warmer running at most workers warms at once.
func NewCacheWarmer(source CacheSource, workers int, logger *zap.Logger) *CacheWarmer {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheWarmer{
		pool:   pond.NewPool(workers),
		source: source,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Warm submits a repopulation and returns immediately.
func (w *CacheWarmer) Warm() pond.Task {
	return w.pool.Submit(func() {
		w.warm(w.ctx)
	})
}

func (w *CacheWarmer) warm(ctx context.Context) {
	projects, err := w.source.ListProjects(ctx)
	if err != nil {
		w.logger.Warn("Cache warming could not list projects", zap.Error(err))
		return
	}
	for _, project := range projects {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.source.Get(ctx, project); err != nil {
			w.logger.Warn("Cache warming failed for project",
				zap.String("project", project),
				zap.Error(err))
		}
	}
	w.logger.Debug("Cache warmed", zap.Int("projects", len(projects)))
}

// Stop cancels running warms and waits for the pool to drain.
func (w *CacheWarmer) Stop() {
	w.cancel()
	w.pool.StopAndWait()
}
