package cli

import (
	"context"
	"fmt"

	"github.com/diillson/billing-alerts-go/internal/adapter/driven/aws"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/localfs"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/mail"
	"github.com/diillson/billing-alerts-go/internal/adapter/driven/store"
	"github.com/diillson/billing-alerts-go/internal/adapter/driving/api"
	"github.com/diillson/billing-alerts-go/internal/application/usecase"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/diillson/billing-alerts-go/pkg/logging"
	"go.uber.org/zap"
)

// services agrupa as dependências montadas a partir da configuração.
type services struct {
	config        *types.Config
	logger        *zap.Logger
	objects       repository.ObjectRepository
	state         repository.StateRepository
	aggregates    *usecase.AggregateUseCase
	evaluator     *usecase.AlertEvaluator
	rules         *usecase.RuleUseCase
	subscriptions *usecase.SubscriptionUseCase
	notifications *usecase.NotificationUseCase
	warmer        *usecase.CacheWarmer
}

// newObjectRepository seleciona o storage das exportações.
func newObjectRepository(ctx context.Context, cfg types.StorageConfig) (repository.ObjectRepository, error) {
	switch cfg.Backend {
	case "", "local":
		return localfs.NewObjectRepository(cfg.Dir), nil
	case "s3":
		return aws.NewObjectRepository(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage backend %q: %w", cfg.Backend, types.ErrUnsupportedBackend)
	}
}

func (app *CLIApp) buildServices(ctx context.Context, cfg *types.Config) (*services, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return nil, err
	}

	objects, err := newObjectRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	state, err := store.New(ctx, cfg.State, logger)
	if err != nil {
		return nil, err
	}

	notifier, err := mail.New(cfg.Mail, app.console, logger)
	if err != nil {
		_ = state.Close()
		return nil, err
	}

	aggregates := usecase.NewAggregateUseCase(objects, state, usecase.AggregateOptions{
		Prefix:      cfg.Storage.Prefix,
		HistoryDays: cfg.HistoryDays,
		Now:         app.now,
	}, logger)
	evaluator := usecase.NewAlertEvaluator(aggregates)
	rules := usecase.NewRuleUseCase(state)
	subscriptions := usecase.NewSubscriptionUseCase(state)
	warmer := usecase.NewCacheWarmer(aggregates, cfg.WarmWorkers, logger)

	notifications := usecase.NewNotificationUseCase(
		aggregates,
		evaluator,
		usecase.NewDedupGuard(state, app.now, logger),
		rules,
		subscriptions,
		notifier,
		warmer,
		cfg.Mail.FallbackAddress,
		logger,
	)

	return &services{
		config:        cfg,
		logger:        logger,
		objects:       objects,
		state:         state,
		aggregates:    aggregates,
		evaluator:     evaluator,
		rules:         rules,
		subscriptions: subscriptions,
		notifications: notifications,
		warmer:        warmer,
	}, nil
}

func (s *services) controller() *api.Controller {
	return &api.Controller{
		Notifications: s.notifications,
		Aggregates:    s.aggregates,
		Rules:         s.rules,
		Subscriptions: s.subscriptions,
		Logger:        s.logger,
	}
}

// Close espera o aquecimento de cache em andamento e fecha o store.
func (s *services) Close() error {
	s.warmer.Stop()
	err := s.state.Close()
	_ = s.logger.Sync()
	return err
}
