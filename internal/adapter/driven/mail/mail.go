package mail

import (
	"fmt"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"go.uber.org/zap"
)

// New selects the notifier configured by cfg.Backend.
func New(cfg types.MailConfig, console types.ConsoleInterface, logger *zap.Logger) (repository.Notifier, error) {
	switch cfg.Backend {
	case "", "console":
		return NewConsoleNotifier(console), nil
	case "smtp":
		return NewSMTPNotifier(cfg, logger)
	default:
		return nil, fmt.Errorf("mail backend %q: %w", cfg.Backend, types.ErrUnsupportedBackend)
	}
}
