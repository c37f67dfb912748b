package repository

import (
	"context"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
)

// Notifier delivers a combined project notification.
type Notifier interface {
	Send(ctx context.Context, n entity.Notification) error
}
