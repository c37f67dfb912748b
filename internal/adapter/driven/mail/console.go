package mail

import (
	"context"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
)

// ConsoleNotifierImpl prints notifications instead of mailing them.
type ConsoleNotifierImpl struct {
	console types.ConsoleInterface
}

// NewConsoleNotifier creates a notifier writing to the console.
func NewConsoleNotifier(console types.ConsoleInterface) *ConsoleNotifierImpl {
	return &ConsoleNotifierImpl{console: console}
}

func (n *ConsoleNotifierImpl) Send(ctx context.Context, notification entity.Notification) error {
	n.console.LogInfo("%s", Subject(notification))
	n.console.LogInfo("To: %s", strings.Join(notification.Recipients, ", "))
	n.console.Println(Body(notification))
	return nil
}
