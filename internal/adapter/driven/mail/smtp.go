package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"go.uber.org/zap"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifierImpl sends one plain-text mail per notification.
type SMTPNotifierImpl struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   SendFunc
	now    func() time.Time
	logger *zap.Logger
}

// NewSMTPNotifier creates a notifier for the configured relay.
func NewSMTPNotifier(cfg types.MailConfig, logger *zap.Logger) (*SMTPNotifierImpl, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifierImpl{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:   cfg.From,
		auth:   auth,
		send:   smtp.SendMail,
		now:    time.Now,
		logger: logger,
	}, nil
}

// WithSendFunc replaces the transport, used in tests.
func (n *SMTPNotifierImpl) WithSendFunc(send SendFunc) *SMTPNotifierImpl {
	n.send = send
	return n
}

func (n *SMTPNotifierImpl) Send(ctx context.Context, notification entity.Notification) error {
	if len(notification.Recipients) == 0 {
		return fmt.Errorf("notification for %s has no recipients", notification.Project)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := n.compose(notification)
	if err := n.send(n.addr, n.auth, n.from, notification.Recipients, msg); err != nil {
		return fmt.Errorf("error sending mail via %s: %w", n.addr, err)
	}
	n.logger.Debug("Mail sent",
		zap.String("project", notification.Project),
		zap.Strings("to", notification.Recipients))
	return nil
}

func (n *SMTPNotifierImpl) compose(notification entity.Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(notification.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(notification))
	fmt.Fprintf(&b, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(Body(notification), "\n", "\r\n"))
	return []byte(b.String())
}
