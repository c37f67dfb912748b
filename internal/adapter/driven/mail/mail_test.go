package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleNotification(t *testing.T) entity.Notification {
	t.Helper()
	table, err := billing.Build([][]byte{[]byte(`[
		{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-03T00:00:00-08:00","cost":{"amount":"10","currency":"USD"}},
		{"lineItemId":"com.google.cloud/services/compute-engine/Vm","endTime":"2014-02-04T00:00:00-08:00","cost":{"amount":"45","currency":"USD"}},
		{"lineItemId":"com.google.cloud/services/bigquery/Storage","endTime":"2014-02-04T00:00:00-08:00","cost":{"amount":"0.5","currency":"USD"}}
	]`)})
	require.NoError(t, err)
	return entity.Notification{
		Project: "demo",
		Date:    time.Date(2014, 2, 4, 0, 0, 0, 0, time.UTC),
		TriggeredRules: []entity.AlertRule{{
			Name:         "compute spike",
			Range:        entity.OneDay,
			Trigger:      entity.RelativeChange,
			TriggerValue: decimal.NewFromInt(300),
			Target:       "Cloud/compute-engine",
		}},
		CurrentAggregate: table,
		Recipients:       []string{"a@example.com", "b@example.com"},
	}
}

func TestSubjectAndBody(t *testing.T) {
	n := sampleNotification(t)
	assert.Equal(t, "[billing-alerts] 1 alert(s) triggered for demo (2014-02-04)", Subject(n))

	body := Body(n)
	assert.Contains(t, body, "compute spike: RELATIVE_CHANGE on Cloud/compute-engine over 1d, threshold 300")
	assert.Contains(t, body, "Costs from 2014-02-03 to 2014-02-04")
	assert.Contains(t, body, "55.00")
	assert.Contains(t, body, "0.50")

	n.TriggeredRules = nil
	n.CurrentAggregate = nil
	assert.Contains(t, Subject(n), "Daily cost summary")
	assert.Contains(t, Body(n), "No cost data")
}

func TestSMTPNotifierSend(t *testing.T) {
	notifier, err := NewSMTPNotifier(types.MailConfig{
		Host:     "smtp.example.com",
		Port:     2525,
		Username: "user",
		Password: "secret",
		From:     "alerts@example.com",
	}, zap.NewNop())
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	notifier.WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	})

	require.NoError(t, notifier.Send(context.Background(), sampleNotification(t)))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "alerts@example.com", gotFrom)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: [billing-alerts] 1 alert(s) triggered for demo (2014-02-04)\r\n")
	assert.True(t, strings.Contains(msg, "\r\n\r\nProject: demo\r\n"))
}

func TestSMTPNotifierErrors(t *testing.T) {
	_, err := NewSMTPNotifier(types.MailConfig{From: "a@example.com"}, zap.NewNop())
	assert.Error(t, err)

	notifier, err := NewSMTPNotifier(types.MailConfig{Host: "localhost", Port: 25, From: "a@example.com"}, zap.NewNop())
	require.NoError(t, err)
	notifier.WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		return fmt.Errorf("connection refused")
	})

	err = notifier.Send(context.Background(), sampleNotification(t))
	assert.ErrorContains(t, err, "connection refused")

	n := sampleNotification(t)
	n.Recipients = nil
	assert.Error(t, notifier.Send(context.Background(), n))
}

type captureConsole struct {
	types.ConsoleInterface
	lines []string
}

func (c *captureConsole) LogInfo(format string, a ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, a...))
}

func (c *captureConsole) Println(a ...interface{}) {
	c.lines = append(c.lines, fmt.Sprint(a...))
}

func TestConsoleNotifier(t *testing.T) {
	console := &captureConsole{}
	require.NoError(t, NewConsoleNotifier(console).Send(context.Background(), sampleNotification(t)))
	require.Len(t, console.lines, 3)
	assert.Equal(t, "To: a@example.com, b@example.com", console.lines[1])
}

func TestNewSelectsBackend(t *testing.T) {
	n, err := New(types.MailConfig{Backend: "console"}, &captureConsole{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ConsoleNotifierImpl{}, n)

	_, err = New(types.MailConfig{Backend: "pigeon"}, &captureConsole{}, zap.NewNop())
	assert.ErrorIs(t, err, types.ErrUnsupportedBackend)
}
