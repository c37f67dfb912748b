package api

import (
	"encoding/json"
	"net/http"

	"github.com/diillson/billing-alerts-go/internal/domain/billing"
	"github.com/diillson/billing-alerts-go/internal/domain/entity"
)

type notificationResponse struct {
	Project        string   `json:"project,omitempty"`
	Date           string   `json:"date,omitempty"`
	Ignored        bool     `json:"ignored"`
	Duplicate      bool     `json:"duplicate"`
	Sent           bool     `json:"sent"`
	TriggeredRules []string `json:"triggered_rules"`
}

// HandleObjectChange receives the storage "object changed" notification.
// A 503 asks the sender to redeliver.
func (c *Controller) HandleObjectChange(w http.ResponseWriter, r *http.Request) {
	var event entity.ObjectChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	result, err := c.Notifications.HandleObjectChange(r.Context(), event)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	resp := notificationResponse{
		Project:        result.Project,
		Ignored:        result.Ignored,
		Duplicate:      result.Duplicate,
		Sent:           result.Sent,
		TriggeredRules: []string{},
	}
	if !result.Date.IsZero() {
		resp.Date = result.Date.Format(billing.DateLayout)
	}
	for _, rule := range result.TriggeredRules {
		resp.TriggeredRules = append(resp.TriggeredRules, rule.Name)
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleFlushCache clears the aggregate cache and the project catalog.
func (c *Controller) HandleFlushCache(w http.ResponseWriter, r *http.Request) {
	c.Notifications.FlushAndWarm(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"ok": "1"})
}
