package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type subscriptionRequest struct {
	Emails       []string `json:"emails"`
	DailySummary bool     `json:"daily_summary"`
}

func (c *Controller) HandleSubscriptionGet(w http.ResponseWriter, r *http.Request) {
	sub, err := c.Subscriptions.Get(r.Context(), mux.Vars(r)["project"])
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (c *Controller) HandleSubscriptionUpdate(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	sub, err := c.Subscriptions.Update(r.Context(), mux.Vars(r)["project"], req.Emails, req.DailySummary)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
