package api

import (
	"encoding/json"
	"net/http"

	"github.com/diillson/billing-alerts-go/internal/domain/entity"
	"github.com/gorilla/mux"
)

func (c *Controller) HandleRulesList(w http.ResponseWriter, r *http.Request) {
	var (
		rules []entity.AlertRule
		err   error
	)
	if project := r.URL.Query().Get("project"); project != "" {
		rules, err = c.Rules.ListForProject(r.Context(), project)
	} else {
		rules, err = c.Rules.List(r.Context())
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (c *Controller) HandleRuleCreate(w http.ResponseWriter, r *http.Request) {
	var rule entity.AlertRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	created, err := c.Rules.Create(r.Context(), rule)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (c *Controller) HandleRuleGet(w http.ResponseWriter, r *http.Request) {
	rule, err := c.Rules.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (c *Controller) HandleRuleUpdate(w http.ResponseWriter, r *http.Request) {
	var rule entity.AlertRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	rule.ID = mux.Vars(r)["id"]
	updated, err := c.Rules.Update(r.Context(), rule)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (c *Controller) HandleRuleDelete(w http.ResponseWriter, r *http.Request) {
	if err := c.Rules.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		c.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
