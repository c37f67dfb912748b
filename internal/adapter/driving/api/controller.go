// Package api exposes the alert engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diillson/billing-alerts-go/internal/application/usecase"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/diillson/billing-alerts-go/pkg/version"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller holds the use cases served by the HTTP routes.
type Controller struct {
	Notifications *usecase.NotificationUseCase
	Aggregates    *usecase.AggregateUseCase
	Rules         *usecase.RuleUseCase
	Subscriptions *usecase.SubscriptionUseCase
	Logger        *zap.Logger
}

// NewRouter returns the router with every route of the service.
func (c *Controller) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", c.HandleHealth).Methods(http.MethodGet)

	// storage notifications and cache management
	r.HandleFunc("/objectChangeNotification", c.HandleObjectChange).Methods(http.MethodPost)
	r.HandleFunc("/flushCache", c.HandleFlushCache).Methods(http.MethodPost)

	r.HandleFunc("/chart", c.HandleChart).Methods(http.MethodGet)
	r.HandleFunc("/projects", c.HandleProjects).Methods(http.MethodGet)

	r.HandleFunc("/rules", c.HandleRulesList).Methods(http.MethodGet)
	r.HandleFunc("/rules", c.HandleRuleCreate).Methods(http.MethodPost)
	r.HandleFunc("/rules/{id}", c.HandleRuleGet).Methods(http.MethodGet)
	r.HandleFunc("/rules/{id}", c.HandleRuleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/rules/{id}", c.HandleRuleDelete).Methods(http.MethodDelete)

	r.HandleFunc("/subscriptions/{project}", c.HandleSubscriptionGet).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{project}", c.HandleSubscriptionUpdate).Methods(http.MethodPut)

	return r
}

// HandleHealth answers liveness probes.
func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.FormatVersion()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidRule):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrRuleNotFound), errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrDedupConflict):
		return http.StatusServiceUnavailable
	case errors.Is(err, types.ErrAggregateUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.Logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeError(w, status, err.Error())
}
