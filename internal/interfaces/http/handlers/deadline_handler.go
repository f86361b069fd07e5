package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/errors"
)

// DeadlineService is the part of the docket service the deadline endpoints
// use.
type DeadlineService interface {
	Compute(ctx context.Context, req *docket.ComputeRequest) (*docket.Computation, error)
	Status(ctx context.Context, deadlineDate string) (*docket.StatusReport, error)
	Rules() []deadline.Rule
}

// DeadlineHandler serves deadline computation endpoints.
type DeadlineHandler struct {
	svc         DeadlineService
	logger      logging.Logger
	maxBodySize int64
}

// NewDeadlineHandler creates a DeadlineHandler. A maxBodySize of zero uses
// DefaultMaxBodySize.
func NewDeadlineHandler(svc DeadlineService, logger logging.Logger, maxBodySize int64) *DeadlineHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DeadlineHandler{svc: svc, logger: logger.Named("deadline_handler"), maxBodySize: maxBodySize}
}

// RulesResponse lists the named rules.
type RulesResponse struct {
	Rules []deadline.Rule `json:"rules"`
}

// Compute handles POST /api/v1/deadlines/compute.
func (h *DeadlineHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req docket.ComputeRequest
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	out, err := h.svc.Compute(r.Context(), &req)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Status handles GET /api/v1/deadlines/status?deadline=YYYY-MM-DD.
func (h *DeadlineHandler) Status(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("deadline")
	if date == "" {
		writeAppError(w, h.logger, errors.InvalidParam("query parameter deadline is required"))
		return
	}

	report, err := h.svc.Status(r.Context(), date)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListRules handles GET /api/v1/rules.
func (h *DeadlineHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RulesResponse{Rules: h.svc.Rules()})
}
