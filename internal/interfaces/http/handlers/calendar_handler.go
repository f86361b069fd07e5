package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/caldate"
)

// CalendarService is the part of the docket service the calendar endpoints
// use.
type CalendarService interface {
	Holidays(ctx context.Context, year int) (*docket.HolidayList, error)
	Day(ctx context.Context, date string) (*docket.DayInfo, error)
}

// CalendarHandler serves holiday and business-day lookups.
type CalendarHandler struct {
	svc    CalendarService
	logger logging.Logger
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(svc CalendarService, logger logging.Logger) *CalendarHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CalendarHandler{svc: svc, logger: logger.Named("calendar_handler")}
}

// Holidays handles GET /api/v1/holidays/{year}.
func (h *CalendarHandler) Holidays(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeAppError(w, h.logger, caldate.ErrInvalidYear.WithDetailf("%q is not a year", raw))
		return
	}

	list, err := h.svc.Holidays(r.Context(), year)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Day handles GET /api/v1/days/{date}.
func (h *CalendarHandler) Day(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Day(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
