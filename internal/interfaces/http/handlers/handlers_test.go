package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/errors"
	"github.com/turtacn/lexclock/pkg/holiday"
)

func newTestDocket(t *testing.T) *docket.Service {
	t.Helper()
	engine := deadline.NewEngine(
		deadline.WithCalendar(deadline.NewCalendar(holiday.MustNewGenerator())),
		deadline.WithClock(deadline.FixedClock(caldate.MustParse("2025-01-15"))),
	)
	return docket.NewService(engine,
		docket.WithIDGenerator(func() string { return "comp-1" }),
		docket.WithNow(func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }),
	)
}

// newTestMux routes like the production router so chi URL params resolve.
func newTestMux(t *testing.T, svc *docket.Service, logger logging.Logger) http.Handler {
	t.Helper()
	dh := NewDeadlineHandler(svc, logger, 256)
	ch := NewCalendarHandler(svc, logger)

	r := chi.NewRouter()
	r.Post("/deadlines/compute", dh.Compute)
	r.Get("/deadlines/status", dh.Status)
	r.Get("/rules", dh.ListRules)
	r.Get("/holidays/{year}", ch.Holidays)
	r.Get("/days/{date}", ch.Day)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type computationBody struct {
	ID        string `json:"id"`
	Rule      string `json:"rule"`
	Kind      string `json:"kind"`
	Magnitude int    `json:"magnitude"`
	Deadline  string `json:"deadline"`
	Status    struct {
		DaysRemaining int    `json:"days_remaining"`
		Urgency       string `json:"urgency"`
		IsCritical    bool   `json:"is_critical"`
	} `json:"status"`
	Grace *struct {
		GraceEnd    string `json:"grace_end"`
		DisplayText string `json:"display_text"`
	} `json:"grace"`
}

func TestDeadlineHandler_Compute(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	w := do(t, h, http.MethodPost, "/deadlines/compute", `{"rule":"answer","trigger_date":"2025-01-15","with_grace":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got computationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "comp-1", got.ID)
	assert.Equal(t, "answer", got.Rule)
	assert.Equal(t, "calendar_days", got.Kind)
	assert.Equal(t, "2025-02-14", got.Deadline)
	assert.Equal(t, 30, got.Status.DaysRemaining)
	assert.Equal(t, "critical", got.Status.Urgency)
	assert.True(t, got.Status.IsCritical)
	require.NotNil(t, got.Grace)
	assert.Equal(t, "2025-02-17", got.Grace.GraceEnd)
	assert.Equal(t, "2025-02-14 (grace period ends 2025-02-17)", got.Grace.DisplayText)
}

func TestDeadlineHandler_ComputeByKind(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	w := do(t, h, http.MethodPost, "/deadlines/compute", `{"kind":"business_days","magnitude":3,"trigger_date":"2025-01-17"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got computationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2025-01-23", got.Deadline)
	assert.Nil(t, got.Grace)
}

func TestDeadlineHandler_ComputeErrors(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty body", "", http.StatusBadRequest, string(errors.ErrCodeBadRequest)},
		{"malformed", `{"rule":`, http.StatusBadRequest, string(errors.ErrCodeBadRequest)},
		{"unknown field", `{"rule":"answer","trigger_date":"2025-01-15","court":"x"}`, http.StatusBadRequest, string(errors.ErrCodeBadRequest)},
		{"two objects", `{"rule":"answer","trigger_date":"2025-01-15"}{}`, http.StatusBadRequest, string(errors.ErrCodeBadRequest)},
		{"too large", `{"rule":"` + strings.Repeat("a", 300) + `"}`, http.StatusBadRequest, string(errors.ErrCodeBadRequest)},
		{"missing trigger", `{"rule":"answer"}`, http.StatusUnprocessableEntity, string(errors.ErrCodeValidation)},
		{"bad date", `{"rule":"answer","trigger_date":"2025-02-30"}`, http.StatusBadRequest, string(errors.ErrCodeInvalidDateFormat)},
		{"unknown rule", `{"rule":"appeal","trigger_date":"2025-01-15"}`, http.StatusNotFound, string(errors.ErrCodeUnknownRule)},
		{"negative magnitude", `{"kind":"calendar_days","magnitude":-1,"trigger_date":"2025-01-15"}`, http.StatusBadRequest, string(errors.ErrCodeInvalidMagnitude)},
		{"huge magnitude", `{"kind":"calendar_days","magnitude":4611686018427387904,"trigger_date":"2025-01-15"}`, http.StatusUnprocessableEntity, string(errors.ErrCodeValidation)},
		{"deadline past 9999", `{"rule":"answer","trigger_date":"9999-12-20"}`, http.StatusBadRequest, string(errors.ErrCodeInvalidYear)},
		{"months past 9999", `{"kind":"months","magnitude":1,"trigger_date":"9999-12-15"}`, http.StatusBadRequest, string(errors.ErrCodeInvalidYear)},
		{"grace past 9999", `{"rule":"answer","trigger_date":"9999-12-01","grace_days":3}`, http.StatusBadRequest, string(errors.ErrCodeInvalidYear)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/deadlines/compute", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]caldate.Date{"deadline": {}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decodeError(t, w)
	assert.Equal(t, string(errors.ErrCodeInternal), resp.Code)
	assert.Equal(t, "internal server error", resp.Message)
}

func TestDeadlineHandler_Status(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	w := do(t, h, http.MethodGet, "/deadlines/status?deadline=2025-01-10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Deadline string `json:"deadline"`
		Today    string `json:"today"`
		Status   struct {
			DaysRemaining int    `json:"days_remaining"`
			Urgency       string `json:"urgency"`
			IsClosed      bool   `json:"is_closed"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2025-01-15", got.Today)
	assert.Equal(t, -5, got.Status.DaysRemaining)
	assert.Equal(t, "closed", got.Status.Urgency)
	assert.True(t, got.Status.IsClosed)

	w = do(t, h, http.MethodGet, "/deadlines/status", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrCodeBadRequest), decodeError(t, w).Code)

	w = do(t, h, http.MethodGet, "/deadlines/status?deadline=01/10/2025", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrCodeInvalidDateFormat), decodeError(t, w).Code)
}

func TestDeadlineHandler_ListRules(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	w := do(t, h, http.MethodGet, "/rules", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Rules []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Rules, 4)
	names := make([]string, 0, len(got.Rules))
	for _, r := range got.Rules {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"answer", "discovery_close", "objection", "motion_response"}, names)
}

func TestCalendarHandler_Holidays(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	w := do(t, h, http.MethodGet, "/holidays/2025", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Year         int    `json:"year"`
		Jurisdiction string `json:"jurisdiction"`
		Observance   string `json:"observance"`
		Holidays     []struct {
			Date string `json:"date"`
			Name string `json:"name"`
		} `json:"holidays"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, "US-FED", got.Jurisdiction)
	assert.Equal(t, "literal", got.Observance)
	require.Len(t, got.Holidays, 10)
	assert.Equal(t, "2025-01-01", got.Holidays[0].Date)

	for _, target := range []string{"/holidays/abc", "/holidays/0", "/holidays/10000"} {
		w = do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, string(errors.ErrCodeInvalidYear), decodeError(t, w).Code, target)
	}
}

func TestCalendarHandler_Day(t *testing.T) {
	h := newTestMux(t, newTestDocket(t), nil)

	w := do(t, h, http.MethodGet, "/days/2025-01-20", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Date          string `json:"date"`
		Weekday       string `json:"weekday"`
		IsHoliday     bool   `json:"is_holiday"`
		HolidayName   string `json:"holiday_name"`
		IsBusinessDay bool   `json:"is_business_day"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Monday", got.Weekday)
	assert.True(t, got.IsHoliday)
	assert.NotEmpty(t, got.HolidayName)
	assert.False(t, got.IsBusinessDay)

	w = do(t, h, http.MethodGet, "/days/2025-13-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingService struct{ err error }

func (f failingService) Compute(context.Context, *docket.ComputeRequest) (*docket.Computation, error) {
	return nil, f.err
}
func (f failingService) Status(context.Context, string) (*docket.StatusReport, error) {
	return nil, f.err
}
func (f failingService) Rules() []deadline.Rule { return nil }

func TestWriteAppError_MasksInternalErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := logging.NewLoggerFromCore(core)
	h := NewDeadlineHandler(failingService{err: errors.Internal("redis exploded").WithDetail("10.0.0.7:6379")}, logger, 0)

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/deadlines/status?deadline=2025-01-15", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(errors.ErrCodeInternal), resp.Code)
	assert.Equal(t, "internal server error", resp.Message)
	assert.Empty(t, resp.Detail)
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestWriteAppError_PassesThroughUnavailable(t *testing.T) {
	h := NewDeadlineHandler(failingService{err: errors.New(errors.ErrCodeServiceUnavailable, "redis unavailable")}, nil, 0)

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/deadlines/status?deadline=2025-01-15", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "redis unavailable", decodeError(t, w).Message)
}

func TestHealthHandler(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		h := NewHealthHandler("1.2.3")
		w := httptest.NewRecorder()
		h.Liveness(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got LivenessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "alive", got.Status)
		assert.Equal(t, "1.2.3", got.Version)
	})

	t.Run("ready without checkers", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler("dev").Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler("dev",
			NewHealthChecker("redis", func(context.Context) error { return nil }),
		)
		w := httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var got ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "ready", got.Status)
		assert.Equal(t, "healthy", got.Components["redis"].Status)
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHealthHandler("dev",
			NewHealthChecker("calendar", func(context.Context) error { return nil }),
			NewHealthChecker("redis", func(context.Context) error { return errors.New(errors.ErrCodeServiceUnavailable, "down") }),
		)
		w := httptest.NewRecorder()
		h.Readiness(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var got ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "not_ready", got.Status)
		assert.Equal(t, "healthy", got.Components["calendar"].Status)
		assert.Equal(t, "unhealthy", got.Components["redis"].Status)
		assert.Contains(t, got.Components["redis"].Error, "down")
	})
}
