package http

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/lexclock/internal/interfaces/http/handlers"
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/holiday"
)

func newTestRouter(t *testing.T, origins ...string) (http.Handler, prometheus.MetricsCollector) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "lexclock"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	engine := deadline.NewEngine(
		deadline.WithCalendar(deadline.NewCalendar(holiday.MustNewGenerator())),
		deadline.WithClock(deadline.FixedClock(caldate.MustParse("2025-01-15"))),
	)
	svc := docket.NewService(engine, docket.WithMetrics(metrics))

	return NewRouter(RouterConfig{
		DeadlineHandler:    handlers.NewDeadlineHandler(svc, nil, 0),
		CalendarHandler:    handlers.NewCalendarHandler(svc, nil),
		HealthHandler:      handlers.NewHealthHandler("test"),
		CORSAllowedOrigins: origins,
		Metrics:            metrics,
		MetricsCollector:   collector,
	}), collector
}

func TestRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		method string
		target string
		body   string
		status int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/api/v1/rules", "", http.StatusOK},
		{http.MethodGet, "/api/v1/holidays/2025", "", http.StatusOK},
		{http.MethodGet, "/api/v1/days/2025-07-04", "", http.StatusOK},
		{http.MethodGet, "/api/v1/deadlines/status?deadline=2025-03-01", "", http.StatusOK},
		{http.MethodPost, "/api/v1/deadlines/compute", `{"rule":"objection","trigger_date":"2025-03-03"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/deadlines/compute", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			} else {
				req = httptest.NewRequest(tc.method, tc.target, nil)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/holidays/2025", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `lexclock_http_requests_total{method="GET",path="/api/v1/holidays/{year}",status_code="200"} 1`)
}

func TestRouter_CORS(t *testing.T) {
	router, _ := newTestRouter(t, "https://docket.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/deadlines/compute", nil)
	req.Header.Set("Origin", "https://docket.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://docket.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ServeAndStop(t *testing.T) {
	router, _ := newTestRouter(t)
	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", ReadTimeout: time.Second, WriteTimeout: time.Second}, router, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, srv.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.NotNil(t, srv.Handler())
}
