package bootstrap

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lexclock/internal/application/docket"
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/holiday"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	require.NoError(t, cfg.Validate())
	return cfg
}

var fixedToday = deadline.FixedClock(caldate.MustParse("2025-01-15"))

func TestNew_LocalOnly(t *testing.T) {
	p, err := New(testConfig(t), nil, WithClock(fixedToday), WithVersion("1.0.0"))
	require.NoError(t, err)
	defer p.Close()

	assert.Nil(t, p.Redis)
	assert.Nil(t, p.Holidays)

	out, err := p.Service.Compute(context.Background(), &docket.ComputeRequest{Rule: "answer", TriggerDate: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-14", out.Deadline.String())

	router := p.Router()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `lexclock_build_info{jurisdiction="US-FED",version="1.0.0"} 1`)
	assert.Contains(t, w.Body.String(), `lexclock_deadline_computations_total{kind="calendar_days",result="ok"} 1`)
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false

	p, err := New(cfg, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	p.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_InvalidCalendar(t *testing.T) {
	cfg := testConfig(t)
	cfg.Calendar.Holidays = []config.HolidayConfig{{Name: "bad", Month: 2, Day: 30}}

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	p, err := New(cfg, nil, WithClock(fixedToday))
	require.NoError(t, err)
	defer p.Close()
	require.NotNil(t, p.Holidays)

	n, err := p.WarmCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	scope := p.Holidays.Scope()
	assert.Equal(t, "US-FED:literal:"+holiday.MustNewGenerator().Fingerprint(), scope)
	assert.True(t, mr.Exists("lexclock:holidays:"+scope+":2025"))
	assert.True(t, mr.Exists("lexclock:holidays:"+scope+":2026"))
	assert.False(t, mr.Exists("lexclock:lock:holiday-warm"), "warm-up lock must be released")

	router := p.Router()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mr.Close()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"redis"`))

	// Lookups keep working from the local memo and resolution.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/holidays/2031", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg, nil, WithClock(fixedToday))
	require.NoError(t, err)
	defer p.Close()

	server := cfg.Server
	server.Host = "127.0.0.1"
	server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx, ServeOptions{Server: server, Warm: true}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	_, ok := p.Service.Engine().Calendar().Holidays().Cached(2026)
	assert.True(t, ok, "warm-up resolves next year")
}

func TestServe_ListenError(t *testing.T) {
	p, err := New(testConfig(t), nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	server := p.Config.Server
	server.Host = "127.0.0.1"
	server.Port = ln.Addr().(*net.TCPAddr).Port
	err = p.Serve(context.Background(), ServeOptions{Server: server})
	assert.Error(t, err)
}
