package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/lexclock/internal/bootstrap"
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/lexclock/pkg/caldate"
	"github.com/turtacn/lexclock/pkg/deadline"
	"github.com/turtacn/lexclock/pkg/errors"
	"github.com/turtacn/lexclock/pkg/holiday"
)

var testToday = caldate.MustParse("2025-01-15")

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexclock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fixedClockFactory(cfg *config.Config, logger logging.Logger) (*bootstrap.Platform, error) {
	return bootstrap.New(cfg, logger, bootstrap.WithClock(deadline.FixedClock(testToday)))
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(fixedClockFactory)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configPath, "--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "lexclock", cmd.Use)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"compute", "add", "status", "rules", "holidays", "day", "warm", "serve"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	for _, flag := range []string{"config", "log-level", "output", "no-color", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestCompute_Text(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "compute", "--rule", "answer", "--from", "2025-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "answer (calendar_days 30)")
	assert.Contains(t, out, "Deadline:  2025-02-14 (Friday)")
	assert.Contains(t, out, "critical, 30 days remaining")
	assert.NotContains(t, out, "Grace:")
}

func TestCompute_JSONWithGrace(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "-o", "json", "compute", "--rule", "answer", "--from", "2024-12-20", "--grace", "3")
	require.NoError(t, err)

	var got struct {
		Deadline string `json:"deadline"`
		Status   struct {
			DaysRemaining int    `json:"days_remaining"`
			Urgency       string `json:"urgency"`
		} `json:"status"`
		Grace struct {
			GraceEnd    string `json:"grace_end"`
			DisplayText string `json:"display_text"`
		} `json:"grace"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2025-01-21", got.Deadline)
	assert.Equal(t, 6, got.Status.DaysRemaining)
	assert.Equal(t, "critical", got.Status.Urgency)
	assert.Equal(t, "2025-01-24", got.Grace.GraceEnd)
	assert.Equal(t, "2025-01-21 (grace period ends 2025-01-24)", got.Grace.DisplayText)
}

func TestCompute_DefaultGraceFromConfig(t *testing.T) {
	cfg := writeConfig(t, "calendar:\n  default_grace_days: 5\n")

	out, err := run(t, cfg, "compute", "--rule", "answer", "--from", "2025-01-15", "--with-grace")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace:     2025-02-14 (grace period ends 2025-02-19)")
}

func TestAdd_Table(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "-o", "table", "add", "--kind", "business-days", "--n", "3", "--from", "2025-01-17")
	require.NoError(t, err)
	assert.Contains(t, out, "business_days")
	assert.Contains(t, out, "2025-01-23")
}

func TestAdd_Months(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "add", "--kind", "months", "--n", "1", "--from", "2025-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Deadline:  2025-02-28 (Friday)")
}

func TestStatus(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "status", "--deadline", "2025-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "closed, 5 days ago")

	out, err = run(t, cfg, "status", "--deadline", "2025-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "critical, due today")

	out, err = run(t, cfg, "status", "--deadline", "2025-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "normal, 137 days remaining")
}

func TestRules(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "rules")
	require.NoError(t, err)
	for _, name := range []string{"answer", "discovery_close", "objection", "motion_response"} {
		assert.Contains(t, out, name)
	}
}

func TestHolidays(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "holidays", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Holidays 2025 (US-FED, literal)")
	assert.Contains(t, out, "2025-07-04")
	assert.Contains(t, out, "Total: 10 holiday(s)")

	out, err = run(t, cfg, "-o", "table", "holidays")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-11-27")
}

func TestHolidays_NearestWeekdayFromConfig(t *testing.T) {
	cfg := writeConfig(t, "calendar:\n  observance: nearest_weekday\n  jurisdiction: US-CA\n")

	out, err := run(t, cfg, "holidays", "--year", "2026")
	require.NoError(t, err)
	assert.Contains(t, out, "(US-CA, nearest_weekday)")
	// July 4th 2026 is a Saturday, observed on Friday the 3rd.
	assert.Contains(t, out, "2026-07-03")
}

func TestDay(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	cases := []struct {
		date string
		want string
	}{
		{"2025-01-18", "2025-01-18 (Saturday) is a weekend"},
		{"2025-01-21", "2025-01-21 (Tuesday) is a business day"},
		{"2025-12-25", "2025-12-25 (Thursday) is a holiday: "},
	}
	for _, tc := range cases {
		out, err := run(t, cfg, "day", tc.date)
		require.NoError(t, err, tc.date)
		assert.Contains(t, out, tc.want)
	}
}

func TestWarm_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeConfig(t, fmt.Sprintf("redis:\n  enabled: true\n  addr: %q\n", mr.Addr()))

	out, err := run(t, cfg, "-o", "json", "warm", "--from", "2025", "--to", "2027")
	require.NoError(t, err)

	var got warmResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, warmResult{From: 2025, To: 2027, Years: 3}, got)
	for _, year := range []string{"2025", "2026", "2027"} {
		assert.True(t, mr.Exists(holidayKey(year)), year)
	}
}

// holidayKey is the shared key of a built-in literal-observance year.
func holidayKey(year string) string {
	return "lexclock:holidays:US-FED:literal:" + holiday.MustNewGenerator().Fingerprint() + ":" + year
}

func TestWarm_RefreshRebuildsSharedSets(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := writeConfig(t, fmt.Sprintf("redis:\n  enabled: true\n  addr: %q\n", mr.Addr()))

	_, err := run(t, cfg, "warm", "--from", "2025", "--to", "2026")
	require.NoError(t, err)
	require.NoError(t, mr.Set(holidayKey("2025"), `{"year":2025,"entries":[]}`))

	// a plain warm trusts what is already shared
	_, err = run(t, cfg, "warm", "--from", "2025")
	require.NoError(t, err)
	stale, err := mr.Get(holidayKey("2025"))
	require.NoError(t, err)
	assert.NotContains(t, stale, "New Year")

	out, err := run(t, cfg, "warm", "--from", "2025", "--refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalidated 2 shared holiday set(s)")
	assert.Contains(t, out, "Warmed 1 holiday year(s), 2025..2025")

	fresh, err := mr.Get(holidayKey("2025"))
	require.NoError(t, err)
	assert.Contains(t, fresh, "New Year's Day")
	assert.False(t, mr.Exists(holidayKey("2026")))

	out, err = run(t, cfg, "-o", "json", "warm", "--from", "2025", "--refresh")
	require.NoError(t, err)
	var got warmResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, warmResult{From: 2025, To: 2025, Years: 1, Invalidated: 1}, got)
}

func TestWarm_RefreshWithoutRedis(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	out, err := run(t, cfg, "warm", "--from", "2025", "--refresh")
	require.NoError(t, err)
	assert.NotContains(t, out, "Invalidated")
	assert.Contains(t, out, "Warmed 1 holiday year(s), 2025..2025")
}

func TestWarm_Errors(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	_, err := run(t, cfg, "warm")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, err = run(t, cfg, "warm", "--from", "2030", "--to", "2020")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestErrors(t *testing.T) {
	cfg := writeConfig(t, "log:\n  level: info\n")

	_, err := run(t, cfg, "-o", "yaml", "rules")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, err = run(t, cfg, "compute", "--rule", "appeal", "--from", "2025-01-15")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownRule))

	_, err = run(t, cfg, "compute", "--rule", "answer", "--from", "15/01/2025")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDateFormat))

	_, err = run(t, cfg, "add", "--kind", "calendar-days", "--n", "-2", "--from", "2025-01-15")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidMagnitude))

	_, err = run(t, cfg, "compute", "--from", "2025-01-15")
	assert.Error(t, err, "missing --rule")

	_, err = run(t, filepath.Join(t.TempDir(), "absent.yaml"), "rules")
	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	cmd := NewRootCommand()
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)

	PrintError(cmd, errors.InvalidParam("bad flag"))
	assert.Contains(t, errOut.String(), "bad flag")

	errOut.Reset()
	PrintError(cmd, nil)
	assert.Empty(t, errOut.String())
}
