package logger_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

func TestNewHTTPLogger_CreatesLogFileAndWrites(t *testing.T) {
	dir := t.TempDir()

	l, err := logger.NewHTTPLogger(logger.Options{Dir: dir})
	require.NoError(t, err)

	l.Info("test message")
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)
	s := string(b)

	require.Regexp(t, `\btest message\b`, s)
	// формат времени: "HH:MM:SS DD.MM.YYYY", пример: 11:57:16 16.01.2026
	require.Regexp(t, regexp.MustCompile(`\b\d{2}:\d{2}:\d{2} \d{2}\.\d{2}\.\d{4}\b`), s)
}

func TestNewHTTPLogger_LevelFiltersDebug(t *testing.T) {
	dir := t.TempDir()

	l, err := logger.NewHTTPLogger(logger.Options{Dir: dir, Level: "warn", Format: "json"})
	require.NoError(t, err)

	l.Info("quiet")
	l.Warn("loud")
	_ = l.Sync()

	b, err := os.ReadFile(filepath.Join(dir, "http.log"))
	require.NoError(t, err)
	require.NotContains(t, string(b), "quiet")
	require.Contains(t, string(b), `"msg":"loud"`)
}

func TestNewHTTPLogger_BadLevel(t *testing.T) {
	_, err := logger.NewHTTPLogger(logger.Options{Dir: t.TempDir(), Level: "loudest"})
	require.Error(t, err)
}

func TestHTTPLogger_LogRequest_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := logger.New(core)

	l.LogRequest("POST", "/login", 403, 20, 158.5463)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	require.Equal(t, "POST", fields["method"])
	require.Equal(t, "/login", fields["uri"])
	require.EqualValues(t, 403, fields["status"])
	require.EqualValues(t, 20, fields["response_size"])
	require.InDelta(t, 158.5463, fields["duration_ms"], 0.0001)
}
