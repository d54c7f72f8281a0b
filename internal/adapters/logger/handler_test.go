package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/affected/internal/adapters/logger"
)

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).WithGroup("engine").With("phase", "classify")
	lg.Info("done", "files", 3)

	assert.Equal(t, "done engine.phase=classify engine.files=3\n", buf.String())
}

func TestPrettyHandler_GroupsApplyToLaterAttrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, nil)).
		With("target", "test").
		WithGroup("engine").
		WithGroup("phase")
	lg.Warn("slow", "name", "map owners", slog.Group("owners", "files", 2), "empty", "")

	assert.Equal(t, `! slow target=test engine.phase.name="map owners" engine.phase.owners.files=2 engine.phase.empty=""`+"\n", buf.String())
}

func TestPrettyHandler_AlignsContinuationLines(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	lg.Error("Error: failed\n       root: /repo\n\n  Caused by:")
	lg.Info("configuration:\n  mode: ONLY_DIRECT")
	lg.Debug("changes:\n[a.go]", "n", 1)

	assert.Equal(t, "✗ Error: failed\n"+
		"         root: /repo\n"+
		"\n"+
		"    Caused by:\n"+
		"configuration:\n"+
		"  mode: ONLY_DIRECT\n"+
		"~ changes:\n"+
		"  [a.go] n=1\n", buf.String())
}

func TestPrettyHandler_LevelVarIsLive(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	level := &slog.LevelVar{}
	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: level}))

	lg.Debug("hidden")
	level.Set(slog.LevelDebug)
	lg.Debug("shown")

	assert.Equal(t, "~ shown\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(nil, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}
