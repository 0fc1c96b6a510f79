package log_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/md5coll/pkg/log"
	"github.com/stretchr/testify/require"
)

func TestTestHandlerCapturesAttrs(t *testing.T) {
	t.Parallel()

	lg, th := log.NewTestLogger(t, slog.LevelInfo)
	lg = lg.With("run", "r1").WithGroup("oracle")
	lg.Debug("hidden")
	lg.Info("divergence recorded", "attempts", 2, slog.Group("cv", "hex", "abcd"))

	entries := th.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	require.Equal(t, "divergence recorded", e.Msg)
	require.Equal(t, "r1", e.Attrs["run"])
	require.Equal(t, "abcd", e.Attrs["oracle.cv.hex"])

	n, ok := e.Int("oracle.attempts")
	require.True(t, ok)
	require.EqualValues(t, 2, n)
}

func TestTestContext(t *testing.T) {
	t.Parallel()

	ctx, th := log.TestContext(context.Background(), t)
	mylog.LoggerFromContext(ctx).Warn("hello")
	e := log.RequireEntry(t, th, log.WithMsg("hello"))
	require.Equal(t, slog.LevelWarn, e.Level)
	require.Empty(t, log.FindEntries(th, log.WithMsg("missing")))
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	lg := log.NewNopLogger()
	require.False(t, lg.Enabled(context.Background(), slog.LevelError))
	lg.Error("dropped")
}
