package oracle_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/md5x"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"github.com/jlrickert/md5coll/pkg/oracle/oracletest"
	"github.com/stretchr/testify/require"
)

func TestFastcoll_HandsOffThroughScratchFiles(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	dir := t.TempDir()
	script := writeFakeFastcoll(t, dir, fakeCopyBody)
	work := t.TempDir()

	rt, err := toolkit.NewRuntime()
	require.NoError(t, err)
	fc := oracle.NewFastcoll(rt, script)
	fc.WorkDir = work

	p, err := fc.Collide(context.Background(), md5x.IV)
	require.NoError(t, err)
	require.Equal(t, oracletest.WangPair(), p)

	// the tool saw the hex chaining value
	got, err := os.ReadFile(filepath.Join(dir, "ihv.log"))
	require.NoError(t, err)
	require.Equal(t, md5x.IV.Hex(), strings.TrimSpace(string(got)))

	// scratch directory is cleaned up by the binding
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFastcoll_MissingBinaryIsUnavailable(t *testing.T) {
	t.Parallel()
	fc := oracle.NewFastcoll(nil, filepath.Join(t.TempDir(), "no-such-fastcoll"))
	_, err := fc.Collide(context.Background(), md5x.IV)
	require.True(t, oracle.IsUnavailable(err))
}

func TestFastcoll_FailureIsReported(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	script := writeFakeFastcoll(t, t.TempDir(), "echo broken >&2\nexit 3\n")
	work := t.TempDir()
	rt, err := toolkit.NewRuntime()
	require.NoError(t, err)
	fc := oracle.NewFastcoll(rt, script)
	fc.WorkDir = work

	_, err = fc.Collide(context.Background(), md5x.IV)
	require.Error(t, err)
	require.False(t, oracle.IsUnavailable(err))

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFastcoll_ShortOutputIsRejected(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	script := writeFakeFastcoll(t, t.TempDir(), "printf abc > \"$4\"\nprintf abd > \"$5\"\n")
	rt, err := toolkit.NewRuntime()
	require.NoError(t, err)
	fc := oracle.NewFastcoll(rt, script)
	fc.WorkDir = t.TempDir()

	_, err = fc.Collide(context.Background(), md5x.IV)
	require.ErrorContains(t, err, "128 bytes")
}

func TestFastcoll_HonorsContextDeadline(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	script := writeFakeFastcoll(t, t.TempDir(), "exec sleep 10\n")
	rt, err := toolkit.NewRuntime()
	require.NoError(t, err)
	fc := oracle.NewFastcoll(rt, script)
	fc.WorkDir = t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = fc.Collide(ctx, md5x.IV)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake fastcoll needs a POSIX shell")
	}
}
