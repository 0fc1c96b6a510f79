package cli_test

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/cli"
	"github.com/jlrickert/md5coll/pkg/config"
	"github.com/jlrickert/md5coll/pkg/md5x"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"github.com/jlrickert/md5coll/pkg/oracle/oracletest"
	"github.com/stretchr/testify/require"
)

func TestHashCommand(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	res := run(t, &cli.Deps{Runtime: rt}, "abc", "hash")
	require.NoError(t, res.Err)
	require.Equal(t, "900150983cd24fb0d6963f7d28e17f72  -\n", res.Stdout)

	data := bytes.Repeat([]byte("0123456789"), 10)
	require.NoError(t, rt.WriteFile("/home/testuser/data.bin", data, 0o644))

	res = run(t, &cli.Deps{Runtime: rt}, "", "hash", "--ihv", "/home/testuser/data.bin")
	require.NoError(t, res.Err)
	want := md5x.HexSum(data) + "  " + md5x.CompressBlocks(md5x.IV, data[:64]).Hex() + "  /home/testuser/data.bin\n"
	require.Equal(t, want, res.Stdout)

	res = run(t, &cli.Deps{Runtime: rt}, "", "hash", "/home/testuser/missing.bin")
	require.Error(t, res.Err)
}

func TestIhvCommand(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	data := bytes.Repeat([]byte{'z'}, 70)

	res := run(t, &cli.Deps{Runtime: rt}, string(data), "ihv")
	require.NoError(t, res.Err)
	require.Equal(t, md5x.CompressBlocks(md5x.IV, data[:64]).Hex()+"  blocks=1 buffered=6\n", res.Stdout)

	start := md5x.CompressBlocks(md5x.IV, data[:64])
	res = run(t, &cli.Deps{Runtime: rt}, string(data[:64]), "ihv", "--start", start.Hex())
	require.NoError(t, res.Err)
	require.Equal(t, md5x.CompressBlocks(start, data[:64]).Hex()+"  blocks=1 buffered=0\n", res.Stdout)

	res = run(t, &cli.Deps{Runtime: rt}, "", "ihv", "--start", "nothex")
	require.Error(t, res.Err)
}

func TestTextCommand(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	deps := &cli.Deps{Runtime: rt, Oracle: oracletest.Synthetic()}
	res := run(t, deps, "", "text", "-n", "3", "--count", "5", "--out", "/home/testuser/out")
	require.NoError(t, res.Err)

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 5)
	seen := map[string]bool{}
	for i, line := range lines {
		sum, path, ok := strings.Cut(line, "  ")
		require.True(t, ok)
		require.True(t, strings.HasSuffix(path, "out_text_00"+string(rune('0'+i))+".txt"), path)

		data, err := rt.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, md5x.HexSum(data), sum)
		require.True(t, bytes.HasPrefix(data, []byte("Hello world.")))
		require.True(t, bytes.HasSuffix(data, []byte("More text: 2\n\nFinal.")))
		seen[string(data)] = true
	}
	require.Len(t, seen, 5)
}

func TestTextCommandCollides(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	deps := &cli.Deps{Runtime: rt, Oracle: oracletest.Wang()}
	res := run(t, deps, "", "text", "-n", "1", "--start", "", "--final", "tail",
		"--order", "lsb", "--prefix", "w", "--out", "/home/testuser/out")
	require.NoError(t, res.Err)

	a, err := rt.ReadFile("/home/testuser/out/w_000.txt")
	require.NoError(t, err)
	b, err := rt.ReadFile("/home/testuser/out/w_001.txt")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Equal(t, md5.Sum(a), md5.Sum(b))
}

func TestTextCommandBadFlags(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	deps := &cli.Deps{Runtime: rt, Oracle: oracletest.Synthetic()}
	res := run(t, deps, "", "text", "--order", "sideways")
	require.Error(t, res.Err)

	deps = &cli.Deps{Runtime: rt, Oracle: oracletest.Synthetic()}
	res = run(t, deps, "", "text", "--encoding", "no-such-encoding")
	require.ErrorContains(t, res.Err, "unknown encoding")
}

func TestPythonCommand(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	deps := &cli.Deps{Runtime: rt, Oracle: oracletest.Synthetic()}
	res := run(t, deps, "", "python", "--out", "/home/testuser/py", "--good", "pass")
	require.NoError(t, res.Err)

	good, err := rt.ReadFile("/home/testuser/py/out_py_good.py")
	require.NoError(t, err)
	evil, err := rt.ReadFile("/home/testuser/py/out_py_evil.py")
	require.NoError(t, err)
	require.Len(t, evil, len(good))
	require.Contains(t, string(good), "if same == diff:\n    pass\n")
	require.Contains(t, res.Stdout, "out_py_good.py")
}

func TestSpliceCommand(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	var bin []byte
	bin = append(bin, bytes.Repeat([]byte{'#'}, 128)...)
	bin = append(bin, []byte("\x00check\x00")...)
	bin = append(bin, bytes.Repeat([]byte{'#'}, 128)...)
	bin = append(bin, []byte("\x00end")...)
	require.NoError(t, rt.WriteFile("/home/testuser/prog", bin, 0o755))

	deps := &cli.Deps{Runtime: rt, Oracle: oracletest.Wang()}
	res := run(t, deps, "", "splice", "/home/testuser/prog", "--marker", "#", "--verify", "--out", "/home/testuser/bin")
	require.NoError(t, res.Err)

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 2)
	sumGood, _, _ := strings.Cut(lines[0], "  ")
	sumEvil, _, _ := strings.Cut(lines[1], "  ")
	require.Equal(t, sumGood, sumEvil)

	good, err := rt.ReadFile("/home/testuser/bin/prog.good")
	require.NoError(t, err)
	evil, err := rt.ReadFile("/home/testuser/bin/prog.evil")
	require.NoError(t, err)
	require.NotEqual(t, good, evil)
	sum := md5.Sum(good)
	require.Equal(t, hex.EncodeToString(sum[:]), sumGood)

	deps = &cli.Deps{Runtime: rt, Oracle: oracletest.Wang()}
	res = run(t, deps, "", "splice", "/home/testuser/prog", "--marker", "%%")
	require.ErrorContains(t, res.Err, "single byte")
}

func TestGenerateWithoutFastcoll(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	cfg := config.Default()
	cfg.Fastcoll.Path = "/nonexistent/fastcoll"
	deps := &cli.Deps{Runtime: rt, Config: cfg}
	res := run(t, deps, "", "python", "--out", "/home/testuser/py")
	require.Error(t, res.Err)
	require.True(t, oracle.IsUnavailable(res.Err))
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)
	path := "/home/testuser/proj/md5coll.yaml"

	res := run(t, &cli.Deps{Runtime: rt}, "", "config", "init", "-c", path)
	require.NoError(t, res.Err)
	require.Equal(t, path+"\n", res.Stdout)

	res = run(t, &cli.Deps{Runtime: rt}, "", "config", "init", "-c", path)
	require.ErrorContains(t, res.Err, "already exists")

	res = run(t, &cli.Deps{Runtime: rt}, "", "config", "init", "-c", path, "--force")
	require.NoError(t, res.Err)

	res = run(t, &cli.Deps{Runtime: rt}, "", "config", "show", "-c", path)
	require.NoError(t, res.Err)
	require.Contains(t, res.Stdout, "retries: 64")
	require.Contains(t, res.Stdout, "bit_order: msb")

	require.NoError(t, rt.WriteFile(path, []byte("retries: 0\n"), 0o644))
	res = run(t, &cli.Deps{Runtime: rt, Oracle: oracletest.Synthetic()}, "", "text", "-c", path)
	require.True(t, config.IsInvalid(res.Err))
}

type result struct {
	Stdout string
	Stderr string
	Err    error
}

func newRuntime(t *testing.T) *toolkit.Runtime {
	t.Helper()
	rt, err := toolkit.NewTestRuntime(t.TempDir(), "/home/testuser", "testuser")
	require.NoError(t, err)
	return rt
}

func run(t *testing.T, deps *cli.Deps, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd(deps)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}
