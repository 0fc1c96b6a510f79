package oracle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/md5x"
)

// DefaultFastcollBinary is the executable name looked up on PATH.
const DefaultFastcollBinary = "fastcoll"

// Fastcoll runs the HashClash fastcoll tool out of process. Each call works in
// its own scratch directory under WorkDir, which is removed before Collide
// returns.
type Fastcoll struct {
	// Path is the fastcoll executable, either absolute or a name on PATH.
	Path string

	// Runtime performs file IO for the handoff files. When nil a production
	// runtime is created on first use.
	Runtime *toolkit.Runtime

	// WorkDir is the parent of per-call scratch directories. Defaults to the
	// runtime temp dir.
	WorkDir string

	// Output receives the tool's own progress output. Nil discards it.
	Output io.Writer
}

// NewFastcoll returns a binding for the executable at path.
func NewFastcoll(rt *toolkit.Runtime, path string) *Fastcoll {
	if path == "" {
		path = DefaultFastcollBinary
	}
	return &Fastcoll{Path: path, Runtime: rt}
}

// Collide invokes `fastcoll --ihv <cv> -o <f0> <f1>` and reads the two
// 128-byte outputs back.
func (f *Fastcoll) Collide(ctx context.Context, cv md5x.ChainingValue) (Pair, error) {
	lg := mylog.LoggerFromContext(ctx)

	bin, err := exec.LookPath(f.Path)
	if err != nil {
		return Pair{}, NewUnavailableError(f.Path, err)
	}

	rt := f.Runtime
	if rt == nil {
		rt, err = toolkit.NewRuntime()
		if err != nil {
			return Pair{}, fmt.Errorf("fastcoll runtime: %w", err)
		}
		f.Runtime = rt
	}

	base := strings.TrimSpace(f.WorkDir)
	if base == "" {
		base = strings.TrimSpace(rt.GetTempDir())
	}
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "md5coll-"+uuid.NewString())
	if err := rt.Mkdir(dir, 0o700, true); err != nil {
		return Pair{}, fmt.Errorf("fastcoll scratch dir: %w", err)
	}
	defer func() {
		if err := rt.Remove(dir, true); err != nil {
			lg.Warn("failed to remove fastcoll scratch dir", "dir", dir, "err", err)
		}
	}()

	ihv := cv.Hex()
	f0 := filepath.Join(dir, "out-"+ihv+"-0")
	f1 := filepath.Join(dir, "out-"+ihv+"-1")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--ihv", ihv, "-o", f0, f1)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if f.Output != nil {
		cmd.Stdout = f.Output
		cmd.Stderr = io.MultiWriter(&stderr, f.Output)
	}

	lg.Debug("running fastcoll", "bin", bin, "ihv", ihv, "dir", dir)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Pair{}, fmt.Errorf("fastcoll interrupted: %w", ctxErr)
		}
		lg.Error("fastcoll failed", "ihv", ihv, "err", err, "stderr", strings.TrimSpace(stderr.String()))
		return Pair{}, fmt.Errorf("fastcoll --ihv %s: %w", ihv, err)
	}

	b0, err := rt.ReadFile(f0)
	if err != nil {
		return Pair{}, fmt.Errorf("read fastcoll output: %w", err)
	}
	b1, err := rt.ReadFile(f1)
	if err != nil {
		return Pair{}, fmt.Errorf("read fastcoll output: %w", err)
	}
	return NewPair(b0, b1)
}

var _ Oracle = (*Fastcoll)(nil)
