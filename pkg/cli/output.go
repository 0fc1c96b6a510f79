package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/md5x"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// outputFile is one generated file waiting to be written.
type outputFile struct {
	Name string
	Data []byte
	Perm os.FileMode
}

// writer writes generated files into one directory with at most workers
// writes in flight.
type writer struct {
	rt  *toolkit.Runtime
	dir string
	g   *errgroup.Group
	ctx context.Context

	paths []string
	sums  []string
}

func newWriter(ctx context.Context, rt *toolkit.Runtime, dir string, workers int) (*writer, error) {
	if err := rt.Mkdir(dir, 0o755, true); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	return &writer{rt: rt, dir: dir, g: g, ctx: ctx}, nil
}

// Add schedules f. It blocks while the worker limit is reached.
func (w *writer) Add(f outputFile) {
	path := filepath.Join(w.dir, f.Name)
	w.paths = append(w.paths, path)
	w.sums = append(w.sums, md5x.HexSum(f.Data))
	w.g.Go(func() error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if err := w.rt.AtomicWriteFile(path, f.Data, f.Perm); err != nil {
			mylog.LoggerFromContext(w.ctx).Error("failed to write output", "path", path, "err", err)
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	})
}

// Wait blocks until every write finished and prints "<md5>  <path>" per file
// in the order they were added.
func (w *writer) Wait(out io.Writer) error {
	if err := w.g.Wait(); err != nil {
		return err
	}
	for i, p := range w.paths {
		fmt.Fprintf(out, "%s  %s\n", w.sums[i], p)
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
