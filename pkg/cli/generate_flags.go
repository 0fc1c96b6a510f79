package cli

import (
	"context"
	"time"

	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/spf13/cobra"
)

// generateFlags are shared by the commands that run a collision search.
type generateFlags struct {
	OutDir  string
	Retries int
	Timeout time.Duration
	Verify  bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.OutDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().IntVar(&f.Retries, "retries", 0, "oracle calls per divergence (default from config)")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "time limit per divergence (default from config)")
	cmd.Flags().BoolVar(&f.Verify, "verify", false, "check every collision before using it")
}

func (f *generateFlags) outDir(deps *Deps) string {
	if f.OutDir != "" {
		return deps.abs(f.OutDir)
	}
	return deps.abs(deps.Config.OutputDir)
}

// colliderOptions merges config defaults with flag overrides.
func (f *generateFlags) colliderOptions(ctx context.Context, deps *Deps) ([]collider.Option, error) {
	or, err := resolveOracle(ctx, deps)
	if err != nil {
		return nil, err
	}
	opts := deps.Config.ColliderOptions(or)
	if f.Retries > 0 {
		opts = append(opts, collider.WithRetryBudget(f.Retries))
	}
	if f.Timeout > 0 {
		opts = append(opts, collider.WithTimeout(f.Timeout))
	}
	if f.Verify {
		opts = append(opts, collider.WithVerify(true))
	}
	return opts, nil
}
