package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jlrickert/md5coll/pkg/payload"
	"github.com/spf13/cobra"
)

// NewSpliceCmd writes good and evil copies of a binary with two marker runs.
func NewSpliceCmd(deps *Deps) *cobra.Command {
	var (
		gen    generateFlags
		marker string
	)

	cmd := &cobra.Command{
		Use:   "splice FILE",
		Short: "Splice a collision into the marker runs of a binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(marker) != 1 {
				return fmt.Errorf("marker must be a single byte, got %q", marker)
			}
			data, err := deps.Runtime.ReadFile(deps.abs(args[0]))
			if err != nil {
				return err
			}
			opts, err := gen.colliderOptions(ctx, deps)
			if err != nil {
				return err
			}
			ge, err := payload.SpliceMarkers(ctx, data, marker[0], opts...)
			if err != nil {
				return err
			}

			base := filepath.Base(args[0])
			w, err := newWriter(ctx, deps.Runtime, gen.outDir(deps), deps.Config.Workers)
			if err != nil {
				return err
			}
			w.Add(outputFile{Name: base + ".good", Data: ge.Good, Perm: 0o755})
			w.Add(outputFile{Name: base + ".evil", Data: ge.Evil, Perm: 0o755})
			return w.Wait(cmd.OutOrStdout())
		},
	}

	gen.register(cmd)
	cmd.Flags().StringVar(&marker, "marker", string(rune(payload.DefaultMarker)), "byte that fills the two placeholder runs")
	return cmd
}
