package cli

import (
	"fmt"

	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/jlrickert/md5coll/pkg/payload"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// NewTextCmd builds a text multicollision and writes its variants.
func NewTextCmd(deps *Deps) *cobra.Command {
	var (
		gen       generateFlags
		spec      payload.TextSpec
		count     int
		order     string
		prefix    string
		encName   string
		extension string
	)

	cmd := &cobra.Command{
		Use:   "text",
		Short: "Write a family of text files that all share one MD5",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if order == "" {
				order = deps.Config.BitOrder
			}
			bitOrder, err := collider.ParseBitOrder(order)
			if err != nil {
				return err
			}
			var enc encoding.Encoding
			if encName != "" {
				enc, err = htmlindex.Get(encName)
				if err != nil {
					return fmt.Errorf("unknown encoding %q: %w", encName, err)
				}
			}
			spec.Encoding = enc

			if isTerminal(cmd.ErrOrStderr()) {
				spec.Progress = func(stage, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rstage %d of %d", stage, total)
					if stage == total {
						fmt.Fprintln(cmd.ErrOrStderr())
					}
				}
			}

			opts, err := gen.colliderOptions(ctx, deps)
			if err != nil {
				return err
			}
			c, err := payload.TextFamily(ctx, spec, opts...)
			if err != nil {
				return err
			}

			w, err := newWriter(ctx, deps.Runtime, gen.outDir(deps), deps.Config.Workers)
			if err != nil {
				return err
			}
			for i, data := range c.All(count, bitOrder) {
				w.Add(outputFile{
					Name: fmt.Sprintf("%s_%03d%s", prefix, i, extension),
					Data: data,
					Perm: 0o644,
				})
			}
			return w.Wait(cmd.OutOrStdout())
		},
	}

	gen.register(cmd)
	cmd.Flags().StringVar(&spec.Start, "start", "Hello world.", "text before the first divergence")
	cmd.Flags().StringVar(&spec.Line, "line", payload.DefaultLine, "template written after each divergence ({{i}}, {{stage}}, {{total}})")
	cmd.Flags().StringVar(&spec.Final, "final", "\nFinal.", "text after the last divergence")
	cmd.Flags().IntVarP(&spec.Divergences, "divergences", "n", 8, "number of divergence points")
	cmd.Flags().IntVar(&count, "count", 0, "number of files to write (default all 2^n)")
	cmd.Flags().StringVar(&order, "order", "", "bit order of the file index: msb or lsb (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "out_text", "output file name prefix")
	cmd.Flags().StringVar(&extension, "ext", ".txt", "output file extension")
	cmd.Flags().StringVar(&encName, "encoding", "", "text encoding, e.g. latin1 or shift_jis (default utf-8)")
	return cmd
}
