package cli

import (
	"github.com/jlrickert/md5coll/pkg/payload"
	"github.com/spf13/cobra"
)

// NewPythonCmd writes a good and an evil Python script with equal MD5.
func NewPythonCmd(deps *Deps) *cobra.Command {
	var (
		gen  generateFlags
		spec = payload.DefaultPythonSpec()
	)

	cmd := &cobra.Command{
		Use:   "python",
		Short: "Write two Python scripts with equal MD5 and different behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := gen.colliderOptions(ctx, deps)
			if err != nil {
				return err
			}
			ge, err := payload.PythonGoodEvil(ctx, spec, opts...)
			if err != nil {
				return err
			}

			w, err := newWriter(ctx, deps.Runtime, gen.outDir(deps), deps.Config.Workers)
			if err != nil {
				return err
			}
			w.Add(outputFile{Name: "out_py_good.py", Data: ge.Good, Perm: 0o755})
			w.Add(outputFile{Name: "out_py_evil.py", Data: ge.Evil, Perm: 0o755})
			return w.Wait(cmd.OutOrStdout())
		},
	}

	gen.register(cmd)
	cmd.Flags().StringVar(&spec.Interpreter, "interpreter", spec.Interpreter, "interpreter on the #! line")
	cmd.Flags().StringVar(&spec.Good, "good", spec.Good, "statement run by the good script")
	cmd.Flags().StringVar(&spec.Evil, "evil", spec.Evil, "statement run by the evil script")
	return cmd
}
