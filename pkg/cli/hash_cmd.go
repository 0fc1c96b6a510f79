package cli

import (
	"fmt"
	"io"

	"github.com/jlrickert/md5coll/pkg/md5x"
	"github.com/spf13/cobra"
)

// NewHashCmd prints MD5 digests in md5sum format.
func NewHashCmd(deps *Deps) *cobra.Command {
	var showIHV bool

	cmd := &cobra.Command{
		Use:   "hash [FILE...]",
		Short: "Print MD5 digests of files or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			out := cmd.OutOrStdout()
			for _, name := range args {
				d := md5x.New()
				if err := readInto(cmd, deps, name, d); err != nil {
					return err
				}
				if showIHV {
					fmt.Fprintf(out, "%s  %s  %s\n", d.HexDigest(), d.HexIHV(), name)
				} else {
					fmt.Fprintf(out, "%s  %s\n", d.HexDigest(), name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIHV, "ihv", false, "also print the chaining value after the last whole block")
	return cmd
}

// NewIhvCmd prints the chaining value reached after the whole blocks of a
// file, optionally starting from a given chaining value.
func NewIhvCmd(deps *Deps) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "ihv [FILE]",
		Short: "Print the intermediate hash value after the last whole block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			d := md5x.New()
			if start != "" {
				cv, err := md5x.ParseChainingValue(start)
				if err != nil {
					return err
				}
				d = md5x.NewFrom(cv, 0)
			}
			if err := readInto(cmd, deps, name, d); err != nil {
				return err
			}
			blocks := (d.Len() - uint64(d.Buffered())) / md5x.BlockSize
			fmt.Fprintf(cmd.OutOrStdout(), "%s  blocks=%d buffered=%d\n", d.HexIHV(), blocks, d.Buffered())
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "starting chaining value as 32 hex digits (default the MD5 IV)")
	return cmd
}

// readInto streams a named file, or stdin for "-", into w.
func readInto(cmd *cobra.Command, deps *Deps, name string, w io.Writer) error {
	if name == "-" {
		_, err := io.Copy(w, cmd.InOrStdin())
		return err
	}
	data, err := deps.Runtime.ReadFile(deps.abs(name))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
