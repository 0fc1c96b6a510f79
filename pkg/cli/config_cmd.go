package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jlrickert/md5coll/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd groups the config subcommands.
func NewConfigCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create md5coll.yaml",
	}
	cmd.AddCommand(newConfigInitCmd(deps), newConfigShowCmd(deps))
	return cmd
}

func newConfigInitCmd(deps *Deps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := deps.abs(deps.ConfigPath)
			if path == "" {
				path = filepath.Join(deps.Root, config.DefaultFile)
			}
			if _, err := deps.Runtime.Stat(path, false); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Write(cmd.Context(), deps.Runtime, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active config",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := yaml.Marshal(deps.Config)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
