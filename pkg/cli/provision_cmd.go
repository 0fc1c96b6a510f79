package cli

import (
	"context"
	"fmt"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"github.com/spf13/cobra"
)

// NewProvisionCmd locates fastcoll, building it when --download is given.
func NewProvisionCmd(deps *Deps) *cobra.Command {
	var download bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Locate or build the fastcoll collision search",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := provisionOptions(deps)
			if cmd.Flags().Changed("download") {
				opts.Download = download
			}
			fc, err := oracle.Provision(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fc.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&download, "download", false, "download and compile fastcoll when it is not found")
	return cmd
}

func provisionOptions(deps *Deps) oracle.ProvisionOptions {
	opts := deps.Config.ProvisionOptions(deps.Runtime)
	opts.Path = deps.abs(opts.Path)
	opts.BuildDir = deps.abs(opts.BuildDir)
	return opts
}

// resolveOracle returns deps.Oracle or a provisioned fastcoll binding.
// Provisioning never downloads here unless the config allows it.
func resolveOracle(ctx context.Context, deps *Deps) (oracle.Oracle, error) {
	if deps.Oracle != nil {
		return deps.Oracle, nil
	}
	fc, err := oracle.Provision(ctx, provisionOptions(deps))
	if err != nil {
		return nil, err
	}
	mylog.LoggerFromContext(ctx).Debug("using fastcoll", "path", fc.Path)
	return fc, nil
}
