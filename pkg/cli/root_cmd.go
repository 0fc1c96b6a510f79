package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/config"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"github.com/spf13/cobra"
)

// Version may be overridden at build time with
// -ldflags "-X github.com/jlrickert/md5coll/pkg/cli.Version=v1.2.3".
var Version = "dev"

type Deps struct {
	Root     string
	Shutdown func()
	Runtime  *toolkit.Runtime

	ConfigPath string
	LogFile    string
	LogLevel   string
	LogJSON    bool

	Config *config.Config

	// Oracle replaces the provisioned fastcoll binding when set.
	Oracle oracle.Oracle
}

// NewRootCmd builds the md5coll command tree. PersistentPreRunE resolves the
// working directory, loads the config and installs the logger on the command
// context.
func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}
	if deps.Shutdown == nil {
		deps.Shutdown = func() {}
	}

	cmd := &cobra.Command{
		Use:           "md5coll",
		Short:         "Build files that share an MD5 digest",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := deps.Runtime
			if rt == nil {
				return fmt.Errorf("runtime is required")
			}

			wd, err := rt.Env.Getwd()
			if err != nil {
				return err
			}
			deps.Root = wd

			if deps.LogFile != "" || deps.LogJSON || deps.LogLevel != "" {
				var out = os.Stderr
				if deps.LogFile != "" {
					f, err := os.OpenFile(deps.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
					if err != nil {
						return err
					}
					out = f
					prev := deps.Shutdown
					deps.Shutdown = func() {
						_ = f.Close()
						prev()
					}
				}
				rt.Logger = mylog.NewLogger(mylog.LoggerConfig{
					Out:     out,
					Level:   mylog.ParseLevel(deps.LogLevel),
					JSON:    deps.LogJSON,
					Version: Version,
				})
			}
			if rt.Logger != nil {
				ctx = mylog.WithLogger(ctx, rt.Logger)
			}
			cmd.SetContext(ctx)

			if deps.Config == nil {
				cfg, err := loadConfig(cmd, deps)
				if err != nil {
					return err
				}
				deps.Config = cfg
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			deps.Shutdown()
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&deps.LogFile, "log-file", "", "write logs to file (default stderr)")
	cmd.PersistentFlags().StringVar(&deps.LogLevel, "log-level", "", "minimum log level")
	cmd.PersistentFlags().BoolVar(&deps.LogJSON, "log-json", false, "output logs as JSON")
	cmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "", "path to config file (default ./"+config.DefaultFile+")")

	cmd.AddCommand(
		NewHashCmd(deps),
		NewIhvCmd(deps),
		NewProvisionCmd(deps),
		NewTextCmd(deps),
		NewPythonCmd(deps),
		NewSpliceCmd(deps),
		NewConfigCmd(deps),
	)

	return cmd
}

// loadConfig reads --config, or md5coll.yaml in the working directory when it
// exists, or falls back to the defaults. The config subcommands tolerate an
// invalid file so it can be replaced.
func loadConfig(cmd *cobra.Command, deps *Deps) (*config.Config, error) {
	ctx := cmd.Context()
	path := deps.ConfigPath
	explicit := path != ""
	if !explicit {
		path = filepath.Join(deps.Root, config.DefaultFile)
		if _, err := deps.Runtime.Stat(path, false); err != nil {
			return config.Default(), nil
		}
	} else {
		path = deps.abs(path)
	}

	cfg, err := config.Read(ctx, deps.Runtime, path)
	if err != nil {
		if isConfigCmd(cmd) {
			mylog.LoggerFromContext(ctx).Warn("ignoring unreadable config", "path", path, "err", err)
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func isConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// abs resolves p against the working directory.
func (d *Deps) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, p)
}
