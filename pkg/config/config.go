// Package config reads and writes md5coll.yaml, the file that carries
// collider defaults and fastcoll provisioning settings between runs.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "md5coll.yaml"

// Config is the structure of md5coll.yaml.
//
// Pad and the Forbid entries are byte strings with backslash escapes, so a
// NUL byte is written as \x00.
type Config struct {
	Pad      string        `yaml:"pad" validate:"pad_byte"`
	Forbid   []string      `yaml:"forbid,omitempty" validate:"dive,escaped"`
	Retries  int           `yaml:"retries" validate:"min=1,max=1000000"`
	Timeout  time.Duration `yaml:"timeout,omitempty" validate:"min=0"`
	BitOrder string        `yaml:"bit_order" validate:"oneof=msb lsb"`

	Fastcoll Fastcoll `yaml:"fastcoll"`

	OutputDir string `yaml:"output_dir" validate:"required"`
	Workers   int    `yaml:"workers" validate:"min=1,max=64"`
}

// Fastcoll configures how the fastcoll binary is located or built.
type Fastcoll struct {
	Path      string `yaml:"path,omitempty"`
	SourceURL string `yaml:"source_url,omitempty" validate:"omitempty,url"`
	BuildDir  string `yaml:"build_dir,omitempty"`
	BuildCmd  string `yaml:"build_cmd,omitempty"`
	Download  bool   `yaml:"download"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Pad:      `\x00`,
		Retries:  collider.DefaultRetryBudget,
		BitOrder: collider.FirstIsMSB.String(),
		Fastcoll: Fastcoll{
			SourceURL: oracle.DefaultSourceURL,
			BuildDir:  filepath.Join(".md5coll", "fastcoll"),
			BuildCmd:  "g++ " + strings.Join(oracle.DefaultBuildFlags, " "),
		},
		OutputDir: "out",
		Workers:   4,
	}
}

// Read parses the file at path over Default and validates the result.
func Read(ctx context.Context, rt *toolkit.Runtime, path string) (*Config, error) {
	lg := mylog.LoggerFromContext(ctx)
	b, err := rt.ReadFile(path)
	if err != nil {
		lg.Debug("failed to read config", "path", path, "err", err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		lg.Error("invalid config", "path", path, "err", err)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lg.Debug("config read", "path", path)
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write stores the config at path atomically, creating parent directories.
func (c *Config) Write(ctx context.Context, rt *toolkit.Runtime, path string) error {
	lg := mylog.LoggerFromContext(ctx)
	b, err := yaml.Marshal(c)
	if err != nil {
		lg.Error("failed to marshal config", "path", path, "err", err)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := rt.Mkdir(dir, 0o755, true); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := rt.AtomicWriteFile(path, b, 0o644); err != nil {
		lg.Error("failed to write config", "path", path, "err", err)
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// PadByte is the decoded pad byte. It assumes the config is valid.
func (c *Config) PadByte() byte {
	b, err := Unescape(c.Pad)
	if err != nil || len(b) != 1 {
		return collider.DefaultPad
	}
	return b[0]
}

// ForbidBytes decodes the forbidden substrings. Invalid entries are skipped.
func (c *Config) ForbidBytes() [][]byte {
	out := make([][]byte, 0, len(c.Forbid))
	for _, s := range c.Forbid {
		if b, err := Unescape(s); err == nil && len(b) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Filter rejects collision blocks that contain a forbidden substring.
func (c *Config) Filter() collider.Filter {
	forbid := c.ForbidBytes()
	if len(forbid) == 0 {
		return collider.AllowAll
	}
	return collider.DisallowSubstrings(forbid...)
}

// Order is the configured enumeration bit order.
func (c *Config) Order() collider.BitOrder {
	o, err := collider.ParseBitOrder(c.BitOrder)
	if err != nil {
		return collider.FirstIsMSB
	}
	return o
}

// ColliderOptions translates the config into collider options using or as
// the collision search.
func (c *Config) ColliderOptions(or oracle.Oracle) []collider.Option {
	return []collider.Option{
		collider.WithOracle(or),
		collider.WithPad(c.PadByte()),
		collider.WithFilter(c.Filter()),
		collider.WithRetryBudget(c.Retries),
		collider.WithTimeout(c.Timeout),
	}
}

// ProvisionOptions translates the fastcoll section. BuildCmd is split on
// whitespace into the compiler and its flags.
func (c *Config) ProvisionOptions(rt *toolkit.Runtime) oracle.ProvisionOptions {
	opts := oracle.ProvisionOptions{
		Path:      c.Fastcoll.Path,
		BuildDir:  c.Fastcoll.BuildDir,
		Download:  c.Fastcoll.Download,
		SourceURL: c.Fastcoll.SourceURL,
		Runtime:   rt,
	}
	if fields := strings.Fields(c.Fastcoll.BuildCmd); len(fields) > 0 {
		opts.Compiler = fields[0]
		opts.Flags = fields[1:]
	}
	return opts
}
