package oracle

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/cli-toolkit/toolkit"
)

// DefaultSourceURL is the published fastcoll source archive.
const DefaultSourceURL = "https://www.win.tue.nl/hashclash/fastcoll_v1.0.0.5-1_source.zip"

// DefaultBuildFlags link fastcoll against the boost libraries it needs.
var DefaultBuildFlags = []string{
	"-O3",
	"-lboost_filesystem",
	"-lboost_program_options",
	"-lboost_system",
}

// ProvisionOptions controls how Provision finds or builds fastcoll.
type ProvisionOptions struct {
	// Path is an explicit executable. When set and usable nothing else is tried.
	Path string

	// BuildDir holds extracted sources and the built binary.
	BuildDir string

	// Download allows fetching and compiling the sources when no binary is found.
	Download bool

	// SourceURL overrides DefaultSourceURL.
	SourceURL string

	// Compiler defaults to g++.
	Compiler string

	// Flags default to DefaultBuildFlags.
	Flags []string

	// Client defaults to http.DefaultClient.
	Client *http.Client

	Runtime *toolkit.Runtime
}

// Provision returns a ready Fastcoll binding. It looks, in order, at
// opts.Path, a previous build in opts.BuildDir and fastcoll on PATH. If none
// is usable and opts.Download is set it downloads the sources into BuildDir
// and compiles them. No network or build action happens otherwise.
func Provision(ctx context.Context, opts ProvisionOptions) (*Fastcoll, error) {
	lg := mylog.LoggerFromContext(ctx)

	if opts.Path != "" {
		if _, err := exec.LookPath(opts.Path); err != nil {
			return nil, NewUnavailableError(opts.Path, err)
		}
		return NewFastcoll(opts.Runtime, opts.Path), nil
	}

	built := ""
	if opts.BuildDir != "" {
		built = filepath.Join(opts.BuildDir, DefaultFastcollBinary)
		if _, err := exec.LookPath(built); err == nil {
			lg.Debug("using previously built fastcoll", "path", built)
			return NewFastcoll(opts.Runtime, built), nil
		}
	}

	if p, err := exec.LookPath(DefaultFastcollBinary); err == nil {
		lg.Debug("using fastcoll from PATH", "path", p)
		return NewFastcoll(opts.Runtime, p), nil
	}

	if !opts.Download || built == "" {
		return nil, NewUnavailableError(DefaultFastcollBinary,
			errors.New("not found; provision with download enabled and a build dir"))
	}

	if err := fetchSources(ctx, opts); err != nil {
		return nil, NewUnavailableError(built, err)
	}
	if err := buildSources(ctx, opts, built); err != nil {
		return nil, NewUnavailableError(built, err)
	}
	lg.Info("fastcoll ready", "path", built)
	return NewFastcoll(opts.Runtime, built), nil
}

func fetchSources(ctx context.Context, opts ProvisionOptions) error {
	lg := mylog.LoggerFromContext(ctx)
	url := opts.SourceURL
	if url == "" {
		url = DefaultSourceURL
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	lg.Info("downloading fastcoll sources", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status=%d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	return extractZip(data, opts.BuildDir)
}

func extractZip(data []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open source archive: %w", err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, zf := range zr.File {
		target := filepath.Join(dest, zf.Name)
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("archive entry escapes build dir: %s", zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeZipEntry(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(zf *zip.File, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func buildSources(ctx context.Context, opts ProvisionOptions, output string) error {
	lg := mylog.LoggerFromContext(ctx)
	sources, err := filepath.Glob(filepath.Join(opts.BuildDir, "*.cpp"))
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no C++ sources in %s", opts.BuildDir)
	}

	compiler := opts.Compiler
	if compiler == "" {
		compiler = "g++"
	}
	flags := opts.Flags
	if flags == nil {
		flags = DefaultBuildFlags
	}

	args := append([]string{}, sources...)
	args = append(args, flags...)
	args = append(args, "-o", output)

	var combined bytes.Buffer
	cmd := exec.CommandContext(ctx, compiler, args...)
	cmd.Dir = opts.BuildDir
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	lg.Info("compiling fastcoll", "compiler", compiler, "sources", len(sources))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("compile fastcoll: %w: %s", err, strings.TrimSpace(combined.String()))
	}
	return nil
}
