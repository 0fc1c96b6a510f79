package oracle_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/jlrickert/md5coll/pkg/oracle"
	"github.com/stretchr/testify/require"
)

func TestProvision_ExplicitPath(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	script := writeFakeFastcoll(t, t.TempDir(), fakeCopyBody)
	fc, err := oracle.Provision(context.Background(), oracle.ProvisionOptions{Path: script})
	require.NoError(t, err)
	require.Equal(t, script, fc.Path)

	_, err = oracle.Provision(context.Background(), oracle.ProvisionOptions{
		Path: filepath.Join(t.TempDir(), "missing"),
	})
	require.True(t, oracle.IsUnavailable(err))
}

func TestProvision_ReusesPreviousBuild(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)

	buildDir := t.TempDir()
	built := writeFakeFastcoll(t, buildDir, fakeCopyBody)
	fc, err := oracle.Provision(context.Background(), oracle.ProvisionOptions{BuildDir: buildDir})
	require.NoError(t, err)
	require.Equal(t, built, fc.Path)
}

func TestProvision_NoDownloadMeansUnavailable(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath(oracle.DefaultFastcollBinary); err == nil {
		t.Skip("fastcoll is installed on PATH")
	}
	_, err := oracle.Provision(context.Background(), oracle.ProvisionOptions{BuildDir: t.TempDir()})
	require.True(t, oracle.IsUnavailable(err))
}

func TestProvision_DownloadsAndBuilds(t *testing.T) {
	t.Parallel()
	skipWithoutShell(t)
	if _, err := exec.LookPath(oracle.DefaultFastcollBinary); err == nil {
		t.Skip("fastcoll is installed on PATH")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("main.cpp")
	require.NoError(t, err)
	_, err = w.Write([]byte("int main() { return 0; }\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	buildDir := filepath.Join(t.TempDir(), "fastcoll")
	fc, err := oracle.Provision(context.Background(), oracle.ProvisionOptions{
		BuildDir:  buildDir,
		Download:  true,
		SourceURL: srv.URL + "/fastcoll.zip",
		Compiler:  writeFakeCompiler(t, t.TempDir()),
		Client:    srv.Client(),
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(buildDir, oracle.DefaultFastcollBinary), fc.Path)

	_, err = os.Stat(filepath.Join(buildDir, "main.cpp"))
	require.NoError(t, err)
	_, err = os.Stat(fc.Path)
	require.NoError(t, err)
}

func TestProvision_DownloadFailureIsUnavailable(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath(oracle.DefaultFastcollBinary); err == nil {
		t.Skip("fastcoll is installed on PATH")
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := oracle.Provision(context.Background(), oracle.ProvisionOptions{
		BuildDir:  t.TempDir(),
		Download:  true,
		SourceURL: srv.URL,
		Client:    srv.Client(),
	})
	require.True(t, oracle.IsUnavailable(err))
	require.ErrorContains(t, err, "status=404")
}
