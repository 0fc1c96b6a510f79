package oracle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jlrickert/md5coll/pkg/oracle/oracletest"
	"github.com/stretchr/testify/require"
)

// fakeCopyBody mimics `fastcoll --ihv $2 -o $4 $5` by copying the published
// collision pair into place.
const fakeCopyBody = `echo "$2" > "$DIR/ihv.log"
cp "$DIR/b0" "$4"
cp "$DIR/b1" "$5"
`

// writeFakeFastcoll writes an executable shell script named fastcoll into dir
// with body appended after a DIR variable pointing at dir. The published
// collision blocks are stored next to it as b0 and b1.
func writeFakeFastcoll(t *testing.T, dir string, body string) string {
	t.Helper()
	p := oracletest.WangPair()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b0"), p.B0[:], 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b1"), p.B1[:], 0o644))

	path := filepath.Join(dir, "fastcoll")
	script := "#!/bin/sh\nDIR='" + dir + "'\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// writeFakeCompiler writes a compiler stand-in that produces an executable at
// the path following -o.
func writeFakeCompiler(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-cxx")
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
printf '#!/bin/sh\nexit 0\n' > "$out"
chmod +x "$out"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
