package payload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/jlrickert/md5coll/pkg/md5x"
	"github.com/jlrickert/md5coll/pkg/oracle"
)

// DefaultMarker fills the placeholder runs a program embeds for splicing.
const DefaultMarker = '%'

// FindMarkers locates two runs of oracle.PairSize marker bytes. The first
// run must start on a block boundary; the second may start anywhere after
// the first ends.
func FindMarkers(data []byte, marker byte) (first, second int, err error) {
	run := bytes.Repeat([]byte{marker}, oracle.PairSize)
	first = -1
	for i := 0; i+oracle.PairSize <= len(data); i += md5x.BlockSize {
		if bytes.Equal(data[i:i+oracle.PairSize], run) {
			first = i
			break
		}
	}
	if first < 0 {
		return 0, 0, fmt.Errorf("%w: no block aligned run of %d %q bytes", ErrMarkerNotFound, oracle.PairSize, marker)
	}
	rest := first + oracle.PairSize
	j := bytes.Index(data[rest:], run)
	if j < 0 {
		return 0, 0, fmt.Errorf("%w: only one run of %q bytes after offset %d", ErrMarkerNotFound, marker, first)
	}
	return first, rest + j, nil
}

// SpliceMarkers produces good and evil copies of data. A divergence replaces
// the first marker run and branch 0 is copied over the second, so a program
// comparing the two regions sees them equal only in the good copy. NUL bytes
// are kept out of the collision blocks in addition to whatever filter opts
// configure.
func SpliceMarkers(ctx context.Context, data []byte, marker byte, opts ...collider.Option) (GoodEvil, error) {
	lg := mylog.LoggerFromContext(ctx)
	first, second, err := FindMarkers(data, marker)
	if err != nil {
		return GoodEvil{}, err
	}
	lg.Debug("marker runs found", "first", first, "second", second)

	c := collider.New(opts...)
	c.Append(data[:first])
	filter := collider.And(c.Filter(), collider.DisallowBytes(0x00))
	p, err := c.SafeDiverge(ctx, collider.WithDivergeFilter(filter))
	if err != nil {
		return GoodEvil{}, err
	}
	c.Append(data[first+oracle.PairSize : second])
	c.Append(p.B0[:])
	c.Append(data[second+oracle.PairSize:])

	lg.Info("binary pair built", "len", c.Len(), "md5", c.HexDigest())
	return goodEvil(c)
}
