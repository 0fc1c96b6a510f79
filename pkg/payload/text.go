package payload

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/valyala/fasttemplate"
	"golang.org/x/text/encoding"
)

// DefaultLine is written after every divergence. {{i}} is the zero based
// stage, {{stage}} the one based stage and {{total}} the number of stages.
const DefaultLine = "More text: {{i}}\n"

// TextSpec describes a text multicollision.
type TextSpec struct {
	Start       string
	Line        string
	Final       string
	Divergences int

	// Pad fills the gap before each divergence. Zero means a space.
	Pad byte

	// Encoding converts the text before it is appended. Nil means UTF-8.
	Encoding encoding.Encoding

	// Progress, when set, is called before each divergence.
	Progress func(stage, total int)
}

// TextFamily builds a collider with spec.Divergences divergence points
// separated by templated lines. NUL bytes are kept out of the collision
// blocks in addition to whatever filter opts configure.
func TextFamily(ctx context.Context, spec TextSpec, opts ...collider.Option) (*collider.Collider, error) {
	lg := mylog.LoggerFromContext(ctx)
	if spec.Divergences < 0 {
		return nil, fmt.Errorf("payload: negative divergence count %d", spec.Divergences)
	}
	line := spec.Line
	if line == "" {
		line = DefaultLine
	}
	tmpl, err := fasttemplate.NewTemplate(line, "{{", "}}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	pad := spec.Pad
	if pad == 0 {
		pad = ' '
	}
	c := collider.New(opts...)
	filter := collider.And(c.Filter(), collider.DisallowBytes(0x00))
	if err := c.AppendText(spec.Start, spec.Encoding); err != nil {
		return nil, err
	}

	total := strconv.Itoa(spec.Divergences)
	for i := range spec.Divergences {
		if spec.Progress != nil {
			spec.Progress(i+1, spec.Divergences)
		}
		_, err := c.Diverge(ctx, collider.WithDivergePad(pad), collider.WithDivergeFilter(filter))
		if err != nil {
			return nil, fmt.Errorf("stage %d of %d: %w", i+1, spec.Divergences, err)
		}
		text := tmpl.ExecuteString(map[string]interface{}{
			"i":     strconv.Itoa(i),
			"stage": strconv.Itoa(i + 1),
			"total": total,
		})
		if err := c.AppendText(text, spec.Encoding); err != nil {
			return nil, err
		}
	}
	if err := c.AppendText(spec.Final, spec.Encoding); err != nil {
		return nil, err
	}

	lg.Info("text family built", "divergences", spec.Divergences, "len", c.Len(), "md5", c.HexDigest())
	return c, nil
}
