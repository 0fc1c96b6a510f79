package payload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/valyala/fasttemplate"
)

const (
	pythonHead = "#!{{interpreter}}\n# -*- coding: latin-1 -*-\n#"
	pythonOpen = "\ndiff = r'''"
	pythonSame = "'''\nsame = r'''"
	pythonTail = "'''\n\nif same == diff:\n    {{good}}\nelse:\n    {{evil}}\n"
)

// PythonSpec describes the good/evil script.
type PythonSpec struct {
	// Interpreter follows #! on the first line.
	Interpreter string

	// Good and Evil are single Python statements.
	Good string
	Evil string

	// Fill pads the header comment so the literal opens on a block boundary.
	Fill byte
}

// DefaultPythonSpec prints "good" or "evil".
func DefaultPythonSpec() PythonSpec {
	return PythonSpec{
		Interpreter: "/usr/bin/env python3",
		Good:        `print("good")`,
		Evil:        `print("evil")`,
		Fill:        ' ',
	}
}

// PythonFilter keeps collision blocks safe inside a raw triple quoted
// literal: no NUL or carriage return, no closing delimiter, and no trailing
// quote or backslash that would merge with the delimiter after the block.
func PythonFilter(block []byte) bool {
	if bytes.IndexByte(block, 0x00) >= 0 || bytes.IndexByte(block, '\r') >= 0 {
		return false
	}
	if bytes.Contains(block, []byte("'''")) {
		return false
	}
	if n := len(block); n > 0 && (block[n-1] == '\'' || block[n-1] == '\\') {
		return false
	}
	return true
}

// PythonGoodEvil builds two Python scripts with equal MD5. Both store a
// collision branch in diff and branch 0 in same, then run Good when they
// match and Evil otherwise.
func PythonGoodEvil(ctx context.Context, spec PythonSpec, opts ...collider.Option) (GoodEvil, error) {
	lg := mylog.LoggerFromContext(ctx)
	def := DefaultPythonSpec()
	if spec.Interpreter == "" {
		spec.Interpreter = def.Interpreter
	}
	if spec.Good == "" {
		spec.Good = def.Good
	}
	if spec.Evil == "" {
		spec.Evil = def.Evil
	}
	if spec.Fill == 0 {
		spec.Fill = def.Fill
	}
	if spec.Fill == '\n' || spec.Fill == '\r' {
		return GoodEvil{}, fmt.Errorf("payload: fill byte %q would end the header comment", spec.Fill)
	}

	head := fasttemplate.ExecuteString(pythonHead, "{{", "}}", map[string]interface{}{
		"interpreter": spec.Interpreter,
	})
	tail := fasttemplate.ExecuteString(pythonTail, "{{", "}}", map[string]interface{}{
		"good": spec.Good,
		"evil": spec.Evil,
	})

	c := collider.New(opts...)
	c.AppendString(head)
	c.Append(bytes.Repeat([]byte{spec.Fill}, fillLen(len(head)+len(pythonOpen))))
	c.AppendString(pythonOpen)

	filter := collider.And(c.Filter(), PythonFilter)
	p, err := c.SafeDiverge(ctx, collider.WithDivergeFilter(filter))
	if err != nil {
		return GoodEvil{}, err
	}
	c.AppendString(pythonSame)
	c.Append(p.B0[:])
	c.AppendString(tail)

	lg.Info("python pair built", "len", c.Len(), "md5", c.HexDigest())
	return goodEvil(c)
}
