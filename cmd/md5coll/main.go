package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/md5coll/pkg/cli"
)

func main() {
	ctx := context.Background()

	rt, err := toolkit.NewRuntime()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	// Run reports the error itself.
	if exitCode, err := cli.Run(ctx, rt, os.Args[1:]); err != nil {
		os.Exit(exitCode)
	}
	os.Exit(0)
}
