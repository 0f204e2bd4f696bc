package main

import (
	"fmt"
	"os"

	"gindex-tui/internal/infra/logx"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.Errorf("fatal: %v", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
