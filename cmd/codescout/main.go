package main

import (
	"os"

	"github.com/codescout-mcp/codescout/cmd/codescout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
