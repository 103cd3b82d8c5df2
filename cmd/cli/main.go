// Package main is the entry point for the tablectl binary.
package main

import (
	"os"

	cli "tablekit/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
