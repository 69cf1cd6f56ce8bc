// Package main is the entry point for the testcenter CLI.
package main

import (
	"os"

	"github.com/leaderreps/testcenter/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
