// Package main is the entry point for the entail command
package main

import (
	"context"
	"os"

	"github.com/roach88/entail/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
