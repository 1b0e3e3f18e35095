// Package main is the entry point for the swagger2ng CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/swagger2ng/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
