// Package main provides the entry point for the vue2inula CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/openInula/inula-sub000/cmd/vue2inula/commands"
	"github.com/openInula/inula-sub000/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
