// Package main is the entry point for the swipefleet CLI.
// The CLI is the operator terminal tool for interacting with the controller API.
package main

import (
	"os"

	"swipefleet/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
