package main

import (
	"os"

	"github.com/wonny/topgainers/cmd/gainers/commands"
)

// main is the entry point for the top gainers CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
