// Package main is the entry point for the chatpulse CLI.
package main

import (
	"os"

	"github.com/ChatPulse/ChatPulse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
