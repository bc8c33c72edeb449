package main

import (
	"os"

	"github.com/kamy/api/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
