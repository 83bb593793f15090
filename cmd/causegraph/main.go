package main

import (
	"os"

	"github.com/helixtrade/causegraph/cmd/causegraph/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
