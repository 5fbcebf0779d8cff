package main

import (
	"os"

	"e2ecore/cmd/e2ectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
