package main

import (
	"os"

	"didvault/cmd/didvault/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
