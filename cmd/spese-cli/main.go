package main

import (
	"os"

	"quickspese/cmd/spese-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
