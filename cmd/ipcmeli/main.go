package main

import (
	"os"

	"github.com/nachov/ipcmeli/cmd/ipcmeli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
