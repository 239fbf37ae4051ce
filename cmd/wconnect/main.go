package main

import (
	"os"

	"wconnect/cmd/wconnect/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
