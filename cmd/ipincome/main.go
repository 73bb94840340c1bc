package main

import (
	"os"

	"github.com/ipincome-dev/ipincome/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
