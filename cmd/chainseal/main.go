package main

import (
	"os"

	"github.com/chainseal/chainseal/cmd/chainseal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
