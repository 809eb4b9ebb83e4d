package main

import (
	"os"

	"github.com/railyard-ops/railyard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
